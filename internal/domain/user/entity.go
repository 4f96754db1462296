package user

import "context"

type Role string

const (
	RoleSystemAdmin Role = "System Admin"
	RoleExecutive   Role = "Executive"
	RoleHR          Role = "HR"
	RoleEmployee    Role = "Employee"
	RoleIntern      Role = "Intern"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleExecutive, RoleHR, RoleEmployee, RoleIntern:
		return true
	}
	return false
}

// IsPrivileged reports whether the role may act on other employees' records.
func (r Role) IsPrivileged() bool {
	return r == RoleHR || r == RoleExecutive || r == RoleSystemAdmin
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID     string
	EmployeeID string
	Email      string
	Role       Role
}

// IsPrivileged checks if the actor can approve requests and see everyone's records
func (a Actor) IsPrivileged() bool {
	return a.Role.IsPrivileged()
}

// CanView reports whether the actor may read records belonging to employeeID.
func (a Actor) CanView(employeeID string) bool {
	return employeeID == a.EmployeeID || a.IsPrivileged()
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// RequireActor returns the caller or ErrUnauthenticated.
func RequireActor(ctx context.Context) (Actor, error) {
	a, ok := ActorFromContext(ctx)
	if !ok || a.EmployeeID == "" {
		return Actor{}, ErrUnauthenticated
	}
	return a, nil
}

// ResolveSubject picks the employee a read targets: the requested one when
// given, else the caller. Non-privileged callers may only target themselves.
func ResolveSubject(a Actor, requested string) (string, error) {
	if requested == "" || requested == a.EmployeeID {
		return a.EmployeeID, nil
	}
	if !a.IsPrivileged() {
		return "", ErrForbidden
	}
	return requested, nil
}
