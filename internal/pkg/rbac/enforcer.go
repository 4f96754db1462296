// Package rbac answers "may this role do that" using a casbin enforcer
// seeded from user.RolePermissions.
package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type Enforcer struct {
	enforcer *casbin.Enforcer
}

// NewEnforcer builds an enforcer holding one policy per role permission.
func NewEnforcer(permissions map[user.Role][]user.Permission) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to load rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create rbac enforcer: %w", err)
	}

	var rules [][]string
	for role, perms := range permissions {
		for _, p := range perms {
			rules = append(rules, []string{string(role), p.Object(), p.Action()})
		}
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("failed to seed rbac policies: %w", err)
		}
	}
	return &Enforcer{enforcer: e}, nil
}

func (e *Enforcer) Allowed(role user.Role, permission user.Permission) (bool, error) {
	return e.enforcer.Enforce(string(role), permission.Object(), permission.Action())
}
