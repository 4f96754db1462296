package holiday

import "time"

type Type string

const (
	TypeNational  Type = "National"
	TypeRegional  Type = "Regional"
	TypeCompany   Type = "Company"
	TypeReligious Type = "Religious"
)

type Holiday struct {
	ID          string
	Name        string
	Date        time.Time
	Year        int
	Type        Type
	Description *string
	IsActive    bool
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
