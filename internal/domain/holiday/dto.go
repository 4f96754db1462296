package holiday

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type HolidayFilter struct {
	Year     *int
	Type     *Type
	IsActive *bool
}

type CreateHolidayRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Date        string  `json:"date" validate:"required,date"`
	Year        *int    `json:"year,omitempty" validate:"omitempty,gte=1900,lte=9999"`
	Type        string  `json:"type,omitempty" validate:"omitempty,oneof=National Regional Company Religious"`
	Description *string `json:"description,omitempty"`
}

func (r *CreateHolidayRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validator.Struct(r).Err()
}

type UpdateHolidayRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Date        *string `json:"date,omitempty" validate:"omitempty,date"`
	Year        *int    `json:"year,omitempty" validate:"omitempty,gte=1900,lte=9999"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=National Regional Company Religious"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r *UpdateHolidayRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "cannot be empty")
	}
	return errs.Err()
}

type HolidayResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Year        int     `json:"year"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
	CreatedBy   *string `json:"created_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type ListHolidayResponse struct {
	Holidays []HolidayResponse `json:"holidays"`
	Total    int               `json:"total"`
}

func ToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID,
		Name:        h.Name,
		Date:        workday.FormatDate(h.Date),
		Year:        h.Year,
		Type:        string(h.Type),
		Description: h.Description,
		IsActive:    h.IsActive,
		CreatedBy:   h.CreatedBy,
		CreatedAt:   h.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   h.UpdatedAt.Format(time.RFC3339),
	}
}
