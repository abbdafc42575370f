package model

import (
	"github.com/google/uuid"
)

type Patient struct {
	Base
	UserID uuid.UUID `db:"user_id" json:"-"`
	User   User      `db:"-" json:"user"`
	Phone  *string   `db:"phone" json:"phone"`
}

type PatientRequest struct {
	User  UserRequest `json:"user" binding:"required"`
	Phone *string     `json:"phone" binding:"omitempty,max=15"`
}

func (r *PatientRequest) Apply(p *Patient) {
	r.User.Apply(&p.User)
	p.Phone = r.Phone
}
