package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	UserID         uuid.UUID   `db:"user_id" json:"-"`
	User           User        `db:"-" json:"user"`
	Clinics        []uuid.UUID `db:"-" json:"clinics"`
	Specialization string      `db:"specialization" json:"specialization"`
	Phone          *string     `db:"phone" json:"phone"`
}

type DoctorRequest struct {
	User           UserRequest `json:"user" binding:"required"`
	Clinics        []uuid.UUID `json:"clinics"`
	Specialization string      `json:"specialization" binding:"required,max=100"`
	Phone          *string     `json:"phone" binding:"omitempty,max=15"`
}

func (r *DoctorRequest) Apply(d *Doctor) {
	r.User.Apply(&d.User)
	d.Specialization = r.Specialization
	d.Phone = r.Phone
	d.Clinics = r.Clinics
	if d.Clinics == nil {
		d.Clinics = []uuid.UUID{}
	}
}
