package model

type Clinic struct {
	Base
	Name          string `db:"name" json:"name"`
	LegalAddress  string `db:"legal_address" json:"legal_address"`
	ActualAddress string `db:"actual_address" json:"actual_address"`
}

type ClinicRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	LegalAddress  string `json:"legal_address" binding:"required"`
	ActualAddress string `json:"actual_address" binding:"required"`
}

// PatchClinicRequest carries a partial update; nil fields are left untouched.
type PatchClinicRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=100"`
	LegalAddress  *string `json:"legal_address"`
	ActualAddress *string `json:"actual_address"`
}

func (r *ClinicRequest) Apply(c *Clinic) {
	c.Name = r.Name
	c.LegalAddress = r.LegalAddress
	c.ActualAddress = r.ActualAddress
}

func (r *PatchClinicRequest) Apply(c *Clinic) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.LegalAddress != nil {
		c.LegalAddress = *r.LegalAddress
	}
	if r.ActualAddress != nil {
		c.ActualAddress = *r.ActualAddress
	}
}
