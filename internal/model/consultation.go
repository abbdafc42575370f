package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultConsultationDuration is applied when a consultation has no usable end time.
const DefaultConsultationDuration = 30 * time.Minute

type ConsultationStatus string

const (
	ConsultationStatusWaiting   ConsultationStatus = "waiting"
	ConsultationStatusConfirmed ConsultationStatus = "confirmed"
	ConsultationStatusStarted   ConsultationStatus = "started"
	ConsultationStatusFinished  ConsultationStatus = "finished"
	ConsultationStatusPaid      ConsultationStatus = "paid"
)

// ConsultationStatuses lists the status vocabulary in lifecycle order.
var ConsultationStatuses = []ConsultationStatus{
	ConsultationStatusWaiting,
	ConsultationStatusConfirmed,
	ConsultationStatusStarted,
	ConsultationStatusFinished,
	ConsultationStatusPaid,
}

func (s ConsultationStatus) Valid() bool {
	for _, v := range ConsultationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Consultation struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	DoctorID  uuid.UUID          `db:"doctor_id" json:"doctor"`
	PatientID uuid.UUID          `db:"patient_id" json:"patient"`
	ClinicID  uuid.UUID          `db:"clinic_id" json:"clinic"`
	StartTime time.Time          `db:"start_time" json:"start_time"`
	EndTime   *time.Time         `db:"end_time" json:"end_time"`
	Status    ConsultationStatus `db:"status" json:"status"`
	Notes     *string            `db:"notes" json:"notes"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

// NormalizeEndTime enforces end_time >= start_time. A missing end time, or one that
// precedes the start, is replaced by start + DefaultConsultationDuration.
func (c *Consultation) NormalizeEndTime() {
	if c.EndTime == nil || c.EndTime.Before(c.StartTime) {
		end := c.StartTime.Add(DefaultConsultationDuration)
		c.EndTime = &end
	}
}

type ConsultationRequest struct {
	DoctorID  uuid.UUID          `json:"doctor" binding:"required"`
	PatientID uuid.UUID          `json:"patient" binding:"required"`
	ClinicID  uuid.UUID          `json:"clinic" binding:"required"`
	StartTime time.Time          `json:"start_time" binding:"required"`
	EndTime   *time.Time         `json:"end_time"`
	Status    ConsultationStatus `json:"status"`
	Notes     *string            `json:"notes"`
}

func (r *ConsultationRequest) Apply(c *Consultation) {
	c.DoctorID = r.DoctorID
	c.PatientID = r.PatientID
	c.ClinicID = r.ClinicID
	c.StartTime = r.StartTime
	c.EndTime = r.EndTime
	c.Status = r.Status
	c.Notes = r.Notes
	if c.Status == "" {
		c.Status = ConsultationStatusWaiting
	}
}

// PatchConsultationRequest carries a partial update; nil fields are left untouched.
type PatchConsultationRequest struct {
	DoctorID  *uuid.UUID          `json:"doctor"`
	PatientID *uuid.UUID          `json:"patient"`
	ClinicID  *uuid.UUID          `json:"clinic"`
	StartTime *time.Time          `json:"start_time"`
	EndTime   *time.Time          `json:"end_time"`
	Status    *ConsultationStatus `json:"status"`
	Notes     *string             `json:"notes"`
}

func (r *PatchConsultationRequest) Apply(c *Consultation) {
	if r.DoctorID != nil {
		c.DoctorID = *r.DoctorID
	}
	if r.PatientID != nil {
		c.PatientID = *r.PatientID
	}
	if r.ClinicID != nil {
		c.ClinicID = *r.ClinicID
	}
	if r.StartTime != nil {
		c.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		c.EndTime = r.EndTime
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.Notes != nil {
		c.Notes = r.Notes
	}
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// SearchScope selects which last names a free-text search looks at.
type SearchScope string

const (
	SearchScopeAll     SearchScope = ""
	SearchScopeDoctor  SearchScope = "doctor"
	SearchScopePatient SearchScope = "patient"
)

func (s SearchScope) Valid() bool {
	switch s {
	case SearchScopeAll, SearchScopeDoctor, SearchScopePatient:
		return true
	}
	return false
}

// Ordering keys accepted by the consultation list.
const (
	OrderStartTimeAsc  = "start_time"
	OrderStartTimeDesc = "-start_time"
	OrderCreatedAtAsc  = "created_at"
	OrderCreatedAtDesc = "-created_at"

	DefaultConsultationOrdering = OrderStartTimeDesc
)

// ValidConsultationOrdering reports whether key is one of the accepted ordering keys.
func ValidConsultationOrdering(key string) bool {
	switch key {
	case OrderStartTimeAsc, OrderStartTimeDesc, OrderCreatedAtAsc, OrderCreatedAtDesc:
		return true
	}
	return false
}

// NormalizeConsultationOrdering parses a comma separated list of ordering keys. Unknown
// keys are dropped and a field keeps its first direction. An empty result yields the default.
func NormalizeConsultationOrdering(raw string) string {
	var (
		keys []string
		seen = map[string]bool{}
	)
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		field := strings.TrimPrefix(key, "-")
		if !ValidConsultationOrdering(key) || seen[field] {
			continue
		}
		seen[field] = true
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return DefaultConsultationOrdering
	}
	return strings.Join(keys, ",")
}

// ConsultationQuery describes a consultation list request. Filters are ANDed, the search
// narrows the filtered set and the ordering applies before pagination.
type ConsultationQuery struct {
	Status          *ConsultationStatus
	CreatedAt       *time.Time
	DoctorLastName  *string
	PatientLastName *string

	Search      string
	SearchScope SearchScope

	Ordering string

	Limit  int
	Offset int
}
