// Package policy holds the resource-level access rules. Authorization is decided per
// resource and HTTP verb only; there are no row-level rules.
package policy

import (
	"fmt"
	"net/http"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Kind is the access rule attached to a resource.
type Kind int

const (
	// AdminOnly lets only admins (role admin or staff flag) perform any operation.
	AdminOnly Kind = iota
	// AdminWriteReadOpen lets anyone, including anonymous callers, read; only admins write.
	AdminWriteReadOpen
)

func (k Kind) String() string {
	switch k {
	case AdminOnly:
		return "admin_only"
	case AdminWriteReadOpen:
		return "admin_write_read_open"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a configuration value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "admin_only":
		return AdminOnly, nil
	case "admin_write_read_open":
		return AdminWriteReadOpen, nil
	}
	return AdminOnly, fmt.Errorf("unknown access policy %q", s)
}

type Resource string

const (
	ResourceClinics       Resource = "clinics"
	ResourceDoctors       Resource = "doctors"
	ResourcePatients      Resource = "patients"
	ResourceConsultations Resource = "consultations"
)

// Table maps every resource to exactly one policy.
type Table map[Resource]Kind

// DefaultTable returns the standard rules with the given consultation policy.
func DefaultTable(consultations Kind) Table {
	return Table{
		ResourceClinics:       AdminWriteReadOpen,
		ResourceDoctors:       AdminOnly,
		ResourcePatients:      AdminOnly,
		ResourceConsultations: consultations,
	}
}

// Allow evaluates the rule for resource. Unknown resources are denied.
func (t Table) Allow(resource Resource, p model.Principal, method string) bool {
	kind, ok := t[resource]
	if !ok {
		return false
	}
	return Authorize(kind, p, method)
}

// Authorize decides whether p may perform method under the given rule.
func Authorize(kind Kind, p model.Principal, method string) bool {
	switch kind {
	case AdminWriteReadOpen:
		if IsSafeMethod(method) {
			return true
		}
		return p.IsAdmin()
	case AdminOnly:
		return p.IsAdmin()
	}
	return false
}

// IsSafeMethod reports whether method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
