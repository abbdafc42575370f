package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// constraintFields maps schema constraint names to the request field they guard.
var constraintFields = map[string]string{
	"users_username_key":            "user.username",
	"doctor_clinics_clinic_id_fkey": "clinics",
	"consultations_doctor_id_fkey":  "doctor",
	"consultations_patient_id_fkey": "patient",
	"consultations_clinic_id_fkey":  "clinic",
}

// mapError translates driver errors into application errors. Unique violations are
// reported as retryable validation failures, foreign key violations as plain ones.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound(resource, err)
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	field, known := constraintFields[pqErr.Constraint]
	if !known {
		field = "non_field_errors"
	}

	switch pqErr.Code {
	case codeUniqueViolation:
		appErr := apperrors.NewConflict(fmt.Sprintf("%s already exists", resource), err)
		appErr.Fields = map[string]string{field: "A record with this value already exists."}
		if field == "user.username" {
			appErr.Fields[field] = "A user with that username already exists."
		}
		return appErr
	case codeForeignKeyViolation:
		appErr := apperrors.NewValidation("referenced object does not exist", err)
		appErr.Fields = map[string]string{field: "Invalid pk - object does not exist."}
		return appErr
	}
	return err
}
