package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var fixedNow = time.Date(2025, 6, 20, 9, 30, 0, 0, time.UTC)

func newMockBase(t *testing.T) (BaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	base := NewBaseRepository(sqlx.NewDb(db, "postgres"))
	base.now = func() time.Time { return fixedNow }
	return base, mock
}

func strPtr(s string) *string { return &s }

func TestMapError(t *testing.T) {
	t.Run("no rows", func(t *testing.T) {
		err := mapError(sql.ErrNoRows, "clinic")
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := mapError(&pq.Error{Code: codeUniqueViolation, Constraint: "users_username_key"}, "user")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.KindValidation, appErr.Kind)
		assert.True(t, appErr.Retryable)
		assert.Equal(t, "A user with that username already exists.", appErr.Fields["user.username"])
	})

	t.Run("unknown clinic", func(t *testing.T) {
		err := mapError(&pq.Error{Code: codeForeignKeyViolation, Constraint: "doctor_clinics_clinic_id_fkey"}, "doctor")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.KindValidation, appErr.Kind)
		assert.False(t, appErr.Retryable)
		assert.Contains(t, appErr.Fields, "clinics")
	})

	t.Run("other errors pass through", func(t *testing.T) {
		err := mapError(sql.ErrConnDone, "clinic")
		assert.ErrorIs(t, err, sql.ErrConnDone)
		_, ok := apperrors.As(err)
		assert.False(t, ok)
	})
}

func TestClinicRepositoryGet(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewClinicRepository(base)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM clinics WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "legal_address", "actual_address", "created_at", "updated_at"}).
			AddRow(id.String(), "Central", "Lenina 1", "Lenina 2", fixedNow, fixedNow))

	clinic, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, clinic.ID)
	assert.Equal(t, "Central", clinic.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicRepositoryGetNotFound(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewClinicRepository(base)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM clinics WHERE id = $1`)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestClinicRepositoryUpdateMissing(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewClinicRepository(base)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE clinics`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.Clinic{Base: model.Base{ID: uuid.New()}, Name: "x"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUserRepositoryUsernameExists(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewUserRepository(base)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("ivanov_ip").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.UsernameExists(context.Background(), "ivanov_ip")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDoctorRepositoryCreate(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewDoctorRepository(base)
	clinicID := uuid.New()

	doctor := &model.Doctor{
		User:           model.User{Username: strPtr("ivanov_ip"), FirstName: "Ivan", LastName: "Ivanov"},
		Specialization: "Surgeon",
		Clinics:        []uuid.UUID{clinicID, clinicID},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO doctors`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO doctor_clinics`)).
		WithArgs(sqlmock.AnyArg(), clinicID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), doctor))
	assert.NotEqual(t, uuid.Nil, doctor.ID)
	assert.Equal(t, doctor.User.ID, doctor.UserID)
	assert.Equal(t, model.RoleDoctor, doctor.User.Role)
	assert.Equal(t, fixedNow, doctor.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryCreateUnknownClinic(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewDoctorRepository(base)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO doctors`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO doctor_clinics`)).
		WillReturnError(&pq.Error{Code: codeForeignKeyViolation, Constraint: "doctor_clinics_clinic_id_fkey"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Doctor{
		User:           model.User{LastName: "Ivanov"},
		Specialization: "Surgeon",
		Clinics:        []uuid.UUID{uuid.New()},
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "clinics")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryGet(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewDoctorRepository(base)
	id, userID, clinicID := uuid.New(), uuid.New(), uuid.New()

	cols := []string{"id", "user_id", "specialization", "phone", "created_at", "updated_at"}
	for _, f := range userFields {
		cols = append(cols, "u."+f)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			id.String(), userID.String(), "Surgeon", nil, fixedNow, fixedNow,
			userID.String(), "ivanov_ip", "", "Ivan", "Ivanov", "Petrovich", "", "doctor", false, fixedNow, fixedNow,
		))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM doctor_clinics`)).
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "clinic_id"}).AddRow(id.String(), clinicID.String()))

	doctor, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ivanov", doctor.User.LastName)
	assert.Equal(t, userID, doctor.User.ID)
	assert.Equal(t, model.RoleDoctor, doctor.User.Role)
	assert.Equal(t, []uuid.UUID{clinicID}, doctor.Clinics)
	assert.Nil(t, doctor.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryDeleteRemovesUser(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewPatientRepository(base)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = (SELECT user_id FROM patients WHERE id = $1)`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryDeleteMissing(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewPatientRepository(base)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestPatientRepositoryListOnlyPatients(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewPatientRepository(base)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM patients p JOIN users u ON u.id = p.user_id WHERE u.role = $1`)).
		WithArgs(model.RolePatient).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE u.role = $1 ORDER BY u.last_name, u.first_name, p.id LIMIT $2 OFFSET $3`)).
		WithArgs(model.RolePatient, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryGetChecksRole(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewPatientRepository(base)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1 AND u.role = $2`)).
		WithArgs(id, model.RolePatient).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildConsultationFilter(t *testing.T) {
	status := model.ConsultationStatusWaiting
	created := time.Date(2025, 6, 20, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))

	tests := []struct {
		name      string
		query     model.ConsultationQuery
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "empty",
			query:     model.ConsultationQuery{},
			wantWhere: "",
		},
		{
			name:      "status and created_at",
			query:     model.ConsultationQuery{Status: &status, CreatedAt: &created},
			wantWhere: " WHERE c.status = $1 AND c.created_at = $2",
			wantArgs:  []interface{}{status, created.UTC()},
		},
		{
			name:      "last names",
			query:     model.ConsultationQuery{DoctorLastName: strPtr("Иванов"), PatientLastName: strPtr("Петров")},
			wantWhere: " WHERE du.last_name = $1 AND pu.last_name = $2",
			wantArgs:  []interface{}{"Иванов", "Петров"},
		},
		{
			name:      "search both",
			query:     model.ConsultationQuery{Search: "ива"},
			wantWhere: ` WHERE (du.last_name ILIKE $1 ESCAPE '\' OR pu.last_name ILIKE $1 ESCAPE '\')`,
			wantArgs:  []interface{}{"%ива%"},
		},
		{
			name:      "search doctor with filter",
			query:     model.ConsultationQuery{Status: &status, Search: "Иванов", SearchScope: model.SearchScopeDoctor},
			wantWhere: ` WHERE c.status = $1 AND du.last_name ILIKE $2 ESCAPE '\'`,
			wantArgs:  []interface{}{status, "%Иванов%"},
		},
		{
			name:      "search patient escapes wildcards",
			query:     model.ConsultationQuery{Search: `50%_a\b`, SearchScope: model.SearchScopePatient},
			wantWhere: ` WHERE pu.last_name ILIKE $1 ESCAPE '\'`,
			wantArgs:  []interface{}{`%50\%\_a\\b%`},
		},
		{
			name:      "search terms are ANDed",
			query:     model.ConsultationQuery{Search: " Иван, Пет ", SearchScope: model.SearchScopeDoctor},
			wantWhere: ` WHERE du.last_name ILIKE $1 ESCAPE '\' AND du.last_name ILIKE $2 ESCAPE '\'`,
			wantArgs:  []interface{}{"%Иван%", "%Пет%"},
		},
		{
			name:      "search terms in both scopes",
			query:     model.ConsultationQuery{Search: "ив  пе"},
			wantWhere: ` WHERE (du.last_name ILIKE $1 ESCAPE '\' OR pu.last_name ILIKE $1 ESCAPE '\') AND (du.last_name ILIKE $2 ESCAPE '\' OR pu.last_name ILIKE $2 ESCAPE '\')`,
			wantArgs:  []interface{}{"%ив%", "%пе%"},
		},
		{
			name:      "blank search",
			query:     model.ConsultationQuery{Search: " , "},
			wantWhere: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildConsultationFilter(&tt.query)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestConsultationOrderBy(t *testing.T) {
	assert.Equal(t, "c.start_time ASC, c.id", consultationOrderBy("start_time"))
	assert.Equal(t, "c.start_time DESC, c.id", consultationOrderBy("-start_time"))
	assert.Equal(t, "c.created_at ASC, c.id", consultationOrderBy("created_at"))
	assert.Equal(t, "c.created_at DESC, c.id", consultationOrderBy("-created_at"))
	assert.Equal(t, "c.start_time DESC, c.id", consultationOrderBy(""))
	assert.Equal(t, "c.start_time DESC, c.id", consultationOrderBy("notes"))
	assert.Equal(t, "c.start_time ASC, c.created_at DESC, c.id", consultationOrderBy("start_time,-created_at"))
	assert.Equal(t, "c.created_at ASC, c.id", consultationOrderBy("notes,created_at"))
	assert.Equal(t, "c.created_at DESC, c.start_time ASC, c.id", consultationOrderBy("-created_at, start_time,-start_time"))
}

func TestConsultationRepositoryList(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewConsultationRepository(base)
	status := model.ConsultationStatusWaiting
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.status = $1 ORDER BY c.start_time ASC, c.id LIMIT $2 OFFSET $3`)).
		WithArgs(status, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "doctor_id", "patient_id", "clinic_id", "start_time", "end_time",
			"status", "notes", "created_at", "updated_at",
		}).AddRow(
			id.String(), uuid.NewString(), uuid.NewString(), uuid.NewString(), fixedNow, fixedNow.Add(30*time.Minute),
			"waiting", nil, fixedNow, fixedNow,
		))

	page, err := repo.List(context.Background(), &model.ConsultationQuery{
		Status:   &status,
		Ordering: model.OrderStartTimeAsc,
		Limit:    10,
		Offset:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, id, page.Items[0].ID)
	assert.Equal(t, model.ConsultationStatusWaiting, page.Items[0].Status)
	assert.Nil(t, page.Items[0].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultationRepositoryCreateNormalizesEndTime(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewConsultationRepository(base)

	start := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	c := &model.Consultation{
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		ClinicID:  uuid.New(),
		StartTime: start,
		EndTime:   &before,
		Status:    model.ConsultationStatusWaiting,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO consultations`)).
		WithArgs(sqlmock.AnyArg(), c.DoctorID, c.PatientID, c.ClinicID, start, start.Add(30*time.Minute),
			"waiting", nil, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, start.Add(30*time.Minute), *c.EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultationRepositoryCreateUnknownDoctor(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewConsultationRepository(base)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO consultations`)).
		WillReturnError(&pq.Error{Code: codeForeignKeyViolation, Constraint: "consultations_doctor_id_fkey"})

	err := repo.Create(context.Background(), &model.Consultation{StartTime: fixedNow})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "doctor")
}
