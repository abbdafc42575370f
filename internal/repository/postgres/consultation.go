package postgres

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type consultationRepository struct {
	BaseRepository
}

func NewConsultationRepository(base BaseRepository) repository.ConsultationRepository {
	return &consultationRepository{base}
}

const consultationColumns = `c.id, c.doctor_id, c.patient_id, c.clinic_id, c.start_time, c.end_time,
	c.status, c.notes, c.created_at, c.updated_at`

const consultationJoins = `
	FROM consultations c
	JOIN doctors d ON d.id = c.doctor_id
	JOIN users du ON du.id = d.user_id
	JOIN patients p ON p.id = c.patient_id
	JOIN users pu ON pu.id = p.user_id
`

var consultationOrderings = map[string]string{
	model.OrderStartTimeAsc:  "c.start_time ASC",
	model.OrderStartTimeDesc: "c.start_time DESC",
	model.OrderCreatedAtAsc:  "c.created_at ASC",
	model.OrderCreatedAtDesc: "c.created_at DESC",
}

func (r *consultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	if consultation.ID == uuid.Nil {
		consultation.ID = uuid.New()
	}
	consultation.NormalizeEndTime()
	consultation.CreatedAt = r.timestamp()
	consultation.UpdatedAt = consultation.CreatedAt

	query := `
		INSERT INTO consultations (
			id, doctor_id, patient_id, clinic_id, start_time, end_time,
			status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		consultation.ID,
		consultation.DoctorID,
		consultation.PatientID,
		consultation.ClinicID,
		consultation.StartTime,
		consultation.EndTime,
		consultation.Status,
		consultation.Notes,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", mapError(err, "consultation"))
	}
	return nil
}

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations c WHERE c.id = $1`

	var consultation model.Consultation
	if err := r.db.GetContext(ctx, &consultation, query, id); err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", mapError(err, "consultation"))
	}
	return &consultation, nil
}

// Update persists every mutable column. created_at is never written.
func (r *consultationRepository) Update(ctx context.Context, consultation *model.Consultation) error {
	consultation.NormalizeEndTime()
	consultation.UpdatedAt = r.timestamp()

	query := `
		UPDATE consultations
		SET doctor_id = $1, patient_id = $2, clinic_id = $3, start_time = $4, end_time = $5,
			status = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		consultation.DoctorID,
		consultation.PatientID,
		consultation.ClinicID,
		consultation.StartTime,
		consultation.EndTime,
		consultation.Status,
		consultation.Notes,
		consultation.UpdatedAt,
		consultation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", mapError(err, "consultation"))
	}
	return expectAffected(result, "consultation")
}

func (r *consultationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete consultation: %w", mapError(err, "consultation"))
	}
	return expectAffected(result, "consultation")
}

func (r *consultationRepository) List(ctx context.Context, q *model.ConsultationQuery) (*model.Page[*model.Consultation], error) {
	where, args := buildConsultationFilter(q)
	page := &model.Page[*model.Consultation]{Items: []*model.Consultation{}}

	countQuery := `SELECT COUNT(*)` + consultationJoins + where
	if err := r.db.GetContext(ctx, &page.Total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count consultations: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		consultationColumns, consultationJoins, where, consultationOrderBy(q.Ordering), n+1, n+2)
	args = append(args, q.Limit, q.Offset)

	if err := r.db.SelectContext(ctx, &page.Items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return page, nil
}

// buildConsultationFilter renders the WHERE clause for q with positional arguments.
// An empty query yields an empty clause.
func buildConsultationFilter(q *model.ConsultationQuery) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.Status != nil {
		add("c.status = $%d", *q.Status)
	}
	if q.CreatedAt != nil {
		add("c.created_at = $%d", q.CreatedAt.UTC())
	}
	if q.DoctorLastName != nil {
		add("du.last_name = $%d", *q.DoctorLastName)
	}
	if q.PatientLastName != nil {
		add("pu.last_name = $%d", *q.PatientLastName)
	}

	for _, term := range searchTerms(q.Search) {
		pattern := "%" + escapeLike(term) + "%"
		switch q.SearchScope {
		case model.SearchScopeDoctor:
			add(`du.last_name ILIKE $%d ESCAPE '\'`, pattern)
		case model.SearchScopePatient:
			add(`pu.last_name ILIKE $%d ESCAPE '\'`, pattern)
		default:
			add(`(du.last_name ILIKE $%[1]d ESCAPE '\' OR pu.last_name ILIKE $%[1]d ESCAPE '\')`, pattern)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// searchTerms splits a search string on whitespace and commas. Every term must match.
func searchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

func consultationOrderBy(ordering string) string {
	var clauses []string
	for _, key := range strings.Split(model.NormalizeConsultationOrdering(ordering), ",") {
		clauses = append(clauses, consultationOrderings[key])
	}
	return strings.Join(clauses, ", ") + ", c.id"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
