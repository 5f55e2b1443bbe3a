package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"greenleaf/internal/models"
)

const leadSchema = `
CREATE TABLE IF NOT EXISTS requests (
	id           BIGSERIAL PRIMARY KEY,
	type         TEXT NOT NULL CHECK (type IN ('callback', 'partner')),
	phone        TEXT NOT NULL,
	first_name   TEXT,
	last_name    TEXT,
	middle_name  TEXT,
	email        TEXT,
	goal         TEXT,
	status       TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'viewed', 'completed')),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ,
	CHECK ((status = 'completed') = (completed_at IS NOT NULL))
);
CREATE INDEX IF NOT EXISTS requests_status_created_idx ON requests (status, created_at DESC);
CREATE INDEX IF NOT EXISTS requests_completed_idx ON requests (completed_at DESC) WHERE status = 'completed';
`

const leadColumns = `id, type, phone, first_name, last_name, middle_name, email, goal, status, created_at, completed_at`

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	if db == nil {
		panic("repositories: nil database connection")
	}
	return &LeadRepository{db: db}
}

func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, leadSchema); err != nil {
		return fmt.Errorf("ensure requests schema: %w", err)
	}
	return nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	const query = `
		INSERT INTO requests (type, phone, first_name, last_name, middle_name, email, goal, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var first, last, middle, email, goal sql.NullString
	if p := lead.Partner; p != nil {
		first = nullString(p.FirstName)
		last = nullString(p.LastName)
		middle = nullString(p.MiddleName)
		email = nullString(p.Email)
		goal = nullString(p.Goal)
	}
	if lead.Status == "" {
		lead.Status = models.StatusNew
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	err := r.db.QueryRowContext(ctx, query,
		lead.Kind, lead.Phone, first, last, middle, email, goal, lead.Status, lead.CreatedAt,
	).Scan(&lead.ID)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM requests WHERE id = $1`
	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("select request %d: %w", id, err)
	}
	return lead, nil
}

// List собирает WHERE из фильтра. Limit = 0 означает без лимита.
func (r *LeadRepository) List(ctx context.Context, f models.LeadFilter) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM requests WHERE 1=1`
	args := []interface{}{}
	i := 1

	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", i)
		args = append(args, pq.Array(statuses))
		i++
	}
	if f.Kind != "" {
		query += fmt.Sprintf(" AND type = $%d", i)
		args = append(args, string(f.Kind))
		i++
	}

	switch f.OrderBy {
	case models.OrderCompletedDesc:
		query += " ORDER BY completed_at DESC NULLS LAST, id DESC"
	default:
		query += " ORDER BY created_at DESC, id DESC"
	}

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", i)
		args = append(args, f.Limit)
		i++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", i)
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

// UpdateStatus writes only when the row still has status from. A nil
// completedAt clears the column.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, from, to models.LeadStatus, completedAt *time.Time) (bool, error) {
	const query = `UPDATE requests SET status = $1, completed_at = $2 WHERE id = $3 AND status = $4`

	var at sql.NullTime
	if completedAt != nil {
		at = sql.NullTime{Time: *completedAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, query, string(to), at, id, string(from))
	if err != nil {
		return false, fmt.Errorf("update request %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update request %d status: %w", id, err)
	}
	return n > 0, nil
}

func (r *LeadRepository) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete requests: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete requests: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var (
		l                                models.Lead
		kind, status                     string
		first, last, middle, email, goal sql.NullString
		completedAt                      sql.NullTime
	)
	if err := row.Scan(&l.ID, &kind, &l.Phone, &first, &last, &middle, &email, &goal, &status, &l.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	l.Kind = models.LeadKind(kind)
	l.Status = models.LeadStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		l.CompletedAt = &t
	}
	if l.Kind == models.KindPartner {
		l.Partner = &models.PartnerProfile{
			FirstName:  first.String,
			LastName:   last.String,
			MiddleName: middle.String,
			Email:      email.String,
			Goal:       goal.String,
		}
	}
	return &l, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
