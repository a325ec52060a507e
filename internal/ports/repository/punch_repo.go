package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"graficaos.service/internal/core/model"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

const selectPunches = `SELECT p.id, p.user_id, p.date, p.entrada, p.almoco, p.retorno, p.saida,
       p.auto_closed, p.created_at, p.updated_at,
       u.name, u.email, u.initials, u.avatar_color
  FROM punches p
  JOIN users u ON u.id = p.user_id`

// PunchPostgresRepository is the concrete implementation for a PostgreSQL database.
type PunchPostgresRepository struct {
	DB *sql.DB
}

// NewPunchRepository create new instance
func NewPunchRepository(db *sql.DB) PunchRepository {
	return &PunchPostgresRepository{DB: db}
}

// FindByUserAndDate loads the user's record for a civil date.
func (r *PunchPostgresRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.PunchRecord, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.user_id", userID))

	query := selectPunches + ` WHERE p.user_id = $1 AND p.date = $2::date`

	rec, err := scanPunch(r.DB.QueryRowContext(ctx, query, userID, date.Format(model.DateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByID fetches a record by its id.
func (r *PunchPostgresRepository) GetByID(ctx context.Context, id string) (*model.PunchRecord, error) {
	query := selectPunches + ` WHERE p.id = $1`

	rec, err := scanPunch(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// Create inserts a new record for (user, date).
func (r *PunchPostgresRepository) Create(ctx context.Context, rec *model.PunchRecord) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.user_id", rec.UserID))

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `INSERT INTO punches (id, user_id, date, entrada, almoco, retorno, saida, auto_closed)
              VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
              RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.Date.Format(model.DateLayout),
		nullTime(rec.Entrada), nullTime(rec.Almoco), nullTime(rec.Retorno), nullTime(rec.Saida),
		rec.AutoClosed,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateRecord
	}
	return err
}

// SetSlot fills one punch column if it is still empty.
func (r *PunchPostgresRepository) SetSlot(ctx context.Context, id string, slot model.Slot, at time.Time) (bool, error) {
	col := slot.Column()
	if col == "" {
		return false, fmt.Errorf("unknown punch slot %d", slot)
	}

	query := fmt.Sprintf(`UPDATE punches
              SET %[1]s = $1,
                  updated_at = now()
              WHERE id = $2 AND %[1]s IS NULL`, col)

	res, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindOpenByDate lists records of a date with entrada and without saida.
func (r *PunchPostgresRepository) FindOpenByDate(ctx context.Context, date time.Time) ([]model.PunchRecord, error) {
	query := selectPunches + `
	 WHERE p.date = $1::date AND p.entrada IS NOT NULL AND p.saida IS NULL
	 ORDER BY u.name`

	return r.query(ctx, query, date.Format(model.DateLayout))
}

// AutoClose closes the given records in a single statement.
func (r *PunchPostgresRepository) AutoClose(ctx context.Context, ids []string, saida time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `UPDATE punches
              SET saida = $1,
                  auto_closed = TRUE,
                  updated_at = now()
              WHERE id = ANY($2::text[]::uuid[]) AND saida IS NULL
              RETURNING id`

	rows, err := r.DB.QueryContext(ctx, query, saida, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		closed = append(closed, id)
	}
	return closed, rows.Err()
}

// List returns records of one user or all users in a date range.
func (r *PunchPostgresRepository) List(ctx context.Context, filter model.RecordFilter) ([]model.PunchRecord, error) {
	if filter.UserID != "" {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.user_id", filter.UserID))
	}

	query := selectPunches + `
	 WHERE ($1 = '' OR p.user_id::text = $1)
	   AND p.date BETWEEN $2::date AND $3::date
	 ORDER BY p.date ASC, u.name ASC`

	return r.query(ctx, query, filter.UserID,
		filter.Range.Start.Format(model.DateLayout), filter.Range.End.Format(model.DateLayout))
}

// ListRecent returns the latest records, newest first.
func (r *PunchPostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.PunchRecord, error) {
	query := selectPunches + `
	 WHERE ($1 = '' OR p.user_id::text = $1)
	 ORDER BY p.date DESC, u.name ASC
	 LIMIT $2`

	return r.query(ctx, query, userID, limit)
}

func (r *PunchPostgresRepository) query(ctx context.Context, query string, args ...any) ([]model.PunchRecord, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.PunchRecord{}
	for rows.Next() {
		rec, err := scanPunch(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPunch(row rowScanner) (*model.PunchRecord, error) {
	var rec model.PunchRecord
	var user model.UserSummary
	var entrada, almoco, retorno, saida sql.NullTime

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &entrada, &almoco, &retorno, &saida,
		&rec.AutoClosed, &rec.CreatedAt, &rec.UpdatedAt,
		&user.Name, &user.Email, &user.Initials, &user.AvatarColor,
	)
	if err != nil {
		return nil, err
	}

	user.ID = rec.UserID
	rec.User = &user
	rec.Entrada = timePtr(entrada)
	rec.Almoco = timePtr(almoco)
	rec.Retorno = timePtr(retorno)
	rec.Saida = timePtr(saida)
	return &rec, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
