package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"olea/internal/form"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the forms table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS forms (
			id         UUID PRIMARY KEY,
			form_type  TEXT NOT NULL,
			status     TEXT NOT NULL,
			data       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "migrate forms table")
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, sub *form.Submission) error {
	data, err := json.Marshal(sub.Record)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode record")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO forms (id, form_type, status, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID.String(), sub.FormType, sub.Status, data, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert form")
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, fid id.FormID) (*form.Submission, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, form_type, status, data, created_at, updated_at
		FROM forms WHERE id = $1`, fid.String())
	return scanSubmission(row)
}

func (s *Postgres) List(ctx context.Context, limit int) ([]form.Submission, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, form_type, status, data, created_at, updated_at
		FROM forms ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list forms")
	}
	defer rows.Close()

	var out []form.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, sub *form.Submission) error {
	data, err := json.Marshal(sub.Record)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode record")
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE forms SET form_type = $2, status = $3, data = $4, updated_at = $5
		WHERE id = $1`,
		sub.ID.String(), sub.FormType, sub.Status, data, sub.UpdatedAt)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update form")
	}
	if tag.RowsAffected() == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "form %s not found", sub.ID)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, fid id.FormID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM forms WHERE id = $1`, fid.String())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete form")
	}
	if tag.RowsAffected() == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "form %s not found", fid)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*form.Submission, error) {
	var (
		sub   form.Submission
		rawID string
		data  []byte
	)
	err := row.Scan(&rawID, &sub.FormType, &sub.Status, &data, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "form not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan form")
	}

	fid, err := id.ParseFormID(rawID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "parse form id")
	}
	sub.ID = fid

	if err := json.Unmarshal(data, &sub.Record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode record")
	}
	return &sub, nil
}
