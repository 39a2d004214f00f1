package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"olea/internal/prediction/models"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

// Postgres persists outcomes in the predictions table. Result and
// explanation payloads are stored as jsonb.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the predictions table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS predictions (
			id            UUID PRIMARY KEY,
			form_id       UUID,
			model_version TEXT NOT NULL,
			result        JSONB NOT NULL,
			confidence    DOUBLE PRECISION NOT NULL,
			explanation   JSONB,
			created_at    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "migrate predictions table")
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, outcome *models.Outcome) error {
	result, err := json.Marshal(outcome.Result)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode result")
	}

	var explanation []byte
	if outcome.Explanation != nil {
		explanation, err = json.Marshal(outcome.Explanation)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encode explanation")
		}
	}

	var formID any
	if !outcome.FormID.IsNil() {
		formID = outcome.FormID.String()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO predictions (id, form_id, model_version, result, confidence, explanation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		outcome.ID.String(), formID, outcome.ModelVersion,
		result, outcome.Confidence, explanation, outcome.CreatedAt)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert prediction")
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, pid id.PredictionID) (*models.Outcome, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, form_id, model_version, result, confidence, explanation, created_at
		FROM predictions WHERE id = $1`, pid.String())

	return scanOutcome(row)
}

func (s *Postgres) List(ctx context.Context, limit int) ([]models.Outcome, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, form_id, model_version, result, confidence, explanation, created_at
		FROM predictions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list predictions")
	}
	defer rows.Close()

	var out []models.Outcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *outcome)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutcome(row rowScanner) (*models.Outcome, error) {
	var (
		outcome     models.Outcome
		rawID       string
		formID      *string
		result      []byte
		explanation []byte
	)
	err := row.Scan(&rawID, &formID, &outcome.ModelVersion, &result,
		&outcome.Confidence, &explanation, &outcome.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "prediction not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan prediction")
	}

	pid, err := id.ParsePredictionID(rawID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "parse prediction id")
	}
	outcome.ID = pid

	if formID != nil {
		fid, err := id.ParseFormID(*formID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "parse form id")
		}
		outcome.FormID = fid
	}
	if err := json.Unmarshal(result, &outcome.Result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode result")
	}
	if len(explanation) > 0 {
		outcome.Explanation = &models.Explanation{}
		if err := json.Unmarshal(explanation, outcome.Explanation); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode explanation")
		}
	}
	return &outcome, nil
}
