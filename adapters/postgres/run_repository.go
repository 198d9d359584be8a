package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"policysim/domain/core"
	"policysim/domain/simulation"
	"policysim/internal/errors"
	"policysim/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepository stores simulation runs. Queries use ? placeholders and are
// rebound for the connected driver, so the same code serves Postgres and sqlite.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a run repository over an open connection
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepository{db: db}
}

// runRow is a row in the simulation_runs table
type runRow struct {
	ID          string    `db:"id"`
	Fingerprint string    `db:"fingerprint"`
	PolicyName  string    `db:"policy_name"`
	Badge       string    `db:"badge"`
	Payload     string    `db:"payload"`
	Result      string    `db:"result"`
	CreatedAt   time.Time `db:"created_at"`
}

const runColumns = `id, fingerprint, policy_name, badge, payload, result, created_at`

// Save persists a run
func (r *RunRepository) Save(ctx context.Context, run *simulation.Run) error {
	payload, err := json.Marshal(run.Payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode run payload")
	}
	result, err := json.Marshal(run.Result)
	if err != nil {
		return errors.Wrap(err, "failed to encode run result")
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO simulation_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), run.ID.String(), run.Fingerprint.String(), run.Payload.PolicyName, run.Result.Badge,
		string(payload), string(result), run.CreatedAt.UTC())
	if err != nil {
		return errors.DatabaseError("failed to save simulation run", err)
	}
	return nil
}

// List returns the most recent runs first
func (r *RunRepository) List(ctx context.Context, limit int) ([]*simulation.Run, error) {
	query := `SELECT ` + runColumns + ` FROM simulation_runs ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list simulation runs", err)
	}

	runs := make([]*simulation.Run, 0, len(rows))
	for _, row := range rows {
		run, err := row.toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(ctx context.Context, id core.RunID) (*simulation.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+runColumns+` FROM simulation_runs WHERE id = ?`), id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Run not found")
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load simulation run", err)
	}
	return row.toRun()
}

func (row runRow) toRun() (*simulation.Run, error) {
	run := &simulation.Run{
		ID:          core.RunID(row.ID),
		Fingerprint: core.Hash(row.Fingerprint),
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(row.Payload), &run.Payload); err != nil {
		return nil, errors.Wrapf(err, "run %s has an unreadable payload", row.ID)
	}
	if err := json.Unmarshal([]byte(row.Result), &run.Result); err != nil {
		return nil, errors.Wrapf(err, "run %s has an unreadable result", row.ID)
	}
	return run, nil
}
