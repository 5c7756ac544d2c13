package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/turtacn/TextCoder/internal/domain/run"
	"github.com/turtacn/TextCoder/internal/infrastructure/database/postgres"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
)

const defaultListLimit = 50

type postgresCodingRunRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresCodingRunRepo returns a run.Repository over conn.
func NewPostgresCodingRunRepo(conn *postgres.Connection, log logging.Logger) run.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresCodingRunRepo{conn: conn, log: log}
}

func (r *postgresCodingRunRepo) Save(ctx context.Context, cr *run.CodingRun) error {
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO coding_runs (
				id, source, preset, preset_version, engine_version, lexicon_fingerprint, row_count, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			cr.ID, string(cr.Source), cr.Preset, cr.PresetVersion, cr.EngineVersion,
			cr.LexiconFingerprint, cr.RowCount, cr.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert coding run")
		}
		for _, row := range cr.Rows {
			coded, err := json.Marshal(row.Coded)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode coded row")
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO coded_rows (run_id, position, row_num, new_id, text_sha256, coded)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				cr.ID, row.Position, row.Row, nullString(row.NewID), row.TextSHA256, coded,
			)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert coded row")
			}
		}
		r.log.Debug("coding run saved",
			logging.String("run_id", cr.ID.String()),
			logging.Int("rows", len(cr.Rows)))
		return nil
	})
}

func (r *postgresCodingRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*run.CodingRun, error) {
	db := r.conn.DB()
	cr, err := scanRun(db.QueryRowContext(ctx, `
		SELECT id, source, preset, preset_version, engine_version, lexicon_fingerprint, row_count, created_at
		FROM coding_runs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeRunNotFound, "coding run not found").WithDetail("id=" + id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load coding run")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT position, row_num, new_id, text_sha256, coded
		FROM coded_rows WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load coded rows")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rr    run.RunRow
			newID sql.NullString
			coded []byte
		)
		if err := rows.Scan(&rr.Position, &rr.Row, &newID, &rr.TextSHA256, &coded); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan coded row")
		}
		if newID.Valid {
			v := newID.String
			rr.NewID = &v
		}
		if err := json.Unmarshal(coded, &rr.Coded); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode coded row")
		}
		cr.Rows = append(cr.Rows, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate coded rows")
	}
	return cr, nil
}

func (r *postgresCodingRunRepo) List(ctx context.Context, limit int) ([]*run.CodingRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT id, source, preset, preset_version, engine_version, lexicon_fingerprint, row_count, created_at
		FROM coding_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list coding runs")
	}
	defer rows.Close()

	var out []*run.CodingRun
	for rows.Next() {
		cr, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan coding run")
		}
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate coding runs")
	}
	return out, nil
}

func scanRun(s scanner) (*run.CodingRun, error) {
	var (
		cr     run.CodingRun
		source string
	)
	if err := s.Scan(&cr.ID, &source, &cr.Preset, &cr.PresetVersion, &cr.EngineVersion,
		&cr.LexiconFingerprint, &cr.RowCount, &cr.CreatedAt); err != nil {
		return nil, err
	}
	cr.Source = run.Source(source)
	return &cr, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

//Personal.AI order the ending
