// Package run models a persisted coding run: one POST /code call, one batch
// file or one worker job.
package run

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// Source tells where a run came from.
type Source string

const (
	SourceAPI    Source = "api"
	SourceBatch  Source = "batch"
	SourceWorker Source = "worker"
)

// CodingRun is the header of a run.
type CodingRun struct {
	ID                 uuid.UUID `json:"id"`
	Source             Source    `json:"source"`
	Preset             string    `json:"preset,omitempty"`
	PresetVersion      string    `json:"preset_version"`
	EngineVersion      string    `json:"engine_version"`
	LexiconFingerprint string    `json:"lexicon_fingerprint"`
	RowCount           int       `json:"row_count"`
	CreatedAt          time.Time `json:"created_at"`
	Rows               []RunRow  `json:"rows,omitempty"`
}

// RunRow is one coded text of a run. The text itself is not stored, only
// its digest.
type RunRow struct {
	Position   int           `json:"position"`
	Row        int           `json:"row"`
	NewID      *string       `json:"new_id,omitempty"`
	TextSHA256 string        `json:"text_sha256"`
	Coded      coding.Result `json:"coded"`
}

// NewCodingRun assembles a run from the request rows and their results,
// which must be index-aligned.
func NewCodingRun(src Source, preset, presetVersion, engineVersion, fingerprint string, in []coding.InRow, out []coding.CodedRow) *CodingRun {
	r := &CodingRun{
		ID:                 uuid.New(),
		Source:             src,
		Preset:             preset,
		PresetVersion:      presetVersion,
		EngineVersion:      engineVersion,
		LexiconFingerprint: fingerprint,
		RowCount:           len(out),
		CreatedAt:          time.Now().UTC(),
		Rows:               make([]RunRow, len(out)),
	}
	for i := range out {
		rr := RunRow{Position: i, Row: out[i].Row, Coded: out[i].Coded}
		if i < len(in) {
			rr.NewID = in[i].NewID
			rr.TextSHA256 = TextDigest(in[i].Text)
		}
		r.Rows[i] = rr
	}
	return r
}

// TextDigest returns the hex sha256 of text.
func TextDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Repository persists runs.
type Repository interface {
	Save(ctx context.Context, r *CodingRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*CodingRun, error)
	List(ctx context.Context, limit int) ([]*CodingRun, error)
}

//Personal.AI order the ending
