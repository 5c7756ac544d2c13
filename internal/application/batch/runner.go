// Package batch codes a CSV or .xlsx file row by row and writes the input columns
// followed by the coding columns.
package batch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/TextCoder/internal/domain/run"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/internal/infrastructure/storage/minio"
	"github.com/turtacn/TextCoder/internal/intelligence/rules"
	"github.com/turtacn/TextCoder/pkg/errors"
	"github.com/turtacn/TextCoder/pkg/types/coding"
)

// Defaults for Options and Runner.
const (
	DefaultTextColumn = "text"
	DefaultOutputDir  = "data/processed"
	newIDColumn       = "new_id"
)

// Coder is the part of the coding service a batch needs.
type Coder interface {
	Engine(presetKey string) (*rules.Engine, string, error)
	EngineVersion() string
	CodeText(ctx context.Context, e *rules.Engine, src run.Source, presetKey, text string) coding.Result
	Record(ctx context.Context, src run.Source, presetKey, presetVersion, fingerprint string, rows []coding.InRow, results []coding.CodedRow) string
}

// Uploader stores exports in object storage.
type Uploader interface {
	UploadFile(ctx context.Context, localPath, key string, metadata map[string]string) (*minio.UploadResult, error)
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Options describe one batch run.
type Options struct {
	InPath     string
	TextColumn string
	OutPath    string
	Preset     string
	Upload     bool
}

// Report summarises a finished batch.
type Report struct {
	InPath        string `json:"in_path"`
	OutPath       string `json:"out_path"`
	Rows          int    `json:"rows"`
	PresetVersion string `json:"preset_version"`
	RunID         string `json:"run_id,omitempty"`
	ObjectKey     string `json:"object_key,omitempty"`
	DownloadURL   string `json:"download_url,omitempty"`
}

// Runner executes batches.
type Runner struct {
	coder       Coder
	uploader    Uploader
	logger      logging.Logger
	concurrency int
	outputDir   string
	now         func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithUploader enables Options.Upload.
func WithUploader(u Uploader) RunnerOption {
	return func(r *Runner) { r.uploader = u }
}

// WithConcurrency bounds the number of rows coded at once.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithOutputDir sets the directory of default output paths.
func WithOutputDir(dir string) RunnerOption {
	return func(r *Runner) {
		if dir != "" {
			r.outputDir = dir
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner returns a Runner coding through coder.
func NewRunner(coder Coder, opts ...RunnerOption) *Runner {
	r := &Runner{
		coder:       coder,
		logger:      logging.NewNopLogger(),
		concurrency: runtime.GOMAXPROCS(0),
		outputDir:   DefaultOutputDir,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultOutputPath returns dir/coded_<stem>.csv for the input path.
func DefaultOutputPath(dir, inPath string) string {
	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "coded_"+stem+".csv")
}

// csvPath forces a .csv extension on p.
func csvPath(p string) string {
	if strings.EqualFold(filepath.Ext(p), ".csv") {
		return p
	}
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".csv"
}

// Run codes opts.InPath and writes the result.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.TextColumn == "" {
		opts.TextColumn = DefaultTextColumn
	}
	if opts.Upload && r.uploader == nil {
		return nil, errors.New(errors.ErrCodeValidation, "upload requested but object storage is disabled")
	}

	table, err := r.read(opts.InPath)
	if err != nil {
		return nil, err
	}
	col := table.Column(opts.TextColumn)
	if col < 0 {
		return nil, errors.New(errors.ErrCodeUnknownTextColumn, "Missing column: "+opts.TextColumn).
			WithDetail("columns=" + strings.Join(table.Header, ","))
	}

	engine, presetVersion, err := r.coder.Engine(opts.Preset)
	if err != nil {
		return nil, err
	}

	rows := make([]coding.InRow, len(table.Records))
	idCol := table.Column(newIDColumn)
	for i, rec := range table.Records {
		rows[i] = coding.InRow{Row: i, Text: rec[col]}
		if idCol >= 0 && rec[idCol] != "" {
			id := rec[idCol]
			rows[i].NewID = &id
		}
	}

	start := time.Now()
	results, err := r.code(ctx, engine, opts.Preset, presetVersion, rows)
	if err != nil {
		return nil, err
	}
	runID := r.coder.Record(ctx, run.SourceBatch, opts.Preset, presetVersion, engine.Fingerprint(), rows, results)

	outPath := opts.OutPath
	if outPath == "" {
		outPath = DefaultOutputPath(r.outputDir, opts.InPath)
	}
	outPath = csvPath(outPath)
	if err := r.write(outPath, table, results); err != nil {
		return nil, err
	}

	rep := &Report{
		InPath:        opts.InPath,
		OutPath:       outPath,
		Rows:          len(rows),
		PresetVersion: presetVersion,
		RunID:         runID,
	}
	r.logger.Info("batch coded",
		logging.String("in", opts.InPath),
		logging.String("out", outPath),
		logging.Int("rows", len(rows)),
		logging.Duration("elapsed", time.Since(start)))

	if opts.Upload {
		if err := r.upload(ctx, rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func (r *Runner) read(path string) (*Table, error) {
	var parse func(io.Reader) (*Table, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		parse = ReadTable
	case ".xlsx":
		parse = ReadWorkbook
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "Unsupported file type: %s", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeNotFound, "input file not found: "+path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "cannot open "+path)
	}
	defer f.Close()
	return parse(f)
}

// code analyses rows concurrently; results keep the input order.
func (r *Runner) code(ctx context.Context, e *rules.Engine, presetKey, presetVersion string, rows []coding.InRow) ([]coding.CodedRow, error) {
	results := make([]coding.CodedRow, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	version := r.coder.EngineVersion()

	for i := range rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = coding.CodedRow{
				Row:           rows[i].Row,
				CodeVersion:   version,
				PresetVersion: presetVersion,
				Coded:         r.coder.CodeText(gctx, e, run.SourceBatch, presetKey, rows[i].Text),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCodingFailed, "batch coding interrupted")
	}
	return results, nil
}

func (r *Runner) write(path string, table *Table, results []coding.CodedRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "cannot create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "cannot create "+path)
	}

	header := append(append([]string{}, table.Header...), coding.OutputColumns...)
	records := make([][]string, len(table.Records))
	for i, rec := range table.Records {
		records[i] = append(append(make([]string, 0, len(header)), rec[:len(table.Header)]...), results[i].Coded.Values()...)
	}
	if err := WriteTable(f, header, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "cannot close "+path)
	}
	return nil
}

func (r *Runner) upload(ctx context.Context, rep *Report) error {
	key := minio.ExportKey(rep.OutPath, r.now())
	meta := map[string]string{
		"preset-version": rep.PresetVersion,
		"code-version":   r.coder.EngineVersion(),
	}
	if rep.RunID != "" {
		meta["run-id"] = rep.RunID
	}
	if _, err := r.uploader.UploadFile(ctx, rep.OutPath, key, meta); err != nil {
		return err
	}
	rep.ObjectKey = key
	u, err := r.uploader.PresignedGetURL(ctx, key, 0)
	if err != nil {
		return err
	}
	rep.DownloadURL = u
	return nil
}

//Personal.AI order the ending
