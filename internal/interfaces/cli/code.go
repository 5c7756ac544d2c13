package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/TextCoder/internal/application/batch"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
)

type codeOptions struct {
	in          string
	textCol     string
	out         string
	preset      string
	upload      bool
	concurrency int
}

// NewCodeCmd codes every row of a CSV file.
func NewCodeCmd() *cobra.Command {
	opts := &codeOptions{}
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Code a CSV file and write the input columns plus the coded columns",
		Example: `  textcoder code --in data/raw/accounts.csv
  textcoder code --in accounts.csv --text-col narrative --out coded.csv --preset temples@1.0.0
  textcoder code --in accounts.csv --upload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCode(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "", "input .csv or .xlsx file (required)")
	f.StringVar(&opts.textCol, "text-col", "", "column holding the text (default from config, then \"text\")")
	f.StringVar(&opts.out, "out", "", "output CSV path (default: <output_dir>/coded_<stem>.csv)")
	f.StringVar(&opts.preset, "preset", "", "preset key name@version (default: base lexicon)")
	f.BoolVar(&opts.upload, "upload", false, "upload the export to object storage and print a download link")
	f.IntVar(&opts.concurrency, "concurrency", 0, "parallel coders (default from config)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runCode(cmd *cobra.Command, opts *codeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	deps, err := cliCtx.local()
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	bc := cliCtx.Config.Batch
	concurrency := bc.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}
	textCol := opts.textCol
	if textCol == "" {
		textCol = bc.TextColumn
	}

	runnerOpts := []batch.RunnerOption{
		batch.WithConcurrency(concurrency),
		batch.WithOutputDir(bc.OutputDir),
		batch.WithLogger(cliCtx.Logger.Named("batch")),
	}
	if opts.upload {
		up, err := cliCtx.uploader(ctx)
		if err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, batch.WithUploader(up))
	}

	runner := batch.NewRunner(deps.service, runnerOpts...)
	rep, err := runner.Run(ctx, batch.Options{
		InPath:     opts.in,
		TextColumn: textCol,
		OutPath:    opts.out,
		Preset:     opts.preset,
		Upload:     opts.upload,
	})
	if err != nil {
		return err
	}
	cliCtx.Logger.Info("batch finished",
		logging.String("in", rep.InPath),
		logging.String("out", rep.OutPath),
		logging.Int("rows", rep.Rows))

	switch cliCtx.OutputFormat {
	case FormatJSON:
		return printJSON(cmd, rep)
	case FormatTable:
		rows := [][]string{
			{"input", rep.InPath},
			{"output", rep.OutPath},
			{"rows", strconv.Itoa(rep.Rows)},
			{"preset_version", rep.PresetVersion},
		}
		if rep.DownloadURL != "" {
			rows = append(rows, []string{"object", rep.ObjectKey}, []string{"download", rep.DownloadURL})
		}
		renderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows)
		return nil
	default:
		PrintSuccess(cmd, fmt.Sprintf("coded %d rows from %s -> %s", rep.Rows, rep.InPath, rep.OutPath))
		if rep.DownloadURL != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Download: %s\n", rep.DownloadURL)
		}
		return nil
	}
}

//Personal.AI order the ending
