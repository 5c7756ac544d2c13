package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/pkg/errors"
	codingtypes "github.com/turtacn/TextCoder/pkg/types/coding"
)

type analyzeOptions struct {
	preset string
	file   string
}

// NewAnalyzeCmd codes a single text given as arguments, --file or stdin.
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Code a single text and print every dimension with its reason",
		Example: `  textcoder analyze "I saw an angel standing at the foot of my bed"
  echo "a voice called my name" | textcoder analyze -o json
  textcoder analyze --file account.txt --preset temples@1.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.preset, "preset", "", "preset key name@version (default: base lexicon)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the text from a file")
	return cmd
}

func readAnalyzeText(cmd *cobra.Command, opts *analyzeOptions, args []string) (string, error) {
	switch {
	case len(args) > 0 && opts.file != "":
		return "", errors.New(errors.ErrCodeValidation, "give the text either as arguments or with --file, not both")
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case opts.file != "":
		raw, err := os.ReadFile(opts.file)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeNotFound, "read text file").WithDetail("path=" + opts.file)
		}
		return string(raw), nil
	default:
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeBadRequest, "read stdin")
		}
		return string(raw), nil
	}
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	text, err := readAnalyzeText(cmd, opts, args)
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	res, err := analyzeText(ctx, cliCtx, opts.preset, text)
	if err != nil {
		return err
	}
	cliCtx.Logger.Debug("text analyzed",
		logging.String("preset", opts.preset),
		logging.Int("chars", len(text)),
		logging.Strings("positives", res.Positives()))
	return printResult(cmd, cliCtx.OutputFormat, res)
}

func analyzeText(ctx context.Context, cliCtx *CLIContext, preset, text string) (codingtypes.Result, error) {
	if cliCtx.Remote() {
		cl, err := cliCtx.Client()
		if err != nil {
			return codingtypes.Result{}, err
		}
		resp, err := cl.CodeTexts(ctx, preset, text)
		if err != nil {
			return codingtypes.Result{}, err
		}
		if len(resp.Results) != 1 {
			return codingtypes.Result{}, errors.New(errors.ErrCodeCodingFailed, "server returned an unexpected number of results")
		}
		return resp.Results[0].Coded, nil
	}

	deps, err := cliCtx.local()
	if err != nil {
		return codingtypes.Result{}, err
	}
	return deps.service.Analyze(ctx, preset, text)
}

//Personal.AI order the ending
