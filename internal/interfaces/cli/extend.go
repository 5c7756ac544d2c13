package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/TextCoder/pkg/errors"
	codingtypes "github.com/turtacn/TextCoder/pkg/types/coding"
)

type extendOptions struct {
	basePreset string
	categories []string
	keywords   []string
	exceptions []string
	file       string
}

// NewExtendCmd proposes lexicon additions for a set of categories.
func NewExtendCmd() *cobra.Command {
	opts := &extendOptions{}
	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Propose lexicon extensions (inflections, spelling and hyphen variants)",
		Example: `  textcoder extend --category agent --keyword agent.supernatural_nouns=angel
  textcoder extend --base-preset temples@1.0.0 --category setting
  textcoder extend --file request.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtend(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.basePreset, "base-preset", "", "preset whose lexicons seed the proposals")
	f.StringSliceVar(&opts.categories, "category", nil, "category prefix to keep (repeatable; default all)")
	f.StringArrayVar(&opts.keywords, "keyword", nil, "extra term as dotted.key=term (repeatable)")
	f.StringArrayVar(&opts.exceptions, "exception", nil, "exception term as dotted.key=term (repeatable)")
	f.StringVarP(&opts.file, "file", "f", "", "read the request from a YAML or JSON file")
	return cmd
}

// parsePairs turns "a.b=term" flags into a dotted-key map.
func parsePairs(flag string, pairs []string) (map[string][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string][]string)
	for _, p := range pairs {
		key, term, ok := strings.Cut(p, "=")
		key, term = strings.TrimSpace(key), strings.TrimSpace(term)
		if !ok || key == "" || term == "" {
			return nil, errors.New(errors.ErrCodeValidation,
				fmt.Sprintf("--%s %q: expected dotted.key=term", flag, p))
		}
		out[key] = append(out[key], term)
	}
	return out, nil
}

func buildExtendRequest(opts *extendOptions) (codingtypes.ExtendRequest, error) {
	var req codingtypes.ExtendRequest
	if opts.file != "" {
		raw, err := os.ReadFile(opts.file)
		if err != nil {
			return req, errors.Wrap(err, errors.ErrCodeNotFound, "read request file").WithDetail("path=" + opts.file)
		}
		// YAML is a superset of JSON; yaml.v3 honours the yaml tags only, so
		// decode into a tagged mirror.
		var doc struct {
			BasePreset string              `yaml:"base_preset"`
			Categories []string            `yaml:"categories"`
			Keywords   map[string][]string `yaml:"keywords"`
			Exceptions map[string][]string `yaml:"exceptions"`
			Policy     map[string]any      `yaml:"policy"`
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return req, errors.Wrap(err, errors.ErrCodeValidation, "decode request file").WithDetail("path=" + opts.file)
		}
		req = codingtypes.ExtendRequest(doc)
	}

	if opts.basePreset != "" {
		req.BasePreset = opts.basePreset
	}
	req.Categories = append(req.Categories, opts.categories...)

	kw, err := parsePairs("keyword", opts.keywords)
	if err != nil {
		return req, err
	}
	ex, err := parsePairs("exception", opts.exceptions)
	if err != nil {
		return req, err
	}
	req.Keywords = mergePairs(req.Keywords, kw)
	req.Exceptions = mergePairs(req.Exceptions, ex)
	return req, nil
}

func mergePairs(dst, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
	return dst
}

func runExtend(cmd *cobra.Command, opts *extendOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	req, err := buildExtendRequest(opts)
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	var res *codingtypes.ExtendResult
	if cliCtx.Remote() {
		cl, err := cliCtx.Client()
		if err != nil {
			return err
		}
		if res, err = cl.ExtendLexicon(ctx, req); err != nil {
			return err
		}
	} else {
		deps, err := cliCtx.local()
		if err != nil {
			return err
		}
		if res, err = deps.extender.ExtendLexicon(req); err != nil {
			return err
		}
	}
	return printExtendResult(cmd, cliCtx.OutputFormat, res)
}

func printExtendResult(cmd *cobra.Command, format string, res *codingtypes.ExtendResult) error {
	if format == FormatJSON {
		return printJSON(cmd, res)
	}

	keys := make([]string, 0, len(res.Proposed))
	for k := range res.Proposed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	if format == FormatTable {
		var rows [][]string
		for _, k := range keys {
			for _, p := range res.Proposed[k] {
				rows = append(rows, []string{k, p.Term, p.Source, p.Base})
			}
		}
		renderTable(out, []string{"Category", "Term", "Source", "Base"}, rows)
	} else {
		for _, k := range keys {
			fmt.Fprintf(out, "%s:\n", k)
			for _, p := range res.Proposed[k] {
				fmt.Fprintf(out, "  %-28s %s <- %s\n", p.Term, p.Source, p.Base)
			}
		}
	}
	for _, c := range res.Conflicts {
		fmt.Fprintf(out, "conflict: %s\n", c)
	}
	for _, n := range res.Notes {
		fmt.Fprintf(out, "note: %s\n", n)
	}
	return nil
}

//Personal.AI order the ending
