package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/TextCoder/internal/domain/preset"
	"github.com/turtacn/TextCoder/pkg/errors"
	codingtypes "github.com/turtacn/TextCoder/pkg/types/coding"
)

// NewPresetsCmd groups preset maintenance commands.
func NewPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List and validate lexicon presets",
	}
	cmd.AddCommand(newPresetsListCmd(), newPresetsValidateCmd())
	return cmd
}

func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the preset keys (name@version) available for coding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			var keys []string
			if cliCtx.Remote() {
				cl, err := cliCtx.Client()
				if err != nil {
					return err
				}
				if keys, err = cl.ListPresets(ctx); err != nil {
					return err
				}
			} else {
				deps, err := cliCtx.local()
				if err != nil {
					return err
				}
				if _, err := deps.registry.Refresh(ctx); err != nil {
					return err
				}
				keys = deps.registry.List()
			}
			return printList(cmd, cliCtx.OutputFormat, "preset", keys)
		},
	}
}

func newPresetsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a preset document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeNotFound, "read preset file").WithDetail("path=" + args[0])
			}

			var res codingtypes.ValidationResult
			if cliCtx.Remote() {
				ctx, cancel := cliCtx.withTimeout(cmd.Context())
				defer cancel()
				cl, err := cliCtx.Client()
				if err != nil {
					return err
				}
				out, err := cl.ValidatePreset(ctx, raw)
				if err != nil {
					return err
				}
				res = *out
			} else {
				res = preset.Validate(raw)
			}
			return printValidation(cmd, cliCtx.OutputFormat, args[0], res)
		},
	}
}

// printValidation prints res and turns a failed validation into PRE_002 so
// the exit status reflects it.
func printValidation(cmd *cobra.Command, format, path string, res codingtypes.ValidationResult) error {
	switch format {
	case FormatJSON:
		if err := printJSON(cmd, res); err != nil {
			return err
		}
	case FormatTable:
		rows := [][]string{{"file", path}, {"ok", fmt.Sprint(res.OK)}}
		if !res.OK {
			rows = append(rows, []string{"error", res.Error}, []string{"path", strings.Join(res.Path, ".")})
		}
		renderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows)
	default:
		if res.OK {
			PrintSuccess(cmd, path+" is a valid preset")
		}
	}
	if res.OK {
		return nil
	}
	e := errors.New(errors.ErrCodePresetInvalid, res.Error)
	if len(res.Path) > 0 {
		e = e.WithDetail("path=" + strings.Join(res.Path, "."))
	}
	return e
}

//Personal.AI order the ending
