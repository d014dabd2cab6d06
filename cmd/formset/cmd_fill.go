package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/renderers/tui"
)

func newFillCmd(c *cli) *cobra.Command {
	var (
		formID string
		format string
		output string
		values []string
	)

	cmd := &cobra.Command{
		Use:   "fill <definitions.yaml>",
		Short: "Fill a form interactively in the terminal",
		Long: `Prompts for every field of a form, including each formset entry, and
prints the collected values. The default output is form-urlencoded with the
formset management fields, ready to POST:
  formset fill forms.yaml --form simulation --set outcomes.count=3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := tui.ParseOutputFormat(format)
			if err != nil {
				return err
			}

			form, err := loadForm(args[0], formID)
			if err != nil {
				return err
			}
			parsed, err := parseValues(values)
			if err != nil {
				return err
			}

			driver := c.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}
			renderer, err := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithOutputFormat(outputFormat),
			)
			if err != nil {
				return err
			}

			out, err := renderer.Render(cmd.Context(), form, render.RenderOptions{Values: parsed})
			if err != nil {
				return err
			}
			c.logger.Debug("Collected form values",
				zap.String("form", form.ID),
				zap.String("format", string(outputFormat)))
			if len(out) > 0 && out[len(out)-1] != '\n' {
				out = append(out, '\n')
			}
			return writeOutput(cmd, output, out)
		},
	}

	cmd.Flags().StringVarP(&formID, "form", "f", "", "Form id (optional when the file defines one form)")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatFormURLEncoded), "Output format: form, json or pretty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().StringArrayVar(&values, "set", nil, "Initial value as name=value (repeatable)")
	return cmd
}
