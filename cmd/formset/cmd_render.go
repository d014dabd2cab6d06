package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/renderers/vanilla"
)

func newRenderCmd(c *cli) *cobra.Command {
	var (
		formID    string
		document  bool
		output    string
		templates string
		values    []string
	)

	cmd := &cobra.Command{
		Use:   "render <definitions.yaml>",
		Short: "Render a form definition to HTML",
		Long: `Renders one form of a YAML definitions file with the vanilla renderer.

Values pre-populate fields; "<prefix>.count" requests a number of formset entries:
  formset render forms.yaml --form simulation --set name=Run --set outcomes.count=3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadForm(args[0], formID)
			if err != nil {
				return err
			}
			parsed, err := parseValues(values)
			if err != nil {
				return err
			}

			opts := []vanilla.Option{vanilla.WithDocument(document)}
			if templates != "" {
				opts = append(opts, vanilla.WithTemplatesDir(templates))
			}
			renderer, err := vanilla.New(opts...)
			if err != nil {
				return err
			}

			out, err := renderer.Render(cmd.Context(), form, render.RenderOptions{Values: parsed})
			if err != nil {
				return err
			}
			c.logger.Debug("Rendered form",
				zap.String("form", form.ID),
				zap.Int("bytes", len(out)))
			return writeOutput(cmd, output, out)
		},
	}

	cmd.Flags().StringVarP(&formID, "form", "f", "", "Form id (optional when the file defines one form)")
	cmd.Flags().BoolVar(&document, "document", true, "Wrap the form in a standalone HTML page")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().StringVar(&templates, "templates", "", "Directory overriding the embedded templates")
	cmd.Flags().StringArrayVar(&values, "set", nil, "Field value as name=value (repeatable)")
	return cmd
}
