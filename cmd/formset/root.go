package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/renderers/tui"
)

// cli carries state shared by every command.
type cli struct {
	verbose bool
	logger  *zap.Logger
	// driver overrides the survey prompts; tests inject a scripted one.
	driver tui.PromptDriver
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "formset",
		Short: "Render and replicate repeatable form entries",
		Long: `formset renders form definitions containing repeatable sub-forms
("formsets") and performs entry replication on HTML documents: the template
entry is cloned, its values cleared, every prefix-index-field reference
renumbered and the entry counter updated.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newRenderCmd(c),
		newReplicateCmd(c),
		newFillCmd(c),
		newInitCmd(c),
		newServeCmd(c),
	)
	return root
}

// loadForm picks the form with id from a definitions file. An empty id is
// accepted when the file holds exactly one form.
func loadForm(path, id string) (model.Form, error) {
	forms, err := model.LoadFile(path)
	if err != nil {
		return model.Form{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		if len(forms) == 1 {
			return forms[0], nil
		}
		return model.Form{}, fmt.Errorf("%s defines %d forms, pick one with --form (%s)", path, len(forms), formIDs(forms))
	}
	for _, form := range forms {
		if form.ID == id {
			return form, nil
		}
	}
	return model.Form{}, fmt.Errorf("form %q not found in %s (%s)", id, path, formIDs(forms))
}

func formIDs(forms []model.Form) string {
	ids := make([]string, len(forms))
	for i, form := range forms {
		ids[i] = form.ID
	}
	return strings.Join(ids, ", ")
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or the command output when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// parseValues turns repeated name=value flags into render values.
func parseValues(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid value %q, expected name=value", pair)
		}
		values[name] = value
	}
	return values, nil
}
