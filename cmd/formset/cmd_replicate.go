package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
)

func newReplicateCmd(c *cli) *cobra.Command {
	var (
		target formset.Target
		times  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "replicate <file.html|->",
		Short: "Append renumbered copies of a formset's template entry",
		Long: `Clones the first entry of a formset container, clears its values,
renumbers prefix-index-field ids, names and label references to the next index,
appends it and writes the new count into the counter field.

The counter defaults to the container's data-counter attribute, then to the
management form id of --prefix:
  formset replicate page.html --container outcome-formset --prefix outcomes --times 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			document := formset.LooksLikeDocument(string(data))
			var root *html.Node
			if document {
				root, err = formset.ParseDocument(bytes.NewReader(data))
			} else {
				root, err = formset.ParseFragment(bytes.NewReader(data))
			}
			if err != nil {
				return err
			}

			result, err := formset.ReplicateIn(root, target, times)
			if err != nil {
				return fmt.Errorf("replicate %s: %w", target.Container, err)
			}
			if result.Drifted && times <= 1 {
				c.logger.Warn("Formset counter drifted from entry count",
					zap.String("container", target.Container),
					zap.Int("stored", result.StoredCount),
					zap.Int("entries", result.Index))
			}
			c.logger.Debug("Formset entries added",
				zap.String("container", target.Container),
				zap.Int("index", result.Index),
				zap.Int("count", result.Count))

			var buf bytes.Buffer
			if document {
				err = formset.RenderNode(&buf, root)
			} else {
				err = formset.RenderChildren(&buf, root)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}

	cmd.Flags().StringVar(&target.Container, "container", "", "Id of the formset container")
	cmd.Flags().StringVar(&target.Counter, "counter", "", "Id of the entry counter field")
	cmd.Flags().StringVar(&target.Prefix, "prefix", "", "Restrict renumbering to one formset prefix")
	cmd.Flags().StringVar(&target.EntryClass, "entry-class", "", "Class marking entry blocks (default formset-entry)")
	cmd.Flags().IntVarP(&times, "times", "n", 1, "Number of entries to append")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}
