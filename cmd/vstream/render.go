package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstream/internal/errors"
	"github.com/vango-dev/vstream/pkg/export"
)

func renderCmd() *cobra.Command {
	var reconstruct bool

	cmd := &cobra.Command{
		Use:   "render <page>",
		Short: "Render a demo page to stdout",
		Long: `Render a demo page and print its chunks in the order they are
produced: the shell first, then one patch per resolved boundary.

With --reconstruct, print the document a browser ends up showing once
every patch has been applied.`,
		Example: `  vstream render suspense
  vstream render dashboard --reconstruct`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			site := newDemoSite(demoDelay)
			page, ok := site.lookup(args[0])
			if !ok {
				return errors.New("E142").
					WithDetail(fmt.Sprintf("No page named %q", args[0])).
					WithSuggestion("Available pages: " + strings.Join(site.names(), ", "))
			}

			tree, err := page.build(nil)
			if err != nil {
				return errors.New("E160").Wrap(err)
			}
			renderer := newRenderer(cfg, cfg.NewLogger(cmd.ErrOrStderr()), nil)
			doc, chunks, err := export.Resolve(cmd.Context(), renderer, tree)
			if err != nil {
				return errors.New("E160").Wrap(err)
			}

			out := cmd.OutOrStdout()
			if reconstruct {
				fmt.Fprintln(out, doc)
				return nil
			}
			for _, c := range chunks {
				fmt.Fprintf(out, "--- %s %d (%d bytes)\n%s\n", c.Kind, c.SlotID, len(c.Markup), c.Markup)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&reconstruct, "reconstruct", "r", false, "Print the final document instead of the chunks")

	return cmd
}
