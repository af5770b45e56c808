package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderwall/catalog"
)

func newWatchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the effects directory and report catalog changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.effects == "" {
				return fmt.Errorf("watch needs --effects")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			c := catalog.New(catalog.WithPlatformVersion(g.platform))
			err := c.Watch(ctx, g.effects, g.pattern, func(s *catalog.Snapshot) {
				fmt.Fprintf(out, "catalog: %d effects %v\n", s.Len(), s.IDs())
				for _, f := range s.Failures() {
					fmt.Fprintf(out, "  skipped %s: %v\n", f.Ref, f.Err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
