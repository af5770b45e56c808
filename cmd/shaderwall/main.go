// Command shaderwall lists, validates and renders layered shader effects.
//
// Usage:
//
//	shaderwall list [--params]
//	shaderwall validate [file.wgsl...]
//	shaderwall render -c wall.yaml --frames 60 --out frames/
//	shaderwall watch --effects ./effects
//	shaderwall init wall.toml
//
// Effects are the bundled set plus every *.wgsl file in --effects.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderwall"
	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/effects"

	_ "github.com/gogpu/shaderwall/backend/native"
	_ "github.com/gogpu/shaderwall/backend/software"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every command.
type globals struct {
	effects  string
	pattern  string
	platform string
	bundled  bool
	debug    bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "shaderwall",
		Version:       shaderwall.Version,
		Short:         "Layer animated shader effects over a background image",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if g.debug {
				shaderwall.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}

	root.PersistentFlags().StringVarP(&g.effects, "effects", "e", "", "Directory of additional effect sources")
	root.PersistentFlags().StringVar(&g.pattern, "pattern", catalog.DefaultPattern, "File pattern for effect sources")
	root.PersistentFlags().StringVar(&g.platform, "platform", "", "Platform version effects must support, e.g. 3.3")
	root.PersistentFlags().BoolVar(&g.bundled, "bundled", true, "Include the bundled effects")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Log debug output to stderr")

	root.AddCommand(
		newListCmd(g),
		newValidateCmd(g),
		newRenderCmd(g),
		newWatchCmd(g),
		newInitCmd(),
	)
	return root
}

// sources returns the bundled sources followed by those of dir.
func (g *globals) sources(dir string) ([]catalog.Source, error) {
	var out []catalog.Source
	if g.bundled {
		out = append(out, effects.Sources()...)
	}
	if dir != "" {
		extra, err := catalog.DirSources(dir, g.pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, extra...)
	}
	return out, nil
}

// discover builds a catalog snapshot. dir and platform override the
// corresponding flags when non-empty.
func (g *globals) discover(dir, platform string) (*catalog.Snapshot, error) {
	if g.effects != "" {
		dir = g.effects
	}
	if g.platform != "" {
		platform = g.platform
	}
	sources, err := g.sources(dir)
	if err != nil {
		return nil, err
	}
	c := catalog.New(catalog.WithPlatformVersion(platform))
	return c.Discover(sources), nil
}
