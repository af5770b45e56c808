package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/internal/wgsl"
)

func newValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Parse and compile effects",
		Long: `Validate parses the metadata of each effect and compiles the complete
WGSL module (generated prelude plus effect body). Without arguments every
catalog source is validated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sources []catalog.Source
			if len(args) > 0 {
				for _, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					sources = append(sources, catalog.Source{Ref: path, Text: string(data)})
				}
			} else {
				var err error
				if sources, err = g.sources(g.effects); err != nil {
					return err
				}
			}

			failed := 0
			for _, src := range sources {
				id, size, err := validateSource(src)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", src.Ref, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok    %s (%s, %d bytes SPIR-V)\n", id, src.Ref, size)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d effects failed validation", failed, len(sources))
			}
			return nil
		},
	}
}

func validateSource(src catalog.Source) (id string, size int, err error) {
	d, err := effect.Parse(src.Text, src.Ref)
	if err != nil {
		return "", 0, err
	}
	module, _, err := wgsl.EffectModule(d, src.Text)
	if err != nil {
		return d.ID, 0, err
	}
	size, err = wgsl.Validate(module)
	return d.ID, size, err
}
