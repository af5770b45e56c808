package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderwall/config"
	"github.com/gogpu/shaderwall/effects"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write a sample configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, err := config.FormatOf(path)
			if err != nil {
				return err
			}
			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if err != nil {
				return err
			}
			if err := sampleConfig().Encode(f, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func sampleConfig() *config.File {
	opacity := 0.8
	return &config.File{
		Width:  config.DefaultWidth,
		Height: config.DefaultHeight,
		Clear:  "#101820",
		Layers: []config.Layer{
			{
				Shader: effects.Gradient,
				Params: map[string]any{"u_top": "#1B2A49", "u_bottom": "#0B0F1A"},
			},
			{
				Shader:  effects.Snow,
				Order:   1,
				Opacity: &opacity,
				Params:  map[string]any{"u_speed": 0.5, "u_wind": 0.2},
			},
		},
	}
}
