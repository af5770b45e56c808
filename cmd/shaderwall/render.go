package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gogpu/shaderwall"
	"github.com/gogpu/shaderwall/backend"
	"github.com/gogpu/shaderwall/catalog"
	"github.com/gogpu/shaderwall/config"
	"github.com/gogpu/shaderwall/effect"
	"github.com/gogpu/shaderwall/gpucore"
	"github.com/gogpu/shaderwall/renderer"
)

type renderOptions struct {
	config     string
	backend    string
	background string
	layers     []string
	width      int
	height     int
	frames     int
	fps        float64
	start      float64
	out        string
}

func newRenderCmd(g *globals) *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames headlessly and write them as PNG files",
		Long: `Render draws frames without a window and writes them as PNG files.

Layers come from --config and from repeated --layer flags. An effect that
does not compile on the chosen backend is reported and its layer skipped.
The software backend runs only effects that have a Go kernel registered,
which the bundled effects do. User effects compile on --backend noop, which
produces no pixels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
	f.StringVar(&o.backend, "backend", backend.BackendSoftware, "Device backend")
	f.StringVarP(&o.background, "background", "b", "", "Background image (png, jpeg, webp, bmp)")
	f.StringArrayVarP(&o.layers, "layer", "l", nil, "Add a layer by effect id; repeatable")
	f.IntVar(&o.width, "width", config.DefaultWidth, "Surface width")
	f.IntVar(&o.height, "height", config.DefaultHeight, "Surface height")
	f.IntVarP(&o.frames, "frames", "n", 1, "Number of frames")
	f.Float64Var(&o.fps, "fps", 30, "Frames per second of the clock")
	f.Float64Var(&o.start, "start", 0, "Clock value of the first frame in seconds")
	f.StringVarP(&o.out, "out", "o", ".", "Output directory; empty renders without writing")
	return cmd
}

// warnUnrunnable reports active layers whose effect is in the catalog but
// did not compile on the device. Unknown effect ids were already reported
// by config.File.Requests.
func warnUnrunnable(w io.Writer, backendName string, r *renderer.Renderer, snap *catalog.Snapshot) {
	for _, l := range r.Programs().Active() {
		if _, ok := r.Programs().Lookup(l.ShaderID); ok {
			continue
		}
		if _, known := snap.Get(l.ShaderID); !known {
			continue
		}
		hint := ""
		if backendName == backend.BackendSoftware {
			hint = " (no Go kernel registered)"
		}
		fmt.Fprintf(w, "warning: effect %q cannot run on the %s backend%s; layer skipped\n", l.ShaderID, backendName, hint)
	}
}

// pixelReader is implemented by devices that can read back the surface.
type pixelReader interface {
	ReadPixels() *image.RGBA
}

func runRender(cmd *cobra.Command, g *globals, o *renderOptions) error {
	if o.frames < 1 || o.fps <= 0 {
		return fmt.Errorf("need at least one frame at a positive rate")
	}
	cfg := &config.File{Width: o.width, Height: o.height}
	if o.config != "" {
		var err error
		if cfg, err = config.Load(o.config); err != nil {
			return err
		}
		if cmd.Flags().Changed("width") {
			cfg.Width = o.width
		}
		if cmd.Flags().Changed("height") {
			cfg.Height = o.height
		}
	}
	if o.background != "" {
		cfg.Background = o.background
	}
	for _, id := range o.layers {
		cfg.Layers = append(cfg.Layers, config.Layer{Shader: id, Order: len(cfg.Layers)})
	}

	snap, err := g.discover(cfg.Effects, cfg.Platform)
	if err != nil {
		return err
	}
	layers, err := cfg.Requests(snap)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	opts := []renderer.Option{renderer.WithLayers(layers)}
	if cfg.Clear != "" {
		c, err := effect.DecodeColor(cfg.Clear)
		if err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		opts = append(opts, renderer.WithClearColor(gpucore.Color{R: c[0], G: c[1], B: c[2], A: c[3]}))
	}

	dev, err := backend.Open(o.backend, backend.Config{Logger: shaderwall.Logger()})
	if err != nil {
		return err
	}
	defer dev.Destroy()
	r := renderer.New(dev, snap, opts...)
	defer r.Release()

	if cfg.Background != "" {
		img, err := loadImage(cfg.Background)
		if err != nil {
			return err
		}
		r.SetBackground(cover(img, cfg.Width, cfg.Height))
	}
	if err := r.Setup(cfg.Width, cfg.Height); err != nil {
		return err
	}
	warnUnrunnable(cmd.ErrOrStderr(), o.backend, r, snap)

	reader, canRead := dev.(pixelReader)
	write := o.out != "" && canRead
	if o.out != "" && !canRead {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s backend cannot read pixels; no files written\n", o.backend)
	}
	if write {
		if err := os.MkdirAll(o.out, 0o755); err != nil {
			return err
		}
	}

	var rendered, skipped int
	for i := range o.frames {
		t := o.start + float64(i)/o.fps
		if err := r.RenderFrame(t); err != nil {
			return err
		}
		st := r.LastFrame()
		rendered += st.Rendered
		skipped += st.Skipped
		if !write {
			continue
		}
		name := filepath.Join(o.out, fmt.Sprintf("frame-%04d.png", i))
		if err := savePNG(name, reader.ReadPixels()); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d frames at %dx%d on %s: %d layer draws, %d skipped\n",
		o.frames, cfg.Width, cfg.Height, o.backend, rendered, skipped)
	return nil
}
