package effects

import (
	"embed"
	"io/fs"

	"github.com/gogpu/shaderwall/catalog"
)

//go:embed *.wgsl
var files embed.FS

// Bundled effect ids.
const (
	Gradient = "gradient"
	Plasma   = "plasma"
	Snow     = "snow"
	Vignette = "vignette"
)

// FS returns the bundled effect sources.
func FS() fs.FS { return files }

// Sources returns the bundled effect sources, sorted by file name, ready
// for catalog.Discover.
func Sources() []catalog.Source {
	src, err := catalog.FSSources(files, catalog.DefaultPattern)
	if err != nil {
		// The embedded tree is fixed at build time.
		panic("effects: " + err.Error())
	}
	return src
}
