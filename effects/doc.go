// Package effects bundles the stock effect units shipped with shaderwall.
//
// Every effect is a WGSL source with a metadata block, embedded in the
// binary and exposed as an [fs.FS]. Importing the package also registers a
// CPU kernel per effect with the software backend, so the bundled effects
// render on every backend:
//
//	import _ "github.com/gogpu/shaderwall/effects"
//
//	snap := catalog.New().Discover(effects.Sources())
package effects
