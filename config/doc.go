// Package config loads host configuration files for shaderwall.
//
// A file names the effect directory, the background image, the surface
// size and the layer stack. YAML (.yaml, .yml) and TOML (.toml) are
// supported:
//
//	effects: ./effects
//	background: wallpaper.jpg
//	width: 1920
//	height: 1080
//	layers:
//	  - shader: snow
//	    order: 1
//	    opacity: 0.8
//	    params:
//	      u_speed: 0.6
//	      u_color: "#DDEEFF"
//
// Layer parameters are untyped in the file. File.Requests types them against
// the descriptors of a catalog snapshot.
package config
