// Package version identifies the library build. The string is stamped into
// the vxb_meta table of every container file this library writes.
package version

var (
	// Version is the current library version
	Version = "0.3.0"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
)

// Creator returns the creator string recorded in written container files.
func Creator() string {
	return "voxcache " + Version
}
