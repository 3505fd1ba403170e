package dispatch

import (
	"fmt"
	"path"
	"strings"
)

// RawPath returns the output path for an entry written unchanged. Names
// whose last segment has no extension get ".file" appended so they cannot
// collide with a directory of the same name.
func RawPath(name string) string {
	if !strings.Contains(path.Base(name), ".") {
		return name + ".file"
	}
	return name
}

// CompressedPath returns the path used to keep an undecodable payload.
func CompressedPath(name string) string {
	return RawPath(name) + ".compressed"
}

// stem splits name into its directory and base name without extension.
func stem(name string) (string, string) {
	dir, base := path.Split(name)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return dir, base
}

// MeshPartPath returns the path of part n (1-based) of a model:
// <dir>/<stem>/<stem>_part<n>.<ext>.
func MeshPartPath(name string, n int, ext string) string {
	dir, s := stem(name)
	return fmt.Sprintf("%s%s/%s_part%d.%s", dir, s, s, n, ext)
}

// ImagePath returns the path of mip level k of an image. Level 0 is
// <dir>/<stem>.<ext>; later levels are <dir>/<stem>_mip<k>.<ext>.
func ImagePath(name string, k int, ext string) string {
	dir, s := stem(name)
	if k == 0 {
		return fmt.Sprintf("%s%s.%s", dir, s, ext)
	}
	return fmt.Sprintf("%s%s_mip%d.%s", dir, s, k, ext)
}
