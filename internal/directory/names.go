package directory

import (
	"fmt"
	"path"
	"strings"
)

// nameSuffixes mark streaming and grouping annotations appended to names.
var nameSuffixes = []string{"_lodgroup=", "_streamdb=", "_group="}

var unsafeChars = strings.NewReplacer(
	"$", "_", "#", "_", "<", "_", ">", "_", ":", "_",
	"|", "_", "?", "_", "*", "_", `"`, "_",
)

// NormalizeName turns a stored resource name into a safe relative path.
//
// Grouping annotations are cut, an extension carrying a "_" suffix is
// trimmed to its first part, characters that are invalid in file names
// become "_", and backslashes become forward slashes. Empty, "." and ".."
// segments are dropped. An empty result falls back to file_<index>.dat.
func NormalizeName(raw string, index int) string {
	name := raw
	for _, suffix := range nameSuffixes {
		if i := strings.Index(name, suffix); i >= 0 {
			name = name[:i]
		}
	}
	if dot := strings.LastIndexByte(name, '.'); dot > strings.LastIndexAny(name, `/\`) {
		if us := strings.IndexByte(name[dot+1:], '_'); us >= 0 {
			name = name[:dot+1+us]
		}
	}
	name = unsafeChars.Replace(name)
	name = strings.ReplaceAll(name, `\`, "/")

	segments := strings.Split(name, "/")
	kept := segments[:0]
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return FallbackName(index)
	}
	return path.Join(kept...)
}

// FallbackName is the identifier used for entries without a name.
func FallbackName(index int) string {
	return fmt.Sprintf("file_%08d.dat", index)
}
