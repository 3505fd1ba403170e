package dispatch

import (
	"bytes"
	"path"
	"strings"
)

// Kind is the decoder family an asset belongs to.
type Kind uint8

// Asset kinds.
const (
	KindRaw Kind = iota
	KindMesh
	KindImage
	KindContainer
	KindDecl
	KindTextureDB
	KindScript
)

var kindNames = [...]string{"raw", "mesh", "image", "container", "decl", "texdb", "script"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return KindRaw, false
}

// containerMagic starts every IDCL container.
var containerMagic = []byte("IDCL")

// Classify picks the Kind for an asset from its type tag, then its name's
// extension, then the leading bytes of its content.
func Classify(typeTag, name string, data []byte) Kind {
	switch strings.ToLower(typeTag) {
	case "bmd6model":
		return KindMesh
	case "image":
		return KindImage
	case "decl":
		return KindDecl
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".bmd6model":
		return KindMesh
	case ".bimage":
		return KindImage
	case ".resources", ".pack":
		return KindContainer
	case ".decl":
		return KindDecl
	case ".texdb":
		return KindTextureDB
	case ".script":
		return KindScript
	}

	if bytes.HasPrefix(data, containerMagic) {
		return KindContainer
	}
	return KindRaw
}
