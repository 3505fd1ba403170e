package file

import "github.com/meigma/idcl/internal/restype"

// Re-export types from restype to avoid import changes throughout file.
type (
	Entry  = restype.Entry
	Method = restype.Method
)

// Re-export sentinel errors.
var (
	ErrTruncatedArchive = restype.ErrTruncatedArchive
	ErrSizeOverflow     = restype.ErrSizeOverflow
)
