package file

import (
	"fmt"

	"github.com/meigma/idcl/internal/sizing"
)

// ValidateForRead checks that an entry is safe to read from a source of the given size.
// It validates:
//   - Source size is non-negative
//   - Payload and decoded sizes are within maxFileSize (if limit > 0)
//   - Data offset + size doesn't overflow
//   - Data range is within source bounds
func ValidateForRead(entry *Entry, sourceSize int64, maxFileSize uint64) error {
	if sourceSize < 0 {
		return ErrSizeOverflow
	}

	if maxFileSize > 0 {
		if entry.DataSize > maxFileSize || entry.OriginalSize > maxFileSize {
			return fmt.Errorf("%w: entry of %d bytes exceeds limit %d", ErrSizeOverflow, max(entry.DataSize, entry.OriginalSize), maxFileSize)
		}
	}

	end, ok := sizing.AddUint64(entry.DataOffset, entry.DataSize)
	if !ok {
		return ErrSizeOverflow
	}
	if end > uint64(sourceSize) {
		return fmt.Errorf("%w: payload ends at %d, source is %d bytes", ErrTruncatedArchive, end, sourceSize)
	}
	return nil
}
