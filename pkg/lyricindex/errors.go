package lyricindex

import "github.com/himanishpuri/LyricIndex/internal/domain"

type (
	UnknownFormatError     = domain.UnknownFormatError
	InvalidFormatError     = domain.InvalidFormatError
	IOError                = domain.IOError
	IndexCorruptionWarning = domain.IndexCorruptionWarning
)

// Sentinel errors - use with errors.Is()
var (
	ErrUnknownFormat = domain.ErrUnknownFormat
	ErrInvalidFormat = domain.ErrInvalidFormat
	ErrNotFound      = domain.ErrNotFound
	ErrClosed        = domain.ErrClosed
)
