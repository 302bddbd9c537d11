package utils

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns a short hex digest of data, used to detect changed song files.
func Checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
