package hash

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"dupes-go/internal/mmap"
)

// HashFile computes the XXH64 (seed 0) of a file's whole content through a memory mapping.
func HashFile(path string) (uint64, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return xxhash.Sum64(f.Bytes()), nil
}

// Format renders a content hash as fixed-width lowercase hex.
func Format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// Parse is the inverse of Format.
func Parse(s string) (uint64, error) {
	sum, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return sum, nil
}

// XXHashFunc is a hash function adapter for go-merkletree.
// It converts []byte input to a big-endian xxHash []byte output.
func XXHashFunc(data []byte) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(data))
	return buf, nil
}
