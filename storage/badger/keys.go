package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/mageshboopath1/live-esg/core"
)

// Key prefixes for different data types
const (
	documentPrefix      = "esgdoc"
	chunkPrefix         = "esgchk"
	chunkEmbeddedPrefix = "esgchke"
	indicatorPrefix     = "esgind"
	scorePrefix         = "esgsco"
)

// makeDocumentKey generates a key for a document by its derived ID.
func makeDocumentKey(key core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, key))
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:documentKey:index
func makeChunkKey(documentKey core.ID, index int) []byte {
	prefix := chunkPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for document key + 8 bytes for index
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentKey))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkKey generates a partial key for per-document chunk scans.
// Format: prefix:documentKey
func makePartialChunkKey(documentKey core.ID) []byte {
	prefix := chunkPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for document key
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentKey))
	return buf
}

// makeChunkEmbeddedKey generates a composite key for the embedded-chunk index.
// The index holds one entry per chunk with a written vector; its value is the
// embedding timestamp. Readiness checks count these entries.
// Format: prefix:documentKey:index
func makeChunkEmbeddedKey(documentKey core.ID, index int) []byte {
	prefix := chunkEmbeddedPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for document key + 8 bytes for index
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentKey))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkEmbeddedKey generates a partial key for embedded-index scans.
// Format: prefix:documentKey
func makePartialChunkEmbeddedKey(documentKey core.ID) []byte {
	prefix := chunkEmbeddedPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for document key
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentKey))
	return buf
}

// makeIndicatorKey generates a composite key for an extracted indicator.
// The code suffix makes per-document scans come back sorted by code, which
// the aggregator relies on for deterministic iteration.
// Format: prefix:documentKey:code
func makeIndicatorKey(documentKey core.ID, code string) []byte {
	prefix := indicatorPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(code)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentKey))
	offset += 8
	copy(buf[offset:], []byte(code))
	return buf
}

// makePartialIndicatorKey generates a partial key for per-document indicator scans.
// Format: prefix:documentKey
func makePartialIndicatorKey(documentKey core.ID) []byte {
	prefix := indicatorPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentKey))
	return buf
}

// makeScoreKey generates a key for a score by document key.
func makeScoreKey(documentKey core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", scorePrefix, documentKey))
}
