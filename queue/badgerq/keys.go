package badgerq

import (
	"encoding/binary"
	"time"

	"github.com/mageshboopath1/live-esg/queue"
)

// Key prefixes for queue record families
const (
	readyPrefix = "esgq:r"
	leasePrefix = "esgq:l"
	deadPrefix  = "esgq:d"
	ackedPrefix = "esgq:c"
)

// makeKindPrefix generates the scan prefix for one record family and stage.
// Format: prefix:kind
func makeKindPrefix(prefix string, kind queue.Kind) []byte {
	buf := make([]byte, len(prefix)+2)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	buf[offset+1] = byte(kind)
	return buf
}

// makeReadyKey generates a key for a ready task. Ordering by (readyAt, seq)
// makes the oldest due task the first key in a prefix scan.
// Format: prefix:kind:readyAt:seq
func makeReadyKey(kind queue.Kind, readyAt time.Time, seq uint64) []byte {
	return makeTimedKey(readyPrefix, kind, readyAt, seq)
}

// makeLeaseKey generates a key for a leased task. Ordering by expiry lets
// the reclaim scan stop at the first live lease.
// Format: prefix:kind:expiresAt:seq
func makeLeaseKey(kind queue.Kind, expiresAt time.Time, seq uint64) []byte {
	return makeTimedKey(leasePrefix, kind, expiresAt, seq)
}

func makeTimedKey(prefix string, kind queue.Kind, at time.Time, seq uint64) []byte {
	kindPrefix := makeKindPrefix(prefix, kind)
	totalSize := len(kindPrefix) + 16 // 8 bytes for timestamp + 8 bytes for sequence
	buf := make([]byte, totalSize)
	offset := copy(buf, kindPrefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(at.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeDeadKey generates a key for a dead-lettered task, ordered by sequence.
// Format: prefix:kind:seq
func makeDeadKey(kind queue.Kind, seq uint64) []byte {
	kindPrefix := makeKindPrefix(deadPrefix, kind)
	buf := make([]byte, len(kindPrefix)+8)
	offset := copy(buf, kindPrefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeAckedKey generates the key of a stage's completed-task counter.
// Format: prefix:kind
func makeAckedKey(kind queue.Kind) []byte {
	return makeKindPrefix(ackedPrefix, kind)
}

// timeFromKey reads the timestamp field of a ready or lease key.
func timeFromKey(key []byte) time.Time {
	offset := len(key) - 16
	micros := int64(binary.BigEndian.Uint64(key[offset : offset+8]))
	return time.UnixMicro(micros).UTC()
}

// seqFromKey reads the sequence field that ends every ready, lease, and dead
// key. The sequence is unique for the life of the store, so a task keeps its
// identity as it moves between record families.
func seqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
