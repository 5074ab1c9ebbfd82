package snapshot

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 hash of a marshaled snapshot.
type Digest [32]byte

// domainKey separates snapshot digests from any other BLAKE3 use.
var domainKey = [32]byte{
	'o', 'p', 'u', 's', '.', 's', 'n', 'a', 'p', 's', 'h', 'o', 't',
}

// Sum returns the keyed digest of data.
func Sum(data []byte) Digest {
	h, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("snapshot: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = h.Write(data)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// String returns the hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
