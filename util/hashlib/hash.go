// Package hashlib computes the checksums stored in snapshot headers.
// Checksums are SHA2-256 multihashes and travel as base58 strings.
package hashlib

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/multiformats/go-multihash"
)

const algo = multihash.SHA2_256

// Checksum is a multihash. A nil Checksum is valid and prints as "-".
type Checksum []byte

func (c Checksum) String() string {
	if c == nil {
		return "-"
	}

	return multihash.Multihash(c).B58String()
}

// Short returns the first 12 characters of String, enough for humans.
func (c Checksum) Short() string {
	full := c.String()
	if len(full) <= 12 {
		return full
	}

	return full[:12]
}

// Equal is true if both checksums have the same bytes; two nil checksums
// are equal, nil never equals a set checksum.
func (c Checksum) Equal(other Checksum) bool {
	if (c == nil) != (other == nil) {
		return false
	}

	return bytes.Equal(c, other)
}

// Parse reads a checksum in the form produced by String.
func Parse(b58 string) (Checksum, error) {
	mh, err := multihash.FromB58String(b58)
	if err != nil {
		return nil, err
	}

	dec, err := multihash.Decode(mh)
	if err != nil {
		return nil, err
	}

	if dec.Code != algo {
		return nil, fmt.Errorf("unsupported checksum algorithm: %s", dec.Name)
	}

	return Checksum(mh), nil
}

// Sum returns the checksum of `data`.
func Sum(data []byte) Checksum {
	d := NewDigest()
	d.Write(data)
	return d.Checksum()
}

// Digest accumulates everything written to it.
// The checksum does not depend on how the writes were split.
type Digest struct {
	hash hash.Hash
	size int64
}

// NewDigest returns an empty Digest.
func NewDigest() *Digest {
	return &Digest{hash: sha256.New()}
}

func (d *Digest) Write(buf []byte) (int, error) {
	d.size += int64(len(buf))
	return d.hash.Write(buf)
}

// Size is the number of bytes written so far.
func (d *Digest) Size() int64 {
	return d.size
}

// Checksum of the data written so far. Writing may continue afterwards.
func (d *Digest) Checksum() Checksum {
	mh, err := multihash.Encode(d.hash.Sum(nil), algo)
	if err != nil {
		// only fails for unknown codes or bad digest lengths.
		panic(fmt.Sprintf("hashlib: encode digest: %v", err))
	}

	return Checksum(mh)
}
