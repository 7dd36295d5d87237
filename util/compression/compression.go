// Package compression wraps the block compression algorithms that can be
// used for snapshots. Packed buffers carry a small magic prefix, so the
// algorithm can be detected when unpacking.
package compression

import (
	"bytes"
	"errors"

	"github.com/bkaradzic/go-lz4"
	"github.com/golang/snappy"
)

var (
	// ErrBadAlgo is returned on a unsupported/unknown algorithm.
	ErrBadAlgo = errors.New("invalid algorithm type")
)

// AlgorithmType identifies a compression algorithm.
type AlgorithmType uint8

const (
	// AlgoNone stores the data as-is.
	AlgoNone = AlgorithmType(iota)
	// AlgoSnappy uses github.com/golang/snappy.
	AlgoSnappy
	// AlgoLZ4 uses github.com/bkaradzic/go-lz4.
	AlgoLZ4
)

// MagicSize is the length of the prefix written by Pack.
const MagicSize = 4

// Algorithm is the common interface for all supported algorithms.
type Algorithm interface {
	Encode([]byte) ([]byte, error)
	Decode([]byte) ([]byte, error)
}

type noneAlgo struct{}
type snappyAlgo struct{}
type lz4Algo struct{}

var (
	algoMap = map[AlgorithmType]Algorithm{
		AlgoNone:   noneAlgo{},
		AlgoSnappy: snappyAlgo{},
		AlgoLZ4:    lz4Algo{},
	}

	algoToString = map[AlgorithmType]string{
		AlgoNone:   "none",
		AlgoSnappy: "snappy",
		AlgoLZ4:    "lz4",
	}

	stringToAlgo = map[string]AlgorithmType{
		"":       AlgoNone,
		"none":   AlgoNone,
		"snappy": AlgoSnappy,
		"lz4":    AlgoLZ4,
	}

	// Plain snapshots start with '{' or a YAML key, never with 0x00.
	algoToMagic = map[AlgorithmType][]byte{
		AlgoSnappy: {0x00, 'a', 'r', 's'},
		AlgoLZ4:    {0x00, 'a', 'r', 'l'},
	}
)

func (a noneAlgo) Encode(src []byte) ([]byte, error) {
	return src, nil
}

func (a noneAlgo) Decode(src []byte) ([]byte, error) {
	return src, nil
}

func (a snappyAlgo) Encode(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (a snappyAlgo) Decode(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

func (a lz4Algo) Encode(src []byte) ([]byte, error) {
	return lz4.Encode(nil, src)
}

func (a lz4Algo) Decode(src []byte) ([]byte, error) {
	return lz4.Decode(nil, src)
}

// AlgorithmFromType returns a interface to the given AlgorithmType.
func AlgorithmFromType(a AlgorithmType) (Algorithm, error) {
	if algo, ok := algoMap[a]; ok {
		return algo, nil
	}

	return nil, ErrBadAlgo
}

func (a AlgorithmType) String() string {
	name, ok := algoToString[a]
	if !ok {
		return "unknown algorithm"
	}

	return name
}

// AlgoFromString tries to convert a string to AlgorithmType.
// The empty string means AlgoNone.
func AlgoFromString(s string) (AlgorithmType, error) {
	algoType, ok := stringToAlgo[s]
	if !ok {
		return 0, ErrBadAlgo
	}

	return algoType, nil
}

// Pack compresses `data` with `algo` and prepends the magic prefix.
// AlgoNone returns `data` unchanged.
func Pack(algo AlgorithmType, data []byte) ([]byte, error) {
	impl, err := AlgorithmFromType(algo)
	if err != nil {
		return nil, err
	}

	if algo == AlgoNone {
		return data, nil
	}

	encoded, err := impl.Encode(data)
	if err != nil {
		return nil, err
	}

	packed := make([]byte, 0, MagicSize+len(encoded))
	packed = append(packed, algoToMagic[algo]...)
	return append(packed, encoded...), nil
}

// Detect checks the magic prefix of `data`.
// Data without a known prefix is reported as AlgoNone.
func Detect(data []byte) AlgorithmType {
	if len(data) < MagicSize {
		return AlgoNone
	}

	for algo, magic := range algoToMagic {
		if bytes.Equal(data[:MagicSize], magic) {
			return algo
		}
	}

	return AlgoNone
}

// Unpack reverses Pack and returns the used algorithm.
func Unpack(data []byte) ([]byte, AlgorithmType, error) {
	algo := Detect(data)
	if algo == AlgoNone {
		return data, AlgoNone, nil
	}

	impl, err := AlgorithmFromType(algo)
	if err != nil {
		return nil, algo, err
	}

	decoded, err := impl.Decode(data[MagicSize:])
	if err != nil {
		return nil, algo, err
	}

	return decoded, algo, nil
}
