package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	data := bytes.Repeat([]byte(`{"nodes": [[0, "a"], [1, "b"]]}`), 100)

	for _, algo := range []AlgorithmType{AlgoNone, AlgoSnappy, AlgoLZ4} {
		t.Run(algo.String(), func(t *testing.T) {
			packed, err := Pack(algo, data)
			require.Nil(t, err)
			require.Equal(t, algo, Detect(packed))

			if algo != AlgoNone {
				require.True(t, len(packed) < len(data))
			}

			unpacked, detected, err := Unpack(packed)
			require.Nil(t, err)
			require.Equal(t, algo, detected)
			require.Equal(t, data, unpacked)
		})
	}
}

func TestAlgoFromString(t *testing.T) {
	for _, name := range []string{"none", "snappy", "lz4"} {
		algo, err := AlgoFromString(name)
		require.Nil(t, err)
		require.Equal(t, name, algo.String())
	}

	algo, err := AlgoFromString("")
	require.Nil(t, err)
	require.Equal(t, AlgoNone, algo)

	_, err = AlgoFromString("zstd")
	require.Equal(t, ErrBadAlgo, err)

	_, err = Pack(AlgorithmType(42), nil)
	require.Equal(t, ErrBadAlgo, err)
}

func TestUnpackGarbage(t *testing.T) {
	garbage := append([]byte{0x00, 'a', 'r', 's'}, 0xff, 0xfe, 0xfd)
	_, _, err := Unpack(garbage)
	require.NotNil(t, err)

	short := []byte{0x00}
	data, algo, err := Unpack(short)
	require.Nil(t, err)
	require.Equal(t, AlgoNone, algo)
	require.Equal(t, short, data)
}
