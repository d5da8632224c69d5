package scalebuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	buf := Bytes{0x01, 0x02, 0x03}
	require.Equal(t, 3, buf.TotalLen())

	{
		b, err := buf.ReadByteAt(0)
		require.NoError(t, err)
		require.Equal(t, byte(0x01), b)

		b, err = buf.ReadByteAt(2)
		require.NoError(t, err)
		require.Equal(t, byte(0x03), b)
	}
	{
		_, err := buf.ReadByteAt(3)
		require.Error(t, err)
		require.Equal(t, DataTooShortError{Position: 3, MinimalLength: 1}, err)
	}
	{
		s, err := buf.ReadSliceAt(1, 2)
		require.NoError(t, err)
		require.Equal(t, []byte{0x02, 0x03}, s)
	}
	{
		_, err := buf.ReadSliceAt(1, 5)
		require.Equal(t, DataTooShortError{Position: 3, MinimalLength: 3}, err)
	}
	{
		s, err := buf.ReadSliceAt(3, 0)
		require.NoError(t, err)
		require.Len(t, s, 0)
	}
}

func TestBytesEmpty(t *testing.T) {
	buf := Bytes{}
	require.Equal(t, 0, buf.TotalLen())
	_, err := buf.ReadByteAt(0)
	require.Equal(t, DataTooShortError{Position: 0, MinimalLength: 1}, err)
}
