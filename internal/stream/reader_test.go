package stream

import (
	"testing"

	"github.com/badger-rl/logreader/internal/logerr"
	"github.com/stretchr/testify/require"
)

func TestReadPrimitives(t *testing.T) {
	buf := []byte{
		0x2a,                   // u8 = 42
		0x01, 0x00,             // u16 = 1
		0x03, 0x02, 0x01,       // u24 = 0x010203
		0x04, 0x00, 0x00, 0x00, // u32 = 4
	}
	r := New(buf)

	v8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(42), v8)

	v16, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(1), v16)

	v24, err := r.ReadU24()
	require.NoError(t, err)
	require.Equal(t, uint32(0x010203), v24)

	v32, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(4), v32)

	require.Equal(t, int64(len(buf)), r.Tell())
}

func TestReadStringRoundTrip(t *testing.T) {
	buf := []byte{5, 0, 0, 0, 'H', 'e', 'l', 'l', 'o'}
	r := New(buf)
	s, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "Hello", s)
}

func TestShortRead(t *testing.T) {
	r := New([]byte{1, 2})
	_, err := r.ReadU32()
	require.ErrorIs(t, err, logerr.ErrShortRead)
}

func TestSeekTell(t *testing.T) {
	r := New(make([]byte, 16))
	r.Seek(10)
	require.Equal(t, int64(10), r.Tell())
	_, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, int64(14), r.Tell())
}

func TestPeekAtDoesNotMoveCursor(t *testing.T) {
	r := New([]byte{1, 2, 3, 4, 5})
	r.Seek(2)
	b, err := r.PeekAt(0, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, b)
	require.Equal(t, int64(2), r.Tell())
}

func TestReadQueueHeader(t *testing.T) {
	buf := make([]byte, 12)
	// UsedSizeHigh=0, Flags=0x0FFFFFFF (no index), UsedSizeLow=100
	buf[8], buf[9], buf[10], buf[11] = 100, 0, 0, 0
	buf[4], buf[5], buf[6], buf[7] = 0xff, 0xff, 0xff, 0x0f
	r := New(buf)
	h, err := r.ReadQueueHeader()
	require.NoError(t, err)
	require.False(t, h.HasIndex())
	require.Equal(t, uint64(100), h.UsedSize())
}
