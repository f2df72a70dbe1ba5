package chunkio

import (
	"errors"
	"testing"

	"github.com/badger-rl/logreader/internal/logerr"
	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/stretchr/testify/require"
)

func putStr(buf []byte, s string) []byte {
	n := uint32(len(s))
	buf = append(buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return append(buf, []byte(s)...)
}

func putU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func TestDispatchBadMagic(t *testing.T) {
	r := stream.New([]byte{0xAB})
	_, err := Dispatch(r)
	require.Error(t, err)
	var bm *logerr.BadMagic
	require.True(t, errors.As(err, &bm))
}

func TestDispatchRecognizesChunkKinds(t *testing.T) {
	for _, magic := range []byte{SettingsMagic, TypeInfoMagic, UncompressedMagic} {
		r := stream.New([]byte{magic})
		got, err := Dispatch(r)
		require.NoError(t, err)
		require.Equal(t, magic, got)
	}
}

func TestReadTypeInfoUnifiedFlagSkipsDemangling(t *testing.T) {
	var buf []byte
	buf = putU32(buf, 1|unifiedFlag) // 1 primitive, already unified
	buf = putStr(buf, "float")
	buf = putU32(buf, 1) // 1 class
	// Demangle would strip "::__1"; with the flag set the name is kept as is.
	buf = putStr(buf, "Foo::__1")
	buf = putU32(buf, 1) // 1 field
	buf = putStr(buf, "x")
	buf = putStr(buf, "float")
	buf = putU32(buf, 1) // 1 enum
	buf = putStr(buf, "Color")
	buf = putU32(buf, 2)
	buf = putStr(buf, "red")
	buf = putStr(buf, "green")

	r := stream.New(buf)
	reg := schema.NewRegistry()
	require.NoError(t, ReadTypeInfo(r, reg))
	require.True(t, reg.IsPrimitive("float"))
	require.True(t, reg.IsRecord("Foo::__1"))
	require.True(t, reg.IsEnum("Color"))
	require.Equal(t, int64(len(buf)), r.Tell())
}

func TestReadUncompressedHeaderClampsToFileRemaining(t *testing.T) {
	var buf []byte
	buf = putU32(buf, 0)          // usedSizeHigh
	buf = putU32(buf, 0x0FFFFFFF) // no-index flag
	buf = putU32(buf, 1000)       // usedSizeLow (claims 1000 bytes used)
	buf = append(buf, make([]byte, 10)...) // but only 10 bytes actually remain

	r := stream.New(buf)
	h, err := ReadUncompressedHeader(r)
	require.NoError(t, err)
	require.False(t, h.Header.HasIndex())
	require.Equal(t, int64(10), h.FrameBytes)
}
