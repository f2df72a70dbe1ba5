package logtree

import (
	"testing"

	"github.com/badger-rl/logreader/internal/frame"
	"github.com/badger-rl/logreader/internal/recindex"
	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/badger-rl/logreader/internal/value"
	"github.com/stretchr/testify/require"
)

func encodeMsg(logID byte, body []byte) []byte {
	n := len(body)
	buf := []byte{logID, byte(n), byte(n >> 8), byte(n >> 16)}
	return append(buf, body...)
}

func sentinelBody(frameNumber uint32, threadName string) []byte {
	buf := []byte{byte(frameNumber), byte(frameNumber >> 8), byte(frameNumber >> 16), byte(frameNumber >> 24)}
	return append(buf, []byte(threadName)...)
}

// buildSingleFrameLog constructs a raw log buffer holding one frame
// (FrameBegin, one Foo message, FrameFinished) and a matching pair of
// populated index files, returning everything a FrameAccessor needs.
func buildSingleFrameLog(t *testing.T) (recindex.Files, recindex.Files, *stream.Reader, *value.Decoder, *frame.MessageIDTable) {
	t.Helper()
	reg := schema.NewRegistry()
	reg.RegisterPrimitive("unsigned int")
	require.NoError(t, reg.RegisterRecord("Foo", []struct{ Name, Type string }{
		{"x", "unsigned int"},
	}))
	reg.RegisterEnum(frame.MessageIDName, []string{"undefined", "idFrameBegin", "idFrameFinished", "idFoo"})
	table, err := frame.NewMessageIDTable(reg)
	require.NoError(t, err)
	dec := value.NewDecoder(reg)

	var buf []byte
	m0 := encodeMsg(byte(table.IDFrameBegin()), sentinelBody(0, "Upper"))
	m1 := encodeMsg(3, []byte{42, 0, 0, 0}) // idFoo == 3
	m2 := encodeMsg(byte(table.IDFrameFinished()), sentinelBody(0, "Upper"))
	starts := []int64{0, int64(len(m0)), int64(len(m0) + len(m1))}
	buf = append(buf, m0...)
	buf = append(buf, m1...)
	buf = append(buf, m2...)
	ends := []int64{starts[1], starts[2], int64(len(buf))}

	dir := t.TempDir()
	msgFiles := recindex.Files{MessagePath: dir + "/msg.cache", FramePath: dir + "/unused1.cache"}
	frameFiles := recindex.Files{MessagePath: dir + "/unused2.cache", FramePath: dir + "/frame.cache"}

	for i := 0; i < 3; i++ {
		require.NoError(t, msgFiles.AppendMessageEntry(recindex.MessageEntry{
			AbsIndex:      uint64(i),
			FrameAbsIndex: 0,
			StartByte:     uint64(starts[i]),
			EndByte:       uint64(ends[i]),
		}))
	}
	require.NoError(t, frameFiles.AppendFrameEntry(recindex.FrameEntry{
		ThreadName:       "Upper",
		FirstMsgAbsIndex: 0,
		EndMsgAbsIndex:   3,
	}))

	reader := stream.New(buf)
	return frameFiles, msgFiles, reader, dec, table
}

func TestFrameAccessorMessagesWindow(t *testing.T) {
	frameFiles, msgFiles, reader, dec, table := buildSingleFrameLog(t)
	idx := RangeIndexMap{Low: 0, High: 1}
	fa := NewFrameAccessor(frameFiles, msgFiles, idx, reader, dec, table, DefaultRepresentationCacheCapacity)

	require.Equal(t, 1, fa.Len())
	require.Equal(t, "Upper", fa.ThreadName())

	msgs := fa.Messages()
	require.Equal(t, 3, msgs.Len())
	msgs.SetIndex(1)
	require.Equal(t, "Foo", msgs.ClassName())
	v, err := msgs.Repr()
	require.NoError(t, err)
	x, ok := v.Field("x")
	require.True(t, ok)
	require.Equal(t, uint32(42), x.Prim)
}

func TestFrameAccessorToInstance(t *testing.T) {
	frameFiles, msgFiles, reader, dec, table := buildSingleFrameLog(t)
	idx := RangeIndexMap{Low: 0, High: 1}
	fa := NewFrameAccessor(frameFiles, msgFiles, idx, reader, dec, table, DefaultRepresentationCacheCapacity)

	inst, err := fa.ToInstance()
	require.NoError(t, err)
	require.Equal(t, "Upper", inst.ThreadName())
	require.Len(t, inst.Messages, 3)
	require.Equal(t, "FrameBegin", inst.Messages[0].ClassName())
	require.Equal(t, "FrameFinished", inst.Messages[2].ClassName())
	require.Less(t, inst.StartByte(), inst.EndByte())
}
