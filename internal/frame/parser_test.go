package frame

import (
	"testing"

	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *MessageIDTable {
	t.Helper()
	reg := schema.NewRegistry()
	reg.RegisterEnum(MessageIDName, []string{
		"undefined", "idFrameBegin", "idFrameFinished", "idFoo",
	})
	table, err := NewMessageIDTable(reg)
	require.NoError(t, err)
	return table
}

func encodeMessage(logID byte, body []byte) []byte {
	n := len(body)
	buf := []byte{logID, byte(n), byte(n >> 8), byte(n >> 16)}
	return append(buf, body...)
}

func beginOrFinishedBody(frameNumber uint32, threadName string) []byte {
	buf := []byte{byte(frameNumber), byte(frameNumber >> 8), byte(frameNumber >> 16), byte(frameNumber >> 24)}
	return append(buf, []byte(threadName)...)
}

func TestParseMinimalFrame(t *testing.T) {
	table := newTestTable(t)
	var buf []byte
	buf = append(buf, encodeMessage(1, beginOrFinishedBody(0, "Upper"))...)
	buf = append(buf, encodeMessage(3, []byte{42, 0, 0, 0})...)
	buf = append(buf, encodeMessage(2, beginOrFinishedBody(0, "Upper"))...)

	r := stream.New(buf)
	f, err := Parse(r, table)
	require.NoError(t, err)
	require.Equal(t, "Upper", f.ThreadName)
	require.Len(t, f.Messages, 3)
	require.Equal(t, table.IDFrameBegin(), f.Messages[0].LogID)
	require.Equal(t, table.IDFrameFinished(), f.Messages[2].LogID)
	require.Equal(t, int64(0), f.StartByte)
	require.Equal(t, int64(len(buf)), f.EndByte)
}

func TestParseDoubleBeginRecovery(t *testing.T) {
	table := newTestTable(t)
	var buf []byte
	buf = append(buf, encodeMessage(1, beginOrFinishedBody(0, "A"))...)    // FrameBegin
	buf = append(buf, encodeMessage(3, []byte{1, 2, 3, 4})...)             // Garbage
	buf = append(buf, encodeMessage(1, beginOrFinishedBody(1, "A"))...)    // second FrameBegin
	buf = append(buf, encodeMessage(3, []byte{5, 6, 7, 8})...)             // Foo
	buf = append(buf, encodeMessage(2, beginOrFinishedBody(1, "A"))...)    // FrameFinished

	r := stream.New(buf)
	f, err := Parse(r, table)
	require.NoError(t, err)
	require.Len(t, f.Messages, 3)
	require.Len(t, f.DummyMessages, 2)
	require.Equal(t, table.IDFrameBegin(), f.Messages[0].LogID)
	require.Equal(t, table.IDFrameFinished(), f.Messages[2].LogID)
}

func TestParseFrameBeginEndMismatch(t *testing.T) {
	table := newTestTable(t)
	var buf []byte
	buf = append(buf, encodeMessage(1, beginOrFinishedBody(0, "A"))...)
	buf = append(buf, encodeMessage(2, beginOrFinishedBody(0, "B"))...)

	r := stream.New(buf)
	_, err := Parse(r, table)
	require.Error(t, err)
}

func TestParseMessageWithoutID(t *testing.T) {
	table := newTestTable(t)
	buf := encodeMessage(255, []byte{0})
	r := stream.New(buf)
	_, err := Parse(r, table)
	require.Error(t, err)
}

func TestParseUnknownMessageID(t *testing.T) {
	table := newTestTable(t)
	buf := encodeMessage(200, []byte{0})
	r := stream.New(buf)
	_, err := Parse(r, table)
	require.Error(t, err)
}
