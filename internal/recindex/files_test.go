package recindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFiles(t *testing.T) Files {
	dir := t.TempDir()
	return Files{
		MessagePath: filepath.Join(dir, "messageIndexFile.cache"),
		FramePath:   filepath.Join(dir, "frameIndexFile.cache"),
	}
}

func buildValidIndex(t *testing.T, f Files, frames int, msgsPerFrame int) {
	t.Helper()
	absMsg := uint64(0)
	for fr := 0; fr < frames; fr++ {
		first := absMsg
		for m := 0; m < msgsPerFrame; m++ {
			require.NoError(t, f.AppendMessageEntry(MessageEntry{
				AbsIndex:      absMsg,
				FrameAbsIndex: uint64(fr),
				StartByte:     absMsg * 10,
				EndByte:       absMsg*10 + 10,
			}))
			absMsg++
		}
		require.NoError(t, f.AppendFrameEntry(FrameEntry{
			ThreadName:       "Upper",
			FirstMsgAbsIndex: uint32(first),
			EndMsgAbsIndex:   uint32(absMsg),
		}))
	}
}

func TestEntryRoundTrip(t *testing.T) {
	me := MessageEntry{AbsIndex: 1, FrameAbsIndex: 2, StartByte: 3, EndByte: 4}
	buf := me.Encode()
	require.Equal(t, me, DecodeMessageEntry(buf[:]))

	fe := FrameEntry{ThreadName: "Motion", FirstMsgAbsIndex: 5, EndMsgAbsIndex: 9}
	fbuf := fe.Encode()
	require.Equal(t, fe, DecodeFrameEntry(fbuf[:]))
}

func TestEnsureValidOnFreshIndexTruncatesNothing(t *testing.T) {
	f := newTestFiles(t)
	buildValidIndex(t, f, 3, 3)
	valid, truncated, err := f.EnsureValid()
	require.NoError(t, err)
	require.True(t, valid)
	require.Equal(t, int64(0), truncated)

	fc, _ := f.FrameCount()
	mc, _ := f.MessageCount()
	require.Equal(t, int64(3), fc)
	require.Equal(t, int64(9), mc)
}

func TestEnsureValidIsIdempotent(t *testing.T) {
	f := newTestFiles(t)
	buildValidIndex(t, f, 3, 3)
	_, _, err := f.EnsureValid()
	require.NoError(t, err)
	valid, truncated, err := f.EnsureValid()
	require.NoError(t, err)
	require.True(t, valid)
	require.Equal(t, int64(0), truncated)
}

func TestEnsureValidRepairsCorruptTail(t *testing.T) {
	f := newTestFiles(t)
	buildValidIndex(t, f, 3, 3)
	// Corrupt the last message entry's stored absIndex so the back
	// reference check fails, simulating a write interrupted mid-row.
	corrupt := MessageEntry{AbsIndex: 999, FrameAbsIndex: 2, StartByte: 1, EndByte: 2}
	buf := corrupt.Encode()
	require.NoError(t, overwriteLastRow(f.MessagePath, buf[:]))

	valid, truncated, err := f.EnsureValid()
	require.NoError(t, err)
	require.True(t, valid)
	require.Equal(t, int64(1), truncated)

	fc, _ := f.FrameCount()
	mc, _ := f.MessageCount()
	require.Equal(t, int64(2), fc)
	require.Equal(t, int64(6), mc)
}

func overwriteLastRow(path string, row []byte) error {
	fh, err := osOpenWrite(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	st, err := fh.Stat()
	if err != nil {
		return err
	}
	_, err = fh.WriteAt(row, st.Size()-EntrySize)
	return err
}
