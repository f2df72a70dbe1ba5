package recindex

import (
	"os"
)

// Files bundles the two on-disk index files for one log: one row per
// message, one row per frame, both under the log's cache directory.
type Files struct {
	MessagePath string
	FramePath   string
}

// MessageCount returns the number of complete message rows currently on
// disk.
func (f Files) MessageCount() (int64, error) {
	return rowCount(f.MessagePath)
}

// FrameCount returns the number of complete frame rows currently on disk.
func (f Files) FrameCount() (int64, error) {
	return rowCount(f.FramePath)
}

func rowCount(path string) (int64, error) {
	st, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return st.Size() / EntrySize, nil
}

// ReadMessageEntry reads the row at absIndex from messageIndexFile.cache.
func (f Files) ReadMessageEntry(absIndex uint64) (MessageEntry, error) {
	buf, err := readRow(f.MessagePath, absIndex)
	if err != nil {
		return MessageEntry{}, err
	}
	return DecodeMessageEntry(buf), nil
}

// ReadFrameEntry reads the row at absIndex from frameIndexFile.cache.
func (f Files) ReadFrameEntry(absIndex uint64) (FrameEntry, error) {
	buf, err := readRow(f.FramePath, absIndex)
	if err != nil {
		return FrameEntry{}, err
	}
	return DecodeFrameEntry(buf), nil
}

func readRow(path string, absIndex uint64) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	buf := make([]byte, EntrySize)
	off := int64(absIndex) * EntrySize
	if _, err := fh.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// AppendMessageEntry appends one row to messageIndexFile.cache.
func (f Files) AppendMessageEntry(e MessageEntry) error {
	return appendRow(f.MessagePath, e.Encode())
}

// AppendFrameEntry appends one row to frameIndexFile.cache.
func (f Files) AppendFrameEntry(e FrameEntry) error {
	return appendRow(f.FramePath, e.Encode())
}

func appendRow(path string, row [EntrySize]byte) error {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer fh.Close()
	_, err = fh.Write(row[:])
	return err
}

// Truncate shrinks both index files down to messageCount and frameCount
// rows respectively. It is a no-op on a file already at or below that size.
func (f Files) Truncate(messageCount, frameCount int64) error {
	if err := truncateRows(f.MessagePath, messageCount); err != nil {
		return err
	}
	return truncateRows(f.FramePath, frameCount)
}

func truncateRows(path string, rows int64) error {
	fh, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer fh.Close()
	return fh.Truncate(rows * EntrySize)
}

// Delete removes both index files, used when validation finds no
// recoverable prefix at all.
func (f Files) Delete() error {
	if err := os.Remove(f.MessagePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(f.FramePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// EnsureValid walks the frame index backward from its last entry, looking
// for the most recent frame whose entire message range is present and
// consistently back-referenced, and truncates both files to that point.
// Grounded on UncompressedChunk.ensureIndexFilesValid's backward-scan
// shape, simplified to a strictly-decreasing candidate walk (the original
// Python's checkFrameRange list can re-enqueue the same index and loop
// without making progress; this walk always strictly decreases).
//
// Returns whether any existing prefix was valid, and how many frame rows
// were discarded (0 on an already-valid index, making repeated calls
// idempotent).
func (f Files) EnsureValid() (valid bool, framesTruncated int64, err error) {
	frameCount, err := f.FrameCount()
	if err != nil {
		return false, 0, err
	}
	messageCount, err := f.MessageCount()
	if err != nil {
		return false, 0, err
	}
	if frameCount == 0 {
		// No frame row: any message rows belong to an unfinished first
		// frame, so both files are reset to empty.
		if err := f.Truncate(0, 0); err != nil {
			return false, 0, err
		}
		return true, 0, nil
	}

	candidate := frameCount - 1
	for candidate >= 0 {
		fe, err := f.ReadFrameEntry(uint64(candidate))
		if err != nil {
			return false, 0, err
		}
		if uint64(fe.EndMsgAbsIndex) > uint64(messageCount) || fe.FirstMsgAbsIndex > fe.EndMsgAbsIndex {
			candidate--
			continue
		}
		ok := true
		for absIdx := fe.FirstMsgAbsIndex; absIdx < fe.EndMsgAbsIndex; absIdx++ {
			me, err := f.ReadMessageEntry(uint64(absIdx))
			if err != nil {
				return false, 0, err
			}
			if me.AbsIndex != uint64(absIdx) || me.FrameAbsIndex != uint64(candidate) {
				ok = false
				break
			}
		}
		if ok {
			framesTruncated = frameCount - (candidate + 1)
			if err := f.Truncate(int64(fe.EndMsgAbsIndex), candidate+1); err != nil {
				return false, 0, err
			}
			return true, framesTruncated, nil
		}
		candidate--
	}

	// No frame validated at all; the empty index is itself a valid (if
	// fully discarded) prefix. Per the Cache error-kind policy, index
	// corruption is recovered here and never surfaced to the caller.
	if err := f.Truncate(0, 0); err != nil {
		return false, 0, err
	}
	return true, frameCount, nil
}
