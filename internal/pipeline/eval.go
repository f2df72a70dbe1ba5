// Package pipeline implements the structural frame/message evaluation loop
// that populates the index files and the parallel parse-and-cache pipeline
// that decodes message payloads on demand (spec §4.E/§4.H).
package pipeline

import (
	"github.com/badger-rl/logreader/internal/frame"
	"github.com/badger-rl/logreader/internal/recindex"
	"github.com/badger-rl/logreader/internal/stream"
)

// EvalResult summarizes one EvalUncompressed call.
type EvalResult struct {
	FramesParsed   int
	MessagesParsed int
}

// EvalUncompressed segments the byte range [r.Tell(), end) into frames,
// appending one message index entry per message (including dummy messages,
// which are counted in absIndex allocation but excluded from a frame's own
// message range, per the resolved double-begin accounting rule) and one
// frame index entry per frame to files.
//
// startAbsMsgIndex and startAbsFrameIndex let evaluation resume mid-log
// (§4.J incremental re-open): the caller passes the counts already present
// in a validated index, and r is already positioned at the byte
// immediately after the last indexed message.
func EvalUncompressed(r *stream.Reader, end int64, table *frame.MessageIDTable, files recindex.Files, startAbsMsgIndex, startAbsFrameIndex uint64) (EvalResult, error) {
	var result EvalResult
	absMsg := startAbsMsgIndex
	absFrame := startAbsFrameIndex

	for r.Tell() < end {
		f, err := frame.Parse(r, table)
		if err != nil {
			return result, err
		}

		for _, dm := range f.DummyMessages {
			if err := files.AppendMessageEntry(recindex.MessageEntry{
				AbsIndex:      absMsg,
				FrameAbsIndex: absFrame,
				StartByte:     uint64(dm.StartByte),
				EndByte:       uint64(dm.EndByte),
			}); err != nil {
				return result, err
			}
			absMsg++
		}

		firstMsgAbsIndex := absMsg
		for _, m := range f.Messages {
			if err := files.AppendMessageEntry(recindex.MessageEntry{
				AbsIndex:      absMsg,
				FrameAbsIndex: absFrame,
				StartByte:     uint64(m.StartByte),
				EndByte:       uint64(m.EndByte),
			}); err != nil {
				return result, err
			}
			absMsg++
		}
		endMsgAbsIndex := absMsg

		if err := files.AppendFrameEntry(recindex.FrameEntry{
			ThreadName:       f.ThreadName,
			FirstMsgAbsIndex: uint32(firstMsgAbsIndex),
			EndMsgAbsIndex:   uint32(endMsgAbsIndex),
		}); err != nil {
			return result, err
		}
		absFrame++

		result.FramesParsed++
		result.MessagesParsed += len(f.Messages)
	}

	return result, nil
}
