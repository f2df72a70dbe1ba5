// Package frame segments an Uncompressed chunk's byte stream into frames,
// applying the double-begin recovery rule and the FrameBegin/FrameFinished
// tail-byte matching rule, without decoding message payloads — payload
// decode is deferred to internal/value's Dynamic Decoder, invoked later by
// the parse-and-cache pipeline.
package frame

import (
	"bytes"
	"fmt"

	"github.com/badger-rl/logreader/internal/logerr"
	"github.com/badger-rl/logreader/internal/stream"
)

// noMessageID is the sentinel log-local ID meaning "no ID assigned".
const noMessageID = 255

// Message is one parsed message header plus its raw payload bytes. Payload
// decoding into a representation value happens later, on demand.
type Message struct {
	LogID     int
	ClassName string
	StartByte int64
	EndByte   int64
	Body      []byte // raw payload bytes, length = EndByte-StartByte-4
}

// Frame is a contiguous run of messages bounded by a matching
// FrameBegin/FrameFinished pair. StartByte/EndByte span exactly
// [Messages[0].StartByte, Messages[len-1].EndByte).
type Frame struct {
	StartByte     int64
	EndByte       int64
	ThreadName    string
	Messages      []Message
	DummyMessages []Message
}

// readMessage reads one message header + payload from the reader's current
// position. r.Tell() before the call is the message's absolute StartByte,
// since the Stream Reader's cursor is itself an absolute file offset.
func readMessage(r *stream.Reader, table *MessageIDTable) (Message, error) {
	start := r.Tell()
	logID, err := r.ReadU8()
	if err != nil {
		return Message{}, err
	}
	length, err := r.ReadU24()
	if err != nil {
		return Message{}, err
	}
	body, err := r.ReadBytes(int(length))
	if err != nil {
		return Message{}, err
	}
	if logID == noMessageID {
		return Message{}, fmt.Errorf("%w: at byte %d", logerr.ErrMessageWithoutID, start)
	}
	if int(logID) >= table.Cardinality() {
		return Message{}, fmt.Errorf("%w: id %d at byte %d", logerr.ErrUnknownMessageID, logID, start)
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	return Message{
		LogID:     int(logID),
		ClassName: table.ClassName(int(logID)),
		StartByte: start,
		EndByte:   r.Tell(),
		Body:      buf,
	}, nil
}

// Parse reads one frame from r, applying the double-begin recovery rule:
// any messages accumulated before a second FrameBegin are reclassified as
// dummy and parsing restarts with that FrameBegin as message 0. A
// FrameFinished message closes the frame only if its body bytes from
// offset 4 equal the opening FrameBegin's; mismatches fail
// FrameBeginEndMismatch. The first message of a frame MUST be FrameBegin.
func Parse(r *stream.Reader, table *MessageIDTable) (Frame, error) {
	frameStart := r.Tell()
	var messages []Message
	var dummies []Message

	for {
		msg, err := readMessage(r, table)
		if err != nil {
			return Frame{}, err
		}

		if msg.LogID == table.IDFrameBegin() {
			if len(messages) != 0 {
				dummies = append(dummies, messages...)
			}
			messages = []Message{msg}
			continue
		}

		if len(messages) == 0 {
			return Frame{}, fmt.Errorf("%w: frame at byte %d does not begin with FrameBegin", logerr.ErrFrameBeginEndMismatch, frameStart)
		}
		messages = append(messages, msg)

		if msg.LogID == table.IDFrameFinished() {
			begin := messages[0]
			if !bytes.Equal(begin.Body[4:], msg.Body[4:]) {
				return Frame{}, fmt.Errorf("%w: frame at byte %d", logerr.ErrFrameBeginEndMismatch, frameStart)
			}
			return Frame{
				StartByte:     messages[0].StartByte,
				EndByte:       msg.EndByte,
				ThreadName:    string(msg.Body[4:]),
				Messages:      messages,
				DummyMessages: dummies,
			}, nil
		}
	}
}
