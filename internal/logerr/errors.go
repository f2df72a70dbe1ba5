// Package logerr defines the sentinel and structured errors shared across the
// log-reading pipeline. They are kept in one leaf package so every component,
// from the stream reader up to the root Log, can return and compare against
// the same set of exit conditions described by the on-disk format.
package logerr

import (
	"errors"
	"fmt"
)

// ErrShortRead indicates a read ran past the end of the available bytes.
var ErrShortRead = errors.New("short read")

// ErrMessageWithoutID indicates a message header carried log-local ID 255,
// meaning the representation was configured in logger.cfg but never assigned
// an ID in MessageIDs.h.
var ErrMessageWithoutID = errors.New("message without id")

// ErrUnknownMessageID indicates a message header's ID does not index into the
// log's MessageID enum.
var ErrUnknownMessageID = errors.New("unknown message id")

// ErrFrameBeginEndMismatch indicates a FrameFinished message's tail bytes did
// not match the opening FrameBegin's tail bytes.
var ErrFrameBeginEndMismatch = errors.New("frame begin/end mismatch")

// ErrPayloadSizeMismatch indicates a bounded decode did not consume exactly
// the bytes between its start and its supplied end offset.
var ErrPayloadSizeMismatch = errors.New("payload size mismatch")

// ErrBadEnum indicates an enum's wire byte did not index any declared value.
var ErrBadEnum = errors.New("bad enum value")

// ErrIndexCorrupt indicates an on-disk index file failed validation in a way
// that repair could not fully resolve on its own higher up the stack; it is
// recovered internally by truncation and should not normally escape.
var ErrIndexCorrupt = errors.New("index corrupt")

// ErrNotInIndexMap indicates an Accessor's cursor was asked to move to an
// absolute index outside the set of indices it represents.
var ErrNotInIndexMap = errors.New("absIndex not in indexMap")

// ErrUnknownType indicates a type name was not registered as a primitive,
// record, or enum.
var ErrUnknownType = errors.New("unknown type")

// BadMagic indicates a chunk's leading byte did not match a known chunk kind.
type BadMagic struct {
	Got byte
}

func (e *BadMagic) Error() string {
	return fmt.Sprintf("bad chunk magic: 0x%02x", e.Got)
}

func (e *BadMagic) Is(target error) bool {
	_, ok := target.(*BadMagic)
	return ok
}
