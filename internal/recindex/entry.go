// Package recindex implements the append-only, fixed-width on-disk index
// files that back O(1) random access to frames and messages: one 32-byte
// row per message in messageIndexFile.cache, one 32-byte row per frame in
// frameIndexFile.cache.
package recindex

import "encoding/binary"

// EntrySize is the fixed width, in bytes, of every index row.
const EntrySize = 32

// threadNameWidth is the NUL-padded width of a frame entry's thread name.
const threadNameWidth = 24

// MessageEntry is one row of messageIndexFile.cache: four little-endian
// uint64 fields, in order (absIndex, frameAbsIndex, startByte, endByte).
type MessageEntry struct {
	AbsIndex      uint64
	FrameAbsIndex uint64
	StartByte     uint64
	EndByte       uint64
}

// Encode writes e into a freshly allocated 32-byte row.
func (e MessageEntry) Encode() [EntrySize]byte {
	var buf [EntrySize]byte
	binary.LittleEndian.PutUint64(buf[0:8], e.AbsIndex)
	binary.LittleEndian.PutUint64(buf[8:16], e.FrameAbsIndex)
	binary.LittleEndian.PutUint64(buf[16:24], e.StartByte)
	binary.LittleEndian.PutUint64(buf[24:32], e.EndByte)
	return buf
}

// DecodeMessageEntry reads a 32-byte row into a MessageEntry.
func DecodeMessageEntry(buf []byte) MessageEntry {
	return MessageEntry{
		AbsIndex:      binary.LittleEndian.Uint64(buf[0:8]),
		FrameAbsIndex: binary.LittleEndian.Uint64(buf[8:16]),
		StartByte:     binary.LittleEndian.Uint64(buf[16:24]),
		EndByte:       binary.LittleEndian.Uint64(buf[24:32]),
	}
}

// FrameEntry is one row of frameIndexFile.cache. Per the resolved byte
// packing: 24 bytes of NUL-padded thread name, then two little-endian
// uint32 fields (firstMsgAbsIndex, endMsgAbsIndex). The frame's own
// absIndex is not stored; it is recovered from the row's file offset.
type FrameEntry struct {
	ThreadName       string
	FirstMsgAbsIndex uint32
	EndMsgAbsIndex   uint32
}

// Encode writes e into a freshly allocated 32-byte row.
func (e FrameEntry) Encode() [EntrySize]byte {
	var buf [EntrySize]byte
	name := []byte(e.ThreadName)
	if len(name) > threadNameWidth {
		name = name[:threadNameWidth]
	}
	copy(buf[0:threadNameWidth], name)
	binary.LittleEndian.PutUint32(buf[24:28], e.FirstMsgAbsIndex)
	binary.LittleEndian.PutUint32(buf[28:32], e.EndMsgAbsIndex)
	return buf
}

// DecodeFrameEntry reads a 32-byte row into a FrameEntry.
func DecodeFrameEntry(buf []byte) FrameEntry {
	nameEnd := 0
	for nameEnd < threadNameWidth && buf[nameEnd] != 0 {
		nameEnd++
	}
	return FrameEntry{
		ThreadName:       string(buf[0:nameEnd]),
		FirstMsgAbsIndex: binary.LittleEndian.Uint32(buf[24:28]),
		EndMsgAbsIndex:   binary.LittleEndian.Uint32(buf[28:32]),
	}
}

// AbsIndexForOffset recovers a frame entry's absIndex from its byte offset
// within frameIndexFile.cache; rows are fixed-width and append-only, so this
// is always exact.
func AbsIndexForOffset(offset int64) uint64 {
	return uint64(offset / EntrySize)
}
