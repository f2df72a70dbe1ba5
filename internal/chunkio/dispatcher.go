// Package chunkio reads the top-level chunks of a log file: the leading
// magic byte dispatch, the Settings chunk's fixed header, the TypeInfo
// chunk's wire-encoded type tables, and the Uncompressed chunk's queue
// header preceding its frame stream.
package chunkio

import (
	"github.com/badger-rl/logreader/internal/logerr"
	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
)

// Magic bytes tagging each recognized chunk kind. Not dictated by the
// reference source's own enum numbering (unavailable in the retrieved
// source set), chosen here as a small consistent internal assignment that
// both the writer-side tests and reader agree on.
const (
	SettingsMagic     = 0x01
	TypeInfoMagic     = 0x02
	UncompressedMagic = 0x03
)

// unifiedFlag is the high bit of the TypeInfo primitive-count word marking
// that type names are already canonicalized and need no demangling.
const unifiedFlag = uint32(0x80000000)

// Settings is the fixed header carried by the Settings chunk.
type Settings struct {
	PlayerNumber int32
	Scenario     string
	Location     string
	BodyID       string
	HeadID       string
	BuildHash    string
}

// ReadSettings reads one Settings chunk's body (the magic byte is assumed
// already consumed by Dispatch).
func ReadSettings(r *stream.Reader) (Settings, error) {
	var s Settings
	var err error
	if s.PlayerNumber, err = r.ReadI32(); err != nil {
		return Settings{}, err
	}
	if s.Scenario, err = r.ReadString(); err != nil {
		return Settings{}, err
	}
	if s.Location, err = r.ReadString(); err != nil {
		return Settings{}, err
	}
	if s.BodyID, err = r.ReadString(); err != nil {
		return Settings{}, err
	}
	if s.HeadID, err = r.ReadString(); err != nil {
		return Settings{}, err
	}
	if s.BuildHash, err = r.ReadString(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ReadTypeInfo reads the TypeInfo chunk's wire-encoded type tables into reg,
// grounded on TypeInfoChunk.eval: a primitive-count word (high bit =
// "already unified" flag) then N primitive names, a class count then each
// class's name/field-count/fields, and an enum count then each enum's
// name/value-count/values.
func ReadTypeInfo(r *stream.Reader, reg *schema.Registry) error {
	primCountWord, err := r.ReadU32()
	if err != nil {
		return err
	}
	alreadyUnified := primCountWord&unifiedFlag != 0
	primCount := primCountWord &^ unifiedFlag

	for i := uint32(0); i < primCount; i++ {
		name, err := r.ReadString()
		if err != nil {
			return err
		}
		if !alreadyUnified {
			name = schema.Demangle(name)
		}
		reg.RegisterPrimitive(name)
	}

	classCount, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < classCount; i++ {
		className, err := r.ReadString()
		if err != nil {
			return err
		}
		if !alreadyUnified {
			className = schema.Demangle(className)
		}
		fieldCount, err := r.ReadU32()
		if err != nil {
			return err
		}
		fields := make([]struct{ Name, Type string }, fieldCount)
		for j := uint32(0); j < fieldCount; j++ {
			fieldName, err := r.ReadString()
			if err != nil {
				return err
			}
			fieldType, err := r.ReadString()
			if err != nil {
				return err
			}
			if !alreadyUnified {
				fieldType = schema.Demangle(fieldType)
			}
			fields[j] = struct{ Name, Type string }{fieldName, fieldType}
		}
		if err := reg.RegisterRecord(className, fields); err != nil {
			return err
		}
	}

	enumCount, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < enumCount; i++ {
		enumName, err := r.ReadString()
		if err != nil {
			return err
		}
		if !alreadyUnified {
			enumName = schema.Demangle(enumName)
		}
		valueCount, err := r.ReadU32()
		if err != nil {
			return err
		}
		values := make([]string, valueCount)
		for j := uint32(0); j < valueCount; j++ {
			v, err := r.ReadString()
			if err != nil {
				return err
			}
			values[j] = v
		}
		reg.RegisterEnum(enumName, values)
	}

	return nil
}

// UncompressedHeader is the evaluated queue header preceding an
// Uncompressed chunk's frame stream, plus the resolved number of bytes the
// frame stream actually occupies.
type UncompressedHeader struct {
	Header     stream.QueueHeader
	UsedSize   uint64
	FrameBytes int64 // min(UsedSize, fileRemaining), per the resolved Open Question
}

// ReadUncompressedHeader reads the three-word queue header and resolves the
// frame-stream byte budget against the file's remaining size, stopping at
// the first EOF as spec.md §9 recommends.
func ReadUncompressedHeader(r *stream.Reader) (UncompressedHeader, error) {
	qh, err := r.ReadQueueHeader()
	if err != nil {
		return UncompressedHeader{}, err
	}
	usedSize := qh.UsedSize()
	fileRemaining := uint64(r.Len() - r.Tell())
	frameBytes := usedSize
	if fileRemaining < frameBytes {
		frameBytes = fileRemaining
	}
	return UncompressedHeader{Header: qh, UsedSize: usedSize, FrameBytes: int64(frameBytes)}, nil
}

// Dispatch reads the one-byte chunk magic and reports which kind it is,
// failing BadMagic for anything unrecognized.
func Dispatch(r *stream.Reader) (byte, error) {
	m, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	switch m {
	case SettingsMagic, TypeInfoMagic, UncompressedMagic:
		return m, nil
	default:
		return 0, &logerr.BadMagic{Got: m}
	}
}
