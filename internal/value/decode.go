package value

import (
	"fmt"

	"github.com/badger-rl/logreader/internal/logerr"
	"github.com/badger-rl/logreader/internal/schema"
	"github.com/badger-rl/logreader/internal/stream"
)

// Special-cased record names whose decoders are hand-written rather than
// generated from the schema, per the six built-in overrides.
const (
	TypeCameraImage    = "CameraImage"
	TypeJPEGImage      = "JPEGImage"
	TypeAnnotation     = "Annotation"
	TypeStopwatch      = "Stopwatch"
	TypeFrameBegin     = "FrameBegin"
	TypeFrameFinished  = "FrameFinished"
)

// interlacedFlag is the high bit of a CameraImage's timestamp field marking
// an interlaced (half-height, doubled on decode) frame.
const interlacedFlag = uint32(1) << 31

// Decoder produces representation values from a type name and a positioned
// Stream Reader, consulting a schema.Registry for record/enum layouts not
// covered by a built-in special case.
type Decoder struct {
	reg *schema.Registry
}

// NewDecoder returns a Decoder backed by reg.
func NewDecoder(reg *schema.Registry) *Decoder {
	return &Decoder{reg: reg}
}

// DecodeBounded decodes one value of type expr from r, then fails
// PayloadSizeMismatch if r's cursor does not land exactly on end.
func (d *Decoder) DecodeBounded(expr schema.TypeExpr, r *stream.Reader, end int64) (Value, error) {
	v, err := d.Decode(expr, r)
	if err != nil {
		return Value{}, err
	}
	if r.Tell() != end {
		return Value{}, fmt.Errorf("%w: want tell()=%d got %d", logerr.ErrPayloadSizeMismatch, end, r.Tell())
	}
	return v, nil
}

// Decode decodes one value of type expr from r, handling array suffixes
// before dispatching to the named base type.
func (d *Decoder) Decode(expr schema.TypeExpr, r *stream.Reader) (Value, error) {
	switch expr.Kind {
	case schema.FixedArray:
		items := make([]Value, expr.FixedSize)
		for i := range items {
			v, err := d.decodeNamed(expr.Base, r)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return NewArray(expr.Base, items), nil
	case schema.DynamicArray:
		n, err := r.ReadU32()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, n)
		for i := range items {
			v, err := d.decodeNamed(expr.Base, r)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return NewArray(expr.Base, items), nil
	default:
		return d.decodeNamed(expr.Base, r)
	}
}

func (d *Decoder) decodeNamed(name string, r *stream.Reader) (Value, error) {
	switch name {
	case TypeCameraImage:
		return decodeCameraImage(r)
	case TypeJPEGImage:
		return decodeJPEGImage(r)
	case TypeAnnotation:
		return decodeAnnotation(r)
	case TypeStopwatch:
		return decodeStopwatch(r)
	}

	if d.reg.IsPrimitive(name) {
		return decodePrimitive(name, r)
	}
	if d.reg.IsEnum(name) {
		return d.decodeEnum(name, r)
	}
	if d.reg.IsRecord(name) {
		return d.decodeRecord(name, r)
	}
	return Value{}, fmt.Errorf("%w: %q", logerr.ErrUnknownType, name)
}

func (d *Decoder) decodeRecord(name string, r *stream.Reader) (Value, error) {
	rec, err := d.reg.RecordOf(name)
	if err != nil {
		return Value{}, err
	}
	fields := make([]Value, len(rec.Fields))
	for i, f := range rec.Fields {
		v, err := d.Decode(f.Type, r)
		if err != nil {
			return Value{}, err
		}
		fields[i] = v
	}
	return NewRecord(rec, fields), nil
}

func (d *Decoder) decodeEnum(name string, r *stream.Reader) (Value, error) {
	e, err := d.reg.EnumOf(name)
	if err != nil {
		return Value{}, err
	}
	idx, err := r.ReadU8()
	if err != nil {
		return Value{}, err
	}
	if int(idx) >= len(e.Values) {
		return Value{}, fmt.Errorf("%w: %q value %d", logerr.ErrBadEnum, name, idx)
	}
	return NewEnum(name, e.Values[idx], int(idx)), nil
}

// decodePrimitive reads a fixed-width value for one of the base primitive
// type names declared by the TypeInfo chunk.
func decodePrimitive(name string, r *stream.Reader) (Value, error) {
	switch name {
	case "bool":
		v, err := r.ReadBool()
		return NewPrim(name, v), err
	case "char", "signed char", "int8_t", "i8":
		v, err := r.ReadI8()
		return NewPrim(name, v), err
	case "unsigned char", "uint8_t", "u8", "byte":
		v, err := r.ReadU8()
		return NewPrim(name, v), err
	case "short", "short int", "int16_t", "i16":
		v, err := r.ReadI16()
		return NewPrim(name, v), err
	case "unsigned short", "unsigned short int", "uint16_t", "u16":
		v, err := r.ReadU16()
		return NewPrim(name, v), err
	case "int", "long", "long int", "int32_t", "i32":
		v, err := r.ReadI32()
		return NewPrim(name, v), err
	case "unsigned", "unsigned int", "unsigned long", "uint32_t", "u32":
		v, err := r.ReadU32()
		return NewPrim(name, v), err
	case "long long", "long long int", "int64_t", "i64":
		v, err := r.ReadI64()
		return NewPrim(name, v), err
	case "unsigned long long", "uint64_t", "u64":
		v, err := r.ReadU64()
		return NewPrim(name, v), err
	case "float":
		v, err := r.ReadF32()
		return NewPrim(name, v), err
	case "double":
		v, err := r.ReadF64()
		return NewPrim(name, v), err
	case "string", "std::string":
		v, err := r.ReadString()
		return NewPrim(name, v), err
	default:
		// Fall back to a 32-bit read for unrecognized but registered
		// primitive aliases (e.g. project-specific typedefs of a known
		// width); the registry only ever admits names the log itself
		// declared as primitive.
		v, err := r.ReadU32()
		return NewPrim(name, v), err
	}
}

// decodeCameraImage implements the built-in interlace-aware layout: width
// and height as u32, a timestamp whose high bit flags an interlaced frame
// (doubling the stored height and clearing the bit), followed by a raw
// width*height*2 YUYV pixel payload.
func decodeCameraImage(r *stream.Reader) (Value, error) {
	width, err := r.ReadU32()
	if err != nil {
		return Value{}, err
	}
	height, err := r.ReadU32()
	if err != nil {
		return Value{}, err
	}
	timestamp, err := r.ReadU32()
	if err != nil {
		return Value{}, err
	}
	interlaced := timestamp&interlacedFlag != 0
	if interlaced {
		height *= 2
		timestamp &^= interlacedFlag
	}
	pixels, err := r.ReadBytes(int(width) * int(height) * 2)
	if err != nil {
		return Value{}, err
	}
	buf := make([]byte, len(pixels))
	copy(buf, pixels)
	fields := []Value{
		NewPrim("unsigned int", width),
		NewPrim("unsigned int", height),
		NewPrim("unsigned int", timestamp),
		NewPrim("bool", interlaced),
		NewPrim("unsigned char[]", buf),
	}
	return NewRecord(cameraImageRecord, fields), nil
}

var cameraImageRecord = &schema.Record{
	Name: TypeCameraImage,
	Fields: []schema.Field{
		{Name: "width", Type: schema.TypeExpr{Base: "unsigned int"}},
		{Name: "height", Type: schema.TypeExpr{Base: "unsigned int"}},
		{Name: "timestamp", Type: schema.TypeExpr{Base: "unsigned int"}},
		{Name: "interlaced", Type: schema.TypeExpr{Base: "bool"}},
		{Name: "image", Type: schema.TypeExpr{Base: "unsigned char", Kind: schema.DynamicArray}},
	},
}

// decodeJPEGImage reads a u32-prefixed compressed byte payload; the
// decompression path itself is an out-of-core collaborator per spec §1.
func decodeJPEGImage(r *stream.Reader) (Value, error) {
	n, err := r.ReadU32()
	if err != nil {
		return Value{}, err
	}
	data, err := r.ReadBytes(int(n))
	if err != nil {
		return Value{}, err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return NewRecord(jpegImageRecord, []Value{NewPrim("unsigned char[]", buf)}), nil
}

var jpegImageRecord = &schema.Record{
	Name: TypeJPEGImage,
	Fields: []schema.Field{
		{Name: "data", Type: schema.TypeExpr{Base: "unsigned char", Kind: schema.DynamicArray}},
	},
}

// decodeAnnotation reads a u32 frame counter followed by two
// length-prefixed strings (name, then free-form annotation text), the
// layout the stopwatch/annotation collaborators consume downstream.
func decodeAnnotation(r *stream.Reader) (Value, error) {
	frame, err := r.ReadU32()
	if err != nil {
		return Value{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return Value{}, err
	}
	annotation, err := r.ReadString()
	if err != nil {
		return Value{}, err
	}
	return NewRecord(annotationRecord, []Value{
		NewPrim("unsigned int", frame),
		NewPrim("string", name),
		NewPrim("string", annotation),
	}), nil
}

var annotationRecord = &schema.Record{
	Name: TypeAnnotation,
	Fields: []schema.Field{
		{Name: "frame", Type: schema.TypeExpr{Base: "unsigned int"}},
		{Name: "name", Type: schema.TypeExpr{Base: "string"}},
		{Name: "annotation", Type: schema.TypeExpr{Base: "string"}},
	},
}

// decodeStopwatch reads a u32 count of (name, duration-in-us) samples,
// the raw form the Timer (thread view) aggregates across frames.
func decodeStopwatch(r *stream.Reader) (Value, error) {
	n, err := r.ReadU32()
	if err != nil {
		return Value{}, err
	}
	names := make([]Value, n)
	durations := make([]Value, n)
	for i := 0; i < int(n); i++ {
		name, err := r.ReadString()
		if err != nil {
			return Value{}, err
		}
		dur, err := r.ReadU32()
		if err != nil {
			return Value{}, err
		}
		names[i] = NewPrim("string", name)
		durations[i] = NewPrim("unsigned int", dur)
	}
	return NewRecord(stopwatchRecord, []Value{
		NewArray("string", names),
		NewArray("unsigned int", durations),
	}), nil
}

var stopwatchRecord = &schema.Record{
	Name: TypeStopwatch,
	Fields: []schema.Field{
		{Name: "names", Type: schema.TypeExpr{Base: "string", Kind: schema.DynamicArray}},
		{Name: "durations", Type: schema.TypeExpr{Base: "unsigned int", Kind: schema.DynamicArray}},
	},
}

// DecodeFrameSentinel decodes a FrameBegin/FrameFinished message body: a
// u32 frameNumber followed by the raw thread-name bytes filling the
// remainder of the payload up to end. This is the body both FrameBegin and
// FrameFinished share, and whose bytes from offset 4 (the thread-name
// field) the frame parser compares directly, without going through this
// decoder, for the begin/end match rule (§4.E) — this method exists only to
// produce the message's representation/reprDict view.
func (d *Decoder) DecodeFrameSentinel(name string, r *stream.Reader, end int64) (Value, error) {
	frameNumber, err := r.ReadU32()
	if err != nil {
		return Value{}, err
	}
	threadName, err := r.ReadBytes(int(end - r.Tell()))
	if err != nil {
		return Value{}, err
	}
	rec := frameBeginRecord
	if name == TypeFrameFinished {
		rec = frameFinishedRecord
	}
	return NewRecord(rec, []Value{
		NewPrim("unsigned int", frameNumber),
		NewPrim("string", string(threadName)),
	}), nil
}

var frameBeginRecord = &schema.Record{
	Name: TypeFrameBegin,
	Fields: []schema.Field{
		{Name: "frameNumber", Type: schema.TypeExpr{Base: "unsigned int"}},
		{Name: "threadName", Type: schema.TypeExpr{Base: "string"}},
	},
}

var frameFinishedRecord = &schema.Record{
	Name: TypeFrameFinished,
	Fields: []schema.Field{
		{Name: "frameNumber", Type: schema.TypeExpr{Base: "unsigned int"}},
		{Name: "threadName", Type: schema.TypeExpr{Base: "string"}},
	},
}
