package threadview

import "github.com/badger-rl/logreader/internal/value"

// FrameInfoTypeName is the record name of the per-frame timestamp message
// carried by threads in the timestamped set (spec §4.I).
const FrameInfoTypeName = "FrameInfo"

// TimestampFromFrameInfo extracts the "time" field from a decoded FrameInfo
// representation as an int64, regardless of the field's declared width.
// Returns ok=false if v is not a FrameInfo representation or carries no
// "time" field.
func TimestampFromFrameInfo(v value.Value) (int64, bool) {
	if v.TypeName != FrameInfoTypeName {
		return 0, false
	}
	f, ok := v.Field("time")
	if !ok {
		return 0, false
	}
	switch n := f.Prim.(type) {
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
