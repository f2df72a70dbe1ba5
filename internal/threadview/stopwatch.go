package threadview

import "github.com/badger-rl/logreader/internal/value"

// SamplesFromStopwatch extracts the names/durations pair out of a decoded
// Stopwatch representation (see value.decodeStopwatch), for feeding into
// Timer.Merge. Returns ok=false if v is not a Stopwatch representation.
func SamplesFromStopwatch(v value.Value) (names []string, durations []uint32, ok bool) {
	if v.TypeName != value.TypeStopwatch {
		return nil, nil, false
	}
	namesField, hasNames := v.Field("names")
	durField, hasDur := v.Field("durations")
	if !hasNames || !hasDur {
		return nil, nil, false
	}
	names = make([]string, len(namesField.Items))
	for i, item := range namesField.Items {
		names[i], _ = item.Prim.(string)
	}
	durations = make([]uint32, len(durField.Items))
	for i, item := range durField.Items {
		durations[i], _ = item.Prim.(uint32)
	}
	return names, durations, true
}
