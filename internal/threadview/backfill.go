package threadview

// FrameTimestamp is one frame's timestamp state in whole-log order:
// Timestamp is non-nil if the frame's own thread is in the timestamped set
// (or has already been synthesized), nil otherwise.
type FrameTimestamp struct {
	ThreadName string
	Timestamp  *int64
}

// BackfillTimestamps synthesizes Timestamp for every frame whose own
// thread is not in the timestamped set: scanning neighboring frames in
// whole-log order at alternating -1, +1, -2, +2, … signed distances
// (starting with -1 at distance 1, per spec §4.I and the scenario 4
// worked example), the first neighbor ON A TIMESTAMPED THREAD donates
// neighbor.Timestamp + signedDistance. Only genuine FrameInfo timestamps
// (frames whose ThreadName is in the timestamped set) ever act as donors,
// never another frame's already-synthesized value, so the result does not
// depend on processing order.
//
// Mutates frames in place. A frame with no timestamped-thread neighbor
// anywhere in the slice (e.g. no thread in the log carries FrameInfo) is
// left nil.
func BackfillTimestamps(frames []FrameTimestamp) {
	n := len(frames)
	for i := range frames {
		if frames[i].Timestamp != nil {
			continue
		}
		for distance := 1; i-distance >= 0 || i+distance < n; distance++ {
			if j := i - distance; j >= 0 && IsTimestampedThread(frames[j].ThreadName) && frames[j].Timestamp != nil {
				t := *frames[j].Timestamp - int64(distance)
				frames[i].Timestamp = &t
				break
			}
			if j := i + distance; j < n && IsTimestampedThread(frames[j].ThreadName) && frames[j].Timestamp != nil {
				t := *frames[j].Timestamp + int64(distance)
				frames[i].Timestamp = &t
				break
			}
		}
	}
}
