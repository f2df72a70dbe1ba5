// Package threadview groups frames by producing thread, synthesizes
// timestamps for threads that carry no FrameInfo time field, and
// aggregates Stopwatch samples per thread/frame (spec §4.I).
package threadview

import "sort"

// timestampedThreads is the predefined set of thread names whose frames
// carry a FrameInfo message with a time field (spec §4.I). Frames on any
// other thread have their timestamp synthesized by BackfillTimestamps.
var timestampedThreads = map[string]bool{
	"Upper":     true,
	"Lower":     true,
	"Motion":    true,
	"Audio":     true,
	"Cognition": true,
}

// IsTimestampedThread reports whether threadName is one of the predefined
// threads that carries its own FrameInfo timestamp.
func IsTimestampedThread(threadName string) bool {
	return timestampedThreads[threadName]
}

// ThreadView groups a whole-log-ordered sequence of frames by thread name,
// giving each frame a threadIndex: its position within its own thread's
// ordered sublist.
type ThreadView struct {
	threadIndex []int // whole-log frame position -> position within its thread
	threads     map[string][]int
}

// BuildThreadView groups threadNames (one entry per frame, in whole-log
// order) into per-thread ordered sublists.
func BuildThreadView(threadNames []string) *ThreadView {
	tv := &ThreadView{
		threadIndex: make([]int, len(threadNames)),
		threads:     make(map[string][]int),
	}
	for i, name := range threadNames {
		tv.threads[name] = append(tv.threads[name], i)
		tv.threadIndex[i] = len(tv.threads[name]) - 1
	}
	return tv
}

// ThreadIndex returns frameAbsIndex's position within its own thread's
// sublist.
func (tv *ThreadView) ThreadIndex(frameAbsIndex int) int {
	return tv.threadIndex[frameAbsIndex]
}

// Thread returns the ordered whole-log frame indices belonging to
// threadName.
func (tv *ThreadView) Thread(threadName string) []int {
	return tv.threads[threadName]
}

// ThreadNames returns every distinct thread name seen, sorted for
// deterministic iteration.
func (tv *ThreadView) ThreadNames() []string {
	names := make([]string, 0, len(tv.threads))
	for name := range tv.threads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
