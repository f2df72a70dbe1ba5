package threadview

import (
	"sync"
	"testing"

	"github.com/badger-rl/logreader/internal/value"
	"github.com/stretchr/testify/require"
)

func TestTimerMergeAndGetStopwatch(t *testing.T) {
	timer := NewTimer()
	timer.Merge("Upper", 3, []string{"planning", "vision"}, []uint32{120, 80})

	got := timer.GetStopwatch("Upper", 3)
	require.Equal(t, map[string]any{"planning": uint32(120), "vision": uint32(80)}, got)
}

func TestTimerMergeAccumulatesAcrossMultipleCalls(t *testing.T) {
	timer := NewTimer()
	timer.Merge("Upper", 0, []string{"a"}, []uint32{1})
	timer.Merge("Upper", 0, []string{"b"}, []uint32{2})

	got := timer.GetStopwatch("Upper", 0)
	require.Equal(t, map[string]any{"a": uint32(1), "b": uint32(2)}, got)
}

func TestTimerMergeClampsToShorterSlice(t *testing.T) {
	timer := NewTimer()
	timer.Merge("Upper", 0, []string{"a", "b", "c"}, []uint32{1, 2})

	got := timer.GetStopwatch("Upper", 0)
	require.Equal(t, map[string]any{"a": uint32(1), "b": uint32(2)}, got)
}

func TestTimerGetStopwatchUnknownFrameReturnsNil(t *testing.T) {
	timer := NewTimer()
	require.Nil(t, timer.GetStopwatch("Upper", 0))

	timer.Merge("Upper", 0, []string{"a"}, []uint32{1})
	require.Nil(t, timer.GetStopwatch("Upper", 1))
	require.Nil(t, timer.GetStopwatch("Lower", 0))
}

func TestTimerMergeIsSafeForConcurrentCallers(t *testing.T) {
	timer := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			timer.Merge("Upper", 0, []string{"s"}, []uint32{uint32(i)})
		}(i)
	}
	wg.Wait()

	got := timer.GetStopwatch("Upper", 0)
	require.Len(t, got, 1)
}

func TestSamplesFromStopwatchRejectsOtherTypes(t *testing.T) {
	names, durations, ok := SamplesFromStopwatch(value.Value{TypeName: "Foo"})
	require.False(t, ok)
	require.Nil(t, names)
	require.Nil(t, durations)
}
