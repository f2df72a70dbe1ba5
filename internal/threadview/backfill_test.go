package threadview

import "testing"

import "github.com/stretchr/testify/require"

func ptr(v int64) *int64 { return &v }

func TestBackfillTimestampsScenario4(t *testing.T) {
	// Frame at index 1 is on "Referee" (not timestamped); its neighbors at
	// 0 and 2 carry times 100 and 104. Expect synthesized 99: the first
	// neighbor scanned is index 0 (distance -1) -> 100 + (-1) = 99.
	frames := []FrameTimestamp{
		{ThreadName: "Upper", Timestamp: ptr(100)},
		{ThreadName: "Referee", Timestamp: nil},
		{ThreadName: "Upper", Timestamp: ptr(104)},
	}
	BackfillTimestamps(frames)
	require.NotNil(t, frames[1].Timestamp)
	require.Equal(t, int64(99), *frames[1].Timestamp)
}

func TestBackfillTimestampsScansFartherWhenNearestMissing(t *testing.T) {
	frames := []FrameTimestamp{
		{ThreadName: "Referee", Timestamp: nil},
		{ThreadName: "Referee", Timestamp: nil},
		{ThreadName: "Upper", Timestamp: ptr(200)},
	}
	BackfillTimestamps(frames)
	require.NotNil(t, frames[0].Timestamp)
	require.NotNil(t, frames[1].Timestamp)
	// frames[1]: distance 1 forward hits frames[2], the nearest timestamped-
	// thread frame -> 200+1=201. The intervening frames[0] is on "Referee"
	// too and never qualifies as a donor, regardless of processing order.
	require.Equal(t, int64(201), *frames[1].Timestamp)
	// frames[0]: distance 1 forward hits frames[1], which is not on a
	// timestamped thread, so it's skipped; distance 2 forward reaches
	// frames[2] -> 200+2=202
	require.Equal(t, int64(202), *frames[0].Timestamp)
}

func TestBackfillTimestampsLeavesUnresolvableNil(t *testing.T) {
	frames := []FrameTimestamp{
		{ThreadName: "Referee", Timestamp: nil},
		{ThreadName: "Referee", Timestamp: nil},
	}
	BackfillTimestamps(frames)
	require.Nil(t, frames[0].Timestamp)
	require.Nil(t, frames[1].Timestamp)
}

func TestIsTimestampedThread(t *testing.T) {
	require.True(t, IsTimestampedThread("Upper"))
	require.True(t, IsTimestampedThread("Cognition"))
	require.False(t, IsTimestampedThread("Referee"))
}
