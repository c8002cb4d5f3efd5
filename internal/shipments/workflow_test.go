package shipments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionForwardOneStepOnly(t *testing.T) {
	require.True(t, CanTransition(StageReceivedFromSupplier, StageProcessing))
	require.True(t, CanTransition(StageInTransit, StageCustoms))
	require.True(t, CanTransition(StageDelivered, StageCompleted))

	// Skipping stages fails closed.
	require.False(t, CanTransition(StageReceivedFromSupplier, StageInTransit))
	require.False(t, CanTransition(StageProcessing, StageDelivered))

	// Backwards never allowed.
	require.False(t, CanTransition(StageCustoms, StageInTransit))
}

func TestCanTransitionRejectedAbsorbs(t *testing.T) {
	for _, stage := range Stages() {
		if stage.IsTerminal() {
			require.False(t, CanTransition(stage, StageRejected), "from %s", stage)
			continue
		}
		require.True(t, CanTransition(stage, StageRejected), "from %s", stage)
	}
}

func TestTerminalStagesImmutable(t *testing.T) {
	for _, to := range Stages() {
		require.False(t, CanTransition(StageCompleted, to))
		require.False(t, CanTransition(StageRejected, to))
	}
	require.False(t, CanTransition(StageRejected, StageRejected))
}

func TestStageNext(t *testing.T) {
	require.Equal(t, StageProcessing, StageReceivedFromSupplier.Next())
	require.Equal(t, Stage(""), StageCompleted.Next())
	require.Equal(t, Stage(""), StageRejected.Next())
}

func TestTimelineRendersByIndex(t *testing.T) {
	sh := Shipment{Status: StageInTransit}
	entries := sh.Timeline()
	require.Len(t, entries, 9)

	byStage := map[Stage]StageState{}
	for _, e := range entries {
		byStage[e.Stage] = e.State
	}
	require.Equal(t, StateCompleted, byStage[StageReceivedFromSupplier])
	require.Equal(t, StateCompleted, byStage[StagePendingPartnerAcceptance])
	require.Equal(t, StateCurrent, byStage[StageInTransit])
	require.Equal(t, StatePending, byStage[StageCustoms])
	require.Equal(t, StatePending, byStage[StageCompleted])
}

func TestTimelineRejectedShortCircuits(t *testing.T) {
	now := time.Now()
	sh := Shipment{
		Status: StageRejected,
		Milestones: map[Stage]time.Time{
			StageReceivedFromSupplier: now,
			StageProcessing:           now,
			StageRejected:             now,
		},
	}
	for _, e := range sh.Timeline() {
		require.NotEqual(t, StateCurrent, e.State)
		switch e.Stage {
		case StageReceivedFromSupplier, StageProcessing:
			require.Equal(t, StateCompleted, e.State)
		default:
			require.Equal(t, StatePending, e.State)
		}
	}
}
