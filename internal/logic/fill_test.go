package logic

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFillMachine(t *testing.T) {
	m := NewFillMachine(300, 17)
	require.NotNil(t, m)

	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Equal(t, FillState{Phase: PhaseIdle}, m.State())
	assert.Equal(t, 17, m.DisinfectCycles())
}

func TestFillIdleBelowThresholdDoesNothing(t *testing.T) {
	m := NewFillMachine(300, 3)

	for i := 0; i < 50; i++ {
		assert.Empty(t, m.Process(float64(i*5)))
		assert.Equal(t, PhaseIdle, m.Phase())
	}
	assert.Equal(t, FillCounts{}, m.Counts())
}

func TestFillEntersFullWithAlert(t *testing.T) {
	m := NewFillMachine(300, 3)

	actions := m.Process(300) // threshold is inclusive
	assert.Equal(t, []Action{ActionShowRed, ActionSoundAlert}, actions)
	assert.Equal(t, PhaseFull, m.Phase())
	assert.Equal(t, 1, m.Counts().Filled)
}

func TestFillSelfLoopKeepsRedWithoutAlert(t *testing.T) {
	m := NewFillMachine(300, 3)
	m.Process(350)

	for i := 0; i < 5; i++ {
		assert.Equal(t, []Action{ActionShowRed}, m.Process(400))
		assert.Equal(t, FillState{Phase: PhaseFull}, m.State())
	}
	assert.Equal(t, 1, m.Counts().Filled)
}

// MAX_WEIGHT=300, 300ms polling, 5s disinfect delay: the pulse fires on the
// 17th low-weight cycle after the bin was full.
func TestFillDisinfectTiming(t *testing.T) {
	cycles := Cycles(5000*time.Millisecond, 300*time.Millisecond)
	require.Equal(t, 17, cycles)

	m := NewFillMachine(300, cycles)
	m.Process(350)
	require.Equal(t, PhaseFull, m.Phase())

	// Cycle 1 primes the indicators
	assert.Equal(t, []Action{ActionShowGreen}, m.Process(0))
	assert.Equal(t, FillState{Phase: PhaseDisinfecting, DisinfectCounter: 1, BlinkEdge: true}, m.State())

	// Cycles 2..16 blink
	for i := 2; i <= 16; i++ {
		require.Equal(t, []Action{ActionToggleIndicators}, m.Process(0), "cycle %d", i)
		require.Equal(t, i, m.State().DisinfectCounter)
		require.Equal(t, PhaseDisinfecting, m.Phase())
	}

	// Cycle 17 pulses and returns to idle
	assert.Equal(t, []Action{ActionPulseDisinfect, ActionShowGreen}, m.Process(0))
	assert.Equal(t, FillState{Phase: PhaseIdle}, m.State())
	assert.Equal(t, FillCounts{Filled: 1, Disinfected: 1}, m.Counts())

	// Stays idle afterwards with no indicator changes
	for i := 0; i < 30; i++ {
		assert.Empty(t, m.Process(0))
	}
	assert.Equal(t, 1, m.Counts().Disinfected)
}

func TestFillPartialUnloadResetsGracePeriod(t *testing.T) {
	m := NewFillMachine(300, 4)
	m.Process(350)
	m.Process(350)

	// Still full: counter never starts
	assert.Equal(t, 0, m.State().DisinfectCounter)

	m.Process(100)
	m.Process(100)
	assert.Equal(t, 2, m.State().DisinfectCounter)
}

func TestFillRefillDuringDisinfectAborts(t *testing.T) {
	m := NewFillMachine(300, 5)
	m.Process(350)
	m.Process(0)
	m.Process(0)
	require.Equal(t, PhaseDisinfecting, m.Phase())

	actions := m.Process(320)
	assert.Equal(t, []Action{ActionShowRed, ActionSoundAlert}, actions)
	assert.Equal(t, FillState{Phase: PhaseFull}, m.State())
	assert.Equal(t, FillCounts{Filled: 2, Aborted: 1}, m.Counts())

	// Emptying again restarts the whole grace period, primed first
	assert.Equal(t, []Action{ActionShowGreen}, m.Process(0))
	assert.Equal(t, 1, m.State().DisinfectCounter)
}

func TestFillZeroCyclesPulsesOnFirstLowSample(t *testing.T) {
	m := NewFillMachine(300, 0)
	m.Process(350)

	assert.Equal(t, []Action{ActionPulseDisinfect, ActionShowGreen}, m.Process(0))
	assert.Equal(t, PhaseIdle, m.Phase())
}

func TestFillNaNNeverCountsAsFull(t *testing.T) {
	m := NewFillMachine(300, 2)

	assert.Empty(t, m.Process(math.NaN()))
	assert.Empty(t, m.Process(math.Inf(1)))
	assert.Empty(t, m.Process(math.Inf(-1)))
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Zero(t, m.Counts().Filled)

	// A NaN after a fill counts as an emptied bin
	m.Process(350)
	assert.Equal(t, []Action{ActionShowGreen}, m.Process(math.NaN()))
	assert.Equal(t, PhaseDisinfecting, m.Phase())

	// An infinite reading does not abort; it counts toward the grace period
	assert.Equal(t, []Action{ActionPulseDisinfect, ActionShowGreen}, m.Process(math.Inf(1)))
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Equal(t, FillCounts{Filled: 1, Disinfected: 1}, m.Counts())
}

// A weight sequence that never reaches the threshold never disinfects, and
// every disinfection fires exactly once per fill.
func TestFillGuardProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		cycles := rng.Intn(8)
		m := NewFillMachine(300, cycles)
		beenFull := false
		lowRun := 0

		for i := 0; i < 400; i++ {
			w := float64(rng.Intn(330))
			prev := m.Phase()
			actions := m.Process(w)

			pulses := 0
			blinks := 0
			for _, a := range actions {
				switch a {
				case ActionPulseDisinfect:
					pulses++
				case ActionToggleIndicators:
					blinks++
				}
			}

			if w >= 300 {
				beenFull = true
				lowRun = 0
				require.Equal(t, PhaseFull, m.Phase())
				require.Zero(t, pulses)
				continue
			}

			if prev == PhaseIdle {
				require.Empty(t, actions, "idle never acts")
				continue
			}

			require.True(t, beenFull, "disinfection without prior fill")
			lowRun++
			if lowRun >= cycles {
				require.Equal(t, 1, pulses, "run %d cycle %d", run, i)
				require.Zero(t, blinks, "no blink on the pulse cycle")
				require.Equal(t, PhaseIdle, m.Phase())
				lowRun = 0
				beenFull = false
			} else {
				require.Zero(t, pulses)
				require.Equal(t, PhaseDisinfecting, m.Phase())
			}
		}
	}
}
