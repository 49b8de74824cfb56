package logic

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLidController(t *testing.T) {
	c := NewLidController(15, 30)
	require.NotNil(t, c)

	assert.Equal(t, LidState{Counter: 0, Position: LidClosed}, c.State())
	assert.Equal(t, 30, c.CloseCycles())
	assert.Equal(t, LidCounts{}, c.Counts())
}

func TestNewLidControllerClampsNegativeCycles(t *testing.T) {
	c := NewLidController(15, -3)
	assert.Equal(t, 0, c.CloseCycles())
}

func TestLidOpensWhenInRange(t *testing.T) {
	c := NewLidController(15, 30)

	assert.Equal(t, LidOpen, c.Process(10))
	assert.Equal(t, LidOpened, c.State().Position)

	// Boundary is inclusive
	c2 := NewLidController(15, 30)
	assert.Equal(t, LidOpen, c2.Process(15))
}

func TestLidOpenIsRepeatedWhileInRange(t *testing.T) {
	c := NewLidController(15, 30)

	for i := 0; i < 5; i++ {
		assert.Equal(t, LidOpen, c.Process(5), "cycle %d", i)
	}
	assert.Equal(t, 1, c.Counts().Opened, "repeated opens count as one transition")
}

// Open threshold 15cm, 100ms polling, 3s close delay: the lid closes on the
// 30th consecutive absent cycle.
func TestLidClosesExactlyAfterDebounce(t *testing.T) {
	c := NewLidController(15, Cycles(3000*time.Millisecond, 100*time.Millisecond))
	require.Equal(t, LidOpen, c.Process(10))

	for i := 1; i <= 29; i++ {
		cmd := c.Process(20)
		require.Equal(t, LidHold, cmd, "cycle %d", i)
		assert.Equal(t, i, c.State().Counter)
		assert.Equal(t, LidOpened, c.State().Position)
	}

	assert.Equal(t, LidClose, c.Process(20), "cycle 30")
	assert.Equal(t, 30, c.State().Counter)
	assert.Equal(t, LidClosed, c.State().Position)
	assert.Equal(t, LidCounts{Opened: 1, Closed: 1}, c.Counts())
}

func TestLidCloseIsRepeatedAfterGracePeriod(t *testing.T) {
	c := NewLidController(15, 3)
	c.Process(10)
	c.Process(20)
	c.Process(20)

	for i := 0; i < 5; i++ {
		assert.Equal(t, LidClose, c.Process(20))
		assert.Equal(t, 3, c.State().Counter, "counter stays clamped")
	}
	assert.Equal(t, 1, c.Counts().Closed)
}

func TestLidReturnResetsCounter(t *testing.T) {
	c := NewLidController(15, 5)
	c.Process(10)

	// Absent for 4 cycles, then back just before the lid would close
	for i := 0; i < 4; i++ {
		require.Equal(t, LidHold, c.Process(40))
	}
	assert.Equal(t, LidOpen, c.Process(12))
	assert.Equal(t, 0, c.State().Counter)

	// The full grace period applies again
	for i := 0; i < 4; i++ {
		require.Equal(t, LidHold, c.Process(40), "cycle %d", i)
	}
	assert.Equal(t, LidClose, c.Process(40))
}

func TestLidZeroCyclesClosesImmediately(t *testing.T) {
	c := NewLidController(15, 0)
	c.Process(10)

	assert.Equal(t, LidClose, c.Process(20))
	assert.Equal(t, 0, c.State().Counter)
}

func TestLidImplausibleReadingsCountAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		d    float64
	}{
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
		{"negative", -4},
		{"zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLidController(15, 2)
			c.Process(10)

			assert.Equal(t, LidHold, c.Process(tt.d))
			assert.Equal(t, 1, c.State().Counter)
			assert.Equal(t, LidClose, c.Process(tt.d))
		})
	}
}

func TestLidNeverOpenedStillSettlesClosed(t *testing.T) {
	c := NewLidController(15, 2)

	assert.Equal(t, LidHold, c.Process(100))
	assert.Equal(t, LidClose, c.Process(100))
	assert.Equal(t, LidCounts{}, c.Counts(), "already closed at startup")
}

// Randomised check of the debounce and clamp properties against a simple model.
func TestLidDebounceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		cycles := rng.Intn(10)
		c := NewLidController(15, cycles)
		absentRun := 0

		for i := 0; i < 300; i++ {
			d := float64(rng.Intn(40))
			cmd := c.Process(d)
			st := c.State()

			require.GreaterOrEqual(t, st.Counter, 0)
			require.LessOrEqual(t, st.Counter, cycles)

			if d > 0 && d <= 15 {
				absentRun = 0
				require.Equal(t, LidOpen, cmd)
				require.Equal(t, LidOpened, st.Position)
				continue
			}

			absentRun++
			if absentRun >= cycles {
				require.Equal(t, LidClose, cmd, "run %d cycle %d", run, i)
			} else {
				require.Equal(t, LidHold, cmd, "run %d cycle %d", run, i)
			}
		}
	}
}
