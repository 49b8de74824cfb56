// Package logic contains the pure decision logic of the trash bin controller.
// This package has NO external dependencies (no GPIO, servo, OS, or time.Sleep)
// so it builds unchanged for the daemon and for the TinyGo firmware.
// Time is always injectable via time.Time parameters.
package logic

import "time"

// LidPosition is the last position commanded to the lid actuator.
type LidPosition string

const (
	LidClosed LidPosition = "CLOSED"
	LidOpened LidPosition = "OPENED"
)

// LidCommand is what the lid loop must do after processing a sample.
type LidCommand string

const (
	LidHold  LidCommand = "HOLD"
	LidOpen  LidCommand = "OPEN"
	LidClose LidCommand = "CLOSE"
)

// Phase is the state of the fill/disinfect machine.
type Phase string

const (
	PhaseIdle         Phase = "IDLE"
	PhaseFull         Phase = "FULL"
	PhaseDisinfecting Phase = "DISINFECTING"
)

// Action is a side effect requested by the fill machine. Actions must be
// applied in the order they are returned.
type Action string

const (
	ActionShowRed          Action = "SHOW_RED"          // green off, red on
	ActionShowGreen        Action = "SHOW_GREEN"        // red off, green on
	ActionToggleIndicators Action = "TOGGLE_INDICATORS" // flip both
	ActionSoundAlert       Action = "SOUND_ALERT"
	ActionPulseDisinfect   Action = "PULSE_DISINFECT"
)

// LidState is the state owned by the lid loop.
type LidState struct {
	// Consecutive cycles without an object in range, clamped to the close cycle count
	Counter int
	// Last commanded position
	Position LidPosition
}

// FillState is the state owned by the fill/disinfect loop.
// DisinfectCounter and BlinkEdge only carry meaning while Phase is PhaseDisinfecting.
type FillState struct {
	Phase            Phase
	DisinfectCounter int
	// Whether the indicators have been primed for blinking
	BlinkEdge bool
}

// LidCounts tracks lid transitions since startup.
type LidCounts struct {
	Opened int
	Closed int
}

// FillCounts tracks fill cycle transitions since startup.
type FillCounts struct {
	Filled      int // entries into FULL
	Disinfected int // completed disinfection pulses
	Aborted     int // disinfections interrupted by a refill
}

// HeartbeatData contains information for a heartbeat log line.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
}

// Cycles converts a delay into a number of poll cycles, rounding up so the
// action fires on the first cycle at which the delay has fully elapsed.
// A zero or negative delay (or poll interval) yields 0: act immediately.
func Cycles(delay, poll time.Duration) int {
	if delay <= 0 || poll <= 0 {
		return 0
	}
	n := int(delay / poll)
	if delay%poll != 0 {
		n++
	}
	return n
}
