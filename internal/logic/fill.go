package logic

import "math"

// FillMachine tracks the Idle -> Full -> Disinfecting -> Idle cycle driven by
// the bin weight. Disinfection only ever follows a completed fill.
type FillMachine struct {
	maxWeightGrams  float64
	disinfectCycles int
	state           FillState
	counts          FillCounts
}

// NewFillMachine creates a machine in PhaseIdle. disinfectCycles is the number
// of low-weight cycles after emptying before the disinfect pulse fires.
func NewFillMachine(maxWeightGrams float64, disinfectCycles int) *FillMachine {
	if disinfectCycles < 0 {
		disinfectCycles = 0
	}
	return &FillMachine{
		maxWeightGrams:  maxWeightGrams,
		disinfectCycles: disinfectCycles,
		state:           FillState{Phase: PhaseIdle},
	}
}

// Process takes a weight sample and returns the actions to apply, in order.
// A NaN or infinite weight is implausible and never satisfies the full
// condition.
func (m *FillMachine) Process(weightGrams float64) []Action {
	if m.isFull(weightGrams) {
		return m.enterFull()
	}

	switch m.state.Phase {
	case PhaseFull:
		m.state = FillState{Phase: PhaseDisinfecting}
		return m.stepDisinfect()
	case PhaseDisinfecting:
		return m.stepDisinfect()
	}

	// Idle and never filled: leave the indicators alone
	return nil
}

func (m *FillMachine) isFull(w float64) bool {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return false
	}
	return w >= m.maxWeightGrams
}

// enterFull handles an over-threshold sample in any phase. A refill during
// disinfection aborts it.
func (m *FillMachine) enterFull() []Action {
	actions := []Action{ActionShowRed}
	if m.state.Phase != PhaseFull {
		if m.state.Phase == PhaseDisinfecting {
			m.counts.Aborted++
		}
		m.counts.Filled++
		actions = append(actions, ActionSoundAlert)
	}
	m.state = FillState{Phase: PhaseFull}
	return actions
}

func (m *FillMachine) stepDisinfect() []Action {
	if m.state.DisinfectCounter < m.disinfectCycles {
		m.state.DisinfectCounter++
	}

	if m.state.DisinfectCounter >= m.disinfectCycles {
		m.state = FillState{Phase: PhaseIdle}
		m.counts.Disinfected++
		return []Action{ActionPulseDisinfect, ActionShowGreen}
	}

	if !m.state.BlinkEdge {
		// Prime green on / red off so the toggles alternate cleanly
		m.state.BlinkEdge = true
		return []Action{ActionShowGreen}
	}
	return []Action{ActionToggleIndicators}
}

// Phase returns the current phase.
func (m *FillMachine) Phase() Phase {
	return m.state.Phase
}

// State returns a copy of the current fill state.
func (m *FillMachine) State() FillState {
	return m.state
}

// DisinfectCycles returns the grace period length in poll cycles.
func (m *FillMachine) DisinfectCycles() int {
	return m.disinfectCycles
}

// Counts returns the fill cycle counts since startup.
func (m *FillMachine) Counts() FillCounts {
	return m.counts
}
