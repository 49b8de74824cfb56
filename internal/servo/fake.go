package servo

import "sync"

// FakeLid records lid commands. It is safe for concurrent use so tests can
// inspect it while a loop is running.
type FakeLid struct {
	mu     sync.Mutex
	angles []int

	// Err, if set, will be returned by MoveLid.
	Err error
}

// NewFakeLid creates a FakeLid.
func NewFakeLid() *FakeLid {
	return &FakeLid{}
}

// MoveLid records the angle.
func (f *FakeLid) MoveLid(angle int) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	f.angles = append(f.angles, angle)
	f.mu.Unlock()
	return nil
}

// Angles returns a copy of all commanded angles.
func (f *FakeLid) Angles() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.angles...)
}

// Last returns the last commanded angle, or false if none.
func (f *FakeLid) Last() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.angles) == 0 {
		return 0, false
	}
	return f.angles[len(f.angles)-1], true
}
