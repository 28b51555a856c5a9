package io

// Buzzer tracks the sound signal derived from the sound timer.
//
// Each change of state is queued for the host, and optionally reported
// through OnChange.
type Buzzer struct {
	OnChange func(active bool) // Called on each state change, if set.

	active bool
	edges  []bool
}

// Reset the buzzer to silent, dropping any queued changes.
func (bz *Buzzer) Reset() {
	bz.active = false
	bz.edges = nil
}

// Active returns the current state.
func (bz *Buzzer) Active() bool {
	return bz.active
}

// Update the buzzer state.
func (bz *Buzzer) Update(active bool) {
	if active == bz.active {
		return
	}

	bz.active = active
	bz.edges = append(bz.edges, active)

	if bz.OnChange != nil {
		bz.OnChange(active)
	}
}

// Await returns the oldest queued change of state.
func (bz *Buzzer) Await() (active bool, ok bool) {
	if len(bz.edges) > 0 {
		ok = true
		active = bz.edges[0]
		bz.edges = bz.edges[1:]
	}
	return
}
