package board

import "sync"

// State holds the mutable board state behind an RWMutex.
// The controller mutates it; the sender only reads snapshots.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// New creates a State initialised with Default().
func New() *State {
	return &State{snap: Default()}
}

// Snapshot returns a point-in-time copy of the board state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	return snap
}

// SetMotion sets the motion-detected input.
func (s *State) SetMotion(on bool) {
	s.mu.Lock()
	s.snap.Motion = on
	s.mu.Unlock()
}

// SetLightBlocked sets the light sensor and recomputes the ultra-bright LED.
// Blocking the light forces the LED off and clears a manual stop.
// Unblocking forces the LED on unless it was stopped by hand.
func (s *State) SetLightBlocked(blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.LightBlocked = blocked
	if blocked {
		s.snap.UltraLED = false
		s.snap.ManualStop = false
		return
	}
	s.snap.UltraLED = !s.snap.ManualStop
}

// SetUltraLED switches the ultra-bright LED. Turning it on while the light
// is blocked is rejected. Turning it off is a manual stop.
func (s *State) SetUltraLED(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !on {
		s.stopUltraLocked()
		return true
	}
	if s.snap.LightBlocked {
		return false
	}
	s.snap.UltraLED = true
	s.snap.ManualStop = false
	return true
}

// StopUltraLED switches the ultra-bright LED off by hand.
func (s *State) StopUltraLED() {
	s.mu.Lock()
	s.stopUltraLocked()
	s.mu.Unlock()
}

func (s *State) stopUltraLocked() {
	s.snap.UltraLED = false
	// A blocked light already keeps the LED off; only latch when unblocked.
	if !s.snap.LightBlocked {
		s.snap.ManualStop = true
	}
}

// SetTemperature sets the temperature if it is within bounds.
// Returns false and keeps the previous value otherwise.
func (s *State) SetTemperature(v float64) bool {
	if !ValidTemperature(v) {
		return false
	}
	s.mu.Lock()
	s.snap.Temperature = v
	s.mu.Unlock()
	return true
}

// SetHumidity sets the humidity if it is within bounds.
// Returns false and keeps the previous value otherwise.
func (s *State) SetHumidity(v float64) bool {
	if !ValidHumidity(v) {
		return false
	}
	s.mu.Lock()
	s.snap.Humidity = v
	s.mu.Unlock()
	return true
}

// SetLED sets LED i (0-based). Returns false if i is out of range.
func (s *State) SetLED(i int, on bool) bool {
	if i < 0 || i >= NumLEDs {
		return false
	}
	s.mu.Lock()
	s.snap.LEDs[i] = on
	s.mu.Unlock()
	return true
}

// SetBuzzer sets the buzzer.
func (s *State) SetBuzzer(on bool) {
	s.mu.Lock()
	s.snap.Buzzer = on
	s.mu.Unlock()
}

// SetID sets the identifier if ValidID accepts it.
// Returns false and keeps the previous value otherwise.
func (s *State) SetID(id string) bool {
	if !ValidID(id) {
		return false
	}
	s.mu.Lock()
	s.snap.ID = id
	s.mu.Unlock()
	return true
}

// SetSendingActive sets whether the sender may transmit.
func (s *State) SetSendingActive(active bool) {
	s.mu.Lock()
	s.snap.SendingActive = active
	s.mu.Unlock()
}

// ToggleSending flips SendingActive and returns the new value.
func (s *State) ToggleSending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.SendingActive = !s.snap.SendingActive
	return s.snap.SendingActive
}
