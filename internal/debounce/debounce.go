// Package debounce filters the motion and light-blocked inputs so that only
// levels held for a minimum time reach the board state.
// It has no GPIO or clock dependencies; time comes in with each sample.
package debounce

import "time"

// DefaultHold is the default minimum time a new input level must persist.
const DefaultHold = 250 * time.Millisecond

// Input names a debounced input.
type Input string

const (
	InputMotion Input = "motion"
	InputLight  Input = "light"
)

// Sample is one reading of both inputs.
type Sample struct {
	Motion       bool
	LightBlocked bool
	Time         time.Time
}

// Change is a debounced level change to apply to the board.
type Change struct {
	Time  time.Time
	Input Input
	Value bool

	// Baseline is set on the changes reporting the first stable levels.
	Baseline bool
}

// Counts tracks the number of debounced transitions since startup.
type Counts struct {
	MotionOn       int
	MotionOff      int
	LightBlocked   int
	LightUnblocked int
}

type channel struct {
	stable       bool
	pending      bool
	hasPending   bool
	pendingSince time.Time
	baselined    bool
}

// observe feeds one level into the channel and reports whether the stable
// level changed. Reaching the first stable level is not a change.
func (c *channel) observe(v bool, now time.Time, hold time.Duration) bool {
	if c.baselined && v == c.stable {
		c.hasPending = false
		return false
	}
	if !c.hasPending || c.pending != v {
		c.pending = v
		c.hasPending = true
		c.pendingSince = now
	}
	if now.Sub(c.pendingSince) < hold {
		return false
	}

	c.hasPending = false
	if !c.baselined {
		c.stable = v
		c.baselined = true
		return false
	}
	c.stable = v
	return true
}

// Detector debounces both inputs. A hold of zero passes every level change
// through on the sample that shows it.
type Detector struct {
	hold      time.Duration
	motion    channel
	light     channel
	baselined bool
	counts    Counts
}

// New creates a Detector with the given hold time.
func New(hold time.Duration) *Detector {
	return &Detector{hold: hold}
}

// Process takes a new sample and returns the changes to apply, motion first.
// Nothing is returned until both inputs are stable; at that point one
// Baseline change per input reports the starting levels.
func (d *Detector) Process(s Sample) []Change {
	motionChanged := d.motion.observe(s.Motion, s.Time, d.hold)
	lightChanged := d.light.observe(s.LightBlocked, s.Time, d.hold)

	if !d.baselined {
		if !d.motion.baselined || !d.light.baselined {
			return nil
		}
		d.baselined = true
		return []Change{
			{Time: s.Time, Input: InputMotion, Value: d.motion.stable, Baseline: true},
			{Time: s.Time, Input: InputLight, Value: d.light.stable, Baseline: true},
		}
	}

	var changes []Change
	if motionChanged {
		changes = append(changes, Change{Time: s.Time, Input: InputMotion, Value: d.motion.stable})
		if d.motion.stable {
			d.counts.MotionOn++
		} else {
			d.counts.MotionOff++
		}
	}
	if lightChanged {
		changes = append(changes, Change{Time: s.Time, Input: InputLight, Value: d.light.stable})
		if d.light.stable {
			d.counts.LightBlocked++
		} else {
			d.counts.LightUnblocked++
		}
	}
	return changes
}

// Baselined reports whether both inputs have reached a stable level.
func (d *Detector) Baselined() bool {
	return d.baselined
}

// Current returns the stable levels. They are meaningless before Baselined.
func (d *Detector) Current() (motion, lightBlocked bool) {
	return d.motion.stable, d.light.stable
}

// Counts returns the transition counts since startup.
func (d *Detector) Counts() Counts {
	return d.counts
}
