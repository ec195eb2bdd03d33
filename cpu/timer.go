package cpu

import (
	"time"

	"github.com/ezrec/awl/dtype"
)

// TimerMode is the start variant of a timer.
type TimerMode int

const (
	TIMER_NONE = TimerMode(0) // -
	TIMER_SI   = TimerMode(1) // pulse
	TIMER_SV   = TimerMode(2) // extended pulse
	TIMER_SE   = TimerMode(3) // on delay
	TIMER_SS   = TimerMode(4) // retentive on delay
	TIMER_SA   = TimerMode(5) // off delay
)

// Timer is an S5 timer. Time runs against the engine clock.
type Timer struct {
	Mode    TimerMode
	Running bool
	Status  bool          // Timer output, as read by U T.
	Start   time.Duration // Engine time the timer started.
	Preset  time.Duration
	Base    time.Duration // Time base of the loaded S5TIME.

	edge   bool // VKE of the last start instruction.
	enable bool // VKE of the last FR.
}

// update expires a running timer.
func (t *Timer) update(now time.Duration) {
	if !t.Running || now-t.Start < t.Preset {
		return
	}
	t.Running = false
	switch t.Mode {
	case TIMER_SE, TIMER_SS:
		t.Status = true
	default:
		t.Status = false
	}
}

// Remaining returns the time left on a running timer.
func (t *Timer) Remaining(now time.Duration) time.Duration {
	t.update(now)
	if !t.Running {
		return 0
	}
	return t.Preset - (now - t.Start)
}

// Value returns the remaining time in units of the time base.
func (t *Timer) Value(now time.Duration) (value uint16) {
	remaining := t.Remaining(now)
	if t.Base == 0 {
		return
	}
	left := remaining / t.Base
	if remaining%t.Base != 0 {
		left++
	}
	value = uint16(min(left, dtype.BCD16_MAX))
	return
}

// S5Time returns the remaining time as an S5TIME word.
func (t *Timer) S5Time(now time.Duration) uint16 {
	value := t.Value(now)
	base := t.Base
	if base == 0 {
		base = 10 * time.Millisecond
	}
	return dtype.BaseToS5Time(value, base)
}

// Output returns the timer status.
func (t *Timer) Output(now time.Duration) bool {
	t.update(now)
	return t.Status
}

func (t *Timer) begin(s5t uint16, now time.Duration) (err error) {
	preset, base, err := dtype.S5TimeToDuration(s5t)
	if err != nil {
		return
	}
	t.Preset = preset
	t.Base = base
	t.Start = now
	t.Running = true
	return
}

func (t *Timer) stop() {
	t.Running = false
}

// Run executes a start instruction of 'mode' with the current VKE and
// the S5TIME from ACCU1.
func (t *Timer) Run(mode TimerMode, vke bool, s5t uint16, now time.Duration) (err error) {
	t.update(now)

	rising := vke && !t.edge
	falling := !vke && t.edge
	t.edge = vke

	if t.Mode != mode && !rising {
		// A different start variant only takes over on an edge.
		return
	}
	t.Mode = mode

	switch mode {
	case TIMER_SI:
		if rising {
			err = t.begin(s5t, now)
			t.Status = err == nil
		}
		if !vke {
			t.stop()
			t.Status = false
		}
	case TIMER_SV:
		if rising {
			err = t.begin(s5t, now)
			t.Status = err == nil
		}
	case TIMER_SE:
		if rising {
			t.Status = false
			err = t.begin(s5t, now)
		}
		if !vke {
			t.stop()
			t.Status = false
		}
	case TIMER_SS:
		if rising {
			err = t.begin(s5t, now)
		}
	case TIMER_SA:
		if rising {
			t.stop()
			t.Status = true
		}
		if falling {
			err = t.begin(s5t, now)
		}
	}

	// Zero length timers expire at once.
	t.update(now)
	return
}

// Reset stops the timer and clears its output.
func (t *Timer) Reset() {
	t.Running = false
	t.Status = false
	t.Start = 0
	t.Preset = 0
}

// Enable runs FR: a rising VKE allows the next start to retrigger.
func (t *Timer) Enable(vke bool) {
	if vke && !t.enable {
		t.edge = false
	}
	t.enable = vke
}
