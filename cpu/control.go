package cpu

// ControlSignal is a maintenance request raised by the running program.
type ControlSignal int

const (
	SIGNAL_NONE        = ControlSignal(0) // none
	SIGNAL_SOFT_REBOOT = ControlSignal(1) // soft reboot
	SIGNAL_SHUTDOWN    = ControlSignal(2) // shutdown
)

func (cs ControlSignal) String() string {
	switch cs {
	case SIGNAL_NONE:
		return "none"
	case SIGNAL_SOFT_REBOOT:
		return "soft-reboot"
	case SIGNAL_SHUTDOWN:
		return "shutdown"
	}
	return "?"
}

// raise records a control signal; the cycle ends after the current
// instruction. Shutdown takes precedence over a reboot.
func (cpu *Cpu) raise(signal ControlSignal) {
	if signal > cpu.signal {
		cpu.signal = signal
	}
}
