// Package devsem computes the device semaphore table index arithmetic:
// a fixed array of integer semaphores indexed by (line-3)*8+device, plus
// one extra slot for the pseudo-clock, with terminal lines using two
// slots per device (receive and transmit).
package devsem

const (
	// Lines is the number of interrupt lines carrying device semaphores
	// (hardware lines 3..7).
	Lines = 5
	// Devices is the number of devices per line.
	Devices = 8
	// FirstLine is the lowest device interrupt line number.
	FirstLine = 3
	// TerminalLine is the hardware line number for terminals.
	TerminalLine = 7

	// baseTable is the size of the plain (line, device) grid.
	baseTable = Lines * Devices

	// Count is the total number of device semaphores: the base grid,
	// plus Devices extra transmit slots for the terminal line (line 7
	// uses base for receive and base+Devices for transmit), plus one
	// for the pseudo-clock. Line 7 device 0 transmit lands at index
	// (7-3)*8+0+8 = 40.
	Count = baseTable + Devices + 1

	// ClockIndex is the pseudo-clock's dedicated slot, the last one.
	ClockIndex = baseTable + Devices
)

// Index computes the device semaphore table index for (line, device).
// For the terminal line, wantRead selects the receive slot (true) or the
// transmit slot (false, base+8).
func Index(line, device int, wantRead bool) int {
	base := (line-FirstLine)*Devices + device
	if line == TerminalLine && !wantRead {
		base += Devices
	}
	return base
}

// IsDevice reports whether idx names a device semaphore (as opposed to
// the pseudo-clock slot), i.e. whether it falls in the dedicated range.
func IsDevice(idx int) bool {
	return idx >= 0 && idx < ClockIndex
}
