package machine

import "time"

// Sim is a deterministic, in-memory fake of Firmware. It is not a µMPS3
// emulator: it only satisfies the handful of operations the nucleus calls,
// and its time-of-day clock advances only when the test driving it calls
// Advance, so every test using it is fully reproducible.
type Sim struct {
	bios    State
	vector  PassUpVector
	devices DeviceRegBank
	pending InterruptBitmap

	now       time.Duration
	timer     time.Duration
	timerSet  bool
	interval  time.Duration

	halted  bool
	waiting bool
	panic   *PanicRecord

	loaded []State // history of LoadState calls, most recent last
}

// PanicRecord captures the reason passed to Panic, for test assertions.
type PanicRecord struct {
	Reason string
}

func NewSim() *Sim {
	return &Sim{}
}

func (m *Sim) LoadState(s *State) {
	m.bios = *s
	m.loaded = append(m.loaded, *s)
	m.waiting = false
}

// LastLoaded returns the most recently loaded state and true, or the zero
// state and false if LoadState has never been called.
func (m *Sim) LastLoaded() (State, bool) {
	if len(m.loaded) == 0 {
		return State{}, false
	}
	return m.loaded[len(m.loaded)-1], true
}

func (m *Sim) LoadContext(ctx ContextDescriptor) {
	m.bios.Reg[RegSP] = ctx.SP
	m.bios.Status = ctx.Status
	m.bios.PC = ctx.PC
	m.loaded = append(m.loaded, m.bios)
	m.waiting = false
}

func (m *Sim) Halt() { m.halted = true }

func (m *Sim) Halted() bool { return m.halted }

func (m *Sim) WaitForInterrupt() { m.waiting = true }

func (m *Sim) Waiting() bool { return m.waiting }

func (m *Sim) Panic(reason string) {
	if m.panic == nil {
		m.panic = &PanicRecord{Reason: reason}
	}
}

// Panicked returns the first panic recorded, or nil if none occurred.
func (m *Sim) Panicked() *PanicRecord { return m.panic }

func (m *Sim) SetTimer(d time.Duration) {
	m.timer = d
	m.timerSet = true
}

func (m *Sim) TimerValue() time.Duration { return m.timer }

func (m *Sim) LoadIntervalTimer(d time.Duration) { m.interval = d }

func (m *Sim) IntervalValue() time.Duration { return m.interval }

func (m *Sim) TOD() time.Duration { return m.now }

// Advance moves the simulated clock forward by d and counts it down
// against the armed local timer, returning true if the timer expired
// during this advance (the caller is expected to then deliver a timer
// interrupt).
func (m *Sim) Advance(d time.Duration) (timerFired bool) {
	m.now += d
	if m.timerSet {
		m.timer -= d
		if m.timer <= 0 {
			m.timer = 0
			timerFired = true
		}
	}
	return timerFired
}

func (m *Sim) BiosDataPage() *State { return &m.bios }

func (m *Sim) PassUpVector() *PassUpVector { return &m.vector }

func (m *Sim) DeviceRegs() *DeviceRegBank { return &m.devices }

func (m *Sim) PendingLines() InterruptBitmap { return m.pending }

// RaiseLine marks device dev on line index (0 == hardware line 3) pending,
// for a test to simulate an incoming device interrupt.
func (m *Sim) RaiseLine(lineIdx, dev int) {
	m.pending[lineIdx] |= 1 << dev
}

// ClearLine unmarks device dev on line index as pending.
func (m *Sim) ClearLine(lineIdx, dev int) {
	m.pending[lineIdx] &^= 1 << dev
}
