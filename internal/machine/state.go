// Package machine models the firmware contract the nucleus consumes: the
// saved processor state, the pass-up vector, the device register bank, and
// the machine operations (load state, halt, wait, panic, timers, TOD) that
// a real µMPS3 simulator would provide. None of this is a CPU emulator,
// it is only the surface the nucleus actually calls.
package machine

import "time"

// Register slot indices, aliasing MIPS GPRs $1..$31 ($0 is hardwired zero
// and is not part of the saved state): argument registers a0..a3, return
// registers v0/v1, the stack pointer, and so on.
const (
	RegAT  = 0
	RegV0  = 1
	RegV1  = 2
	RegA0  = 3
	RegA1  = 4
	RegA2  = 5
	RegA3  = 6
	RegT0  = 7
	RegT1  = 8
	RegT2  = 9
	RegT3  = 10
	RegT4  = 11
	RegT5  = 12
	RegT6  = 13
	RegT7  = 14
	RegS0  = 15
	RegS1  = 16
	RegS2  = 17
	RegS3  = 18
	RegS4  = 19
	RegS5  = 20
	RegS6  = 21
	RegS7  = 22
	RegT8  = 23
	RegT9  = 24
	RegK0  = 25
	RegK1  = 26
	RegGP  = 27
	RegSP  = 28
	RegFP  = 29
	RegRA  = 30

	NumRegs = 31
)

// Exception cause codes, bits 2..6 of the Cause word.
const (
	ExcInterrupt = 0
	ExcTLBMod    = 1
	ExcTLBLoad   = 2
	ExcTLBStore  = 3
	ExcAdrErrRef = 4
	ExcAdrErrWr  = 5
	ExcBusErrInstr = 6
	ExcBusErrData  = 7
	ExcSyscall   = 8
	ExcBreak     = 9
	ExcRI        = 10
	ExcCoprocUnusable = 11
	ExcOverflow  = 12
)

// StatusUserMode is the bit in Status that, when set, indicates the saved
// state was executing in user mode.
const StatusUserMode = 1 << 1

// State is the full processor state saved by firmware on every trap: the
// BIOS data page's contents. It is copied by value into and out of PCBs;
// the nucleus never holds a pointer into the live BIOS data page across a
// trap boundary.
type State struct {
	EntryHi uint32
	Cause   uint32
	Status  uint32
	PC      uint32
	Reg     [NumRegs]uint32

	// Arg1Ptr/Arg2Ptr stand in for what a1/a2 would address in the real
	// machine's flat memory when a syscall's argument is a pointer
	// (CREATE_PROCESS's initial state and support structure, P/V's
	// semaphore address) rather than a plain integer. Full virtual
	// memory is a support-layer concern out of scope for the nucleus;
	// callers set these directly instead of computing a real address.
	// Plain-integer arguments (WAIT_FOR_IO's line/device/flag) still
	// travel through Reg like real a1..a3.
	Arg1Ptr any
	Arg2Ptr any

	// RetPtr stands in for a pointer-valued return in v0 (GET_SUPPORT_DATA
	// returns the caller's support-structure pointer), for the same
	// reason Arg1Ptr/Arg2Ptr exist.
	RetPtr any
}

func (s *State) A0() uint32  { return s.Reg[RegA0] }
func (s *State) A1() uint32  { return s.Reg[RegA1] }
func (s *State) A2() uint32  { return s.Reg[RegA2] }
func (s *State) A3() uint32  { return s.Reg[RegA3] }
func (s *State) V0() uint32  { return s.Reg[RegV0] }
func (s *State) V1() uint32  { return s.Reg[RegV1] }
func (s *State) SP() uint32  { return s.Reg[RegSP] }

func (s *State) SetV0(v uint32) { s.Reg[RegV0] = v }
func (s *State) SetV1(v uint32) { s.Reg[RegV1] = v }
func (s *State) SetSP(v uint32) { s.Reg[RegSP] = v }

// IsUserMode reports whether the saved Status indicates user mode.
func (s *State) IsUserMode() bool { return s.Status&StatusUserMode != 0 }

// ExcCode extracts bits 2..6 of the cause word.
func ExcCode(cause uint32) uint32 { return (cause >> 2) & 0x1f }

// SetExcCode rewrites bits 2..6 of the cause word, leaving the rest intact.
func SetExcCode(cause uint32, code uint32) uint32 {
	return (cause &^ (0x1f << 2)) | ((code & 0x1f) << 2)
}

// PendingInterrupts extracts the pending-interrupt bitmap, bits 8..15 of
// the cause word. Bit for line 0 is ignored on this uniprocessor.
func PendingInterrupts(cause uint32) uint8 {
	return uint8((cause >> 8) & 0xff)
}

// ContextDescriptor is the (stack pointer, status, PC) triple that names
// where the support layer resumes after a pass-up.
type ContextDescriptor struct {
	SP     uint32
	Status uint32
	PC     uint32
}

// PassUpIndex names which of the two pass-up slots (TLB/page-fault vs.
// general exception) an exception belongs to.
type PassUpIndex int

const (
	PassUpPageFault PassUpIndex = iota
	PassUpGeneral
	numPassUpIndices
)

// PassUpVector is the firmware-defined table the nucleus writes at boot:
// one (handler address, stack pointer) pair per pass-up index.
type PassUpVector struct {
	Handler [numPassUpIndices]uintptr
	Stack   [numPassUpIndices]uint32
}

// DeviceField names one of a device's four 32-bit registers.
type DeviceField int

const (
	FieldStatus DeviceField = iota
	FieldCommand
	FieldData0
	FieldData1
)

const (
	NumLines   = 5 // lines 3..7
	NumDevices = 8
)

// DeviceRegBank is the fixed 5x8x4 memory-mapped device register area.
// Line index 0 here corresponds to interrupt line 3.
type DeviceRegBank struct {
	Regs [NumLines][NumDevices][4]uint32
}

func (b *DeviceRegBank) Status(line, dev int) uint32  { return b.Regs[line][dev][FieldStatus] }
func (b *DeviceRegBank) Command(line, dev int) uint32 { return b.Regs[line][dev][FieldCommand] }

func (b *DeviceRegBank) SetCommand(line, dev int, v uint32) {
	b.Regs[line][dev][FieldCommand] = v
}

// Terminal lines (line index NumLines-1, i.e. hardware line 7) alias
// Data0/Data1 as the transmit status/command sub-register.
func (b *DeviceRegBank) TransmitStatus(dev int) uint32 {
	return b.Regs[NumLines-1][dev][FieldData0]
}

func (b *DeviceRegBank) SetTransmitCommand(dev int, v uint32) {
	b.Regs[NumLines-1][dev][FieldData1] = v
}

// InterruptBitmap reports, per line (index 0 == hardware line 3), whether
// each of the 8 devices on that line has a pending interrupt.
type InterruptBitmap [NumLines]uint8

// Firmware is the subset of the simulator's contract the nucleus actually
// calls: load/resume a process, halt, wait for an interrupt, panic, arm
// the local timer and the interval timer, and read the time-of-day clock.
// This stands in for the BIOS data page, pass-up vector, and device
// register area.
type Firmware interface {
	LoadState(s *State)
	LoadContext(ctx ContextDescriptor)
	Halt()
	WaitForInterrupt()
	Panic(reason string)
	SetTimer(d time.Duration)
	TimerValue() time.Duration
	LoadIntervalTimer(d time.Duration)
	TOD() time.Duration
	BiosDataPage() *State
	PassUpVector() *PassUpVector
	DeviceRegs() *DeviceRegBank
	PendingLines() InterruptBitmap
}
