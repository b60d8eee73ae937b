package cpu

// Reader is the read half of the bus. The disassembler only needs this.
type Reader interface {
	Read(addr uint16) byte
}

// Bus is everything the core needs from the surrounding system. Reads and
// writes may have side effects (memory-mapped IO); the core does not
// distinguish. Only the low 5 bits of IF and IE are interpreted.
type Bus interface {
	Reader
	Write(addr uint16, value byte)

	InterruptFlag() byte
	SetInterruptFlag(v byte)
	InterruptEnable() byte
	SetInterruptEnable(v byte)
}

// TraceGate is optionally implemented by a Bus that decides whether retired
// instructions should be reported to the attached Tracer.
type TraceGate interface {
	BootROMMounted() bool
	TraceEnabled() bool
}

// Waker is optionally implemented by a Bus that can end a STOP. It is
// queried once per cycle while the CPU is stopped.
type Waker interface {
	StopWake() bool
}

const (
	intVBlank byte = 1 << iota
	intSTAT
	intTimer
	intSerial
	intJoypad

	intMask byte = 0x1F
)
