package cpu

// Record describes one retired instruction. Text is the disassembly composed
// when the opcode was fetched; the register snapshot is taken after the last
// executed step.
type Record struct {
	PC       uint16
	Opcode   byte
	Prefixed bool
	Text     string
	Cycles   int

	Regs Registers
	SP   uint16
	IME  bool
	IF   byte
	IE   byte
}

// Tracer receives one Record per retired instruction. The core calls it but
// never owns or configures it.
type Tracer interface {
	Trace(r Record)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(r Record)

func (f TracerFunc) Trace(r Record) { f(r) }
