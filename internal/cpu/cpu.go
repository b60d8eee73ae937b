package cpu

// PowerState is the interrupt and power-state controller's state.
type PowerState uint8

const (
	Running PowerState = iota
	Halted
	Stopped
)

func (s PowerState) String() string {
	switch s {
	case Halted:
		return "halted"
	case Stopped:
		return "stopped"
	}
	return "running"
}

// CPU is a cycle-stepped SM83 core. Every call to Tick advances exactly one
// machine cycle; an instruction is a sequence of micro-operations executed
// one per Tick.
type CPU struct {
	Registers

	SP uint16
	PC uint16

	ime       bool
	eiPending bool // EI executed; IME is set at the next fetch
	halted    bool
	stopped   bool
	haltBug   bool // next fetch does not advance PC
	prefixed  bool // 0xCB fetched; next fetch uses the CB table

	steps []MicroOp
	next  int
	z, w  byte // latched immediate / popped word

	cur    inflight
	cycles uint64
	fault  error

	bus    Bus
	tracer Tracer
}

// inflight describes the instruction being executed, for tracing.
type inflight struct {
	pc       uint16
	opcode   byte
	prefixed bool
	text     string
	cycles   int
	traced   bool
}

// New creates a CPU in its power-on state.
func New(b Bus) *CPU {
	c := &CPU{bus: b, steps: make([]MicroOp, 0, 8)}
	c.Reset()
	return c
}

// Reset reinitialises all CPU state to power-on values, clearing any fault.
// The boot ROM at 0x0000 is expected to set up the rest.
func (c *CPU) Reset() {
	c.Registers = Registers{}
	c.SP = 0xFFFE
	c.PC = 0x0000
	c.clearControl()
}

// ResetNoBoot sets registers to typical DMG post-boot state.
// Useful when running without a boot ROM.
func (c *CPU) ResetNoBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.clearControl()
}

func (c *CPU) clearControl() {
	c.ime = false
	c.eiPending = false
	c.halted = false
	c.stopped = false
	c.haltBug = false
	c.prefixed = false
	c.steps = c.steps[:0]
	c.next = 0
	c.z, c.w = 0, 0
	c.cur = inflight{}
	c.cycles = 0
	c.fault = nil
}

// SetPC allows tests or a boot stub to set the program counter.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// SetTracer attaches a sink for retired instructions. nil detaches.
func (c *CPU) SetTracer(t Tracer) { c.tracer = t }

// Cycles is the number of machine cycles elapsed since Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// IME reports the interrupt master enable flag.
func (c *CPU) IME() bool { return c.ime }

// SetIME sets the interrupt master enable flag directly, for tests and boot
// stubs. It also cancels a pending EI.
func (c *CPU) SetIME(on bool) {
	c.ime = on
	c.eiPending = false
}

func (c *CPU) Halted() bool  { return c.halted }
func (c *CPU) Stopped() bool { return c.stopped }

// Faulted returns the fatal error that stopped the CPU, if any.
func (c *CPU) Faulted() error { return c.fault }

// State reports the power state.
func (c *CPU) State() PowerState {
	switch {
	case c.stopped:
		return Stopped
	case c.halted:
		return Halted
	}
	return Running
}

// InFlight reports whether an instruction (or interrupt dispatch) has
// remaining steps, i.e. the CPU is not at an instruction boundary.
func (c *CPU) InFlight() bool { return c.next < len(c.steps) || c.prefixed }

// Tick advances the CPU by one machine cycle. The only error is the fatal
// illegal-opcode fault, which is returned again on every later Tick until
// Reset.
func (c *CPU) Tick() error {
	if c.fault != nil {
		return c.fault
	}

	if c.next < len(c.steps) {
		c.execute()
		c.cycles++
		return nil
	}

	if !c.prefixed && !c.boundary() {
		// idle cycle in HALT or STOP
		c.cycles++
		return nil
	}

	return c.fetch()
}

// Step runs Ticks until the next instruction boundary and returns the number
// of machine cycles consumed. A halted or stopped CPU idles for one cycle.
func (c *CPU) Step() (cycles int, err error) {
	start := c.cycles
	for {
		if err = c.Tick(); err != nil {
			return int(c.cycles - start), err
		}
		if !c.InFlight() {
			return int(c.cycles - start), nil
		}
	}
}

// fetch reads the opcode at PC, decodes it and executes its first step in
// the same cycle. An illegal opcode faults without changing any state.
func (c *CPU) fetch() error {
	pc := c.PC
	op := c.bus.Read(pc)

	var e *entry
	if c.prefixed {
		e = &cbTable[op]
	} else {
		e = &baseTable[op]
		if e.illegal {
			c.fault = &IllegalOpcodeError{Opcode: op, PC: pc}
			return c.fault
		}
	}

	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}

	if c.prefixed {
		c.prefixed = false
		c.cur.opcode = op
		c.cur.prefixed = true
		if c.cur.traced {
			c.cur.text = Disassemble(c.bus, c.PC, op, true)
		}
	} else {
		c.cur = inflight{pc: pc, opcode: op, traced: c.tracing()}
		if c.cur.traced && !e.prefix {
			c.cur.text = Disassemble(c.bus, c.PC, op, false)
		}
	}

	c.steps = append(c.steps[:0], e.steps...)
	c.next = 0
	c.cycles++

	if e.prefix {
		c.prefixed = true
		c.cur.cycles++
		return nil
	}
	c.execute()
	return nil
}

// execute runs the next step of the in-flight sequence.
func (c *CPU) execute() {
	s := &c.steps[c.next]
	c.next++
	c.cur.cycles++
	c.exec(s)
	if c.next >= len(c.steps) {
		c.retire()
	}
}

func (c *CPU) retire() {
	if !c.cur.traced || c.tracer == nil {
		return
	}
	c.tracer.Trace(Record{
		PC:       c.cur.pc,
		Opcode:   c.cur.opcode,
		Prefixed: c.cur.prefixed,
		Text:     c.cur.text,
		Cycles:   c.cur.cycles,
		Regs:     c.Registers,
		SP:       c.SP,
		IME:      c.ime,
		IF:       c.bus.InterruptFlag(),
		IE:       c.bus.InterruptEnable(),
	})
}

func (c *CPU) tracing() bool {
	if c.tracer == nil {
		return false
	}
	if g, ok := c.bus.(TraceGate); ok {
		return g.TraceEnabled() && !g.BootROMMounted()
	}
	return true
}

func (c *CPU) read(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) wz() uint16 { return uint16(c.w)<<8 | uint16(c.z) }

func (c *CPU) pair(p Pair) uint16 {
	switch p {
	case PairBC:
		return c.BC()
	case PairDE:
		return c.DE()
	case PairHL:
		return c.HL()
	case PairAF:
		return c.AF()
	}
	return c.SP
}

func (c *CPU) setPair(p Pair, v uint16) {
	switch p {
	case PairBC:
		c.SetBC(v)
	case PairDE:
		c.SetDE(v)
	case PairHL:
		c.SetHL(v)
	case PairAF:
		c.SetAF(v)
	default:
		c.SP = v
	}
}

func (c *CPU) push(v byte) {
	c.SP--
	c.write(c.SP, v)
}

func (c *CPU) pop() byte {
	v := c.read(c.SP)
	c.SP++
	return v
}

// exec performs one micro-operation.
func (c *CPU) exec(s *MicroOp) {
	switch s.Kind {
	case OpDelay:

	case OpFetchLo:
		c.z = c.read(c.PC)
		c.PC++
	case OpFetchHi:
		c.w = c.read(c.PC)
		c.PC++

	case OpLdRR:
		c.Set(s.Dst, c.Get(s.Src))
	case OpLdRImm:
		c.Set(s.Dst, c.read(c.PC))
		c.PC++
	case OpLdRMem:
		addr := c.pair(s.Pair)
		c.Set(s.Dst, c.read(addr))
		c.adjustHL(s)
	case OpLdMemR:
		addr := c.pair(s.Pair)
		c.write(addr, c.Get(s.Src))
		c.adjustHL(s)
	case OpLdMemHLImm:
		c.write(c.HL(), c.z)
	case OpLdRAbs:
		c.Set(s.Dst, c.read(c.wz()))
	case OpLdAbsR:
		c.write(c.wz(), c.Get(s.Src))
	case OpLdRHigh:
		c.Set(s.Dst, c.read(0xFF00|uint16(c.z)))
	case OpLdHighR:
		c.write(0xFF00|uint16(c.z), c.Get(s.Src))
	case OpLdRHighC:
		c.Set(s.Dst, c.read(0xFF00|uint16(c.C)))
	case OpLdHighCR:
		c.write(0xFF00|uint16(c.C), c.Get(s.Src))
	case OpLdPairImm:
		c.setPair(s.Pair, c.wz())
	case OpLdSPHL:
		c.SP = c.HL()
	case OpLdHLSPImm:
		c.SetHL(c.spOffset(c.z))
	case OpStoreSPLo:
		c.write(c.wz(), byte(c.SP))
	case OpStoreSPHi:
		c.write(c.wz()+1, byte(c.SP>>8))

	case OpALUReg:
		c.alu(s.ALU, c.Get(s.Src))
	case OpALUMem:
		c.alu(s.ALU, c.read(c.HL()))
	case OpALUImm:
		c.alu(s.ALU, c.z)

	case OpIncR:
		c.Set(s.Dst, c.inc8(c.Get(s.Dst)))
	case OpDecR:
		c.Set(s.Dst, c.dec8(c.Get(s.Dst)))
	case OpIncPair:
		c.setPair(s.Pair, c.pair(s.Pair)+1)
	case OpDecPair:
		c.setPair(s.Pair, c.pair(s.Pair)-1)
	case OpAddHLPair:
		c.addHL(c.pair(s.Pair))
	case OpAddSPImm:
		c.SP = c.spOffset(c.z)
	case OpReadHL:
		c.z = c.read(c.HL())
	case OpIncMem:
		c.write(c.HL(), c.inc8(c.z))
	case OpDecMem:
		c.write(c.HL(), c.dec8(c.z))

	case OpPushR:
		c.push(c.Get(s.Src))
	case OpPopR:
		c.Set(s.Dst, c.pop())
	case OpPushPCHi:
		c.push(byte(c.PC >> 8))
	case OpPushPCLo:
		c.push(byte(c.PC))
	case OpPopZ:
		c.z = c.pop()
	case OpPopW:
		c.w = c.pop()

	case OpCond:
		if c.Flag(s.Flag) != s.Want {
			// condition failed: drop the rest of the sequence
			c.next = len(c.steps)
		}
	case OpJumpAbs, OpRet:
		c.PC = c.wz()
	case OpJumpRel:
		c.PC += uint16(int16(int8(c.z)))
	case OpJumpHL:
		c.PC = c.HL()
	case OpReti:
		c.PC = c.wz()
		c.ime = true
		c.eiPending = false
	case OpRestart:
		c.PC = s.Vector

	case OpDAA:
		c.daa()
	case OpCPL:
		c.A = ^c.A
		c.setZNHC(c.Flag(FlagZ), true, true, c.Flag(FlagC))
	case OpSCF:
		c.setZNHC(c.Flag(FlagZ), false, false, true)
	case OpCCF:
		c.setZNHC(c.Flag(FlagZ), false, false, !c.Flag(FlagC))
	case OpRLCA:
		c.rlca()
	case OpRLA:
		c.rla()
	case OpRRCA:
		c.rrca()
	case OpRRA:
		c.rra()
	case OpDI:
		c.ime = false
		c.eiPending = false
	case OpEI:
		c.eiPending = true
	case OpHalt:
		c.enterHalt()
	case OpStop:
		c.stopped = true

	case OpCBReg:
		if res, write := c.cb(s.CB, s.Bit, c.Get(s.Dst)); write {
			c.Set(s.Dst, res)
		}
	case OpCBMem:
		if res, write := c.cb(s.CB, s.Bit, c.z); write {
			c.write(c.HL(), res)
		}
	case OpBitMem:
		c.cb(CBBit, s.Bit, c.read(c.HL()))

	case OpVector:
		c.bus.SetInterruptFlag(c.bus.InterruptFlag() &^ (1 << s.Bit))
		c.PC = s.Vector
	}
}

func (c *CPU) adjustHL(s *MicroOp) {
	if s.Adj != 0 {
		c.SetHL(c.HL() + uint16(int16(s.Adj)))
	}
}

// Snapshot is a value copy of the CPU's architectural and control state.
// Two CPUs that have seen the same bus traffic from the same starting state
// produce equal snapshots.
type Snapshot struct {
	Registers
	SP, PC uint16

	IME       bool
	EIPending bool
	Halted    bool
	Stopped   bool
	HaltBug   bool
	Prefixed  bool

	Step   int
	Cycles uint64
}

// Snapshot returns the current state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		Registers: c.Registers,
		SP:        c.SP,
		PC:        c.PC,
		IME:       c.ime,
		EIPending: c.eiPending,
		Halted:    c.halted,
		Stopped:   c.stopped,
		HaltBug:   c.haltBug,
		Prefixed:  c.prefixed,
		Step:      c.next,
		Cycles:    c.cycles,
	}
}
