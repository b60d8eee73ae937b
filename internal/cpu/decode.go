package cpu

import "fmt"

// operand says which immediate bytes follow an opcode, for disassembly only.
type operand uint8

const (
	operandNone operand = iota
	operandN8           // n8: unsigned immediate byte
	operandN16          // n16: little-endian immediate word
	operandA16          // a16: little-endian absolute address
	operandA8           // a8: offset into the 0xFF00 page
	operandE8           // e8: relative jump displacement
	operandS8           // e8: signed SP offset
)

type entry struct {
	mnemonic string
	operand  operand
	steps    []MicroOp
	prefix   bool
	illegal  bool
}

// Instruction is a decode result. Steps is a private copy; mutating it does
// not affect later decodes.
type Instruction struct {
	Opcode   byte
	Prefixed bool // decoded from the CB table
	Prefix   bool // the 0xCB escape itself; Steps is empty
	Mnemonic string
	Steps    []MicroOp
}

// Cycles is the cycle count of the full sequence, i.e. the taken path of a
// conditional instruction. CB instructions do not include the prefix cycle.
func (in Instruction) Cycles() int { return len(in.Steps) }

var (
	baseTable [256]entry
	cbTable   [256]entry
)

var illegalOpcodes = [...]byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

// IsIllegal reports whether op is in the SM83's unassigned opcode set.
func IsIllegal(op byte) bool { return baseTable[op].illegal }

// Decode maps an opcode to its micro-operation sequence. It does not touch
// any CPU or bus state.
func Decode(op byte) (Instruction, error) {
	e := &baseTable[op]
	if e.illegal {
		return Instruction{Opcode: op}, &IllegalOpcodeError{Opcode: op}
	}
	return Instruction{
		Opcode:   op,
		Prefix:   e.prefix,
		Mnemonic: e.mnemonic,
		Steps:    append([]MicroOp(nil), e.steps...),
	}, nil
}

// DecodeCB maps the byte following a 0xCB prefix. Every value is defined.
func DecodeCB(op byte) Instruction {
	e := &cbTable[op]
	return Instruction{
		Opcode:   op,
		Prefixed: true,
		Mnemonic: e.mnemonic,
		Steps:    append([]MicroOp(nil), e.steps...),
	}
}

// r8 is the SM83 register encoding; index 6 is the byte at (HL).
var r8 = [8]Reg{RegB, RegC, RegD, RegE, RegH, RegL, 0, RegA}

const hlIndirect = 6

var r8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var conds = [4]struct {
	name string
	flag Flag
	want bool
}{
	{"NZ", FlagZ, false},
	{"Z", FlagZ, true},
	{"NC", FlagC, false},
	{"C", FlagC, true},
}

func delay() MicroOp   { return MicroOp{Kind: OpDelay} }
func fetchLo() MicroOp { return MicroOp{Kind: OpFetchLo} }
func fetchHi() MicroOp { return MicroOp{Kind: OpFetchHi} }

func cond(i int) MicroOp {
	return MicroOp{Kind: OpCond, Flag: conds[i].flag, Want: conds[i].want}
}

func seq(steps ...MicroOp) []MicroOp { return steps }

func def(op byte, mnemonic string, opnd operand, steps ...MicroOp) {
	baseTable[op] = entry{mnemonic: mnemonic, operand: opnd, steps: steps}
}

func init() {
	buildBase()
	buildCB()
}

func buildBase() {
	def(0x00, "NOP", operandNone, delay())

	// 16-bit immediates and pair arithmetic, in BC/DE/HL/SP order
	pairs := [4]Pair{PairBC, PairDE, PairHL, PairSP}
	for i, p := range pairs {
		base := byte(i) << 4
		def(base|0x01, "LD "+p.String()+",n16", operandN16,
			fetchLo(), fetchHi(), MicroOp{Kind: OpLdPairImm, Pair: p})
		def(base|0x03, "INC "+p.String(), operandNone,
			delay(), MicroOp{Kind: OpIncPair, Pair: p})
		def(base|0x0B, "DEC "+p.String(), operandNone,
			delay(), MicroOp{Kind: OpDecPair, Pair: p})
		def(base|0x09, "ADD HL,"+p.String(), operandNone,
			delay(), MicroOp{Kind: OpAddHLPair, Pair: p})
	}

	// accumulator through BC, DE, HL+ and HL-
	indirect := [4]struct {
		name string
		pair Pair
		adj  int8
	}{
		{"(BC)", PairBC, 0},
		{"(DE)", PairDE, 0},
		{"(HL+)", PairHL, 1},
		{"(HL-)", PairHL, -1},
	}
	for i, ind := range indirect {
		base := byte(i) << 4
		def(base|0x02, "LD "+ind.name+",A", operandNone,
			delay(), MicroOp{Kind: OpLdMemR, Pair: ind.pair, Src: RegA, Adj: ind.adj})
		def(base|0x0A, "LD A,"+ind.name, operandNone,
			delay(), MicroOp{Kind: OpLdRMem, Dst: RegA, Pair: ind.pair, Adj: ind.adj})
	}

	// INC r, DEC r, LD r,n8
	for i := 0; i < 8; i++ {
		y := byte(i) << 3
		name := r8Names[i]
		if i == hlIndirect {
			def(0x34, "INC (HL)", operandNone,
				delay(), MicroOp{Kind: OpReadHL}, MicroOp{Kind: OpIncMem})
			def(0x35, "DEC (HL)", operandNone,
				delay(), MicroOp{Kind: OpReadHL}, MicroOp{Kind: OpDecMem})
			def(0x36, "LD (HL),n8", operandN8,
				delay(), fetchLo(), MicroOp{Kind: OpLdMemHLImm})
			continue
		}
		r := r8[i]
		def(0x04|y, "INC "+name, operandNone, MicroOp{Kind: OpIncR, Dst: r})
		def(0x05|y, "DEC "+name, operandNone, MicroOp{Kind: OpDecR, Dst: r})
		def(0x06|y, "LD "+name+",n8", operandN8, delay(), MicroOp{Kind: OpLdRImm, Dst: r})
	}

	def(0x07, "RLCA", operandNone, MicroOp{Kind: OpRLCA})
	def(0x0F, "RRCA", operandNone, MicroOp{Kind: OpRRCA})
	def(0x17, "RLA", operandNone, MicroOp{Kind: OpRLA})
	def(0x1F, "RRA", operandNone, MicroOp{Kind: OpRRA})
	def(0x27, "DAA", operandNone, MicroOp{Kind: OpDAA})
	def(0x2F, "CPL", operandNone, MicroOp{Kind: OpCPL})
	def(0x37, "SCF", operandNone, MicroOp{Kind: OpSCF})
	def(0x3F, "CCF", operandNone, MicroOp{Kind: OpCCF})
	def(0x10, "STOP", operandNone, MicroOp{Kind: OpStop})

	def(0x08, "LD (a16),SP", operandA16,
		delay(), fetchLo(), fetchHi(), MicroOp{Kind: OpStoreSPLo}, MicroOp{Kind: OpStoreSPHi})

	def(0x18, "JR e8", operandE8, fetchLo(), delay(), MicroOp{Kind: OpJumpRel})
	for i, cc := range conds {
		y := byte(i) << 3
		def(0x20|y, "JR "+cc.name+",e8", operandE8,
			fetchLo(), cond(i), MicroOp{Kind: OpJumpRel})
		def(0xC0|y, "RET "+cc.name, operandNone,
			delay(), cond(i), MicroOp{Kind: OpPopZ}, MicroOp{Kind: OpPopW}, MicroOp{Kind: OpRet})
		def(0xC2|y, "JP "+cc.name+",a16", operandA16,
			fetchLo(), fetchHi(), cond(i), MicroOp{Kind: OpJumpAbs})
		def(0xC4|y, "CALL "+cc.name+",a16", operandA16,
			fetchLo(), fetchHi(), cond(i),
			MicroOp{Kind: OpPushPCHi}, MicroOp{Kind: OpPushPCLo}, MicroOp{Kind: OpJumpAbs})
	}

	// 0x40-0x7F: LD r,r' with HALT in place of LD (HL),(HL)
	for d := 0; d < 8; d++ {
		for s := 0; s < 8; s++ {
			op := byte(0x40 | d<<3 | s)
			name := "LD " + r8Names[d] + "," + r8Names[s]
			switch {
			case d == hlIndirect && s == hlIndirect:
				def(op, "HALT", operandNone, MicroOp{Kind: OpHalt})
			case d == hlIndirect:
				def(op, name, operandNone,
					delay(), MicroOp{Kind: OpLdMemR, Pair: PairHL, Src: r8[s]})
			case s == hlIndirect:
				def(op, name, operandNone,
					delay(), MicroOp{Kind: OpLdRMem, Pair: PairHL, Dst: r8[d]})
			default:
				def(op, name, operandNone, MicroOp{Kind: OpLdRR, Dst: r8[d], Src: r8[s]})
			}
		}
	}

	// 0x80-0xBF: ALU A,r and the matching immediate forms at 0xC6+8*op
	for o := 0; o < 8; o++ {
		alu := ALUOp(o)
		for s := 0; s < 8; s++ {
			op := byte(0x80 | o<<3 | s)
			name := alu.String() + " A," + r8Names[s]
			if s == hlIndirect {
				def(op, name, operandNone, delay(), MicroOp{Kind: OpALUMem, ALU: alu})
				continue
			}
			def(op, name, operandNone, MicroOp{Kind: OpALUReg, ALU: alu, Src: r8[s]})
		}
		def(byte(0xC6|o<<3), alu.String()+" A,n8", operandN8,
			fetchLo(), MicroOp{Kind: OpALUImm, ALU: alu})
	}

	// stack: BC, DE, HL, AF
	stack := [4]struct {
		name   string
		hi, lo Reg
	}{
		{"BC", RegB, RegC},
		{"DE", RegD, RegE},
		{"HL", RegH, RegL},
		{"AF", RegA, RegF},
	}
	for i, st := range stack {
		base := 0xC0 | byte(i)<<4
		def(base|0x01, "POP "+st.name, operandNone,
			delay(), MicroOp{Kind: OpPopR, Dst: st.lo}, MicroOp{Kind: OpPopR, Dst: st.hi})
		def(base|0x05, "PUSH "+st.name, operandNone,
			delay(), delay(), MicroOp{Kind: OpPushR, Src: st.hi}, MicroOp{Kind: OpPushR, Src: st.lo})
	}

	def(0xC3, "JP a16", operandA16, fetchLo(), fetchHi(), delay(), MicroOp{Kind: OpJumpAbs})
	def(0xCD, "CALL a16", operandA16,
		delay(), fetchLo(), fetchHi(),
		MicroOp{Kind: OpPushPCHi}, MicroOp{Kind: OpPushPCLo}, MicroOp{Kind: OpJumpAbs})
	def(0xC9, "RET", operandNone,
		delay(), MicroOp{Kind: OpPopZ}, MicroOp{Kind: OpPopW}, MicroOp{Kind: OpRet})
	def(0xD9, "RETI", operandNone,
		delay(), MicroOp{Kind: OpPopZ}, MicroOp{Kind: OpPopW}, MicroOp{Kind: OpReti})
	def(0xE9, "JP HL", operandNone, MicroOp{Kind: OpJumpHL})

	for i := 0; i < 8; i++ {
		vec := uint16(i) * 8
		def(byte(0xC7|i<<3), rstName(vec), operandNone,
			delay(), MicroOp{Kind: OpPushPCHi}, MicroOp{Kind: OpPushPCLo},
			MicroOp{Kind: OpRestart, Vector: vec})
	}

	def(0xE0, "LDH (a8),A", operandA8, delay(), fetchLo(), MicroOp{Kind: OpLdHighR, Src: RegA})
	def(0xF0, "LDH A,(a8)", operandA8, delay(), fetchLo(), MicroOp{Kind: OpLdRHigh, Dst: RegA})
	def(0xE2, "LD (C),A", operandNone, delay(), MicroOp{Kind: OpLdHighCR, Src: RegA})
	def(0xF2, "LD A,(C)", operandNone, delay(), MicroOp{Kind: OpLdRHighC, Dst: RegA})
	def(0xEA, "LD (a16),A", operandA16,
		delay(), fetchLo(), fetchHi(), MicroOp{Kind: OpLdAbsR, Src: RegA})
	def(0xFA, "LD A,(a16)", operandA16,
		delay(), fetchLo(), fetchHi(), MicroOp{Kind: OpLdRAbs, Dst: RegA})

	def(0xE8, "ADD SP,e8", operandS8, delay(), fetchLo(), delay(), MicroOp{Kind: OpAddSPImm})
	def(0xF8, "LD HL,SP+e8", operandS8, delay(), fetchLo(), MicroOp{Kind: OpLdHLSPImm})
	def(0xF9, "LD SP,HL", operandNone, delay(), MicroOp{Kind: OpLdSPHL})

	def(0xF3, "DI", operandNone, MicroOp{Kind: OpDI})
	def(0xFB, "EI", operandNone, MicroOp{Kind: OpEI})

	baseTable[0xCB] = entry{mnemonic: "PREFIX CB", prefix: true}

	for _, op := range illegalOpcodes {
		baseTable[op] = entry{mnemonic: "ILLEGAL", illegal: true}
	}
}

func buildCB() {
	for i := 0; i < 256; i++ {
		x, y, z := i>>6, uint8(i>>3&7), i&7

		var (
			op   CBOp
			name string
		)
		switch x {
		case 0:
			op = CBOp(y)
			name = op.String() + " " + r8Names[z]
		case 1:
			op = CBBit
		case 2:
			op = CBRes
		case 3:
			op = CBSet
		}
		if x != 0 {
			name = fmt.Sprintf("%s %d,%s", op, y, r8Names[z])
		}

		var steps []MicroOp
		switch {
		case z != hlIndirect:
			steps = seq(MicroOp{Kind: OpCBReg, CB: op, Bit: y, Dst: r8[z]})
		case op == CBBit:
			steps = seq(delay(), MicroOp{Kind: OpBitMem, Bit: y})
		default:
			steps = seq(delay(), MicroOp{Kind: OpReadHL}, MicroOp{Kind: OpCBMem, CB: op, Bit: y})
		}
		cbTable[i] = entry{mnemonic: name, steps: steps}
	}
}

func rstName(vec uint16) string { return fmt.Sprintf("RST $%02X", vec) }

// dispatchSteps is the interrupt entry sequence. The engine fills in the
// vector and request bit of the last step.
var dispatchSteps = [5]MicroOp{
	{Kind: OpDelay},
	{Kind: OpDelay},
	{Kind: OpPushPCHi},
	{Kind: OpPushPCLo},
	{Kind: OpVector},
}
