package cpu

// Kind identifies what a MicroOp does during its single machine cycle.
type Kind uint8

const (
	OpDelay Kind = iota

	// immediate operand bytes are latched into the internal WZ pair
	OpFetchLo
	OpFetchHi

	OpLdRR
	OpLdRImm
	OpLdRMem
	OpLdMemR
	OpLdMemHLImm
	OpLdRAbs
	OpLdAbsR
	OpLdRHigh
	OpLdHighR
	OpLdRHighC
	OpLdHighCR
	OpLdPairImm
	OpLdSPHL
	OpLdHLSPImm
	OpStoreSPLo
	OpStoreSPHi

	OpALUReg
	OpALUMem
	OpALUImm

	OpIncR
	OpDecR
	OpIncPair
	OpDecPair
	OpAddHLPair
	OpAddSPImm
	OpReadHL
	OpIncMem
	OpDecMem

	OpPushR
	OpPopR
	OpPushPCHi
	OpPushPCLo
	OpPopZ
	OpPopW

	OpCond
	OpJumpAbs
	OpJumpRel
	OpJumpHL
	OpRet
	OpReti
	OpRestart

	OpDAA
	OpCPL
	OpSCF
	OpCCF
	OpRLCA
	OpRLA
	OpRRCA
	OpRRA
	OpDI
	OpEI
	OpHalt
	OpStop

	OpCBReg
	OpCBMem
	OpBitMem

	// last step of interrupt dispatch
	OpVector
)

var kindNames = [...]string{
	OpDelay: "Delay", OpFetchLo: "FetchLo", OpFetchHi: "FetchHi",
	OpLdRR: "LdRR", OpLdRImm: "LdRImm", OpLdRMem: "LdRMem", OpLdMemR: "LdMemR",
	OpLdMemHLImm: "LdMemHLImm", OpLdRAbs: "LdRAbs", OpLdAbsR: "LdAbsR",
	OpLdRHigh: "LdRHigh", OpLdHighR: "LdHighR", OpLdRHighC: "LdRHighC", OpLdHighCR: "LdHighCR",
	OpLdPairImm: "LdPairImm", OpLdSPHL: "LdSPHL", OpLdHLSPImm: "LdHLSPImm",
	OpStoreSPLo: "StoreSPLo", OpStoreSPHi: "StoreSPHi",
	OpALUReg: "ALUReg", OpALUMem: "ALUMem", OpALUImm: "ALUImm",
	OpIncR: "IncR", OpDecR: "DecR", OpIncPair: "IncPair", OpDecPair: "DecPair",
	OpAddHLPair: "AddHLPair", OpAddSPImm: "AddSPImm", OpReadHL: "ReadHL",
	OpIncMem: "IncMem", OpDecMem: "DecMem",
	OpPushR: "PushR", OpPopR: "PopR", OpPushPCHi: "PushPCHi", OpPushPCLo: "PushPCLo",
	OpPopZ: "PopZ", OpPopW: "PopW",
	OpCond: "Cond", OpJumpAbs: "JumpAbs", OpJumpRel: "JumpRel", OpJumpHL: "JumpHL",
	OpRet: "Ret", OpReti: "Reti", OpRestart: "Restart",
	OpDAA: "DAA", OpCPL: "CPL", OpSCF: "SCF", OpCCF: "CCF",
	OpRLCA: "RLCA", OpRLA: "RLA", OpRRCA: "RRCA", OpRRA: "RRA",
	OpDI: "DI", OpEI: "EI", OpHalt: "Halt", OpStop: "Stop",
	OpCBReg: "CBReg", OpCBMem: "CBMem", OpBitMem: "BitMem",
	OpVector: "Vector",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "?"
}

// ALUOp selects the accumulator operation of the ALU kinds.
type ALUOp uint8

const (
	ALUAdd ALUOp = iota
	ALUAdc
	ALUSub
	ALUSbc
	ALUAnd
	ALUXor
	ALUOr
	ALUCp
)

var aluNames = [...]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

func (o ALUOp) String() string { return aluNames[o&7] }

// CBOp selects the operation of the CB-prefixed kinds.
type CBOp uint8

const (
	CBRlc CBOp = iota
	CBRrc
	CBRl
	CBRr
	CBSla
	CBSra
	CBSwap
	CBSrl
	CBBit
	CBRes
	CBSet
)

var cbNames = [...]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL", "BIT", "RES", "SET"}

func (o CBOp) String() string {
	if int(o) < len(cbNames) {
		return cbNames[o]
	}
	return "?"
}

// MicroOp is one machine cycle of work. Register operands name the register,
// never its value: the value is read when the step executes.
type MicroOp struct {
	Kind Kind
	Dst  Reg
	Src  Reg
	Pair Pair
	Adj  int8 // HL post-increment (+1) or post-decrement (-1)

	ALU ALUOp
	CB  CBOp
	Bit uint8

	// conditional gate: continue only if Flag is set == Want
	Flag Flag
	Want bool

	Vector uint16
}
