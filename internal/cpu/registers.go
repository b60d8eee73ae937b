package cpu

// Reg names one of the 8-bit registers.
type Reg uint8

const (
	RegA Reg = iota
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegF
)

var regNames = [...]string{"A", "B", "C", "D", "E", "H", "L", "F"}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "?"
}

// Pair names a 16-bit register pair. SP is included so that 16-bit
// increment, decrement and add can address it like the other pairs.
type Pair uint8

const (
	PairBC Pair = iota
	PairDE
	PairHL
	PairAF
	PairSP
)

var pairNames = [...]string{"BC", "DE", "HL", "AF", "SP"}

func (p Pair) String() string {
	if int(p) < len(pairNames) {
		return pairNames[p]
	}
	return "?"
}

// Flag is a bit in the F register.
type Flag byte

const (
	FlagZ Flag = 1 << 7
	FlagN Flag = 1 << 6
	FlagH Flag = 1 << 5
	FlagC Flag = 1 << 4
)

func (f Flag) String() string {
	switch f {
	case FlagZ:
		return "Z"
	case FlagN:
		return "N"
	case FlagH:
		return "H"
	case FlagC:
		return "C"
	}
	return "?"
}

// Registers is the SM83 register file. The low nibble of F always reads as
// zero; every write path below masks it.
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
}

// Get returns the value of an 8-bit register.
func (r *Registers) Get(reg Reg) byte {
	switch reg {
	case RegA:
		return r.A
	case RegB:
		return r.B
	case RegC:
		return r.C
	case RegD:
		return r.D
	case RegE:
		return r.E
	case RegH:
		return r.H
	case RegL:
		return r.L
	case RegF:
		return r.F & 0xF0
	}
	return 0
}

// Set stores v in an 8-bit register.
func (r *Registers) Set(reg Reg, v byte) {
	switch reg {
	case RegA:
		r.A = v
	case RegB:
		r.B = v
	case RegC:
		r.C = v
	case RegD:
		r.D = v
	case RegE:
		r.E = v
	case RegH:
		r.H = v
	case RegL:
		r.L = v
	case RegF:
		r.F = v & 0xF0
	}
}

func (r *Registers) AF() uint16     { return uint16(r.A)<<8 | uint16(r.F&0xF0) }
func (r *Registers) SetAF(v uint16) { r.A = byte(v >> 8); r.F = byte(v) & 0xF0 }
func (r *Registers) BC() uint16     { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) SetBC(v uint16) { r.B = byte(v >> 8); r.C = byte(v) }
func (r *Registers) DE() uint16     { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) SetDE(v uint16) { r.D = byte(v >> 8); r.E = byte(v) }
func (r *Registers) HL() uint16     { return uint16(r.H)<<8 | uint16(r.L) }
func (r *Registers) SetHL(v uint16) { r.H = byte(v >> 8); r.L = byte(v) }

// Flag reports whether f is set.
func (r *Registers) Flag(f Flag) bool { return r.F&byte(f) != 0 }

// SetFlag sets or clears a single flag, leaving the others untouched.
func (r *Registers) SetFlag(f Flag, on bool) {
	if on {
		r.F |= byte(f)
	} else {
		r.F &^= byte(f)
	}
	r.F &= 0xF0
}

func (r *Registers) setZNHC(z, n, h, carry bool) {
	var f byte
	if z {
		f |= byte(FlagZ)
	}
	if n {
		f |= byte(FlagN)
	}
	if h {
		f |= byte(FlagH)
	}
	if carry {
		f |= byte(FlagC)
	}
	r.F = f
}
