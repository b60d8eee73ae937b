package cpu

func add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	z = res == 0
	h = (a&0x0F)+(b&0x0F) > 0x0F
	cy = r > 0xFF
	return
}

func adc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	z = res == 0
	h = (a&0x0F)+(b&0x0F)+ci > 0x0F
	cy = r > 0xFF
	return
}

func sub8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a - b
	z = res == 0
	n = true
	h = a&0x0F < b&0x0F
	cy = a < b
	return
}

func sbc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	res = a - b - ci
	z = res == 0
	n = true
	h = int(a&0x0F)-int(b&0x0F)-int(ci) < 0
	cy = int(a)-int(b)-int(ci) < 0
	return
}

// AND sets H on this core; OR and XOR clear it.
func and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	return res, res == 0, false, true, false
}

func xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	return res, res == 0, false, false, false
}

func or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	return res, res == 0, false, false, false
}

// alu applies op to the accumulator and v and rewrites all four flags.
func (c *CPU) alu(op ALUOp, v byte) {
	var (
		res         byte
		z, n, h, cy bool
	)
	switch op {
	case ALUAdd:
		res, z, n, h, cy = add8(c.A, v)
	case ALUAdc:
		res, z, n, h, cy = adc8(c.A, v, c.Flag(FlagC))
	case ALUSub:
		res, z, n, h, cy = sub8(c.A, v)
	case ALUSbc:
		res, z, n, h, cy = sbc8(c.A, v, c.Flag(FlagC))
	case ALUAnd:
		res, z, n, h, cy = and8(c.A, v)
	case ALUXor:
		res, z, n, h, cy = xor8(c.A, v)
	case ALUOr:
		res, z, n, h, cy = or8(c.A, v)
	case ALUCp:
		_, z, n, h, cy = sub8(c.A, v)
		res = c.A
	}
	c.A = res
	c.setZNHC(z, n, h, cy)
}

// inc8 and dec8 leave C alone.
func (c *CPU) inc8(v byte) byte {
	res := v + 1
	c.setZNHC(res == 0, false, v&0x0F == 0x0F, c.Flag(FlagC))
	return res
}

func (c *CPU) dec8(v byte) byte {
	res := v - 1
	c.setZNHC(res == 0, true, v&0x0F == 0x00, c.Flag(FlagC))
	return res
}

// addHL leaves Z alone; H is the carry out of bit 11.
func (c *CPU) addHL(v uint16) {
	hl := c.HL()
	r := uint32(hl) + uint32(v)
	c.setZNHC(c.Flag(FlagZ), false, (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF, r > 0xFFFF)
	c.SetHL(uint16(r))
}

// spOffset computes SP+e for ADD SP,e8 and LD HL,SP+e8. H and C come from
// the unsigned add of the low byte; Z and N are cleared.
func (c *CPU) spOffset(e byte) uint16 {
	sp := c.SP
	res := sp + uint16(int16(int8(e)))
	c.setZNHC(false, false, (sp&0x0F)+uint16(e&0x0F) > 0x0F, (sp&0xFF)+uint16(e) > 0xFF)
	return res
}

// daa adjusts A after a BCD add or subtract using N, H and C of the previous
// operation. N is kept, H is cleared, C is set when a carry digit was produced.
func (c *CPU) daa() {
	a := c.A
	carry := c.Flag(FlagC)
	if !c.Flag(FlagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.Flag(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.Flag(FlagH) {
			a -= 0x06
		}
	}
	c.A = a
	c.setZNHC(a == 0, c.Flag(FlagN), false, carry)
}

// accumulator rotates always clear Z
func (c *CPU) rlca() {
	cy := c.A >> 7
	c.A = c.A<<1 | cy
	c.setZNHC(false, false, false, cy == 1)
}

func (c *CPU) rrca() {
	cy := c.A & 1
	c.A = c.A>>1 | cy<<7
	c.setZNHC(false, false, false, cy == 1)
}

func (c *CPU) rla() {
	var ci byte
	if c.Flag(FlagC) {
		ci = 1
	}
	cy := c.A >> 7
	c.A = c.A<<1 | ci
	c.setZNHC(false, false, false, cy == 1)
}

func (c *CPU) rra() {
	var ci byte
	if c.Flag(FlagC) {
		ci = 0x80
	}
	cy := c.A & 1
	c.A = c.A>>1 | ci
	c.setZNHC(false, false, false, cy == 1)
}

// cb applies a CB-prefixed operation to v. write is false for BIT, which
// only touches flags.
func (c *CPU) cb(op CBOp, bit uint8, v byte) (res byte, write bool) {
	var cy byte
	switch op {
	case CBRlc:
		cy = v >> 7
		res = v<<1 | cy
	case CBRrc:
		cy = v & 1
		res = v>>1 | cy<<7
	case CBRl:
		cy = v >> 7
		res = v << 1
		if c.Flag(FlagC) {
			res |= 1
		}
	case CBRr:
		cy = v & 1
		res = v >> 1
		if c.Flag(FlagC) {
			res |= 0x80
		}
	case CBSla:
		cy = v >> 7
		res = v << 1
	case CBSra:
		cy = v & 1
		res = v>>1 | v&0x80
	case CBSwap:
		res = v<<4 | v>>4
	case CBSrl:
		cy = v & 1
		res = v >> 1
	case CBBit:
		c.setZNHC(v&(1<<bit) == 0, false, true, c.Flag(FlagC))
		return v, false
	case CBRes:
		return v &^ (1 << bit), true
	case CBSet:
		return v | 1<<bit, true
	}
	c.setZNHC(res == 0, false, false, cy == 1)
	return res, true
}
