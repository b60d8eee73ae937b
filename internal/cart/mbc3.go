package cart

import "time"

// nowUnix is the wall clock behind the MBC3 real-time clock.
var nowUnix = func() int64 { return time.Now().Unix() }

// MBC3 implements ROM/RAM banking and the real-time clock.
//
//	0000-1FFF  RAM and RTC enable (0x0A in the low nibble)
//	2000-3FFF  ROM bank, 7 bits, 0 reads as 1
//	4000-5FFF  RAM bank 0-3 or RTC register 08-0C
//	6000-7FFF  writing 00 then 01 latches the clock
//	A000-BFFF  selected RAM bank or latched RTC register
type MBC3 struct {
	rom []byte
	ram []byte

	romBanks int

	romBank    byte
	sel        byte
	ramEnabled bool

	clock     rtc
	latched   rtc
	latchPrev byte
	lastWall  int64
}

type rtc struct {
	sec, min, hour byte
	day            uint16 // 9 bits
	halt, carry    bool
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1, latchPrev: 0xFF, lastWall: nowUnix()}
	m.romBanks = bankCount(rom)
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romByte(m.rom, m.romBanks, 0, addr)
	case addr < 0x8000:
		return romByte(m.rom, m.romBanks, int(m.romBank), addr-0x4000)
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.sel >= 0x08 {
			return m.latched.register(m.sel)
		}
		if off, ok := ramOffset(m.ram, true, int(m.sel), addr); ok && m.sel <= 0x03 {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		m.sel = value
	case addr < 0x8000:
		if m.latchPrev == 0x00 && value == 0x01 {
			m.advance()
			m.latched = m.clock
		}
		m.latchPrev = value
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled {
			return
		}
		if m.sel >= 0x08 {
			m.advance()
			m.clock.setRegister(m.sel, value)
			return
		}
		if off, ok := ramOffset(m.ram, true, int(m.sel), addr); ok && m.sel <= 0x03 {
			m.ram[off] = value
		}
	}
}

// advance moves the live clock forward by the wall-clock seconds elapsed
// since the last call. A halted clock keeps its value.
func (m *MBC3) advance() {
	now := nowUnix()
	d := now - m.lastWall
	m.lastWall = now
	if m.clock.halt || d <= 0 {
		return
	}
	c := &m.clock
	t := int64(c.sec) + d
	c.sec = byte(t % 60)
	t = int64(c.min) + t/60
	c.min = byte(t % 60)
	t = int64(c.hour) + t/60
	c.hour = byte(t % 24)
	t = int64(c.day) + t/24
	if t > 0x1FF {
		c.carry = true
		t %= 0x200
	}
	c.day = uint16(t)
}

func (r *rtc) register(sel byte) byte {
	switch sel {
	case 0x08:
		return r.sec
	case 0x09:
		return r.min
	case 0x0A:
		return r.hour
	case 0x0B:
		return byte(r.day)
	case 0x0C:
		v := byte(r.day>>8) & 0x01
		if r.halt {
			v |= 0x40
		}
		if r.carry {
			v |= 0x80
		}
		return v
	}
	return 0xFF
}

func (r *rtc) setRegister(sel, v byte) {
	switch sel {
	case 0x08:
		r.sec = v & 0x3F
	case 0x09:
		r.min = v & 0x3F
	case 0x0A:
		r.hour = v & 0x1F
	case 0x0B:
		r.day = r.day&0x100 | uint16(v)
	case 0x0C:
		r.day = r.day&0xFF | uint16(v&0x01)<<8
		r.halt = v&0x40 != 0
		r.carry = v&0x80 != 0
	}
}
