package cart

// MBC5 implements banking for carts up to 8 MiB ROM and 128 KiB RAM. Unlike
// MBC1 and MBC3, ROM bank 0 can be mapped at 0x4000.
type MBC5 struct {
	rom []byte
	ram []byte

	romBanks int

	romBank    uint16 // 9 bits
	ramBank    byte   // 4 bits
	ramEnabled bool
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	m := &MBC5{rom: rom, romBank: 1}
	m.romBanks = bankCount(rom)
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return romByte(m.rom, m.romBanks, 0, addr)
	case addr < 0x8000:
		return romByte(m.rom, m.romBanks, int(m.romBank), addr-0x4000)
	case addr >= 0xA000 && addr < 0xC000:
		if off, ok := ramOffset(m.ram, m.ramEnabled, int(m.ramBank), addr); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr < 0xC000:
		if off, ok := ramOffset(m.ram, m.ramEnabled, int(m.ramBank), addr); ok {
			m.ram[off] = value
		}
	}
}
