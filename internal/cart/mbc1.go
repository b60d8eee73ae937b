package cart

// MBC1 implements MBC1 ROM/RAM banking for carts up to 2 MiB ROM and 32 KiB
// RAM. The bank register wraps to the size of the ROM.
type MBC1 struct {
	rom []byte
	ram []byte

	romBanks int

	bank1      byte // 5-bit ROM bank, 0 reads as 1
	bank2      byte // 2-bit RAM bank or ROM bank bits 5-6
	ramEnabled bool
	mode       byte // 0: bank2 only affects 0x4000-0x7FFF, 1: also 0x0000 and RAM
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom, bank1: 1}
	m.romBanks = bankCount(rom)
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		var bank int
		if m.mode == 1 {
			bank = int(m.bank2) << 5
		}
		return romByte(m.rom, m.romBanks, bank, addr)
	case addr < 0x8000:
		return romByte(m.rom, m.romBanks, int(m.bank2)<<5|int(m.bank1), addr-0x4000)
	case addr >= 0xA000 && addr < 0xC000:
		if off, ok := m.ramIndex(addr); ok {
			return m.ram[off]
		}
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}
	case addr < 0x6000:
		m.bank2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr < 0xC000:
		if off, ok := m.ramIndex(addr); ok {
			m.ram[off] = value
		}
	}
}

func (m *MBC1) ramIndex(addr uint16) (int, bool) {
	var bank int
	if m.mode == 1 {
		bank = int(m.bank2)
	}
	return ramOffset(m.ram, m.ramEnabled, bank, addr)
}
