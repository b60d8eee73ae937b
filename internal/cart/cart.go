package cart

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMapper is returned by Load for cartridge types without a
// mapper implementation here.
var ErrUnsupportedMapper = errors.New("cart: unsupported mapper")

// Cartridge is the part of the address space a cartridge decodes: ROM at
// 0x0000-0x7FFF and external RAM at 0xA000-0xBFFF. Writes to the ROM range
// are mapper control writes.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Load parses the header and returns the matching mapper. Test ROMs without
// a usable header run as ROM-only.
func Load(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return NewROMOnly(rom), nil, nil
	}
	switch h.Mapper() {
	case MapperNone:
		return NewROMOnly(rom), h, nil
	case MapperMBC1:
		return NewMBC1(rom, h.RAMSizeBytes), h, nil
	case MapperMBC3:
		return NewMBC3(rom, h.RAMSizeBytes), h, nil
	case MapperMBC5:
		return NewMBC5(rom, h.RAMSizeBytes), h, nil
	}
	return nil, h, fmt.Errorf("%w: type %#02x (%s)", ErrUnsupportedMapper, h.CartType, h.CartTypeStr)
}

// NewCartridge is Load without the error: unknown mappers fall back to
// ROM-only so the first bank is still reachable.
func NewCartridge(rom []byte) Cartridge {
	c, _, err := Load(rom)
	if err != nil {
		return NewROMOnly(rom)
	}
	return c
}

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

func bankCount(rom []byte) int {
	if n := len(rom) / romBankSize; n > 0 {
		return n
	}
	return 1
}

// romByte reads off within bank. Bank numbers wrap to the size of the ROM.
func romByte(rom []byte, banks, bank int, off uint16) byte {
	i := (bank%banks)*romBankSize + int(off)
	if i < len(rom) {
		return rom[i]
	}
	return 0xFF
}

// ramOffset maps an 0xA000-0xBFFF address into ram, wrapping small RAMs.
func ramOffset(ram []byte, enabled bool, bank int, addr uint16) (int, bool) {
	if !enabled || len(ram) == 0 {
		return 0, false
	}
	return (bank*ramBankSize + int(addr-0xA000)) % len(ram), true
}
