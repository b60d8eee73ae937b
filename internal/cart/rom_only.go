package cart

// ROMOnly is a 32 KiB cartridge without a mapper or external RAM.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	if addr < 0x8000 && int(addr) < len(c.rom) {
		return c.rom[addr]
	}
	return 0xFF
}

// Write is ignored; there is nothing to control.
func (c *ROMOnly) Write(addr uint16, value byte) {}
