package cart

import "testing"

func TestMBC1_ROMBanking(t *testing.T) {
	// 128 KiB ROM tagged with its bank number at the start of each bank
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)

	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank1 read got %02X want 01", got)
	}

	m.Write(0x2000, 0x03)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %02X want 03", got)
	}

	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}

	// bank numbers past the end of the ROM wrap
	m.Write(0x2000, 0x0A)
	if got := m.Read(0x4000); got != 0x02 {
		t.Fatalf("bank 10 on an 8-bank ROM got %02X want 02", got)
	}
}

func TestMBC1_RAMBanking_Mode1(t *testing.T) {
	m := NewMBC1(make([]byte, 128*1024), 32*1024)

	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
	m.Write(0xA000, 0x55)

	m.Write(0x0000, 0x0A)
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("write while disabled reached RAM: %02X", got)
	}

	m.Write(0x6000, 0x01)
	m.Write(0x4000, 0x02)
	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}

	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("bank0 sees bank2 data: %02X", got)
	}
}
