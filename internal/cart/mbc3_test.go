package cart

import "testing"

func TestMBC3_ROMAndRAMBanking(t *testing.T) {
	rom := make([]byte, 256*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC3(rom, 32*1024)

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default bank got %02X want 01", got)
	}
	m.Write(0x2000, 0x0F)
	if got := m.Read(0x4000); got != 0x0F {
		t.Fatalf("bank 15 got %02X", got)
	}
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}

	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x03)
	m.Write(0xA000, 0x33)
	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("bank0 sees bank3 data: %02X", got)
	}
	m.Write(0x4000, 0x03)
	if got := m.Read(0xA000); got != 0x33 {
		t.Fatalf("RAM bank3 RW failed: got %02X", got)
	}

	m.Write(0x0000, 0x00)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
}

func TestMBC3_RTC_LatchAndRead(t *testing.T) {
	prevNow := nowUnix
	nowUnix = func() int64 { return 100 }
	defer func() { nowUnix = prevNow }()

	m := NewMBC3(make([]byte, 0x8000), 0x2000)
	m.Write(0x0000, 0x0A)
	m.clock = rtc{sec: 5, min: 6, hour: 7, day: 0x101}
	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01)

	m.Write(0x4000, 0x08)
	if got := m.Read(0xA000); got != 5 {
		t.Fatalf("latched sec got %d want 5", got)
	}
	// live changes stay invisible until the next latch
	m.clock.sec = 30
	if got := m.Read(0xA000); got != 5 {
		t.Fatalf("latched sec changed unexpectedly: got %d", got)
	}

	m.Write(0x4000, 0x0B)
	if got := m.Read(0xA000); got != 0x01 {
		t.Fatalf("latched day low got %02X want 01", got)
	}
	m.Write(0x4000, 0x0C)
	got := m.Read(0xA000)
	if got&0x01 == 0 {
		t.Fatalf("latched day high bit not set")
	}
	if got&0x40 != 0 {
		t.Fatalf("halt bit set unexpectedly")
	}

	// writing 01 again without 00 first does not relatch
	m.Write(0x6000, 0x01)
	m.Write(0x4000, 0x08)
	if got := m.Read(0xA000); got != 5 {
		t.Fatalf("relatched without 00 write: %d", got)
	}
}

func TestMBC3_RTC_AdvanceAndHalt(t *testing.T) {
	prevNow := nowUnix
	nowVal := int64(100)
	nowUnix = func() int64 { return nowVal }
	defer func() { nowUnix = prevNow }()

	m := NewMBC3(make([]byte, 0x8000), 0x2000)
	m.clock = rtc{sec: 30, min: 59, hour: 23, day: 0x1FF}

	nowVal = 120
	m.advance()
	if m.clock.sec != 50 || m.clock.min != 59 {
		t.Fatalf("rtc advance 20s got sec=%d min=%d", m.clock.sec, m.clock.min)
	}

	// rolls minute, hour and day; the day counter wraps and sets carry
	nowVal = 180
	m.advance()
	c := m.clock
	if c.sec != 50 || c.min != 0 || c.hour != 0 || c.day != 0 || !c.carry {
		t.Fatalf("rtc +60s rollover got %02d:%02d:%02d day=%03d carry=%v", c.hour, c.min, c.sec, c.day, c.carry)
	}

	// halt through the day-high register stops the clock
	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x0C)
	m.Write(0xA000, 0x40)
	nowVal = 500
	m.advance()
	if m.clock.sec != 50 || !m.clock.halt || m.clock.carry {
		t.Fatalf("halted clock moved or kept carry: %+v", m.clock)
	}
}
