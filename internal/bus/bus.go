package bus

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cart"
	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cpu"
)

var (
	_ cpu.Bus       = (*Bus)(nil)
	_ cpu.TraceGate = (*Bus)(nil)
	_ cpu.Waker     = (*Bus)(nil)
)

// Interrupt request bits in IF/IE.
const (
	IntVBlank byte = 1 << iota
	IntSTAT
	IntTimer
	IntSerial
	IntJoypad
)

// Bus is a DMG address space: cartridge window, WRAM with its echo, VRAM and
// OAM as plain memory, HRAM, the IO registers the CPU tests need and the
// interrupt registers. It is clocked in T-cycles through Tick, which drives
// the timer and the LCD line counter.
type Bus struct {
	cart cart.Cartridge

	boot        []byte
	bootMounted bool

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [0xA0]byte
	regs [0x80]byte // IO registers without side effects
	hram [0x7F]byte

	ie    byte
	ifReg byte // low 5 bits only

	timer
	joypad
	serial
	lcd

	trace bool
}

// New creates a bus with the cartridge mapper picked from rom's header.
func New(rom []byte) *Bus {
	return NewWithCart(cart.NewCartridge(rom))
}

// NewWithCart creates a bus around an existing cartridge.
func NewWithCart(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.joypad.reset()
	return b
}

// SetBootROM maps boot over 0x0000-0x00FF until a non-zero write to 0xFF50.
func (b *Bus) SetBootROM(boot []byte) {
	b.boot = boot
	b.bootMounted = len(boot) > 0
}

func (b *Bus) BootROMMounted() bool { return b.bootMounted }

// SetTraceEnabled controls whether the CPU reports retired instructions.
func (b *Bus) SetTraceEnabled(on bool) { b.trace = on }
func (b *Bus) TraceEnabled() bool      { return b.trace }

// SetSerialWriter receives every byte sent over the serial port.
func (b *Bus) SetSerialWriter(w io.Writer) { b.serial.out = w }

func (b *Bus) Cart() cart.Cartridge { return b.cart }

func (b *Bus) InterruptFlag() byte       { return b.ifReg }
func (b *Bus) SetInterruptFlag(v byte)   { b.ifReg = v & 0x1F }
func (b *Bus) InterruptEnable() byte     { return b.ie }
func (b *Bus) SetInterruptEnable(v byte) { b.ie = v }
func (b *Bus) RequestInterrupt(bit byte) { b.ifReg |= bit & 0x1F }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootMounted:
		if int(addr) < len(b.boot) {
			return b.boot[addr]
		}
		return 0xFF
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.vram[addr-0x8000]
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00: // echo of C000-DDFF
		return b.wram[addr-0xE000]
	case addr < 0xFEA0:
		return b.oam[addr-0xFE00]
	case addr < 0xFF00: // unusable
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.ie
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr < 0xA000:
		b.vram[addr-0x8000] = value
	case addr < 0xC000:
		b.cart.Write(addr, value)
	case addr < 0xE000:
		b.wram[addr-0xC000] = value
	case addr < 0xFE00:
		b.wram[addr-0xE000] = value
	case addr < 0xFEA0:
		b.oam[addr-0xFE00] = value
	case addr < 0xFF00:
	case addr < 0xFF80:
		b.writeIO(addr, value)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value
	default:
		b.ie = value
	}
}

func (b *Bus) readIO(addr uint16) byte {
	switch addr {
	case 0xFF00:
		return b.joypad.read()
	case 0xFF01:
		return b.serial.sb
	case 0xFF02:
		return 0x7E | b.serial.sc
	case 0xFF04:
		return byte(b.divInternal >> 8)
	case 0xFF05:
		return b.tima
	case 0xFF06:
		return b.tma
	case 0xFF07:
		return 0xF8 | b.tac&0x07
	case 0xFF0F:
		return 0xE0 | b.ifReg
	case 0xFF41:
		return b.readSTAT()
	case 0xFF44:
		return b.lcd.ly
	case 0xFF50:
		if b.bootMounted {
			return 0xFE
		}
		return 0xFF
	}
	return b.regs[addr-0xFF00]
}

func (b *Bus) writeIO(addr uint16, value byte) {
	switch addr {
	case 0xFF00:
		b.joypad.write(value)
	case 0xFF01:
		b.serial.sb = value
	case 0xFF02:
		b.writeSC(value)
	case 0xFF04:
		b.writeDIV()
	case 0xFF05:
		b.writeTIMA(value)
	case 0xFF06:
		b.tma = value
	case 0xFF07:
		b.writeTAC(value)
	case 0xFF0F:
		b.ifReg = value & 0x1F
	case 0xFF41:
		b.lcd.stat = value & 0x78
	case 0xFF44: // LY is read-only
	case 0xFF50:
		if value != 0 {
			b.bootMounted = false
		}
	default:
		b.regs[addr-0xFF00] = value
	}
}

// Tick advances the timer and the LCD by n T-cycles.
func (b *Bus) Tick(n int) {
	for i := 0; i < n; i++ {
		b.tickTimer()
		b.tickLCD()
	}
}
