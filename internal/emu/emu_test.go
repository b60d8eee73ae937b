package emu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cpu"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serialProgram assembles code at 0x0100 that prints msg over the serial
// port and then spins on JR -2.
func serialProgram(msg string) []byte {
	rom := make([]byte, 0x8000)
	pc := 0x0100
	emit := func(b ...byte) {
		copy(rom[pc:], b)
		pc += len(b)
	}
	for i := 0; i < len(msg); i++ {
		emit(0x3E, msg[i]) // LD A,ch
		emit(0xE0, 0x01)   // LDH (SB),A
		emit(0x3E, 0x81)   // LD A,$81
		emit(0xE0, 0x02)   // LDH (SC),A
	}
	emit(0x18, 0xFE) // JR -2
	return rom
}

func newMachine(t *testing.T, cfg Config, rom []byte) *Machine {
	t.Helper()
	m := New(cfg, quietLogger())
	if err := m.LoadCartridge(rom); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	return m
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.Defaults()
	if c.MaxSteps != 5_000_000 || c.StartPC != 0x0100 || c.SerialWindow != 8192 {
		t.Fatalf("defaults: %+v", c)
	}
	c = Config{MaxSteps: 10, StartPC: 0x0200, TraceWindow: -1}
	c.Defaults()
	if c.MaxSteps != 10 || c.StartPC != 0x0200 || c.TraceWindow != 0 {
		t.Fatalf("defaults overwrote settings: %+v", c)
	}
}

func TestMachine_PostBootState(t *testing.T) {
	m := newMachine(t, Config{}, serialProgram(""))
	c := m.CPU()
	if c.PC != 0x0100 || c.AF() != 0x01B0 || c.SP != 0xFFFE {
		t.Fatalf("post-boot CPU: PC=%04X AF=%04X SP=%04X", c.PC, c.AF(), c.SP)
	}
	if got := m.Bus().Read(0xFF40); got != 0x91 {
		t.Fatalf("LCDC got %02X want 91", got)
	}
}

func TestMachine_AutoVerdictPassed(t *testing.T) {
	var echo bytes.Buffer
	m := newMachine(t, Config{AutoVerdict: true, MaxSteps: 10_000}, serialProgram("cpu_instrs\n\nPassed all tests\n"))
	m.SetSerialWriter(&echo)
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Verdict != VerdictPassed {
		t.Fatalf("verdict %v want passed; serial %q", res.Verdict, m.Serial())
	}
	if !strings.Contains(echo.String(), "Passed") {
		t.Fatalf("serial echo missing output: %q", echo.String())
	}
	if res.Steps == 0 || res.Cycles < uint64(res.Steps) {
		t.Fatalf("counters: steps=%d cycles=%d", res.Steps, res.Cycles)
	}
}

func TestMachine_AutoVerdictFailed(t *testing.T) {
	m := newMachine(t, Config{AutoVerdict: true, MaxSteps: 10_000, TraceWindow: 16},
		serialProgram("01:01 02:04\nFailed 3 tests.\n"))
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Verdict != VerdictFailed || res.FailedTests != 3 {
		t.Fatalf("verdict %v failed=%d", res.Verdict, res.FailedTests)
	}
	if res.Stage != "02:04" {
		t.Fatalf("stage %q want 02:04", res.Stage)
	}
	if m.Ring().Len() != 16 {
		t.Fatalf("trace ring holds %d records want 16", m.Ring().Len())
	}
	last := m.Ring().Records()[15]
	if last.Text != "LDH ($FF02),A" {
		t.Fatalf("last traced instruction %q", last.Text)
	}
}

func TestMachine_UntilSerial(t *testing.T) {
	m := newMachine(t, Config{UntilSerial: "HELLO", MaxSteps: 10_000}, serialProgram("say hello"))
	res, err := m.Run(context.Background())
	if err != nil || res.Verdict != VerdictUntil {
		t.Fatalf("verdict %v err %v", res.Verdict, err)
	}
}

func TestMachine_StepLimit(t *testing.T) {
	m := newMachine(t, Config{MaxSteps: 100}, serialProgram(""))
	res, err := m.Run(context.Background())
	if err != nil || res.Verdict != VerdictStepLimit || res.Steps != 100 {
		t.Fatalf("verdict %v steps %d err %v", res.Verdict, res.Steps, err)
	}
	// JR -2 is three cycles
	if res.Cycles != 300 {
		t.Fatalf("cycles %d want 300", res.Cycles)
	}
}

func TestMachine_Timeout(t *testing.T) {
	m := newMachine(t, Config{MaxSteps: 1 << 30, Timeout: time.Millisecond}, serialProgram(""))
	res, err := m.Run(context.Background())
	if err != nil || res.Verdict != VerdictTimeout {
		t.Fatalf("verdict %v err %v", res.Verdict, err)
	}
}

func TestMachine_IllegalOpcodeFault(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x00
	rom[0x0101] = 0xDD
	m := newMachine(t, Config{MaxSteps: 10}, rom)
	res, err := m.Run(context.Background())
	if !errors.Is(err, cpu.ErrIllegalOpcode) || res.Verdict != VerdictFault || res.Steps != 1 {
		t.Fatalf("verdict %v steps %d err %v", res.Verdict, res.Steps, err)
	}
	if m.CPU().PC != 0x0101 {
		t.Fatalf("PC after fault %04X want 0101", m.CPU().PC)
	}
}

func TestMachine_TimerLockstep(t *testing.T) {
	// 64 NOPs are 64 machine cycles, 256 T-cycles: DIV advances by one
	rom := make([]byte, 0x8000)
	rom[0x0100+64] = 0x76
	m := newMachine(t, Config{}, rom)
	for i := 0; i < 64; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if got := m.Bus().Read(0xFF04); got != 0x01 {
		t.Fatalf("DIV got %02X want 01", got)
	}
}

func TestMachine_TimerInterruptWakesHalt(t *testing.T) {
	rom := make([]byte, 0x8000)
	prog := []byte{
		0x3E, 0x05, // LD A,$05
		0xE0, 0x07, // LDH (TAC),A: enable, 16 T-cycles per tick
		0x3E, 0xF0, // LD A,$F0
		0xE0, 0x05, // LDH (TIMA),A
		0x3E, 0x04, // LD A,$04
		0xE0, 0xFF, // LDH (IE),A
		0xAF,       // XOR A
		0xE0, 0x0F, // LDH (IF),A
		0xFB,       // EI
		0x76,       // HALT
		0x18, 0xFE, // JR -2
	}
	copy(rom[0x0100:], prog)
	rom[0x0050] = 0x04 // INC B
	rom[0x0051] = 0xD9 // RETI

	m := newMachine(t, Config{}, rom)
	for i := 0; i < 200 && m.CPU().B == 0; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if m.CPU().B != 1 {
		t.Fatalf("timer interrupt handler did not run: B=%02X PC=%04X", m.CPU().B, m.CPU().PC)
	}
}

func TestMachine_WaitForVBlankThenReport(t *testing.T) {
	rom := serialProgram("Passed")
	copy(rom[0x0106:], rom[0x0100:0x8000-6])
	copy(rom[0x0100:], []byte{
		0xF0, 0x44, // LDH A,(LY)
		0xFE, 0x90, // CP $90
		0x20, 0xFA, // JR NZ,-6
	})

	m := newMachine(t, Config{AutoVerdict: true, MaxSteps: 100_000}, rom)
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Verdict != VerdictPassed {
		t.Fatalf("verdict %v after %d steps, serial %q, LY=%02X", res.Verdict, res.Steps, m.Serial(), m.Bus().Read(0xFF44))
	}
}

func TestMachine_BootROMGatesTrace(t *testing.T) {
	boot := make([]byte, 0x100)
	// JP $00FC; ...; LD A,1; LDH ($50),A ending at 0x00FF
	copy(boot, []byte{0xC3, 0xFC, 0x00})
	copy(boot[0xFC:], []byte{0x3E, 0x01, 0xE0, 0x50})
	rom := make([]byte, 0x8000)

	var got []cpu.Record
	m := New(Config{Trace: true}, quietLogger())
	m.SetBootROM(boot)
	m.AddTracer(cpu.TracerFunc(func(r cpu.Record) { got = append(got, r) }))
	if err := m.LoadCartridge(rom); err != nil {
		t.Fatal(err)
	}
	if m.CPU().PC != 0 || !m.Bus().BootROMMounted() {
		t.Fatalf("boot ROM not mapped at reset")
	}
	for i := 0; i < 5; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if m.Bus().BootROMMounted() {
		t.Fatalf("boot ROM still mapped")
	}
	// only the NOPs fetched from the cartridge are traced
	if len(got) != 2 || got[0].Text != "NOP" || got[0].PC != 0x0100 || got[1].PC != 0x0101 {
		t.Fatalf("traced records: %+v", got)
	}
}
