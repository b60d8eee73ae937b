package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/bus"
	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cart"
	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/sm83core/internal/trace"
)

// T-cycles per machine cycle on the DMG.
const tPerM = 4

// ErrNoCartridge is returned when running a Machine before LoadCartridge.
var ErrNoCartridge = errors.New("emu: no cartridge loaded")

// Verdict is how a Run ended.
type Verdict uint8

const (
	VerdictNone      Verdict = iota
	VerdictPassed            // serial output reported success
	VerdictFailed            // serial output reported "Failed N tests"
	VerdictUntil             // UntilSerial matched
	VerdictStepLimit         // MaxSteps instructions executed
	VerdictTimeout           // wall-clock limit or context cancelled
	VerdictFault             // the CPU stopped on an illegal opcode
)

var verdictNames = [...]string{"none", "passed", "failed", "until", "step-limit", "timeout", "fault"}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "unknown"
}

// Result summarises a Run.
type Result struct {
	Verdict     Verdict
	FailedTests int    // from a "Failed N tests" report
	Stage       string // last "NN:NN" sub-test marker seen on serial
	Steps       int
	Cycles      uint64
	Elapsed     time.Duration
}

// Machine owns a bus and a CPU and clocks them in lockstep: every CPU
// machine cycle is followed by four T-cycles of bus time.
type Machine struct {
	cfg Config
	log *slog.Logger

	bus    *bus.Bus
	cpu    *cpu.CPU
	header *cart.Header

	bootROM []byte
	serial  *serialMonitor
	echo    io.Writer
	ring    *trace.Ring
	tracers trace.Multi
}

// New creates a Machine. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) *Machine {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{cfg: cfg, log: logger}
	if cfg.TraceWindow > 0 {
		m.ring = trace.NewRing(cfg.TraceWindow)
	}
	return m
}

func (m *Machine) Config() Config { return m.cfg }

// SetBootROM sets the DMG boot ROM used by the next LoadCartridge.
func (m *Machine) SetBootROM(data []byte) {
	if len(data) >= 0x100 {
		m.bootROM = make([]byte, 0x100)
		copy(m.bootROM, data[:0x100])
	} else {
		m.bootROM = nil
	}
}

func (m *Machine) HasBootROM() bool { return len(m.bootROM) >= 0x100 }

// SetSerialWriter echoes serial output to w, in addition to the capture used
// for verdicts. It may be called before or after LoadCartridge.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.echo = w
	if m.bus != nil {
		m.wireSerial()
	}
}

// AddTracer attaches a sink for retired instructions. Records are only
// produced while Config.Trace is set or a trace window is configured, and
// never while the boot ROM is mapped.
func (m *Machine) AddTracer(t cpu.Tracer) {
	m.tracers = append(m.tracers, t)
	if m.cpu != nil {
		m.wireTracers()
	}
}

// LoadCartridge maps rom behind a fresh bus and CPU. With a boot ROM set the
// CPU starts at 0x0000; otherwise it starts at Config.StartPC in the DMG
// post-boot state.
func (m *Machine) LoadCartridge(rom []byte) error {
	c, h, err := cart.Load(rom)
	if err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}
	m.header = h
	if h != nil {
		m.log.Info("cartridge loaded",
			"title", h.Title,
			"cart", h.CartTypeStr,
			"rom_banks", h.ROMBanks,
			"ram_bytes", h.RAMSizeBytes,
			"logo", h.LogoOK)
		if !cart.HeaderChecksumOK(rom) {
			m.log.Warn("header checksum mismatch", "stored", fmt.Sprintf("%02X", h.HeaderChecksum))
		}
	} else {
		m.log.Info("raw program loaded", "bytes", len(rom))
	}

	m.bus = bus.NewWithCart(c)
	m.bus.SetTraceEnabled(m.cfg.Trace || m.ring != nil)
	m.serial = newSerialMonitor(m.cfg.SerialWindow)
	m.wireSerial()
	m.cpu = cpu.New(m.bus)
	m.wireTracers()

	if m.HasBootROM() {
		m.ResetWithBoot()
	} else {
		m.ResetPostBoot()
	}
	return nil
}

// LoadROMFromFile reads a ROM image from disk and loads it.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}
	return m.LoadCartridge(data)
}

func (m *Machine) wireSerial() {
	if m.echo != nil {
		m.bus.SetSerialWriter(io.MultiWriter(m.serial, m.echo))
		return
	}
	m.bus.SetSerialWriter(m.serial)
}

func (m *Machine) wireTracers() {
	var all trace.Multi
	if m.ring != nil {
		all = append(all, m.ring)
	}
	all = append(all, m.tracers...)
	switch len(all) {
	case 0:
		m.cpu.SetTracer(nil)
	case 1:
		m.cpu.SetTracer(all[0])
	default:
		m.cpu.SetTracer(all)
	}
}

// ResetPostBoot resets the CPU and IO to the DMG post-boot state, keeping
// the loaded cartridge.
func (m *Machine) ResetPostBoot() {
	if m.cpu == nil {
		return
	}
	m.bus.SetBootROM(nil)
	m.cpu.ResetNoBoot()
	m.cpu.SetPC(m.cfg.StartPC)
	m.applyDMGPostBootIO()
}

// ResetWithBoot maps the boot ROM and restarts from 0x0000. Without a boot
// ROM it falls back to ResetPostBoot.
func (m *Machine) ResetWithBoot() {
	if m.cpu == nil {
		return
	}
	if !m.HasBootROM() {
		m.ResetPostBoot()
		return
	}
	m.bus.SetBootROM(m.bootROM)
	m.cpu.Reset()
}

// applyDMGPostBootIO sets the IO registers the boot ROM would have left
// behind, so ROMs can start at 0x0100 directly.
func (m *Machine) applyDMGPostBootIO() {
	b := m.bus
	b.Write(0xFF00, 0xCF) // JOYP: no group selected
	b.Write(0xFF05, 0x00) // TIMA
	b.Write(0xFF06, 0x00) // TMA
	b.Write(0xFF07, 0x00) // TAC (disabled)
	b.Write(0xFF0F, 0x01) // IF: VBlank left pending by the boot ROM
	b.Write(0xFF40, 0x91) // LCDC
	b.Write(0xFF42, 0x00) // SCY
	b.Write(0xFF43, 0x00) // SCX
	b.Write(0xFF45, 0x00) // LYC
	b.Write(0xFF47, 0xFC) // BGP
	b.Write(0xFF48, 0xFF) // OBP0
	b.Write(0xFF49, 0xFF) // OBP1
	b.Write(0xFF4A, 0x00) // WY
	b.Write(0xFF4B, 0x00) // WX
	b.Write(0xFFFF, 0x00) // IE
}

func (m *Machine) CPU() *cpu.CPU        { return m.cpu }
func (m *Machine) Bus() *bus.Bus        { return m.bus }
func (m *Machine) Header() *cart.Header { return m.header }
func (m *Machine) Ring() *trace.Ring    { return m.ring }

// Serial returns everything received on the serial port so far.
func (m *Machine) Serial() string {
	if m.serial == nil {
		return ""
	}
	return m.serial.String()
}

// SerialTail returns the most recent serial bytes, oldest first.
func (m *Machine) SerialTail() []byte {
	if m.serial == nil {
		return nil
	}
	return m.serial.Tail()
}

// Tick advances the machine by one CPU machine cycle.
func (m *Machine) Tick() error {
	if m.cpu == nil {
		return ErrNoCartridge
	}
	if err := m.cpu.Tick(); err != nil {
		return err
	}
	m.bus.Tick(tPerM)
	return nil
}

// Step runs one instruction (or one idle cycle while halted or stopped) and
// returns the machine cycles it took.
func (m *Machine) Step() (int, error) {
	n := 0
	for {
		if err := m.Tick(); err != nil {
			return n, err
		}
		n++
		if !m.cpu.InFlight() {
			return n, nil
		}
	}
}

// Run steps the machine until a verdict is reached, the step limit is hit,
// the timeout expires, ctx is cancelled or the CPU faults. A fault is
// returned as the error together with a VerdictFault result.
func (m *Machine) Run(ctx context.Context) (Result, error) {
	if m.cpu == nil {
		return Result{}, ErrNoCartridge
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	startCycles := m.cpu.Cycles()
	res := Result{}
	finish := func(v Verdict) Result {
		res.Verdict = v
		res.Cycles = m.cpu.Cycles() - startCycles
		res.Elapsed = time.Since(start)
		if m.serial != nil {
			res.Stage = m.serial.lastStage()
		}
		m.log.Debug("run finished",
			"verdict", v,
			"steps", res.Steps,
			"cycles", res.Cycles,
			"elapsed", res.Elapsed.Truncate(time.Millisecond))
		return res
	}

	for res.Steps < m.cfg.MaxSteps {
		if _, err := m.Step(); err != nil {
			m.log.Error("cpu fault", "err", err, "steps", res.Steps)
			return finish(VerdictFault), err
		}
		res.Steps++

		if m.serial.changed() {
			if m.cfg.AutoVerdict {
				if v, n := m.serial.verdict(); v != VerdictNone {
					res.FailedTests = n
					return finish(v), nil
				}
			} else if m.cfg.UntilSerial != "" && m.serial.contains(m.cfg.UntilSerial) {
				return finish(VerdictUntil), nil
			}
		}

		// poll ctx every 1024 instructions
		if res.Steps&0x3FF == 0 {
			select {
			case <-ctx.Done():
				return finish(VerdictTimeout), nil
			default:
			}
		}
	}
	return finish(VerdictStepLimit), nil
}
