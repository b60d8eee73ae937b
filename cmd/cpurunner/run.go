package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/emu"
	"github.com/FabianRolfMatthiasNoll/sm83core/internal/trace"
	"github.com/spf13/cobra"
)

type runOptions struct {
	romPath     string
	bootPath    string
	traceFormat string
	traceOnFail bool
}

func newRunCmd() *cobra.Command {
	var cfg emu.Config
	var opts runOptions
	startPC := addrValue(0x0100)

	cmd := &cobra.Command{
		Use:   "run [rom]",
		Short: "Run a ROM until its serial output reports a result",
		Long: `Run a ROM headless, echoing serial output to stdout.

With --auto the run ends on "Passed" (exit 0) or "Failed N tests" (exit 1).
A wall-clock timeout exits with 2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.romPath = args[0]
			}
			if opts.romPath == "" {
				return errors.New("a ROM is required, pass --rom or a path argument")
			}
			if opts.traceFormat != "line" && opts.traceFormat != "detail" {
				return fmt.Errorf("unknown trace format %q", opts.traceFormat)
			}
			cfg.StartPC = uint16(startPC)
			if !opts.traceOnFail {
				cfg.TraceWindow = 0
			}
			return runROM(cmd.Context(), cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.romPath, "rom", "", "Path to ROM (.gb)")
	f.StringVar(&opts.bootPath, "bootrom", "", "Optional DMG boot ROM run from 0x0000 until FF50 unmaps it")
	f.IntVar(&cfg.MaxSteps, "steps", 5_000_000, "Max CPU instructions to run")
	f.Var(&startPC, "pc", "Initial PC when starting without a boot ROM")
	f.BoolVar(&cfg.Trace, "trace", false, "Print every retired instruction")
	f.StringVar(&opts.traceFormat, "trace-format", "line", "Trace format: line or detail")
	f.StringVar(&cfg.UntilSerial, "until", "Passed", "Stop when serial output contains this, case-insensitive; empty disables")
	f.BoolVar(&cfg.AutoVerdict, "auto", false, "Detect 'Passed' or 'Failed N tests' in serial output and exit 0/1")
	f.DurationVar(&cfg.Timeout, "timeout", 0, "Wall-clock timeout (e.g. 30s, 2m); 0 disables")
	f.BoolVar(&opts.traceOnFail, "trace-on-fail", false, "Keep recent instructions and print them when the ROM fails")
	f.IntVar(&cfg.TraceWindow, "trace-window", 200, "Instructions kept for --trace-on-fail")
	f.IntVar(&cfg.SerialWindow, "serial-window", 8192, "Recent serial bytes kept for diagnostics")
	return cmd
}

func runROM(ctx context.Context, cfg emu.Config, opts runOptions) error {
	log := slog.Default()
	m := emu.New(cfg, log)

	if opts.bootPath != "" {
		boot, err := os.ReadFile(opts.bootPath)
		if err != nil {
			return fmt.Errorf("read bootrom: %w", err)
		}
		m.SetBootROM(boot)
		if !m.HasBootROM() {
			log.Warn("boot ROM shorter than 256 bytes, starting post-boot", "bytes", len(boot))
		}
	}

	// traces are written per instruction, so buffer them
	var out io.Writer = os.Stdout
	if cfg.Trace {
		bw := bufio.NewWriterSize(os.Stdout, 64<<10)
		defer bw.Flush()
		out = bw
		if opts.traceFormat == "detail" {
			m.AddTracer(trace.NewDetailWriter(bw))
		} else {
			m.AddTracer(trace.NewLineWriter(bw))
		}
	}
	m.SetSerialWriter(out)

	if err := m.LoadROMFromFile(opts.romPath); err != nil {
		return err
	}

	res, err := m.Run(ctx)
	if err != nil && res.Verdict != emu.VerdictFault {
		return err
	}
	if code := report(out, m, res, err, cfg); code != 0 {
		return exitError{code}
	}
	return nil
}

// report prints the outcome of a run and returns the process exit code.
func report(w io.Writer, m *emu.Machine, res emu.Result, runErr error, cfg emu.Config) int {
	code := 0
	failed := false
	switch res.Verdict {
	case emu.VerdictPassed:
		fmt.Fprintf(w, "\nDetected PASS in serial output.\n")
	case emu.VerdictFailed:
		fmt.Fprintf(w, "\nDetected Failed %d tests in serial output.\n", res.FailedTests)
		code, failed = 1, true
	case emu.VerdictUntil:
		fmt.Fprintf(w, "\nDetected '%s' in serial output.\n", cfg.UntilSerial)
	case emu.VerdictTimeout:
		fmt.Fprintf(w, "\nTimeout after %s.\n", res.Elapsed.Truncate(time.Millisecond))
		code = 2
	case emu.VerdictFault:
		fmt.Fprintf(w, "\nCPU fault: %v\n", runErr)
		code, failed = 1, true
	}
	if res.Stage != "" && (res.Verdict == emu.VerdictPassed || failed) {
		fmt.Fprintf(w, "Last stage seen: %s\n", res.Stage)
	}

	if failed {
		if r := m.Ring(); r != nil && r.Len() > 0 {
			fmt.Fprintln(w)
			r.Dump(w)
		}
		if tail := m.SerialTail(); len(tail) > 0 {
			fmt.Fprintf(w, "\n--- recent serial (last %d bytes) ---\n", len(tail))
			w.Write(tail)
			fmt.Fprintf(w, "\n--- end serial ---\n")
		}
	}

	fmt.Fprintf(w, "\nDone: steps=%d cycles~=%d elapsed=%s\n", res.Steps, res.Cycles, res.Elapsed.Truncate(time.Millisecond))
	return code
}
