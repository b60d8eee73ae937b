// Package trace provides sinks for the records the CPU emits for every
// retired instruction.
package trace

import (
	"fmt"
	"io"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cpu"
)

// Line formats r as a one-line diagnostic record:
//
//	LD A,$42 ~ PC: $0150 IF: 0x00000000 IE: 0x00000001 IME: false
//
// with IF and IE printed as eight binary digits after a 0x prefix.
func Line(r cpu.Record) string {
	return fmt.Sprintf("%s ~ PC: $%04X IF: 0x%08b IE: 0x%08b IME: %t", r.Text, r.PC, r.IF, r.IE, r.IME)
}

// Detail formats r with the full register file.
func Detail(r cpu.Record) string {
	op := fmt.Sprintf("%02X", r.Opcode)
	if r.Prefixed {
		op = "CB" + op
	}
	return fmt.Sprintf("PC=%04X OP=%-4s cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t IF=%02X IE=%02X  %s",
		r.PC, op, r.Cycles, r.Regs.A, r.Regs.F, r.Regs.B, r.Regs.C, r.Regs.D, r.Regs.E, r.Regs.H, r.Regs.L,
		r.SP, r.IME, r.IF, r.IE, r.Text)
}

// LineWriter writes every record to w in the Line format. After the first
// write error it drops records; Err reports that error.
type LineWriter struct {
	w      io.Writer
	format func(cpu.Record) string
	err    error
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w, format: Line}
}

// NewDetailWriter is a LineWriter using the Detail format.
func NewDetailWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w, format: Detail}
}

func (l *LineWriter) Trace(r cpu.Record) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintln(l.w, l.format(r))
}

func (l *LineWriter) Err() error { return l.err }

// Multi sends each record to every tracer in order.
type Multi []cpu.Tracer

func (m Multi) Trace(r cpu.Record) {
	for _, t := range m {
		t.Trace(r)
	}
}
