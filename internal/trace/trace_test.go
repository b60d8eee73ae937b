package trace

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cpu"
)

func TestLine_Format(t *testing.T) {
	r := cpu.Record{Text: "JP $0150", PC: 0x0101, IF: 0x05, IE: 0x1F, IME: true}
	want := "JP $0150 ~ PC: $0101 IF: 0x00000101 IE: 0x00011111 IME: true"
	if got := Line(r); got != want {
		t.Fatalf("Line got %q want %q", got, want)
	}
}

func TestDetail_Prefixed(t *testing.T) {
	r := cpu.Record{Text: "SWAP A", PC: 0x0200, Opcode: 0x37, Prefixed: true, Cycles: 2}
	got := Detail(r)
	if !strings.HasPrefix(got, "PC=0200 OP=CB37 cyc=2 ") || !strings.HasSuffix(got, "SWAP A") {
		t.Fatalf("Detail got %q", got)
	}
}

func TestLineWriter_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	lw := NewLineWriter(&buf)
	lw.Trace(cpu.Record{Text: "NOP", PC: 0x0100})
	lw.Trace(cpu.Record{Text: "HALT", PC: 0x0101})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "HALT ~ PC: $0101") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if lw.Err() != nil {
		t.Fatalf("Err: %v", lw.Err())
	}
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, errors.New("disk full")
}

func TestLineWriter_StopsAfterError(t *testing.T) {
	fw := &failWriter{}
	lw := NewLineWriter(fw)
	lw.Trace(cpu.Record{})
	lw.Trace(cpu.Record{})
	if lw.Err() == nil || fw.n != 1 {
		t.Fatalf("err=%v writes=%d, want error after one write", lw.Err(), fw.n)
	}
}

func TestRing_KeepsMostRecent(t *testing.T) {
	r := NewRing(3)
	for pc := uint16(0); pc < 5; pc++ {
		r.Trace(cpu.Record{PC: pc})
	}
	recs := r.Records()
	if r.Len() != 3 || len(recs) != 3 {
		t.Fatalf("Len %d records %d want 3", r.Len(), len(recs))
	}
	for i, want := range []uint16{2, 3, 4} {
		if recs[i].PC != want {
			t.Fatalf("record %d PC=%d want %d", i, recs[i].PC, want)
		}
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 5 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestRing_PartialAndEmpty(t *testing.T) {
	r := NewRing(4)
	r.Trace(cpu.Record{PC: 7})
	if recs := r.Records(); len(recs) != 1 || recs[0].PC != 7 {
		t.Fatalf("partial ring: %+v", recs)
	}
	z := NewRing(0)
	z.Trace(cpu.Record{PC: 1})
	if z.Len() != 0 || len(z.Records()) != 0 {
		t.Fatalf("zero ring kept records")
	}
}

func TestMulti(t *testing.T) {
	a, b := NewRing(2), NewRing(2)
	Multi{a, b}.Trace(cpu.Record{PC: 9})
	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("Multi did not fan out")
	}
}
