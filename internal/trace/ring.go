package trace

import (
	"fmt"
	"io"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/cpu"
)

// Ring keeps the most recent records for dumping after a test ROM reports
// a failure.
type Ring struct {
	buf  []cpu.Record
	next int
	fill int
}

// NewRing returns a ring holding up to n records. n < 1 keeps nothing.
func NewRing(n int) *Ring {
	if n < 0 {
		n = 0
	}
	return &Ring{buf: make([]cpu.Record, n)}
}

func (r *Ring) Trace(rec cpu.Record) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.fill < len(r.buf) {
		r.fill++
	}
}

func (r *Ring) Len() int { return r.fill }

// Records returns the retained records oldest first.
func (r *Ring) Records() []cpu.Record {
	out := make([]cpu.Record, 0, r.fill)
	start := (r.next - r.fill + len(r.buf)) % max(len(r.buf), 1)
	for i := 0; i < r.fill; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Dump writes the retained records oldest first in the Detail format.
func (r *Ring) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "--- recent trace (last %d instructions) ---\n", r.fill); err != nil {
		return err
	}
	for _, rec := range r.Records() {
		if _, err := fmt.Fprintln(w, Detail(rec)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "--- end trace ---")
	return err
}
