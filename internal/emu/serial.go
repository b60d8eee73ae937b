package emu

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

var (
	// failure summary printed by the blargg test ROMs
	failRe = regexp.MustCompile(`failed\s+(\d+)\s+tests?`)
	// sub-test markers like "11:01"
	stageRe = regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
)

// verdictOverlap is how far back a verdict scan reaches into bytes that were
// already scanned, so that a report split across writes is still found.
const verdictOverlap = 64

// serialMonitor captures bytes sent over the link port. It keeps the whole
// transcript, a lower-cased copy for matching and a bounded window for
// diagnostics. Matching only looks at bytes that arrived since the previous
// scan.
type serialMonitor struct {
	text  strings.Builder
	lower []byte
	dirty bool

	verdictAt int // scan positions in lower
	untilAt   int

	window []byte
	next   int
	fill   int
}

func newSerialMonitor(window int) *serialMonitor {
	if window < 256 {
		window = 256
	}
	return &serialMonitor{window: make([]byte, window)}
}

func (s *serialMonitor) Write(p []byte) (int, error) {
	s.text.Write(p)
	s.lower = appendLower(s.lower, p)
	for _, ch := range p {
		s.window[s.next] = ch
		s.next = (s.next + 1) % len(s.window)
		if s.fill < len(s.window) {
			s.fill++
		}
	}
	s.dirty = s.dirty || len(p) > 0
	return len(p), nil
}

func (s *serialMonitor) String() string { return s.text.String() }

// Tail returns the last bytes received, oldest first.
func (s *serialMonitor) Tail() []byte {
	out := make([]byte, 0, s.fill)
	start := (s.next - s.fill + len(s.window)) % len(s.window)
	for i := 0; i < s.fill; i++ {
		out = append(out, s.window[(start+i)%len(s.window)])
	}
	return out
}

// changed reports whether bytes arrived since the last call.
func (s *serialMonitor) changed() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// unscanned returns the bytes after *at, plus overlap bytes before it, and
// moves *at to the end of the transcript.
func (s *serialMonitor) unscanned(at *int, overlap int) []byte {
	start := max(*at-overlap, 0)
	*at = len(s.lower)
	return s.lower[start:]
}

// verdict looks for a pass or failure report in the new output.
func (s *serialMonitor) verdict() (v Verdict, failed int) {
	seg := s.unscanned(&s.verdictAt, verdictOverlap)
	if bytes.Contains(seg, []byte("passed")) {
		return VerdictPassed, 0
	}
	if m := failRe.FindSubmatch(seg); m != nil {
		n, _ := strconv.Atoi(string(m[1]))
		return VerdictFailed, n
	}
	return VerdictNone, 0
}

// contains reports whether sub has appeared, ignoring ASCII case.
func (s *serialMonitor) contains(sub string) bool {
	want := appendLower(nil, []byte(sub))
	seg := s.unscanned(&s.untilAt, max(len(want)-1, 0))
	return bytes.Contains(seg, want)
}

// lastStage returns the most recent "NN:NN" marker, if any. It scans the
// whole transcript and is meant to be called once a run has ended.
func (s *serialMonitor) lastStage() string {
	mm := stageRe.FindAllString(s.text.String(), -1)
	if len(mm) == 0 {
		return ""
	}
	return mm[len(mm)-1]
}

// appendLower appends p to dst with ASCII letters lower-cased. Other bytes
// are copied unchanged so offsets match the raw transcript.
func appendLower(dst, p []byte) []byte {
	for _, c := range p {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		dst = append(dst, c)
	}
	return dst
}
