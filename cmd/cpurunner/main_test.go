package main

import (
	"bytes"
	"strings"
	"testing"
)

type memReader []byte

func (m memReader) Read(addr uint16) byte {
	if int(addr) < len(m) {
		return m[addr]
	}
	return 0xFF
}

func TestAddrValue_Set(t *testing.T) {
	cases := map[string]uint16{
		"0x0150": 0x0150,
		"$C000":  0xC000,
		"ff80":   0xFF80,
		"0X100":  0x0100,
	}
	for in, want := range cases {
		var a addrValue
		if err := a.Set(in); err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if uint16(a) != want {
			t.Errorf("%q: got %04X want %04X", in, uint16(a), want)
		}
	}
	for _, bad := range []string{"", "0x10000", "zz"} {
		var a addrValue
		if err := a.Set(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
	a := addrValue(0x0100)
	if a.String() != "0x0100" {
		t.Fatalf("String: %q", a.String())
	}
}

func TestDisassemble_Linear(t *testing.T) {
	code := memReader{
		0x00,             // NOP
		0x3E, 0x42,       // LD A,$42
		0xC3, 0x50, 0x01, // JP $0150
		0xCB, 0x11,       // RL C
		0xD3,             // illegal
	}
	var buf bytes.Buffer
	disassemble(&buf, code, 0, 5)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"0000  00        NOP",
		"0001  3E 42     LD A,$42",
		"0003  C3 50 01  JP $0150",
		"0006  CB 11     RL C",
		"0008  D3        DB $D3",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: %q want %q", i, lines[i], want[i])
		}
	}
}
