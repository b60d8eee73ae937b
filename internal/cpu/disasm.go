package cpu

import (
	"fmt"
	"strings"
)

// Disassemble formats the instruction whose opcode is op. pc is the address
// of the first byte after the opcode; immediates are read from r there. The
// result is for display only and plays no part in execution.
func Disassemble(r Reader, pc uint16, op byte, prefixed bool) string {
	if prefixed {
		return cbTable[op].mnemonic
	}
	e := &baseTable[op]
	if e.illegal {
		return fmt.Sprintf("DB $%02X", op)
	}

	switch e.operand {
	case operandN8:
		return strings.Replace(e.mnemonic, "n8", fmt.Sprintf("$%02X", r.Read(pc)), 1)
	case operandN16:
		return strings.Replace(e.mnemonic, "n16", fmt.Sprintf("$%04X", read16(r, pc)), 1)
	case operandA16:
		return strings.Replace(e.mnemonic, "a16", fmt.Sprintf("$%04X", read16(r, pc)), 1)
	case operandA8:
		return strings.Replace(e.mnemonic, "a8", fmt.Sprintf("$FF%02X", r.Read(pc)), 1)
	case operandE8:
		// displacement is relative to the end of the two-byte instruction
		target := pc + 1 + uint16(int16(int8(r.Read(pc))))
		return strings.Replace(e.mnemonic, "e8", fmt.Sprintf("$%04X", target), 1)
	case operandS8:
		off := fmt.Sprintf("%d", int8(r.Read(pc)))
		if strings.Contains(e.mnemonic, "+e8") {
			off = fmt.Sprintf("%+d", int8(r.Read(pc)))
			return strings.Replace(e.mnemonic, "+e8", off, 1)
		}
		return strings.Replace(e.mnemonic, "e8", off, 1)
	}
	return e.mnemonic
}

// Length is the instruction length in bytes including the opcode. A 0xCB
// prefix counts as a two-byte instruction.
func Length(op byte) int {
	e := &baseTable[op]
	switch {
	case e.prefix:
		return 2
	case e.operand == operandNone:
		return 1
	case e.operand == operandN16 || e.operand == operandA16:
		return 3
	}
	return 2
}

func read16(r Reader, addr uint16) uint16 {
	return uint16(r.Read(addr)) | uint16(r.Read(addr+1))<<8
}
