package cpu

import (
	"errors"
	"fmt"
)

// ErrIllegalOpcode is matched by every *IllegalOpcodeError.
var ErrIllegalOpcode = errors.New("cpu: illegal opcode")

// IllegalOpcodeError is the fatal fault raised when the fetched byte has no
// assigned behaviour. The CPU stays faulted until Reset.
type IllegalOpcodeError struct {
	Opcode byte
	PC     uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("cpu: illegal opcode %02X at $%04X", e.Opcode, e.PC)
}

func (e *IllegalOpcodeError) Is(target error) bool {
	return target == ErrIllegalOpcode
}
