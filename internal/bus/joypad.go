package bus

// Joypad button bits for SetJoypadState. A set bit means pressed.
const (
	JoypRight byte = 1 << iota
	JoypLeft
	JoypUp
	JoypDown
	JoypA
	JoypB
	JoypSelect
	JoypStart
)

type joypad struct {
	selectBits byte // P14/P15 as last written, active low
	pressed    byte
}

func (j *joypad) reset() {
	j.selectBits = 0x30
	j.pressed = 0
}

func (j *joypad) write(v byte) { j.selectBits = v & 0x30 }

func (j *joypad) read() byte {
	return 0xC0 | j.selectBits | j.lines()
}

// lines returns the low nibble of JOYP for the current selection, with
// pressed buttons pulled low.
func (j *joypad) lines() byte {
	low := byte(0x0F)
	if j.selectBits&0x10 == 0 {
		low &^= j.pressed & 0x0F
	}
	if j.selectBits&0x20 == 0 {
		low &^= j.pressed >> 4
	}
	return low
}

// SetJoypadState replaces the set of pressed buttons. A selected line going
// low raises the joypad interrupt.
func (b *Bus) SetJoypadState(pressed byte) {
	before := b.joypad.lines()
	b.joypad.pressed = pressed
	if before&^b.joypad.lines() != 0 {
		b.RequestInterrupt(IntJoypad)
	}
}

// StopWake ends STOP when a button on a selected line is held or a joypad
// interrupt is requested.
func (b *Bus) StopWake() bool {
	return b.joypad.lines() != 0x0F || b.ifReg&IntJoypad != 0
}
