package bus

const (
	dotsPerLine   = 456
	linesPerFrame = 154
	vblankLine    = 144
)

// lcd counts scanlines so that LY, the STAT mode bits and the VBlank request
// advance in time with the CPU. Nothing is rendered.
type lcd struct {
	ly   byte
	dot  int
	stat byte // writable STAT bits 3-6
}

func (b *Bus) lcdOn() bool { return b.regs[0x40]&0x80 != 0 }

// tickLCD advances the line counter by one dot. With the LCD off LY is held
// at 0.
func (b *Bus) tickLCD() {
	if !b.lcdOn() {
		b.lcd.ly, b.lcd.dot = 0, 0
		return
	}
	b.lcd.dot++
	if b.lcd.dot < dotsPerLine {
		return
	}
	b.lcd.dot = 0
	b.lcd.ly++
	if b.lcd.ly == linesPerFrame {
		b.lcd.ly = 0
	}
	if b.lcd.ly == vblankLine {
		b.RequestInterrupt(IntVBlank)
	}
}

func (b *Bus) readSTAT() byte {
	v := 0x80 | b.lcd.stat
	if !b.lcdOn() {
		return v
	}
	if b.lcd.ly == b.regs[0x45] {
		v |= 0x04
	}
	switch {
	case b.lcd.ly >= vblankLine:
		v |= 0x01
	case b.lcd.dot < 80:
		v |= 0x02
	case b.lcd.dot < 252:
		v |= 0x03
	}
	return v
}
