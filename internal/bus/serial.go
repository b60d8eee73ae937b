package bus

import "io"

// serial is the link port. There is never a partner on the other end, so a
// transfer started with the internal clock completes at once.
type serial struct {
	sb  byte
	sc  byte
	out io.Writer
}

func (b *Bus) writeSC(v byte) {
	b.serial.sc = v & 0x81
	if v&0x81 != 0x81 {
		return
	}
	if b.serial.out != nil {
		_, _ = b.serial.out.Write([]byte{b.serial.sb})
	}
	b.serial.sc &^= 0x80
	b.RequestInterrupt(IntSerial)
}
