package bus

// timer is the DIV/TIMA/TMA/TAC block. DIV is the upper byte of a 16-bit
// counter incremented every T-cycle; TIMA counts falling edges of the
// counter bit selected by TAC.
type timer struct {
	divInternal uint16
	tima        byte
	tma         byte
	tac         byte

	// T-cycles until TIMA is reloaded from TMA after an overflow; 0 when idle
	reloadDelay int
}

// timerBits maps TAC's clock select to the divider bit it watches.
var timerBits = [4]uint16{1 << 9, 1 << 3, 1 << 5, 1 << 7}

func (b *Bus) timerInput() bool {
	return b.tac&0x04 != 0 && b.divInternal&timerBits[b.tac&0x03] != 0
}

func (b *Bus) tickTimer() {
	if b.reloadDelay > 0 {
		b.reloadDelay--
		if b.reloadDelay == 0 {
			b.tima = b.tma
			b.RequestInterrupt(IntTimer)
		}
	}

	before := b.timerInput()
	b.divInternal++
	if before && !b.timerInput() {
		b.incTIMA()
	}
}

func (b *Bus) incTIMA() {
	if b.reloadDelay > 0 {
		return
	}
	b.tima++
	if b.tima == 0 {
		b.reloadDelay = 4
	}
}

// writeDIV resets the divider. A falling edge on the watched bit counts.
func (b *Bus) writeDIV() {
	before := b.timerInput()
	b.divInternal = 0
	if before {
		b.incTIMA()
	}
}

// writeTIMA during the reload delay cancels the reload.
func (b *Bus) writeTIMA(v byte) {
	b.tima = v
	b.reloadDelay = 0
}

func (b *Bus) writeTAC(v byte) {
	before := b.timerInput()
	b.tac = v & 0x07
	if before && !b.timerInput() {
		b.incTIMA()
	}
}
