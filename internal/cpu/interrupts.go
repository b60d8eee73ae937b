package cpu

import "fmt"

// Interrupt vectors, lowest bit has highest priority.
var vectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// pending returns the serviceable requests, IF & IE & 0x1F.
func (c *CPU) pending() byte {
	return c.bus.InterruptFlag() & c.bus.InterruptEnable() & intMask
}

// boundary runs the power-state and interrupt checks that happen between
// instructions. It returns true when the cycle should be spent fetching the
// next opcode. Otherwise the cycle was consumed by idling or by the first
// step of an interrupt dispatch.
func (c *CPU) boundary() bool {
	if c.stopped {
		if !c.stopWake() {
			return false
		}
		c.stopped = false
	}

	if c.halted {
		if c.pending() == 0 {
			return false
		}
		c.halted = false
	}

	if c.ime {
		if p := c.pending(); p != 0 {
			c.beginDispatch(p)
			return false
		}
	}

	if c.eiPending {
		c.eiPending = false
		c.ime = true
	}
	return true
}

func (c *CPU) stopWake() bool {
	if w, ok := c.bus.(Waker); ok {
		return w.StopWake()
	}
	return c.bus.InterruptFlag()&intJoypad != 0
}

// beginDispatch starts the five-cycle interrupt entry for the lowest set bit
// of p and executes its first step. The request bit is cleared in the last
// step, when PC is loaded with the vector.
func (c *CPU) beginDispatch(p byte) {
	var bit uint8
	for p&(1<<bit) == 0 {
		bit++
	}

	c.ime = false
	c.eiPending = false

	c.steps = append(c.steps[:0], dispatchSteps[:]...)
	last := &c.steps[len(c.steps)-1]
	last.Bit = bit
	last.Vector = vectors[bit]
	c.next = 0

	c.cur = inflight{pc: c.PC, traced: c.tracing()}
	if c.cur.traced {
		c.cur.text = fmt.Sprintf("INT $%02X", vectors[bit])
	}
	c.execute()
}

// enterHalt implements HALT. With IME clear and a request already pending
// the CPU does not halt; instead the next opcode fetch does not advance PC.
func (c *CPU) enterHalt() {
	if !c.ime && c.pending() != 0 {
		c.haltBug = true
		return
	}
	c.halted = true
}
