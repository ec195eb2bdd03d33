package cpu

import (
	"github.com/ezrec/awl/dtype"
)

// COUNTER_MAX is the largest counter value.
const COUNTER_MAX = dtype.BCD16_MAX

// Counter is an S5 up/down counter.
type Counter struct {
	Value uint16

	upEdge   bool
	downEdge bool
	setEdge  bool
	enable   bool
}

// Output is true for a non-zero count.
func (c *Counter) Output() bool {
	return c.Value != 0
}

// Up runs ZV.
func (c *Counter) Up(vke bool) {
	if vke && !c.upEdge && c.Value < COUNTER_MAX {
		c.Value++
	}
	c.upEdge = vke
}

// Down runs ZR.
func (c *Counter) Down(vke bool) {
	if vke && !c.downEdge && c.Value > 0 {
		c.Value--
	}
	c.downEdge = vke
}

// Set runs S Z: a rising VKE presets the counter from a BCD word.
func (c *Counter) Set(vke bool, bcd uint16) (err error) {
	if vke && !c.setEdge {
		var value uint16
		value, err = dtype.BcdToUint16(bcd)
		if err == nil {
			c.Value = value
		}
	}
	c.setEdge = vke
	return
}

// Reset runs R Z.
func (c *Counter) Reset(vke bool) {
	if vke {
		c.Value = 0
	}
}

// Enable runs FR: a rising VKE allows the next edge to count again.
func (c *Counter) Enable(vke bool) {
	if vke && !c.enable {
		c.upEdge = false
		c.downEdge = false
		c.setEdge = false
	}
	c.enable = vke
}

// BCD returns the count as BCD.
func (c *Counter) BCD() uint16 {
	bcd, _ := dtype.Uint16ToBcd(c.Value)
	return bcd
}
