package abcalc

import (
	"crypto/rand"
	"encoding/binary"
)

// CPRNG reads crypto/rand in batches. It supplies fresh seeds for the DPRNG when a caller asks
// for a non-reproducible run. Not safe for concurrent use.
type CPRNG struct {
	bufPos uint32
	buf    []byte
}

// NewCPRNG creates a CPRNG holding capBytes of random data (at least 8). A larger buffer means
// fewer reads from the operating system.
func NewCPRNG(capBytes uint32) *CPRNG {
	if capBytes < 8 {
		capBytes = 8
	}
	c := &CPRNG{buf: make([]byte, capBytes)}
	c.refill()
	return c
}

func (c *CPRNG) refill() {
	if _, err := rand.Read(c.buf); err != nil {
		panic(err)
	}
	c.bufPos = 0
}

// Uint64 returns a uniformly distributed uint64.
func (c *CPRNG) Uint64() uint64 {
	if c.bufPos+8 > uint32(len(c.buf)) {
		c.refill()
	}
	v := binary.LittleEndian.Uint64(c.buf[c.bufPos : c.bufPos+8])
	c.bufPos += 8
	return v
}

// Seed returns a non-zero uint64, the only state a DPRNG cannot start from.
func (c *CPRNG) Seed() uint64 {
	for {
		if s := c.Uint64(); s != 0 {
			return s
		}
	}
}
