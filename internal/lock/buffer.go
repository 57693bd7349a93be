package lock

import (
	"github.com/dmitrijs2005/screenlock/internal/common"
)

// digitBuffer holds up to common.PasscodeLength ASCII digits.
type digitBuffer struct {
	digits [common.PasscodeLength]byte
	n      int
}

// push appends r. It returns false if r is not a digit or the buffer is
// full.
func (b *digitBuffer) push(r rune) bool {
	if !common.IsDigit(r) || b.full() {
		return false
	}
	b.digits[b.n] = byte(r)
	b.n++
	return true
}

// pop removes the last digit. It returns false if the buffer is empty.
func (b *digitBuffer) pop() bool {
	if b.n == 0 {
		return false
	}
	b.n--
	b.digits[b.n] = 0
	return true
}

func (b *digitBuffer) len() int   { return b.n }
func (b *digitBuffer) full() bool { return b.n == common.PasscodeLength }

// bytes returns a copy of the entered digits. The caller wipes it.
func (b *digitBuffer) bytes() []byte {
	out := make([]byte, b.n)
	copy(out, b.digits[:b.n])
	return out
}

func (b *digitBuffer) equal(o *digitBuffer) bool {
	return b.n == o.n && b.digits == o.digits
}

func (b *digitBuffer) wipe() {
	common.WipeByteArray(b.digits[:])
	b.n = 0
}
