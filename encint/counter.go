////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package encint

import (
	jww "github.com/spf13/jwalterweatherman"
)

// Width is the bit width of the unsigned integer a handle refers to. Only
// the two widths used by the social graph are defined.
type Width uint8

const (
	Width8  Width = 8
	Width32 Width = 32
)

// Modulus returns the modulus of the integer domain at this width.
func (w Width) Modulus() uint64 {
	return uint64(1) << uint(w)
}

// Valid returns true if w is one of the defined widths.
func (w Width) Valid() bool {
	return w == Width8 || w == Width32
}

// Counter couples a ciphertext handle with the width of the value it
// refers to. Counters are value types; deriving a new value always produces
// a new Counter with a fresh handle.
type Counter struct {
	Handle Handle `json:"handle"`
	Width  Width  `json:"width"`
}

// Evaluator is the external homomorphic-evaluation capability. All three
// operations succeed or fail atomically; a returned error means no
// ciphertext state was produced. Implementations must return a fresh handle
// from every successful call, including Constant.
type Evaluator interface {
	Constant(w Width, value uint64) (Counter, error)
	Add(a, b Counter) (Counter, error)
	Sub(a, b Counter) (Counter, error)
}

// Decryptor is implemented by evaluation capabilities that can reveal
// plaintexts, such as the LocalEvaluator. The bookkeeping engine never
// calls it; reveals happen on a separate authorized path.
type Decryptor interface {
	Decrypt(h Handle) (uint64, error)
}

// Constant requests a fresh encryption of value at width w. The value must
// fit in the width; overflow is a programming error, not caller input.
func Constant(e Evaluator, w Width, value uint64) (Counter, error) {
	if !w.Valid() {
		jww.FATAL.Panicf("Invalid counter width %d", w)
	}
	if value >= w.Modulus() {
		jww.FATAL.Panicf(
			"Constant %d does not fit in width %d", value, w)
	}
	return e.Constant(w, value)
}

// Add requests the encrypted sum of a and b. The operands must share a
// width; a mismatch is an invariant violation and panics rather than
// coercing.
func Add(e Evaluator, a, b Counter) (Counter, error) {
	mustMatch("add", a, b)
	return e.Add(a, b)
}

// Sub requests the encrypted difference a minus b, with the same width
// discipline as Add. Legality of the subtraction in the abstract integer
// domain is the caller's responsibility; the engine cannot range-check a
// ciphertext.
func Sub(e Evaluator, a, b Counter) (Counter, error) {
	mustMatch("sub", a, b)
	return e.Sub(a, b)
}

func mustMatch(op string, a, b Counter) {
	if a.Width != b.Width {
		jww.FATAL.Panicf("Width mismatch on %s: %d != %d "+
			"(handles %s, %s)", op, a.Width, b.Width, a.Handle, b.Handle)
	}
	if !a.Width.Valid() {
		jww.FATAL.Panicf("Invalid counter width %d on %s", a.Width, op)
	}
}
