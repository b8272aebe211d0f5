/*
 * MIT License
 *
 * Copyright (c) 2022 waj334
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package pid generates MQTT packet identifiers: non-zero 16-bit values
// produced by a maximum-length Galois LFSR, as spec.md §4.3 requires.
package pid

// taps is the feedback mask for a maximal-length 16-bit Galois LFSR
// (taps at bit positions 16, 14, 13, 11), giving a period of 65535 over
// every nonzero seed.
const taps = 0xB400

// Generator produces the packet-id sequence for a Client. The zero value
// is not ready for use; construct with NewGenerator.
type Generator struct {
	state uint16
}

// NewGenerator seeds a Generator. A zero seed is coerced to 1, since the
// all-zero state is the one value a Galois LFSR can never leave.
func NewGenerator(seed uint16) *Generator {
	if seed == 0 {
		seed = 1
	}
	return &Generator{state: seed}
}

// Next advances the LFSR by one step and returns the new packet id. It
// never returns 0.
func (g *Generator) Next() uint16 {
	lsb := g.state & 1
	g.state >>= 1
	if lsb == 1 {
		g.state ^= taps
	}
	return g.state
}
