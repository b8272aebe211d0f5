/*
 * MIT License
 *
 * Copyright (c) 2022-2022 waj334
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

package packets

// Unsubscribe is an UNSUBSCRIBE packet: a packet id plus one or more topic
// filters. Fixed flags are mandated 0b0010.
type Unsubscribe struct {
	PacketID uint16
	Filters  []string
}

func (u Unsubscribe) variableHeaderAndPayloadSize() int {
	n := 2
	for _, f := range u.Filters {
		n += 2 + len(f)
	}
	return n
}

// Size returns the total number of bytes Pack will write, or
// ErrNoSubscriptions if u has no filters.
func (u Unsubscribe) Size() (int, error) {
	if len(u.Filters) == 0 {
		return 0, ErrNoSubscriptions
	}
	return totalSize(u.variableHeaderAndPayloadSize()), nil
}

// Pack serializes a full UNSUBSCRIBE packet into buf.
func (u Unsubscribe) Pack(buf []byte) (int, error) {
	if len(u.Filters) == 0 {
		return 0, ErrNoSubscriptions
	}
	remaining := u.variableHeaderAndPayloadSize()
	hdr := FixedHeader{Type: UNSUBSCRIBE, Flags: 0b0010, RemainingLength: uint32(remaining)}
	hn, err := hdr.Pack(buf)
	if err != nil {
		return 0, err
	}
	if hn == 0 || len(buf) < hn+remaining {
		return 0, nil
	}
	off := hn
	n, _ := putUint16(u.PacketID, buf[off:])
	off += n
	for _, f := range u.Filters {
		n, err = putString(f, buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}
