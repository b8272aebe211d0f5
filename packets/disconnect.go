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

// headerOnly packs PINGREQ, PINGRESP, and DISCONNECT: fixed header only,
// remaining length 0 (spec.md §4.1).
type headerOnly struct {
	Type PacketType
}

// Size returns the total number of bytes Pack will write (always 2: type
// and flags byte plus a zero remaining-length byte).
func (h headerOnly) Size() int { return totalSize(0) }

func (h headerOnly) Pack(buf []byte) (int, error) {
	return FixedHeader{Type: h.Type}.Pack(buf)
}

// Disconnect packs a DISCONNECT packet.
func Disconnect() headerOnly { return headerOnly{Type: DISCONNECT} }

// PingReq packs a PINGREQ packet.
func PingReq() headerOnly { return headerOnly{Type: PINGREQ} }

// PingResp packs a PINGRESP packet.
func PingResp() headerOnly { return headerOnly{Type: PINGRESP} }
