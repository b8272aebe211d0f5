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

// SUBACK return codes (spec.md §6).
const (
	SubAckMaxQoS0 byte = 0x00
	SubAckMaxQoS1 byte = 0x01
	SubAckMaxQoS2 byte = 0x02
	SubAckFailure byte = 0x80
)

// Suback is the decoded SUBACK variable header and payload.
type Suback struct {
	PacketID    uint16
	ReturnCodes []byte
}

// UnpackSuback decodes a SUBACK packet given its already-decoded fixed
// header (spec.md §8 scenario 4).
func UnpackSuback(hdr FixedHeader, body []byte) (Suback, int, error) {
	if uint32(len(body)) < hdr.RemainingLength || hdr.RemainingLength < 3 {
		if uint32(len(body)) < hdr.RemainingLength {
			return Suback{}, 0, nil
		}
		return Suback{}, 0, ErrInvalidRemainingLength
	}
	pid, n, err := getUint16(body)
	if err != nil || n == 0 {
		return Suback{}, 0, err
	}
	codes := make([]byte, hdr.RemainingLength-2)
	copy(codes, body[n:int(hdr.RemainingLength)])
	return Suback{PacketID: pid, ReturnCodes: codes}, int(hdr.RemainingLength), nil
}
