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

// varIntLen returns the number of bytes encodeVarInt will need for val.
func varIntLen(val uint32) int {
	switch {
	case val < 128:
		return 1
	case val < 16384:
		return 2
	case val < 2097152:
		return 3
	default:
		return 4
	}
}

// encodeVarInt encodes val (the remaining-length field, max 268435455) as a
// base-128 little-endian integer with a continuation bit in the high bit of
// each byte. Returns 0, nil if buf is too short.
func encodeVarInt(val uint32, buf []byte) (int, error) {
	if val > 268435455 {
		return 0, ErrRemainingLengthTooLong
	}
	n := varIntLen(val)
	if len(buf) < n {
		return 0, nil
	}
	i := 0
	for {
		digit := byte(val % 128)
		val /= 128
		if val > 0 {
			digit |= 0x80
		}
		buf[i] = digit
		i++
		if val == 0 {
			break
		}
	}
	return i, nil
}

// decodeVarInt decodes a base-128 remaining-length integer from the start of
// buf. Returns (0, 0, nil) if buf does not yet hold a complete encoding, and
// ErrInvalidRemainingLength if a fifth continuation byte would be required.
func decodeVarInt(buf []byte) (val uint32, n int, err error) {
	var multiplier uint32
	for i := 0; i < 4; i++ {
		if i >= len(buf) {
			return 0, 0, nil
		}
		digit := buf[i]
		val |= uint32(digit&0x7F) << multiplier
		n++
		if digit&0x80 == 0 {
			return val, n, nil
		}
		multiplier += 7
	}
	return 0, 0, ErrInvalidRemainingLength
}
