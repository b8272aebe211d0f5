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

import "encoding/binary"

// putString writes a 2-byte big-endian length prefix followed by s. Returns
// 0, nil if buf is too small.
func putString(s string, buf []byte) (int, error) {
	if len(s) > 65535 {
		return 0, ErrStringTooLong
	}
	if len(buf) < 2+len(s) {
		return 0, nil
	}
	binary.BigEndian.PutUint16(buf, uint16(len(s)))
	copy(buf[2:], s)
	return 2 + len(s), nil
}

// getString reads a length-prefixed string from buf. Returns (0, "", nil)
// if buf does not yet hold the full string.
func getString(buf []byte) (string, int, error) {
	if len(buf) < 2 {
		return "", 0, nil
	}
	length := int(binary.BigEndian.Uint16(buf))
	if len(buf) < 2+length {
		return "", 0, nil
	}
	return string(buf[2 : 2+length]), 2 + length, nil
}

func putUint16(v uint16, buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, nil
	}
	binary.BigEndian.PutUint16(buf, v)
	return 2, nil
}

func getUint16(buf []byte) (uint16, int, error) {
	if len(buf) < 2 {
		return 0, 0, nil
	}
	return binary.BigEndian.Uint16(buf), 2, nil
}
