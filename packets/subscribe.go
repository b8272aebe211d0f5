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

// TopicFilter pairs a subscription filter with its requested maximum QoS.
type TopicFilter struct {
	Filter string
	QoS    QoS
}

// Subscribe is a SUBSCRIBE packet: a packet id plus one or more topic
// filters (spec.md §3, §4.1). Fixed flags are mandated 0b0010.
type Subscribe struct {
	PacketID uint16
	Filters  []TopicFilter
}

func (s Subscribe) variableHeaderAndPayloadSize() int {
	n := 2
	for _, f := range s.Filters {
		n += 2 + len(f.Filter) + 1
	}
	return n
}

// Size returns the total number of bytes Pack will write, or
// ErrNoSubscriptions if s has no filters.
func (s Subscribe) Size() (int, error) {
	if len(s.Filters) == 0 {
		return 0, ErrNoSubscriptions
	}
	return totalSize(s.variableHeaderAndPayloadSize()), nil
}

// Pack serializes a full SUBSCRIBE packet into buf (spec.md §8 scenario 3).
func (s Subscribe) Pack(buf []byte) (int, error) {
	if len(s.Filters) == 0 {
		return 0, ErrNoSubscriptions
	}
	remaining := s.variableHeaderAndPayloadSize()
	hdr := FixedHeader{Type: SUBSCRIBE, Flags: 0b0010, RemainingLength: uint32(remaining)}
	hn, err := hdr.Pack(buf)
	if err != nil {
		return 0, err
	}
	if hn == 0 || len(buf) < hn+remaining {
		return 0, nil
	}
	off := hn
	n, _ := putUint16(s.PacketID, buf[off:])
	off += n
	for _, f := range s.Filters {
		n, err = putString(f.Filter, buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
		buf[off] = byte(f.QoS)
		off++
	}
	return off, nil
}
