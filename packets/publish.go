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

// DUP/QoS/RETAIN bit positions within the PUBLISH fixed header flags nibble.
const (
	publishDupBit    = 1 << 3
	publishQoSShift  = 1
	publishQoSMask   = 0x03
	publishRetainBit = 1 << 0
)

// Publish is a decoded or to-be-encoded PUBLISH variable header and payload.
type Publish struct {
	Topic    string
	PacketID uint16 // present iff QoS > 0
	Payload  []byte
	QoS      QoS
	Retain   bool
	Dup      bool
}

func publishFlags(qos QoS, retain, dup bool) byte {
	var f byte
	if dup {
		f |= publishDupBit
	}
	f |= byte(qos) << publishQoSShift & (publishQoSMask << publishQoSShift)
	if retain {
		f |= publishRetainBit
	}
	return f
}

func (p Publish) variableHeaderAndPayloadSize() int {
	n := 2 + len(p.Topic)
	if p.QoS > QoS0 {
		n += 2
	}
	n += len(p.Payload)
	return n
}

// Size returns the total number of bytes Pack will write.
func (p Publish) Size() int { return totalSize(p.variableHeaderAndPayloadSize()) }

// Pack serializes a full PUBLISH packet into buf (spec.md §8 scenario 2).
func (p Publish) Pack(buf []byte) (int, error) {
	remaining := p.variableHeaderAndPayloadSize()
	hdr := FixedHeader{
		Type:            PUBLISH,
		Flags:           publishFlags(p.QoS, p.Retain, p.Dup),
		RemainingLength: uint32(remaining),
	}
	hn, err := hdr.Pack(buf)
	if err != nil {
		return 0, err
	}
	if hn == 0 || len(buf) < hn+remaining {
		return 0, nil
	}
	off := hn
	n, err := putString(p.Topic, buf[off:])
	if err != nil {
		return 0, err
	}
	off += n
	if p.QoS > QoS0 {
		n, _ = putUint16(p.PacketID, buf[off:])
		off += n
	}
	off += copy(buf[off:], p.Payload)
	return off, nil
}

// UnpackPublish decodes the variable header and payload of a PUBLISH packet
// given its already-decoded fixed header. body must hold exactly
// hdr.RemainingLength bytes.
func UnpackPublish(hdr FixedHeader, body []byte) (Publish, int, error) {
	if uint32(len(body)) < hdr.RemainingLength {
		return Publish{}, 0, nil
	}
	qos := QoS(hdr.Flags >> publishQoSShift & publishQoSMask)
	off := 0
	topic, n, err := getString(body)
	if err != nil {
		return Publish{}, 0, err
	}
	if n == 0 {
		return Publish{}, 0, nil
	}
	off += n
	var pid uint16
	if qos > QoS0 {
		pid, n, err = getUint16(body[off:])
		if err != nil {
			return Publish{}, 0, err
		}
		if n == 0 {
			return Publish{}, 0, nil
		}
		off += n
	}
	payloadLen := int(hdr.RemainingLength) - off
	if payloadLen < 0 || off+payloadLen > len(body) {
		return Publish{}, 0, ErrInvalidRemainingLength
	}
	return Publish{
		Topic:    topic,
		PacketID: pid,
		Payload:  body[off : off+payloadLen],
		QoS:      qos,
		Retain:   hdr.Flags&publishRetainBit != 0,
		Dup:      hdr.Flags&publishDupBit != 0,
	}, off + payloadLen, nil
}

// SetDup flips the DUP bit in an already-packed PUBLISH packet's fixed
// header byte in place, without re-serializing the rest of the packet. This
// is how retransmission (spec.md §4.4 sync cycle) marks a queued PUBLISH as
// a duplicate.
func SetDup(packetBytes []byte, dup bool) {
	if len(packetBytes) == 0 {
		return
	}
	if dup {
		packetBytes[0] |= publishDupBit
	} else {
		packetBytes[0] &^= publishDupBit
	}
}
