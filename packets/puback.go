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

// identifierOnly covers every packet whose variable header is nothing but a
// 2-byte packet identifier: PUBACK, PUBREC, PUBREL, PUBCOMP, UNSUBACK.
type identifierOnly struct {
	Type     PacketType
	Flags    byte
	PacketID uint16
}

// Size returns the total number of bytes Pack will write (always 4: a
// 2-byte fixed header plus a 2-byte packet identifier).
func (p identifierOnly) Size() int { return totalSize(2) }

func (p identifierOnly) Pack(buf []byte) (int, error) {
	hdr := FixedHeader{Type: p.Type, Flags: p.Flags, RemainingLength: 2}
	hn, err := hdr.Pack(buf)
	if err != nil {
		return 0, err
	}
	if hn == 0 || len(buf) < hn+2 {
		return 0, nil
	}
	n, _ := putUint16(p.PacketID, buf[hn:])
	return hn + n, nil
}

func unpackIdentifierOnly(hdr FixedHeader, body []byte) (uint16, int, error) {
	if hdr.RemainingLength != 2 {
		return 0, 0, ErrInvalidRemainingLength
	}
	pid, n, err := getUint16(body)
	if err != nil || n == 0 {
		return 0, 0, err
	}
	return pid, n, nil
}

// PubAck packs a PUBACK(packetID) packet.
func PubAck(packetID uint16) identifierOnly { return identifierOnly{Type: PUBACK, PacketID: packetID} }

// PubRec packs a PUBREC(packetID) packet.
func PubRec(packetID uint16) identifierOnly { return identifierOnly{Type: PUBREC, PacketID: packetID} }

// PubRel packs a PUBREL(packetID) packet. Fixed flags 0b0010 (spec.md §4.1).
func PubRel(packetID uint16) identifierOnly {
	return identifierOnly{Type: PUBREL, Flags: 0b0010, PacketID: packetID}
}

// PubComp packs a PUBCOMP(packetID) packet.
func PubComp(packetID uint16) identifierOnly {
	return identifierOnly{Type: PUBCOMP, PacketID: packetID}
}

// UnpackPubAck decodes a PUBACK variable header.
func UnpackPubAck(hdr FixedHeader, body []byte) (uint16, int, error) { return unpackIdentifierOnly(hdr, body) }

// UnpackPubRec decodes a PUBREC variable header.
func UnpackPubRec(hdr FixedHeader, body []byte) (uint16, int, error) { return unpackIdentifierOnly(hdr, body) }

// UnpackPubRel decodes a PUBREL variable header.
func UnpackPubRel(hdr FixedHeader, body []byte) (uint16, int, error) { return unpackIdentifierOnly(hdr, body) }

// UnpackPubComp decodes a PUBCOMP variable header.
func UnpackPubComp(hdr FixedHeader, body []byte) (uint16, int, error) { return unpackIdentifierOnly(hdr, body) }

// UnpackUnsubAck decodes an UNSUBACK variable header.
func UnpackUnsubAck(hdr FixedHeader, body []byte) (uint16, int, error) { return unpackIdentifierOnly(hdr, body) }
