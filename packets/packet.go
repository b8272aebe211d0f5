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

// Package packets implements the MQTT v3.1.1 (protocol level 4) wire codec:
// the fixed header, the variable-length remaining-length integer, and the
// pack/unpack pair for every control packet type the core client needs.
//
// Every Pack function follows one contract: it returns the number of bytes
// written and a nil error on success, (0, nil) if the destination buffer is
// too small to hold the packet (not an error — the caller should grow the
// buffer or wait), or (0, err) for an invalid argument. Every Unpack
// function mirrors this on read: (n, nil) for n bytes consumed, (0, nil)
// for "not enough bytes yet, read more off the wire", or (0, err) for a
// malformed packet.
package packets

import "errors"

type (
	PacketType byte
	QoS        byte
)

const (
	QoS0 QoS = 0
	QoS1 QoS = 1
	QoS2 QoS = 2
)

const (
	// CONNECT - Connection request
	CONNECT PacketType = iota + 1

	// CONNACK - Connect acknowledgment
	CONNACK

	// PUBLISH - Publish message
	PUBLISH

	// PUBACK - Publish acknowledgment (QoS 1)
	PUBACK

	// PUBREC - Publish received (QoS 2 delivery part 1)
	PUBREC

	// PUBREL - Publish release (QoS 2 delivery part 2)
	PUBREL

	// PUBCOMP - Publish complete (QoS 2 delivery part 3)
	PUBCOMP

	// SUBSCRIBE - Subscribe request
	SUBSCRIBE

	// SUBACK - Subscribe Acknowledgement
	SUBACK

	// UNSUBSCRIBE - Unsubscribe request
	UNSUBSCRIBE

	// UNSUBACK - Unsubscribe acknowledgment
	UNSUBACK

	// PINGREQ - PING request
	PINGREQ

	// PINGRESP - PING response
	PINGRESP

	// DISCONNECT - Disconnect notification
	DISCONNECT
)

var (
	ErrInvalidRemainingLength = errors.New("packets: invalid remaining length")
	ErrInvalidFlags           = errors.New("packets: control flags do not match control type")
	ErrUnknownControlType     = errors.New("packets: unknown control type")
	ErrNilBuffer              = errors.New("packets: nil buffer")
	ErrStringTooLong          = errors.New("packets: string exceeds 65535 bytes")
	ErrRemainingLengthTooLong = errors.New("packets: remaining length exceeds 268435455")
	ErrNoSubscriptions        = errors.New("packets: at least one subscription is required")
)

// mandatoryFlags returns the fixed flag bits required for packet types whose
// flags are not caller-controlled, and ok=false for PUBLISH, whose flags
// encode DUP/QoS/RETAIN and are validated separately.
func mandatoryFlags(t PacketType) (flags byte, ok bool) {
	switch t {
	case PUBREL, SUBSCRIBE, UNSUBSCRIBE:
		return 0b0010, true
	case PUBLISH:
		return 0, false
	default:
		return 0, true
	}
}

// FixedHeader is the first 1+N bytes of every control packet: the control
// type and flags nibbles, followed by the base-128 remaining-length
// varint (spec.md §3, §4.1).
type FixedHeader struct {
	Type            PacketType
	Flags           byte
	RemainingLength uint32
}

// Pack writes the fixed header to buf. Returns 0, nil if buf is too small.
func (f FixedHeader) Pack(buf []byte) (int, error) {
	if f.RemainingLength > 268435455 {
		return 0, ErrRemainingLengthTooLong
	}
	vliLen := varIntLen(f.RemainingLength)
	if len(buf) < 1+vliLen {
		return 0, nil
	}
	buf[0] = byte(f.Type)<<4 | f.Flags&0x0F
	n, err := encodeVarInt(f.RemainingLength, buf[1:])
	if err != nil {
		return 0, err
	}
	return 1 + n, nil
}

// totalSize returns the number of bytes a full packet occupies (fixed
// header plus remaining length), given its remaining length. Callers that
// need to reserve an exact span before serializing into it (queue.Arena's
// Register) use this to size the reservation.
func totalSize(remaining int) int {
	return 1 + varIntLen(uint32(remaining)) + remaining
}

// UnpackFixedHeader decodes a fixed header from buf. Returns (0, nil) if buf
// does not yet contain a complete fixed header. Returns ErrInvalidFlags if
// the control-type/flags combination violates spec.md's per-type mandate,
// and ErrUnknownControlType for a control type outside CONNECT..DISCONNECT.
func UnpackFixedHeader(buf []byte) (FixedHeader, int, error) {
	if len(buf) < 1 {
		return FixedHeader{}, 0, nil
	}
	ctrlType := PacketType(buf[0] >> 4)
	flags := buf[0] & 0x0F
	if ctrlType < CONNECT || ctrlType > DISCONNECT {
		return FixedHeader{}, 0, ErrUnknownControlType
	}
	if want, fixed := mandatoryFlags(ctrlType); fixed && flags != want {
		return FixedHeader{}, 0, ErrInvalidFlags
	}
	remaining, n, err := decodeVarInt(buf[1:])
	if err != nil {
		return FixedHeader{}, 0, err
	}
	if n == 0 {
		return FixedHeader{}, 0, nil
	}
	return FixedHeader{Type: ctrlType, Flags: flags, RemainingLength: remaining}, 1 + n, nil
}
