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

import "errors"

const (
	ProtocolName  = "MQTT"
	ProtocolLevel = 4
)

var (
	ErrWillMessageWithoutTopic = errors.New("packets: will message set without will topic")
	ErrPasswordWithoutUsername = errors.New("packets: password set without username")
)

// Connect is the CONNECT variable header and payload (spec.md §3, §4.1).
type Connect struct {
	ClientID     string
	CleanSession bool
	KeepAlive    uint16

	WillTopic   string
	WillMessage []byte
	WillQoS     QoS
	WillRetain  bool

	Username string
	Password string
	HasUser  bool
	HasPass  bool
}

func (c Connect) validate() error {
	if c.WillMessage != nil && c.WillTopic == "" {
		return ErrWillMessageWithoutTopic
	}
	if c.HasPass && !c.HasUser {
		return ErrPasswordWithoutUsername
	}
	return nil
}

func (c Connect) connectFlags() byte {
	var flags byte
	if c.HasUser {
		flags |= 1 << 7
	}
	if c.HasPass {
		flags |= 1 << 6
	}
	if c.WillTopic != "" {
		flags |= 1 << 2
		flags |= byte(c.WillQoS) << 3
		if c.WillRetain {
			flags |= 1 << 5
		}
	}
	if c.CleanSession {
		flags |= 1 << 1
	}
	return flags
}

func (c Connect) variableHeaderAndPayloadSize() int {
	n := 2 + len(ProtocolName) + 1 /* level */ + 1 /* flags */ + 2 /* keepalive */
	n += 2 + len(c.ClientID)
	if c.WillTopic != "" {
		n += 2 + len(c.WillTopic)
		n += 2 + len(c.WillMessage)
	}
	if c.HasUser {
		n += 2 + len(c.Username)
	}
	if c.HasPass {
		n += 2 + len(c.Password)
	}
	return n
}

// Size returns the total number of bytes Pack will write, or an error if c
// fails validation.
func (c Connect) Size() (int, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}
	return totalSize(c.variableHeaderAndPayloadSize()), nil
}

// Pack serializes a full CONNECT packet (fixed header + variable header +
// payload) into buf. See spec.md §8 scenario 1 for the canonical byte
// layout this produces.
func (c Connect) Pack(buf []byte) (int, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}
	remaining := c.variableHeaderAndPayloadSize()
	hdr := FixedHeader{Type: CONNECT, RemainingLength: uint32(remaining)}
	hn, err := hdr.Pack(buf)
	if err != nil {
		return 0, err
	}
	if hn == 0 || len(buf) < hn+remaining {
		return 0, nil
	}
	off := hn
	n, _ := putString(ProtocolName, buf[off:])
	off += n
	buf[off] = ProtocolLevel
	off++
	buf[off] = c.connectFlags()
	off++
	n, _ = putUint16(c.KeepAlive, buf[off:])
	off += n
	n, err = putString(c.ClientID, buf[off:])
	if err != nil {
		return 0, err
	}
	off += n
	if c.WillTopic != "" {
		n, err = putString(c.WillTopic, buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
		n, err = putString(string(c.WillMessage), buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}
	if c.HasUser {
		n, err = putString(c.Username, buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}
	if c.HasPass {
		n, err = putString(c.Password, buf[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}
