/*
 * MIT License
 *
 * Copyright (c) 2022 waj334
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

package mqtt

import "github.com/tinyiot/mqttcore/packets"

// Event is fanned out to every channel returned by CreateEventChannel when
// Sync dispatches an inbound control packet. Of the nine inbound packet
// types sync.go's decodeAndDispatch handles, only four ever produce an
// Event: CONNACK, PUBLISH, SUBACK, and PINGRESP. PUBACK, PUBREC, PUBREL,
// PUBCOMP, and UNSUBACK only update the outgoing queue — retiring a
// queued record, enqueuing the next acknowledgment, or both (spec.md
// §4.4) — and never reach an event channel — a consumer driving reconnect/backoff
// logic off this channel sees exactly the packets that change
// session-level state, not every acknowledgment on the wire.
type Event struct {
	// PacketType discriminates Data's concrete type: packets.CONNACK,
	// packets.PUBLISH, packets.SUBACK, or packets.PINGRESP.
	PacketType packets.PacketType

	// Data holds the decoded packet: packets.Connack for CONNACK,
	// packets.Publish for PUBLISH, packets.Suback for SUBACK, or nil for
	// PINGRESP, which carries no variable header. PacketType is the
	// sum-type tag spec.md §9's design notes call for in place of a
	// common base type with variant fields.
	Data any
}

// Publish type-asserts Data as a decoded PUBLISH. ok is false for any
// Event whose PacketType is not packets.PUBLISH.
func (e Event) Publish() (packets.Publish, bool) {
	p, ok := e.Data.(packets.Publish)
	return p, ok
}

// EventChannel is the handle CreateEventChannel returns and
// CloseEventChannel accepts to stop delivery.
type EventChannel struct {
	C <-chan Event

	id int
}
