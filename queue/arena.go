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

// Package queue implements the outgoing message arena described in
// spec.md §4.2: a single fixed-capacity byte region, allocated by
// NewArena, shared between
// serialized outbound packet bytes (growing from the low end) and a bound
// of in-flight QueuedMessage records (accounted against the same budget,
// oldest-first). It is the Go-idiomatic rendering of
// waj334-tinygo-mqtt's storage/memory.Storage — that type keyed entries by
// packet id in an unbounded slice; Arena instead bounds everything against
// one capacity figure and exposes the pack/ack/compact lifecycle spec.md
// requires, with bounds-checked indexed record access rather than raw
// pointer arithmetic into the byte region (spec.md §9, design notes).
package queue

import (
	"errors"
	"time"

	"github.com/tinyiot/mqttcore/packets"
)

// ErrMemoryExhausted is returned by Register when the arena cannot fit the
// requested payload plus one more record within its capacity.
var ErrMemoryExhausted = errors.New("queue: memory exhausted")

// State is a QueuedMessage's position in the send/ack lifecycle
// (spec.md §3).
type State byte

const (
	Unsent State = iota
	AwaitingAck
	Complete
)

// RecordOverhead is the accounting cost, in bytes, charged against the
// arena's capacity for each resident record's bookkeeping — the Go
// analogue of sizeof(QueuedMessage) in the C source this is ported from.
const RecordOverhead = 24

// Record is a QueuedMessage: the span of a serialized packet inside the
// arena's payload area plus its acknowledgment bookkeeping.
type Record struct {
	Start       int
	Size        int
	Sent        int // bytes of Payload already written to the transport
	ControlType packets.PacketType
	PacketID    uint16
	State       State
	TimeSent    time.Time
}

// Arena is the MessageQueue of spec.md §4.2.
type Arena struct {
	buf      []byte
	capacity int
	curr     int
	records  []Record
}

// NewArena creates an Arena backed by a fresh buffer of capacity bytes,
// mirroring MessageQueue.init(mem, n).
func NewArena(capacity int) *Arena {
	a := &Arena{capacity: capacity}
	a.buf = make([]byte, capacity)
	// Pre-sized to capacity/RecordOverhead so that appends never
	// reallocate the backing array and invalidate *Record pointers handed
	// out by Register/Find/Get.
	maxRecords := capacity/RecordOverhead + 1
	a.records = make([]Record, 0, maxRecords)
	return a
}

// Reset clears all records and payload bytes without reallocating,
// equivalent to re-running init on the same memory region.
func (a *Arena) Reset() {
	a.curr = 0
	a.records = a.records[:0]
}

// currSize is the remaining capacity available for further
// (payload + one record), i.e. queue_tail - curr in spec.md terms.
func (a *Arena) currSize() int {
	return a.capacity - a.curr - len(a.records)*RecordOverhead
}

// Register reserves requiredPayloadSize bytes at the current write cursor
// and appends a new UNSENT record describing that span, returning a
// pointer to it. It fails with ErrMemoryExhausted if there is not enough
// room left for the payload plus one more record.
func (a *Arena) Register(requiredPayloadSize int, controlType packets.PacketType, packetID uint16) (*Record, error) {
	if requiredPayloadSize < 0 {
		return nil, errors.New("queue: negative payload size")
	}
	if a.currSize() < requiredPayloadSize+RecordOverhead {
		return nil, ErrMemoryExhausted
	}
	rec := Record{
		Start:       a.curr,
		Size:        requiredPayloadSize,
		ControlType: controlType,
		PacketID:    packetID,
		State:       Unsent,
	}
	a.curr += requiredPayloadSize
	a.records = append(a.records, rec)
	return &a.records[len(a.records)-1], nil
}

// Payload returns the byte span reserved for rec, for the caller to
// serialize a packet into (or read the serialized bytes back out of).
func (a *Arena) Payload(rec *Record) []byte {
	return a.buf[rec.Start : rec.Start+rec.Size]
}

// Length returns the number of resident records, oldest first.
func (a *Arena) Length() int { return len(a.records) }

// Get returns the i-th resident record counting from the head (oldest).
func (a *Arena) Get(i int) *Record { return &a.records[i] }

// Find performs a linear search for an AWAITING_ACK record matching
// (controlType, packetID).
func (a *Arena) Find(controlType packets.PacketType, packetID uint16) *Record {
	for i := range a.records {
		r := &a.records[i]
		if r.State == AwaitingAck && r.ControlType == controlType && r.PacketID == packetID {
			return r
		}
	}
	return nil
}

// Clean compacts the arena from the head: while the oldest record is
// COMPLETE, its payload bytes and its record slot are discarded, sliding
// later payload bytes down and decrementing every remaining record's
// Start by the amount reclaimed (spec.md §4.2).
func (a *Arena) Clean() {
	for len(a.records) > 0 && a.records[0].State == Complete {
		freed := a.records[0].Size
		copy(a.buf, a.buf[freed:a.curr])
		a.curr -= freed
		copy(a.records, a.records[1:])
		a.records = a.records[:len(a.records)-1]
		for i := range a.records {
			a.records[i].Start -= freed
		}
	}
}
