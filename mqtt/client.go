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

// Package mqtt implements the non-blocking core of an MQTT v3.1.1 client:
// a Client binds a caller-supplied Transport to a packet-id generator and
// an outgoing message arena, exposing operations that enqueue a control
// packet and a Sync method that drains the arena, reads whatever bytes the
// Transport has available, and dispatches acknowledgments. Dialing,
// non-blocking-mode setup, and the timer or goroutine that calls Sync
// periodically all belong to the caller.
package mqtt

import (
	"errors"
	"time"

	"github.com/tinyiot/mqttcore/packets"
	"github.com/tinyiot/mqttcore/pid"
	"github.com/tinyiot/mqttcore/queue"
)

// Client is the MQTT v3.1.1 client state engine. The zero value is not
// ready for use; construct with NewClient.
type Client struct {
	transport Transport
	lock      opLock
	logger    fieldLoggerAdapter
	onPublish PublishHandler
	now       func() time.Time

	pidGen *pid.Generator
	out    *queue.Arena

	recvBuf []byte
	recvLen int

	responseTimeout time.Duration
	keepAlive       time.Duration
	lastSend        time.Time

	connAckPending bool
	pendingQoS2    map[uint16]bool
	suppressDup    bool

	eventChans      map[int]chan<- Event
	evChanIDCounter int

	// err is the sticky protocol/transport error (spec.md §7): once set,
	// every public operation and Sync return it until the Client is
	// replaced with a fresh one.
	err error
}

// NewClient constructs a Client around transport, ready to have Connect
// called on it.
func NewClient(transport Transport, opts ...ClientOption) *Client {
	o := defaultClientOptions()
	for _, opt := range opts {
		opt(&o)
	}
	lock := opLock(newSemaLock())
	if !o.useLock {
		lock = noopLock{}
	}
	return &Client{
		transport:       transport,
		lock:            lock,
		logger:          o.logger,
		onPublish:       o.onPublish,
		now:             o.now,
		pidGen:          pid.NewGenerator(o.pidSeed),
		out:             queue.NewArena(o.sendBufferSize),
		recvBuf:         make([]byte, o.recvBufferSize),
		responseTimeout: o.responseTimeout,
		keepAlive:       o.keepAlive,
		pendingQoS2:     make(map[uint16]bool),
		suppressDup:     o.suppressDuplicates,
		eventChans:      make(map[int]chan<- Event),
	}
}

// Err returns the Client's sticky error, or nil if none has latched yet.
func (c *Client) Err() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.err
}

// setSticky latches err into c.err if nothing has latched yet. Must be
// called with c.lock held.
func (c *Client) setSticky(err error) {
	if c.err == nil {
		c.err = err
		c.logger.Errorf("mqtt: client error: %v", err)
	}
}

// Connect enqueues a CONNECT packet built from opts. It returns
// ErrConnectInProgress if a CONNECT has already been queued and no CONNACK
// has arrived yet.
func (c *Client) Connect(opts ConnectOptions) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if c.connAckPending {
		return 0, ErrConnectInProgress
	}
	pkt := opts.toPacket()
	size, err := pkt.Size()
	if err != nil {
		return 0, err
	}
	n, err := c.enqueueLocked(size, packets.CONNECT, 0, pkt.Pack)
	if err != nil {
		return 0, err
	}
	c.connAckPending = true
	c.logger.Debugf("mqtt: CONNECT queued for client id %q", opts.ClientID)
	return n, nil
}

// Publish enqueues a PUBLISH packet. A packet id is drawn from the LFSR
// for qos > QoS0; QoS0 publishes carry no packet id.
func (c *Client) Publish(topic string, payload []byte, qos packets.QoS, retain bool) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if qos > packets.QoS2 {
		return 0, ErrInvalidArgument
	}
	var packetID uint16
	if qos > packets.QoS0 {
		packetID = c.pidGen.Next()
	}
	pkt := packets.Publish{Topic: topic, PacketID: packetID, Payload: payload, QoS: qos, Retain: retain}
	return c.enqueueLocked(pkt.Size(), packets.PUBLISH, packetID, pkt.Pack)
}

// Subscribe enqueues a SUBSCRIBE packet covering filters.
func (c *Client) Subscribe(filters ...packets.TopicFilter) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	packetID := c.pidGen.Next()
	pkt := packets.Subscribe{PacketID: packetID, Filters: filters}
	size, err := pkt.Size()
	if err != nil {
		return 0, err
	}
	return c.enqueueLocked(size, packets.SUBSCRIBE, packetID, pkt.Pack)
}

// Unsubscribe enqueues an UNSUBSCRIBE packet covering filters.
func (c *Client) Unsubscribe(filters ...string) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	packetID := c.pidGen.Next()
	pkt := packets.Unsubscribe{PacketID: packetID, Filters: filters}
	size, err := pkt.Size()
	if err != nil {
		return 0, err
	}
	return c.enqueueLocked(size, packets.UNSUBSCRIBE, packetID, pkt.Pack)
}

// Ping enqueues a PINGREQ packet. Sync also enqueues one automatically once
// the keep-alive interval elapses since the last byte was sent; callers
// that drive their own heartbeat can call Ping directly instead.
func (c *Client) Ping() (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.enqueuePingLocked()
}

func (c *Client) enqueuePingLocked() (int, error) {
	pkt := packets.PingReq()
	return c.enqueueLocked(pkt.Size(), packets.PINGREQ, 0, pkt.Pack)
}

// Disconnect enqueues a DISCONNECT packet. No acknowledgment is expected;
// the caller is responsible for closing the Transport once Sync has
// drained it.
func (c *Client) Disconnect() (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	pkt := packets.Disconnect()
	return c.enqueueLocked(pkt.Size(), packets.DISCONNECT, 0, pkt.Pack)
}

// enqueueLocked reserves total bytes in the outgoing arena and serializes
// into the reservation with pack. Must be called with c.lock held.
func (c *Client) enqueueLocked(total int, ctrlType packets.PacketType, packetID uint16, pack func([]byte) (int, error)) (int, error) {
	rec, err := c.out.Register(total, ctrlType, packetID)
	if err != nil {
		return 0, err
	}
	n, err := pack(c.out.Payload(rec))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Register reserved exactly total bytes, so pack should never see a
		// buffer it considers too small.
		return 0, errors.New("mqtt: internal: packet did not fit its reservation")
	}
	return n, nil
}

// CreateEventChannel returns a channel on which the Client publishes an
// Event for each inbound CONNACK, PUBLISH, SUBACK, and PINGRESP that Sync
// dispatches (see Event).
func (c *Client) CreateEventChannel(buffer int) EventChannel {
	c.lock.Lock()
	defer c.lock.Unlock()
	ch := make(chan Event, buffer)
	id := c.evChanIDCounter
	c.evChanIDCounter++
	c.eventChans[id] = ch
	return EventChannel{C: ch, id: id}
}

// CloseEventChannel stops delivery to ec and closes its channel.
func (c *Client) CloseEventChannel(ec EventChannel) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if ch, ok := c.eventChans[ec.id]; ok {
		delete(c.eventChans, ec.id)
		close(ch)
	}
}

// signal fans an Event out to every registered event channel, dropping it
// for any subscriber whose channel is full rather than blocking Sync.
func (c *Client) signal(packetType packets.PacketType, data any) {
	ev := Event{PacketType: packetType, Data: data}
	for _, ch := range c.eventChans {
		select {
		case ch <- ev:
		default:
		}
	}
}
