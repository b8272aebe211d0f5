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

package mqtt

import (
	"errors"

	"github.com/tinyiot/mqttcore/packets"
	"github.com/tinyiot/mqttcore/queue"
)

// Sync drives one tick of the client: it flips any AWAITING_ACK PUBLISH
// past its response timeout back to UNSENT with DUP set, drains the
// outgoing arena onto the Transport in registration order, reads and
// dispatches whatever bytes the Transport has available, enqueues a
// PINGREQ if the keep-alive interval has elapsed, and compacts the arena.
// Sync holds the Client's operation lock for the whole tick, so it may be
// called concurrently with itself and the other Client methods; a Client
// built WithoutLocking has no such lock, and the caller must then provide
// its own exclusion (spec.md §5).
func (c *Client) Sync() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return c.err
	}

	c.checkRetransmits()

	if err := c.sendPending(); err != nil {
		return err
	}
	if err := c.recvPending(); err != nil {
		return err
	}

	if !c.lastSend.IsZero() && c.keepAlive > 0 && c.now().Sub(c.lastSend) >= c.keepAlive {
		if _, err := c.enqueuePingLocked(); err != nil && !errors.Is(err, queue.ErrMemoryExhausted) {
			return err
		}
	}

	c.out.Clean()
	return c.err
}

// checkRetransmits flips every AWAITING_ACK PUBLISH whose responseTimeout
// has elapsed back to UNSENT with DUP set, per spec.md §4.4.
func (c *Client) checkRetransmits() {
	now := c.now()
	for i := 0; i < c.out.Length(); i++ {
		rec := c.out.Get(i)
		if rec.State != queue.AwaitingAck || rec.ControlType != packets.PUBLISH {
			continue
		}
		if now.Sub(rec.TimeSent) < c.responseTimeout {
			continue
		}
		rec.State = queue.Unsent
		rec.Sent = 0
		packets.SetDup(c.out.Payload(rec), true)
	}
}

// sendPending writes UNSENT records to the transport in registration
// order, stopping at the first one that blocks or writes short so that
// packet order on the wire always matches registration order.
func (c *Client) sendPending() error {
	for i := 0; i < c.out.Length(); i++ {
		rec := c.out.Get(i)
		if rec.State != queue.Unsent {
			continue
		}
		buf := c.out.Payload(rec)[rec.Sent:]
		if len(buf) == 0 {
			c.finishSend(rec)
			continue
		}
		n, err := c.transport.Send(buf)
		if n > 0 {
			rec.Sent += n
			c.lastSend = c.now()
		}
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return nil
			}
			c.setSticky(ErrSocket)
			return c.err
		}
		if rec.Sent < rec.Size {
			return nil
		}
		c.finishSend(rec)
	}
	return nil
}

// finishSend transitions a fully-written record to its post-send state:
// COMPLETE for packets that expect no acknowledgment (including QoS0
// PUBLISH, identified by its zero packet id), AWAITING_ACK with a fresh
// TimeSent otherwise.
func (c *Client) finishSend(rec *queue.Record) {
	switch rec.ControlType {
	case packets.PUBLISH:
		if rec.PacketID == 0 {
			rec.State = queue.Complete
			return
		}
		rec.State = queue.AwaitingAck
		rec.TimeSent = c.now()
	case packets.PUBACK, packets.PUBREC, packets.PUBCOMP, packets.PINGRESP, packets.DISCONNECT:
		rec.State = queue.Complete
	default: // CONNECT, SUBSCRIBE, UNSUBSCRIBE, PINGREQ, PUBREL
		rec.State = queue.AwaitingAck
		rec.TimeSent = c.now()
	}
}

// recvPending reads available bytes off the transport into the receive
// buffer and decodes as many complete packets as it can.
func (c *Client) recvPending() error {
	n, err := c.transport.Recv(c.recvBuf[c.recvLen:])
	switch {
	case err != nil && errors.Is(err, ErrWouldBlock):
		// Fall through to decode whatever is already buffered.
	case err != nil:
		c.setSticky(ErrSocket)
		return c.err
	case n == 0:
		// A clean EOF from a live stream: spec.md §9 resolves the "0 bytes,
		// nil error" ambiguity as SOCKET_ERROR uniformly, rather than
		// special-casing it by connection phase.
		c.setSticky(ErrSocket)
		return c.err
	default:
		c.recvLen += n
	}

	for {
		consumed, err := c.decodeAndDispatch(c.recvBuf[:c.recvLen])
		if err != nil {
			c.setSticky(ErrMalformedResponse)
			return c.err
		}
		if consumed == 0 {
			break
		}
		copy(c.recvBuf, c.recvBuf[consumed:c.recvLen])
		c.recvLen -= consumed
	}
	return nil
}

// decodeAndDispatch decodes a single packet from the front of buf and
// dispatches it. It returns (0, nil) if buf does not yet hold a complete
// packet.
func (c *Client) decodeAndDispatch(buf []byte) (int, error) {
	hdr, hn, err := packets.UnpackFixedHeader(buf)
	if err != nil {
		return 0, err
	}
	if hn == 0 {
		return 0, nil
	}
	total := hn + int(hdr.RemainingLength)
	if len(buf) < total {
		return 0, nil
	}
	body := buf[hn:total]

	switch hdr.Type {
	case packets.CONNACK:
		ack, _, err := packets.UnpackConnack(body)
		if err != nil {
			return 0, err
		}
		c.connAckPending = false
		if rec := c.out.Find(packets.CONNECT, 0); rec != nil {
			rec.State = queue.Complete
		}
		if ack.ReturnCode != packets.ConnackAccepted {
			c.setSticky(&connectionRefusedError{code: ConnackCode(ack.ReturnCode)})
		}
		c.signal(hdr.Type, ack)

	case packets.PUBLISH:
		pub, _, err := packets.UnpackPublish(hdr, body)
		if err != nil {
			return 0, err
		}
		if err := c.dispatchPublish(pub); err != nil {
			return 0, err
		}

	case packets.PUBACK:
		pid, _, err := packets.UnpackPubAck(hdr, body)
		if err != nil {
			return 0, err
		}
		c.completeAwaiting(packets.PUBLISH, pid)

	case packets.PUBREC:
		pid, _, err := packets.UnpackPubRec(hdr, body)
		if err != nil {
			return 0, err
		}
		c.completeAwaiting(packets.PUBLISH, pid)
		if _, err := c.enqueueLocked(packets.PubRel(pid).Size(), packets.PUBREL, pid, packets.PubRel(pid).Pack); err != nil {
			return 0, err
		}

	case packets.PUBREL:
		pid, _, err := packets.UnpackPubRel(hdr, body)
		if err != nil {
			return 0, err
		}
		delete(c.pendingQoS2, pid)
		if _, err := c.enqueueLocked(packets.PubComp(pid).Size(), packets.PUBCOMP, pid, packets.PubComp(pid).Pack); err != nil {
			return 0, err
		}

	case packets.PUBCOMP:
		pid, _, err := packets.UnpackPubComp(hdr, body)
		if err != nil {
			return 0, err
		}
		c.completeAwaiting(packets.PUBREL, pid)

	case packets.SUBACK:
		sub, _, err := packets.UnpackSuback(hdr, body)
		if err != nil {
			return 0, err
		}
		c.completeAwaiting(packets.SUBSCRIBE, sub.PacketID)
		c.signal(hdr.Type, sub)

	case packets.UNSUBACK:
		pid, _, err := packets.UnpackUnsubAck(hdr, body)
		if err != nil {
			return 0, err
		}
		c.completeAwaiting(packets.UNSUBSCRIBE, pid)

	case packets.PINGRESP:
		c.completeAwaiting(packets.PINGREQ, 0)
		c.signal(hdr.Type, nil)

	default:
		return 0, ErrUnexpectedPacket
	}

	return total, nil
}

// completeAwaiting marks the AWAITING_ACK record matching (ctrlType, id) as
// COMPLETE. An unmatched acknowledgment latches ErrAckOfUnknown, since it
// means the broker acked something this Client never sent.
func (c *Client) completeAwaiting(ctrlType packets.PacketType, id uint16) {
	rec := c.out.Find(ctrlType, id)
	if rec == nil {
		c.setSticky(ErrAckOfUnknown)
		return
	}
	rec.State = queue.Complete
}

// dispatchPublish delivers an inbound PUBLISH to the publish handler and
// event channels, and enqueues whatever acknowledgment its QoS requires.
// For QoS2, a retransmitted PUBLISH whose PUBREC has already been sent is
// suppressed from the publish handler unless WithDuplicatePublishDelivery
// was set (spec.md §9 open question; SPEC_FULL.md §12 decision).
func (c *Client) dispatchPublish(pub packets.Publish) error {
	switch pub.QoS {
	case packets.QoS0:
		c.deliverPublish(pub)

	case packets.QoS1:
		c.deliverPublish(pub)
		if _, err := c.enqueueLocked(packets.PubAck(pub.PacketID).Size(), packets.PUBACK, pub.PacketID, packets.PubAck(pub.PacketID).Pack); err != nil {
			return err
		}

	case packets.QoS2:
		alreadySeen := c.pendingQoS2[pub.PacketID]
		if c.suppressDup && alreadySeen {
			// Already delivered and PUBRECed; just re-ack.
		} else {
			c.deliverPublish(pub)
			c.pendingQoS2[pub.PacketID] = true
		}
		if _, err := c.enqueueLocked(packets.PubRec(pub.PacketID).Size(), packets.PUBREC, pub.PacketID, packets.PubRec(pub.PacketID).Pack); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) deliverPublish(pub packets.Publish) {
	if c.onPublish != nil {
		c.onPublish(PublishData{
			Topic:    pub.Topic,
			Payload:  pub.Payload,
			QoS:      pub.QoS,
			Retain:   pub.Retain,
			Dup:      pub.Dup,
			PacketID: pub.PacketID,
		})
	}
	c.signal(packets.PUBLISH, pub)
}
