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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinyiot/mqttcore/packets"
)

// fakeTransport is an in-memory Transport double: Send appends to sent
// unless blocked, Recv serves bytes queued into inbox.
type fakeTransport struct {
	sent      []byte
	inbox     []byte
	blockSend bool
	recvErr   error
}

func (f *fakeTransport) Send(b []byte) (int, error) {
	if f.blockSend {
		return 0, ErrWouldBlock
	}
	f.sent = append(f.sent, b...)
	return len(b), nil
}

func (f *fakeTransport) Recv(b []byte) (int, error) {
	if f.recvErr != nil {
		return 0, f.recvErr
	}
	if len(f.inbox) == 0 {
		return 0, ErrWouldBlock
	}
	n := copy(b, f.inbox)
	f.inbox = f.inbox[n:]
	return n, nil
}

func (f *fakeTransport) feed(b []byte) { f.inbox = append(f.inbox, b...) }

func packFrame(t *testing.T, p interface{ Pack([]byte) (int, error) }, size int) []byte {
	t.Helper()
	buf := make([]byte, size)
	n, err := p.Pack(buf)
	require.NoError(t, err)
	require.Equal(t, size, n)
	return buf
}

func newTestClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time { return now }
}

func TestClientConnectSendsAndAwaitsConnack(t *testing.T) {
	tr := &fakeTransport{}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))

	opts := NewConnectOptions()
	opts.ClientID = "test-client"
	_, err := c.Connect(opts)
	require.NoError(t, err)

	require.NoError(t, c.Sync())
	require.NotEmpty(t, tr.sent)

	hdr, _, err := packets.UnpackFixedHeader(tr.sent)
	require.NoError(t, err)
	require.Equal(t, packets.CONNECT, hdr.Type)

	_, err = c.Connect(opts)
	require.ErrorIs(t, err, ErrConnectInProgress)

	tr.feed([]byte{byte(packets.CONNACK) << 4, 2, 0x00, packets.ConnackAccepted})
	require.NoError(t, c.Sync())
	require.NoError(t, c.Err())
	require.False(t, c.connAckPending)
	require.Zero(t, c.out.Length())
}

func TestClientAwaitConnectReturnsOnceConnAckArrives(t *testing.T) {
	tr := &fakeTransport{}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))
	tr.feed([]byte{byte(packets.CONNACK) << 4, 2, 0x00, packets.ConnackAccepted})

	err := c.AwaitConnect(context.Background(), NewConnectOptions())
	require.NoError(t, err)
	require.False(t, c.connAckPending)
}

func TestClientAwaitConnectRespectsContextCancellation(t *testing.T) {
	tr := &fakeTransport{blockSend: true}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.AwaitConnect(ctx, NewConnectOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestClientConnectionRefusedLatchesSticky(t *testing.T) {
	tr := &fakeTransport{}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))

	_, err := c.Connect(NewConnectOptions())
	require.NoError(t, err)
	require.NoError(t, c.Sync())

	tr.feed([]byte{byte(packets.CONNACK) << 4, 2, 0x00, packets.ConnackNotAuthorized})
	err = c.Sync()
	require.ErrorIs(t, err, ErrConnectionRefused)
	require.ErrorIs(t, c.Err(), ErrConnectionRefused)

	_, err = c.Publish("a", nil, packets.QoS0, false)
	require.ErrorIs(t, err, ErrConnectionRefused)
}

func TestClientPublishQoS1Handshake(t *testing.T) {
	tr := &fakeTransport{}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))

	_, err := c.Publish("sensors/temp", []byte("21.5"), packets.QoS1, false)
	require.NoError(t, err)
	require.NoError(t, c.Sync())
	require.NotEmpty(t, tr.sent)

	hdr, hn, err := packets.UnpackFixedHeader(tr.sent)
	require.NoError(t, err)
	require.Equal(t, packets.PUBLISH, hdr.Type)
	pub, _, err := packets.UnpackPublish(hdr, tr.sent[hn:])
	require.NoError(t, err)
	require.NotZero(t, pub.PacketID)

	rec := c.out.Find(packets.PUBLISH, pub.PacketID)
	require.NotNil(t, rec)

	ackFrame := packFrame(t, packets.PubAck(pub.PacketID), packets.PubAck(pub.PacketID).Size())
	tr.feed(ackFrame)
	require.NoError(t, c.Sync())
	require.Zero(t, c.out.Length())
}

func TestClientPublishQoS2Handshake(t *testing.T) {
	tr := &fakeTransport{}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))

	_, err := c.Publish("a/b", []byte("x"), packets.QoS2, false)
	require.NoError(t, err)
	require.NoError(t, c.Sync())

	hdr, hn, err := packets.UnpackFixedHeader(tr.sent)
	require.NoError(t, err)
	pub, _, err := packets.UnpackPublish(hdr, tr.sent[hn:])
	require.NoError(t, err)
	pid := pub.PacketID

	tr.feed(packFrame(t, packets.PubRec(pid), packets.PubRec(pid).Size()))
	require.NoError(t, c.Sync()) // consumes PUBREC, enqueues PUBREL

	tr.sent = nil
	require.NoError(t, c.Sync()) // sends PUBREL
	require.NotEmpty(t, tr.sent)
	relHdr, relHn, err := packets.UnpackFixedHeader(tr.sent)
	require.NoError(t, err)
	require.Equal(t, packets.PUBREL, relHdr.Type)
	relPid, _, err := packets.UnpackPubRel(relHdr, tr.sent[relHn:])
	require.NoError(t, err)
	require.Equal(t, pid, relPid)

	tr.feed(packFrame(t, packets.PubComp(pid), packets.PubComp(pid).Size()))
	require.NoError(t, c.Sync())
	require.Zero(t, c.out.Length())
}

func TestClientInboundQoS2DeduplicatesPublishCallback(t *testing.T) {
	tr := &fakeTransport{}
	var delivered int
	c := NewClient(tr,
		WithClock(newTestClock(time.Unix(0, 0))),
		WithPublishHandler(func(PublishData) { delivered++ }),
	)

	pub := packets.Publish{Topic: "a", PacketID: 5, Payload: []byte("x"), QoS: packets.QoS2}
	frame := packFrame(t, pub, pub.Size())

	tr.feed(frame)
	require.NoError(t, c.Sync())
	require.Equal(t, 1, delivered)

	pub.Dup = true
	dupFrame := packFrame(t, pub, pub.Size())
	tr.feed(dupFrame)
	require.NoError(t, c.Sync())
	require.Equal(t, 1, delivered, "a retransmitted QoS2 PUBLISH awaiting PUBREL must not redeliver by default")
}

func TestClientInboundQoS2RedeliversWhenConfigured(t *testing.T) {
	tr := &fakeTransport{}
	var delivered int
	c := NewClient(tr,
		WithClock(newTestClock(time.Unix(0, 0))),
		WithPublishHandler(func(PublishData) { delivered++ }),
		WithDuplicatePublishDelivery(),
	)

	pub := packets.Publish{Topic: "a", PacketID: 5, Payload: []byte("x"), QoS: packets.QoS2}
	frame := packFrame(t, pub, pub.Size())
	tr.feed(frame)
	require.NoError(t, c.Sync())
	tr.feed(frame)
	require.NoError(t, c.Sync())
	require.Equal(t, 2, delivered)
}

func TestClientRetransmitsOnResponseTimeout(t *testing.T) {
	tr := &fakeTransport{}
	start := time.Unix(0, 0)
	clock := start
	c := NewClient(tr,
		WithClock(func() time.Time { return clock }),
		WithResponseTimeout(time.Second),
	)

	_, err := c.Publish("a", []byte("x"), packets.QoS1, false)
	require.NoError(t, err)
	require.NoError(t, c.Sync())
	first := append([]byte(nil), tr.sent...)
	require.NotEmpty(t, first)

	tr.sent = nil
	clock = start.Add(2 * time.Second)
	require.NoError(t, c.Sync())
	require.NotEmpty(t, tr.sent, "an expired AWAITING_ACK PUBLISH must be retransmitted")

	hdr, hn, err := packets.UnpackFixedHeader(tr.sent)
	require.NoError(t, err)
	pub, _, err := packets.UnpackPublish(hdr, tr.sent[hn:])
	require.NoError(t, err)
	require.True(t, pub.Dup, "a retransmitted PUBLISH must carry DUP")
}

func TestClientWouldBlockLeavesRecordUnsent(t *testing.T) {
	tr := &fakeTransport{blockSend: true}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))

	_, err := c.Publish("a", []byte("x"), packets.QoS0, false)
	require.NoError(t, err)
	require.NoError(t, c.Sync())
	require.Empty(t, tr.sent)
	require.Equal(t, 1, c.out.Length())
	require.Equal(t, 0, c.out.Get(0).Sent)
}

func TestClientRecvErrorLatchesSocketError(t *testing.T) {
	tr := &fakeTransport{recvErr: errors.New("connection reset")}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))

	err := c.Sync()
	require.ErrorIs(t, err, ErrSocket)
	require.ErrorIs(t, c.Err(), ErrSocket)

	_, err = c.Publish("a", nil, packets.QoS0, false)
	require.ErrorIs(t, err, ErrSocket)
}

func TestClientRecvZeroBytesLatchesSocketError(t *testing.T) {
	// A Transport reporting (0, nil) from Recv signals a half-closed stream,
	// which is resolved uniformly as SOCKET_ERROR regardless of connection
	// phase.
	tr := zeroByteTransport{}
	c := NewClient(tr, WithClock(newTestClock(time.Unix(0, 0))))
	err := c.Sync()
	require.ErrorIs(t, err, ErrSocket)
}

type zeroByteTransport struct{}

func (zeroByteTransport) Send(b []byte) (int, error) { return len(b), nil }
func (zeroByteTransport) Recv(b []byte) (int, error) { return 0, nil }
