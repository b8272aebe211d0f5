package packets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedHeaderRoundTrip(t *testing.T) {
	cases := []FixedHeader{
		{Type: CONNECT, RemainingLength: 0},
		{Type: PUBLISH, Flags: 0b1101, RemainingLength: 127},
		{Type: PUBLISH, Flags: 0b0000, RemainingLength: 128},
		{Type: SUBSCRIBE, Flags: 0b0010, RemainingLength: 16383},
		{Type: SUBSCRIBE, Flags: 0b0010, RemainingLength: 16384},
		{Type: PUBREL, Flags: 0b0010, RemainingLength: 2097151},
		{Type: PUBREL, Flags: 0b0010, RemainingLength: 2097152},
		{Type: PUBLISH, RemainingLength: 268435455},
	}
	for _, want := range cases {
		buf := make([]byte, 5)
		n, err := want.Pack(buf)
		require.NoError(t, err)
		require.Greater(t, n, 0)

		got, m, err := UnpackFixedHeader(buf[:n])
		require.NoError(t, err)
		require.Equal(t, n, m)
		require.Equal(t, want, got)
	}
}

func TestFixedHeaderPackShortBufferReturnsZero(t *testing.T) {
	hdr := FixedHeader{Type: CONNECT, RemainingLength: 16384}
	n, err := hdr.Pack(make([]byte, 2))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestFixedHeaderPackRejectsOversizedRemainingLength(t *testing.T) {
	hdr := FixedHeader{Type: CONNECT, RemainingLength: 268435456}
	_, err := hdr.Pack(make([]byte, 8))
	require.ErrorIs(t, err, ErrRemainingLengthTooLong)
}

func TestUnpackFixedHeaderIncomplete(t *testing.T) {
	_, n, err := UnpackFixedHeader(nil)
	require.NoError(t, err)
	require.Zero(t, n)

	// Three continuation bytes, no terminator: a complete encoding hasn't
	// arrived yet.
	_, n, err = UnpackFixedHeader([]byte{byte(CONNECT) << 4, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestUnpackFixedHeaderRejectsUnknownType(t *testing.T) {
	_, _, err := UnpackFixedHeader([]byte{0x00, 0x00})
	require.ErrorIs(t, err, ErrUnknownControlType)

	_, _, err = UnpackFixedHeader([]byte{0xF0, 0x00})
	require.ErrorIs(t, err, ErrUnknownControlType)
}

func TestUnpackFixedHeaderRejectsMismatchedMandatoryFlags(t *testing.T) {
	_, _, err := UnpackFixedHeader([]byte{byte(SUBSCRIBE)<<4 | 0b0000, 0x00})
	require.ErrorIs(t, err, ErrInvalidFlags)

	_, _, err = UnpackFixedHeader([]byte{byte(PUBREL)<<4 | 0b0010, 0x00})
	require.NoError(t, err)
}

func TestUnpackFixedHeaderRejectsFiveByteVarInt(t *testing.T) {
	_, _, err := UnpackFixedHeader([]byte{byte(CONNECT) << 4, 0xFF, 0xFF, 0xFF, 0xFF})
	require.ErrorIs(t, err, ErrInvalidRemainingLength)
}

func TestPublishEveryFlagCombination(t *testing.T) {
	for qos := QoS(0); qos <= QoS2; qos++ {
		for _, retain := range []bool{false, true} {
			for _, dup := range []bool{false, true} {
				pid := uint16(0)
				if qos > QoS0 {
					pid = 7
				}
				p := Publish{Topic: "a/b", PacketID: pid, Payload: []byte("hi"), QoS: qos, Retain: retain, Dup: dup}
				buf := make([]byte, p.Size())
				n, err := p.Pack(buf)
				require.NoError(t, err)
				require.Equal(t, len(buf), n)

				hdr, hn, err := UnpackFixedHeader(buf)
				require.NoError(t, err)
				require.NotZero(t, hn)

				got, bn, err := UnpackPublish(hdr, buf[hn:])
				require.NoError(t, err)
				require.Equal(t, n-hn, bn)
				require.Equal(t, p.Topic, got.Topic)
				require.Equal(t, p.PacketID, got.PacketID)
				require.Equal(t, p.Payload, got.Payload)
				require.Equal(t, qos, got.QoS)
				require.Equal(t, retain, got.Retain)
				require.Equal(t, dup, got.Dup)
			}
		}
	}
}

func TestSetDupFlipsOnlyTheDupBit(t *testing.T) {
	p := Publish{Topic: "t", QoS: QoS0, Payload: []byte("x")}
	buf := make([]byte, p.Size())
	_, err := p.Pack(buf)
	require.NoError(t, err)

	before := buf[0]
	SetDup(buf, true)
	require.Equal(t, before|publishDupBit, buf[0])
	SetDup(buf, false)
	require.Equal(t, before, buf[0])
}

func TestConnectRoundTrip(t *testing.T) {
	c := Connect{
		ClientID:     "client-1",
		CleanSession: true,
		KeepAlive:    60,
		WillTopic:    "last/will",
		WillMessage:  []byte("bye"),
		WillQoS:      QoS1,
		WillRetain:   true,
		Username:     "alice",
		Password:     "secret",
		HasUser:      true,
		HasPass:      true,
	}
	size, err := c.Size()
	require.NoError(t, err)
	buf := make([]byte, size)
	n, err := c.Pack(buf)
	require.NoError(t, err)
	require.Equal(t, size, n)

	hdr, hn, err := UnpackFixedHeader(buf)
	require.NoError(t, err)
	require.Equal(t, CONNECT, hdr.Type)
	require.Equal(t, uint32(size-hn), hdr.RemainingLength)
}

func TestConnectValidation(t *testing.T) {
	_, err := Connect{WillMessage: []byte("x")}.Size()
	require.ErrorIs(t, err, ErrWillMessageWithoutTopic)

	_, err = Connect{HasPass: true}.Size()
	require.ErrorIs(t, err, ErrPasswordWithoutUsername)
}

func TestConnackRoundTrip(t *testing.T) {
	ack, n, err := UnpackConnack([]byte{0x01, ConnackNotAuthorized})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.True(t, ack.SessionPresent)
	require.Equal(t, ConnackNotAuthorized, ack.ReturnCode)
}

func TestSubscribeUnsubscribeRoundTrip(t *testing.T) {
	s := Subscribe{PacketID: 5, Filters: []TopicFilter{{Filter: "a/+", QoS: QoS1}, {Filter: "b/#", QoS: QoS2}}}
	size, err := s.Size()
	require.NoError(t, err)
	buf := make([]byte, size)
	n, err := s.Pack(buf)
	require.NoError(t, err)
	require.Equal(t, size, n)

	_, err = Subscribe{}.Pack(make([]byte, 16))
	require.ErrorIs(t, err, ErrNoSubscriptions)

	u := Unsubscribe{PacketID: 5, Filters: []string{"a/+", "b/#"}}
	usize, err := u.Size()
	require.NoError(t, err)
	ubuf := make([]byte, usize)
	un, err := u.Pack(ubuf)
	require.NoError(t, err)
	require.Equal(t, usize, un)
}

func TestSubackRoundTrip(t *testing.T) {
	body := []byte{0x00, 0x05, SubAckMaxQoS1, SubAckFailure}
	hdr := FixedHeader{Type: SUBACK, RemainingLength: uint32(len(body))}
	sub, n, err := UnpackSuback(hdr, body)
	require.NoError(t, err)
	require.Equal(t, len(body), n)
	require.Equal(t, uint16(5), sub.PacketID)
	require.Equal(t, []byte{SubAckMaxQoS1, SubAckFailure}, sub.ReturnCodes)
}

func TestIdentifierOnlyRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		pack     identifierOnly
		unpack   func(FixedHeader, []byte) (uint16, int, error)
		wantType PacketType
	}{
		{PubAck(9), UnpackPubAck, PUBACK},
		{PubRec(9), UnpackPubRec, PUBREC},
		{PubRel(9), UnpackPubRel, PUBREL},
		{PubComp(9), UnpackPubComp, PUBCOMP},
	} {
		buf := make([]byte, tc.pack.Size())
		n, err := tc.pack.Pack(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)

		hdr, hn, err := UnpackFixedHeader(buf)
		require.NoError(t, err)
		require.Equal(t, tc.wantType, hdr.Type)

		pid, bn, err := tc.unpack(hdr, buf[hn:])
		require.NoError(t, err)
		require.Equal(t, n-hn, bn)
		require.Equal(t, uint16(9), pid)
	}
}

func TestHeaderOnlyPacketsRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		pack     headerOnly
		wantType PacketType
	}{
		{Disconnect(), DISCONNECT},
		{PingReq(), PINGREQ},
		{PingResp(), PINGRESP},
	} {
		buf := make([]byte, tc.pack.Size())
		n, err := tc.pack.Pack(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)

		hdr, hn, err := UnpackFixedHeader(buf)
		require.NoError(t, err)
		require.Equal(t, tc.wantType, hdr.Type)
		require.Equal(t, uint32(0), hdr.RemainingLength)
		require.Equal(t, n, hn)
	}
}

func TestShortBufferReturnsZeroNotError(t *testing.T) {
	p := Publish{Topic: "topic", QoS: QoS0, Payload: []byte("payload")}
	full := p.Size()
	buf := make([]byte, full)
	_, err := p.Pack(buf)
	require.NoError(t, err)

	for shortLen := 0; shortLen < full; shortLen++ {
		short := make([]byte, shortLen)
		n, err := p.Pack(short)
		require.NoError(t, err)
		require.Zero(t, n)
	}
}
