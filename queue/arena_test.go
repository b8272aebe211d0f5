package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyiot/mqttcore/packets"
)

func TestRegisterAndPayloadRoundTrip(t *testing.T) {
	a := NewArena(256)
	rec, err := a.Register(10, packets.PUBLISH, 1)
	require.NoError(t, err)
	require.Equal(t, 0, rec.Start)
	require.Equal(t, Unsent, rec.State)

	payload := a.Payload(rec)
	require.Len(t, payload, 10)
	copy(payload, []byte("0123456789"))
	require.Equal(t, []byte("0123456789"), a.Payload(rec))
}

func TestRegisterOrdersRecordsOldestFirst(t *testing.T) {
	a := NewArena(256)
	first, err := a.Register(4, packets.PUBLISH, 1)
	require.NoError(t, err)
	second, err := a.Register(4, packets.PUBLISH, 2)
	require.NoError(t, err)

	require.Equal(t, 2, a.Length())
	require.Equal(t, first.PacketID, a.Get(0).PacketID)
	require.Equal(t, second.PacketID, a.Get(1).PacketID)
	require.Equal(t, first.Size, second.Start)
}

func TestRegisterFailsWhenMemoryExhausted(t *testing.T) {
	a := NewArena(RecordOverhead + 8)
	_, err := a.Register(8, packets.PUBLISH, 1)
	require.NoError(t, err)
	_, err = a.Register(1, packets.PUBLISH, 2)
	require.ErrorIs(t, err, ErrMemoryExhausted)
}

func TestFindOnlyMatchesAwaitingAck(t *testing.T) {
	a := NewArena(256)
	rec, err := a.Register(4, packets.PUBLISH, 42)
	require.NoError(t, err)

	require.Nil(t, a.Find(packets.PUBLISH, 42), "an UNSENT record should not be findable as an outstanding ack")

	rec.State = AwaitingAck
	found := a.Find(packets.PUBLISH, 42)
	require.NotNil(t, found)
	require.Equal(t, uint16(42), found.PacketID)

	require.Nil(t, a.Find(packets.PUBLISH, 99))
	require.Nil(t, a.Find(packets.SUBSCRIBE, 42))
}

func TestCleanCompactsOnlyLeadingCompleteRecords(t *testing.T) {
	a := NewArena(256)
	r1, err := a.Register(4, packets.PUBLISH, 1)
	require.NoError(t, err)
	r2, err := a.Register(4, packets.PUBLISH, 2)
	require.NoError(t, err)
	r3, err := a.Register(4, packets.PUBLISH, 3)
	require.NoError(t, err)

	copy(a.Payload(r2), []byte("beef"))
	copy(a.Payload(r3), []byte("cafe"))

	r1.State = Complete
	r2.State = Complete
	// r3 stays UNSENT: Clean must stop compacting once it hits a
	// non-COMPLETE record, even though r3 itself is resident past r1/r2.
	a.Clean()

	require.Equal(t, 1, a.Length())
	require.Equal(t, uint16(3), a.Get(0).PacketID)
	require.Equal(t, 0, a.Get(0).Start)
	require.Equal(t, []byte("cafe"), a.Payload(a.Get(0)))
}

func TestCapacityInvariantHoldsAfterRegister(t *testing.T) {
	a := NewArena(512)
	for i := 0; i < 5; i++ {
		_, err := a.Register(20, packets.PUBLISH, uint16(i+1))
		require.NoError(t, err)
	}
	used := a.curr + len(a.records)*RecordOverhead
	require.Equal(t, a.curr, 5*20)
	require.LessOrEqual(t, used, a.capacity)
}

func TestResetClearsRecordsAndCursor(t *testing.T) {
	a := NewArena(128)
	_, err := a.Register(4, packets.PUBLISH, 1)
	require.NoError(t, err)
	a.Reset()
	require.Equal(t, 0, a.Length())
	require.Equal(t, 0, a.curr)
}
