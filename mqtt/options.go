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
	"time"

	"github.com/google/uuid"
	"github.com/tinyiot/mqttcore/packets"
)

const (
	defaultSendBufferSize    = 4 * 1024
	defaultRecvBufferSize    = 4 * 1024
	defaultResponseTimeout   = 5 * time.Second
	defaultKeepAliveSeconds  = 60
	defaultPidSeed           = 163 // the seed spec.md §4.3's testable property pins the LFSR period against
)

// ConnectOptions is the CONNECT payload a caller assembles (spec.md §3).
type ConnectOptions struct {
	ClientID     string
	CleanSession bool
	KeepAlive    uint16

	WillTopic   string
	WillMessage []byte
	WillQoS     packets.QoS
	WillRetain  bool

	Username string
	Password string
}

// NewConnectOptions returns ConnectOptions with CleanSession set and a
// generated client id (SPEC_FULL.md §10.4), ready for the caller to
// customize further.
func NewConnectOptions() ConnectOptions {
	return ConnectOptions{
		ClientID:     "mqttcore-" + uuid.NewString()[:8],
		CleanSession: true,
		KeepAlive:    defaultKeepAliveSeconds,
	}
}

// Validate checks the invariants spec.md §3 places on ConnectOptions:
// a will message requires a will topic, and a password requires a
// username.
func (o ConnectOptions) Validate() error {
	if len(o.WillMessage) > 0 && o.WillTopic == "" {
		return ErrInvalidArgument
	}
	if o.Password != "" && o.Username == "" {
		return ErrInvalidArgument
	}
	return nil
}

func (o ConnectOptions) toPacket() packets.Connect {
	return packets.Connect{
		ClientID:     o.ClientID,
		CleanSession: o.CleanSession,
		KeepAlive:    o.KeepAlive,
		WillTopic:    o.WillTopic,
		WillMessage:  o.WillMessage,
		WillQoS:      o.WillQoS,
		WillRetain:   o.WillRetain,
		Username:     o.Username,
		Password:     o.Password,
		HasUser:      o.Username != "",
		HasPass:      o.Password != "",
	}
}

// PublishData is handed to the publish callback (spec.md §6). Payload
// points into the Client's receive buffer and must be copied by the
// callback if retained past the call; Topic is already a copy.
type PublishData struct {
	Topic    string
	Payload  []byte
	QoS      packets.QoS
	Retain   bool
	Dup      bool
	PacketID uint16
}

// PublishHandler is invoked synchronously from within Sync for every
// inbound PUBLISH (spec.md §6).
type PublishHandler func(PublishData)

// ClientOption configures a Client at construction time.
type ClientOption func(*clientOptions)

type clientOptions struct {
	sendBufferSize     int
	recvBufferSize     int
	responseTimeout    time.Duration
	keepAlive          time.Duration
	pidSeed            uint16
	logger             fieldLoggerAdapter
	onPublish          PublishHandler
	useLock            bool
	suppressDuplicates bool
	now                func() time.Time
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		sendBufferSize:     defaultSendBufferSize,
		recvBufferSize:     defaultRecvBufferSize,
		responseTimeout:    defaultResponseTimeout,
		keepAlive:          defaultKeepAliveSeconds * time.Second,
		pidSeed:            defaultPidSeed,
		logger:             nopLogger{},
		useLock:            true,
		suppressDuplicates: true,
		now:                time.Now,
	}
}

// WithBufferSizes sets the outgoing arena capacity and receive buffer
// length.
func WithBufferSizes(sendBytes, recvBytes int) ClientOption {
	return func(o *clientOptions) {
		o.sendBufferSize = sendBytes
		o.recvBufferSize = recvBytes
	}
}

// WithResponseTimeout sets how long an AWAITING_ACK PUBLISH waits before
// the sync cycle marks it UNSENT again and sets DUP (spec.md §4.4). Other
// AWAITING_ACK packet types are not retransmitted.
func WithResponseTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.responseTimeout = d }
}

// WithPidSeed sets the nonzero seed for the packet-id LFSR. Mostly useful
// for deterministic tests.
func WithPidSeed(seed uint16) ClientOption {
	return func(o *clientOptions) { o.pidSeed = seed }
}

// WithLogger installs a structured logger (SPEC_FULL.md §10.1). Accepts
// anything satisfying logrus.FieldLogger's Debugf/Warnf/Errorf subset.
func WithLogger(l fieldLoggerAdapter) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// WithPublishHandler sets the callback invoked for inbound PUBLISH
// packets.
func WithPublishHandler(h PublishHandler) ClientOption {
	return func(o *clientOptions) { o.onPublish = h }
}

// WithoutLocking disables the operation mutex (SPEC_FULL.md §10.5) for
// callers that have proven single-threaded access to the Client.
func WithoutLocking() ClientOption {
	return func(o *clientOptions) { o.useLock = false }
}

// WithDuplicatePublishDelivery opts into the original's looser QoS2
// behavior: the publish callback fires on every inbound PUBLISH, including
// retransmissions of an id whose PUBREC has already been sent (spec.md §9
// open question; SPEC_FULL.md §12 decides spec-conformant suppression by
// default).
func WithDuplicatePublishDelivery() ClientOption {
	return func(o *clientOptions) { o.suppressDuplicates = false }
}

// WithKeepAlive overrides the keep-alive interval Sync uses to decide when
// to enqueue a PINGREQ. Defaults to 60s, matching the KeepAlive a
// ConnectOptions built with NewConnectOptions sends in CONNECT; callers
// using a different CONNECT keep-alive should set this to match.
func WithKeepAlive(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.keepAlive = d }
}

// WithClock overrides the time source Sync uses for retransmission timeouts
// and keep-alive scheduling. Exposed for deterministic tests; production
// callers have no reason to set it.
func WithClock(now func() time.Time) ClientOption {
	return func(o *clientOptions) { o.now = now }
}
