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
	"fmt"
)

// Argument errors (spec.md §7): synchronous, never latch Client.err.
var (
	ErrClientNotConnected  = errors.New("mqtt: client is not connected")
	ErrAlreadyConnected    = errors.New("mqtt: already connected")
	ErrConnectInProgress   = errors.New("mqtt: CONNECT already sent, awaiting CONNACK")
	ErrSubscribeInProgress = errors.New("mqtt: SUBSCRIBE already sent, awaiting SUBACK for this packet id")
	ErrInvalidArgument     = errors.New("mqtt: invalid argument")
)

// Protocol and transport errors (spec.md §7): sticky — once one of these
// is latched into Client.err, every subsequent public operation returns it
// until the Client is reinitialized.
var (
	ErrMalformedResponse = errors.New("mqtt: malformed response from broker")
	ErrConnectionRefused = errors.New("mqtt: broker refused connection")
	ErrAckOfUnknown      = errors.New("mqtt: acknowledgment did not match any pending message")
	ErrSocket            = errors.New("mqtt: transport error")
	ErrUnexpectedPacket  = errors.New("mqtt: broker sent a packet type a client should never receive")
)

// ConnackCode is the CONNACK return code (spec.md §6). The zero value,
// ConnackAccepted, is not an error.
type ConnackCode byte

const (
	ConnackAccepted              ConnackCode = 0
	ConnackUnacceptableProtocol  ConnackCode = 1
	ConnackIdentifierRejected    ConnackCode = 2
	ConnackServerUnavailable     ConnackCode = 3
	ConnackBadUsernameOrPassword ConnackCode = 4
	ConnackNotAuthorized         ConnackCode = 5
)

func (c ConnackCode) Error() string {
	switch c {
	case ConnackAccepted:
		return "accepted"
	case ConnackUnacceptableProtocol:
		return "unacceptable protocol version"
	case ConnackIdentifierRejected:
		return "client identifier rejected"
	case ConnackServerUnavailable:
		return "server unavailable"
	case ConnackBadUsernameOrPassword:
		return "bad user name or password"
	case ConnackNotAuthorized:
		return "not authorized"
	default:
		return fmt.Sprintf("unknown CONNACK return code %d", byte(c))
	}
}

// connectionRefusedError wraps ErrConnectionRefused with the specific
// CONNACK return code the broker sent, so callers can errors.Is against
// the sticky sentinel while still recovering the reason with errors.As.
type connectionRefusedError struct {
	code ConnackCode
}

func (e *connectionRefusedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConnectionRefused, e.code)
}

func (e *connectionRefusedError) Unwrap() error { return ErrConnectionRefused }
