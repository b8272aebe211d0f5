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

import "errors"

// ErrWouldBlock is the sentinel a Transport returns from Send or Recv to
// signal "no progress possible this tick" (spec.md §6). It is never
// latched into Client.err.
var ErrWouldBlock = errors.New("mqtt: transport would block")

// Transport is the only thing the core client asks of the byte stream.
// Dialing, non-blocking-mode setup, name resolution and TLS are out of
// core scope (spec.md §1) and are the caller's responsibility; Transport
// is the seam a caller's net.Conn (or any other byte-stream) is adapted
// through.
type Transport interface {
	// Send writes up to len(b) bytes without blocking. It returns the
	// number of bytes actually written, which may be less than len(b) for
	// a partial write, and ErrWouldBlock if no bytes could be written at
	// all right now.
	Send(b []byte) (int, error)
	// Recv reads up to len(b) bytes without blocking. It returns
	// ErrWouldBlock if no bytes are available yet. A return of (0, nil)
	// signals a half-closed stream and is treated by the Client as a
	// socket error in every connection phase (spec.md §9).
	Recv(b []byte) (int, error)
}
