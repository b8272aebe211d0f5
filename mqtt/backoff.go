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
	"time"
)

// exponentialBackoff paces AwaitConnect while it repeatedly calls Sync
// waiting for a CONNACK on a non-blocking Transport. The core itself never
// blocks; this is sugar layered on top of it for callers who'd rather not
// drive their own event loop, the same role backoff() plays around the
// teacher's blocking ReadFrom retries in its Connect.
type exponentialBackoff struct {
	wait    time.Duration
	maxWait time.Duration
}

func newBackoff() exponentialBackoff {
	return exponentialBackoff{maxWait: 250 * time.Millisecond}
}

func (b *exponentialBackoff) miss() {
	if b.wait == 0 {
		b.wait = time.Millisecond
	}
	time.Sleep(b.wait)
	b.wait *= 2
	if b.wait > b.maxWait {
		b.wait = b.maxWait
	}
}

// AwaitConnect enqueues a CONNECT and then calls Sync in a backoff loop
// until the CONNACK arrives, ctx is done, or a sticky error latches. It is
// sugar for callers who don't want to drive their own Sync loop just to
// learn whether the broker accepted the connection; Sync-loop-driven
// callers should call Connect directly instead.
func (c *Client) AwaitConnect(ctx context.Context, opts ConnectOptions) error {
	if _, err := c.Connect(opts); err != nil {
		return err
	}

	b := newBackoff()
	for {
		if err := c.Sync(); err != nil {
			return err
		}

		c.lock.Lock()
		pending := c.connAckPending
		c.lock.Unlock()
		if !pending {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			b.miss()
		}
	}
}
