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

	"golang.org/x/sync/semaphore"
)

// opLock is the mutual-exclusion primitive spec.md §5 requires around
// every public operation and Sync, so that a Client driven by a dedicated
// sync-loop thread (deployment pattern (b)) is never entered twice
// concurrently. It is a tiny interface so WithoutLocking can swap in a
// no-op for callers who have proven single-threaded access and don't want
// to pay for it.
type opLock interface {
	Lock()
	Unlock()
}

// semaLock backs opLock with a weighted semaphore of weight 1, matching
// the concurrency primitive the rest of the corpus's MQTT clients settle
// on (golang.org/x/sync, see SPEC_FULL.md §10.5) rather than a bare
// sync.Mutex.
type semaLock struct {
	sem *semaphore.Weighted
}

func newSemaLock() *semaLock {
	return &semaLock{sem: semaphore.NewWeighted(1)}
}

func (l *semaLock) Lock() {
	// Background is correct here: this lock only ever guards a bounded,
	// non-blocking critical section (a single Sync tick or operation
	// call), never a call that can itself block indefinitely.
	_ = l.sem.Acquire(context.Background(), 1)
}

func (l *semaLock) Unlock() {
	l.sem.Release(1)
}

// noopLock is installed by WithoutLocking for callers that guarantee
// single-threaded access to a Client.
type noopLock struct{}

func (noopLock) Lock()   {}
func (noopLock) Unlock() {}
