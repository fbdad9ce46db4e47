// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		goes  Goes
		count atomic.Int32
	)
	for i := 0; i < 10; i++ {
		goes.Go(func() { count.Add(1) })
	}
	goes.Wait()
	assert.Equal(t, int32(10), count.Load())

	select {
	case <-goes.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel should be closed")
	}
}

func TestGoesWaitTimeout(t *testing.T) {
	var goes Goes
	release := make(chan struct{})
	goes.Go(func() { <-release })

	assert.False(t, goes.WaitTimeout(10*time.Millisecond))
	close(release)
	assert.True(t, goes.WaitTimeout(time.Second))
}
