// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package tasks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounter returns its scripted counts in order, repeating the last
// one, or errs on every call.
type fakeCounter struct {
	counts []int
	calls  int
	err    error
}

func (c *fakeCounter) CountInProgress(context.Context) (int, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	i := c.calls - 1
	if i >= len(c.counts) {
		i = len(c.counts) - 1
	}
	return c.counts[i], nil
}

func waitingLines(buf *bytes.Buffer) []string {
	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Waiting for") {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestDrainerExitsImmediatelyWhenIdle(t *testing.T) {
	var buf bytes.Buffer
	counter := &fakeCounter{counts: []int{0}}
	drainer := NewDrainer(counter, time.Hour, zerolog.New(&buf))

	start := time.Now()
	err := drainer.Wait(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second, "should not have slept")
	assert.Empty(t, waitingLines(&buf), "no waiting lines expected for an idle queue")
	assert.Equal(t, 1, counter.calls)
}

func TestDrainerWaitsUntilCountReachesZero(t *testing.T) {
	var buf bytes.Buffer
	counter := &fakeCounter{counts: []int{3, 0}}
	drainer := NewDrainer(counter, 10*time.Millisecond, zerolog.New(&buf))

	err := drainer.Wait(context.Background())
	require.NoError(t, err)

	lines := waitingLines(&buf)
	require.Len(t, lines, 1, "expected exactly one waiting line")
	assert.Contains(t, lines[0], "3")
	assert.Equal(t, 2, counter.calls)
}

func TestDrainerFailsFastOnQueryError(t *testing.T) {
	counter := &fakeCounter{err: errors.New("connection refused")}
	drainer := NewDrainer(counter, 10*time.Millisecond, zerolog.Nop())

	err := drainer.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, counter.calls, "no retry after a query error")
}

func TestDrainerHonorsContextCancellation(t *testing.T) {
	counter := &fakeCounter{counts: []int{5}}
	drainer := NewDrainer(counter, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := drainer.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDrainerDefaultInterval(t *testing.T) {
	drainer := NewDrainer(&fakeCounter{counts: []int{0}}, 0, zerolog.Nop())
	assert.Equal(t, DefaultDrainInterval, drainer.interval)
}
