package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns v followed by n-1 more copies.
func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// logLines decodes zerolog JSON output into one map per line.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		lines = append(lines, m)
	}
	return lines
}

func messages(lines []map[string]any) []string {
	var out []string
	for _, l := range lines {
		if msg, ok := l["message"].(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// runTicks drives run with n ticks, waits for settled to report true, then
// cancels and waits for run to return.
func runTicks(t *testing.T, run func(context.Context, <-chan time.Time) error, n int, settled func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, tick)
	}()

	for i := 0; i < n; i++ {
		tick <- time.Time{}
	}
	// The last tick is still being processed; cancelling now would cut its read short
	require.Eventually(t, settled, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}
