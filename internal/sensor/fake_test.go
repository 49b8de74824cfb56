package sensor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeReaderRepeatsLastSample(t *testing.T) {
	f := NewFakeReader(10, 20)
	ctx := context.Background()

	v, err := f.ReadDistanceCm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	v, _ = f.ReadWeightGrams(ctx)
	assert.Equal(t, 20.0, v)

	v, _ = f.ReadDistanceCm(ctx)
	assert.Equal(t, 20.0, v, "last sample repeats")
	assert.Equal(t, 3, f.Calls)
}

func TestFakeReaderErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewFakeReader().ReadDistanceCm(ctx)
	assert.Error(t, err, "no samples")

	f := NewFakeReader(1)
	f.ReadError = errors.New("simulated error")
	_, err = f.ReadWeightGrams(ctx)
	assert.EqualError(t, err, "simulated error")

	f = NewFakeReader(1, 2)
	f.FailCalls = map[int]bool{0: true}
	_, err = f.ReadDistanceCm(ctx)
	assert.ErrorIs(t, err, ErrScriptedFault)
	v, err := f.ReadDistanceCm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "failed call does not consume a sample")
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader(1, 2)
	f.ReadDistanceCm(context.Background())
	f.Reset()

	v, _ := f.ReadDistanceCm(context.Background())
	assert.Equal(t, 1.0, v)
}
