package logbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainReturnsPublished(t *testing.T) {
	b := New()
	b.Info("connected")
	b.Warning("slow response")

	batch := b.Drain()
	require.Len(t, batch, 2)
	assert.Equal(t, "connected", batch[0].Msg)
	assert.Equal(t, Info, batch[0].Level)
	assert.Equal(t, Warning, batch[1].Level)
}

func TestDrainEmptyAfterFullyConsumed(t *testing.T) {
	b := New()
	b.Info("one")
	require.Len(t, b.Drain(), 1)
	assert.Empty(t, b.Drain())
}

func TestPublishDropsOnOverflowWithoutBlocking(t *testing.T) {
	b := New()
	for i := 0; i < capacity+10; i++ {
		b.Info("filler")
	}
	assert.Positive(t, b.Dropped())
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.Info("noop") })
}
