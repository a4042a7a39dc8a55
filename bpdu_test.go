package stpsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationBPDURoundTrip(t *testing.T) {
	root := NewBridgeID(DefaultPriority, "00:00:00:00:00:01")
	sender := NewBridgeID(DefaultPriority, "00:00:00:00:00:02")

	bpdu := NewConfigurationBPDU(root, 19, sender, 3, 5, true, false)

	require.True(t, bpdu.IsConfiguration())
	assert.False(t, bpdu.IsTCN())
	assert.Equal(t, root, bpdu.RootID)
	assert.Equal(t, 19, bpdu.Cost)
	assert.Equal(t, sender, bpdu.SenderID)
	assert.Equal(t, 3, bpdu.PortIndex)
	assert.Equal(t, 5, bpdu.MessageAge)
	assert.Equal(t, MaxAge, bpdu.MaxAge)
	assert.Equal(t, HelloTime, bpdu.HelloTime)
	assert.Equal(t, ForwardDelay, bpdu.ForwardDelay)
	assert.True(t, bpdu.TCFlag)
	assert.False(t, bpdu.TCAckFlag)
}

func TestTCNBPDU(t *testing.T) {
	bpdu := NewTCNBPDU()
	assert.True(t, bpdu.IsTCN())
	assert.False(t, bpdu.IsConfiguration())
}
