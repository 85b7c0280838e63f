package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishPayload(t *testing.T) {
	items := []MediaItem{
		{Filename: "shm.jpg", Bytes: []byte{1}},
		{Filename: "srf.jpg", Bytes: []byte{2}, Caption: "stale"},
		{Filename: "sra.jpg", Bytes: []byte{3}},
		{Filename: "srq.jpg", Bytes: []byte{4}},
	}

	payload := NewPublishPayload(-1001196741187, items, "caption")

	assert.Equal(t, int64(-1001196741187), payload.ChannelID)
	require.Len(t, payload.Items, 4)
	assert.Equal(t, "caption", payload.Items[0].Caption)

	for i, item := range payload.Items[1:] {
		assert.Empty(t, item.Caption, "item %d", i+1)
	}

	names := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		names = append(names, item.Filename)
	}

	assert.Equal(t, []string{"shm.jpg", "srf.jpg", "sra.jpg", "srq.jpg"}, names)
	assert.Equal(t, "stale", items[1].Caption, "input slice is left untouched")
}

func TestNewPublishPayload_Empty(t *testing.T) {
	payload := NewPublishPayload(1, nil, "caption")

	assert.Empty(t, payload.Items)
}
