package domain

// MediaItem is one image of a media group.
type MediaItem struct {
	Bytes    []byte
	Filename string

	// Caption is only set on the first item of a batch.
	Caption string
}

// PublishPayload is the ordered media group sent to a single channel.
// Items[0] is the primary image and carries the caption.
type PublishPayload struct {
	ChannelID int64
	Items     []MediaItem
}

// NewPublishPayload assembles a payload, attaching caption to the first item only.
func NewPublishPayload(channelID int64, items []MediaItem, caption string) PublishPayload {
	out := make([]MediaItem, len(items))
	copy(out, items)

	for i := range out {
		out[i].Caption = ""
	}

	if len(out) > 0 {
		out[0].Caption = caption
	}

	return PublishPayload{ChannelID: channelID, Items: out}
}

// BotIdentity is the messaging account the job publishes as.
type BotIdentity struct {
	ID          int64
	DisplayName string
	Username    string
}
