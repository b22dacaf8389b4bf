package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name     string
		downlink float64
		ok       bool
		want     Tier
	}{
		{name: "fast connection", downlink: 6, ok: true, want: Tier1080p},
		{name: "exactly high threshold", downlink: 5, ok: true, want: Tier1080p},
		{name: "medium connection", downlink: 3, ok: true, want: Tier720p},
		{name: "exactly mid threshold", downlink: 2.5, ok: true, want: Tier720p},
		{name: "slow connection", downlink: 1, ok: true, want: Tier480p},
		{name: "zero downlink", downlink: 0, ok: true, want: Tier480p},
		{name: "no estimate", downlink: 10, ok: false, want: Tier480p},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectTier(tt.downlink, tt.ok))
		})
	}
}

func TestManifestURL(t *testing.T) {
	got := ManifestURL("https://hls-video-streaming.wencuts.com", "hindi", "lesson_42", Tier720p)

	assert.Equal(t, "https://hls-video-streaming.wencuts.com/videos/hindi/lesson_42/720p.m3u8", got)
}

func TestParseErrorClass(t *testing.T) {
	assert.Equal(t, ErrorClassNetwork, ParseErrorClass("network"))
	assert.Equal(t, ErrorClassMedia, ParseErrorClass("media"))
	assert.Equal(t, ErrorClassOther, ParseErrorClass("other"))
	assert.Equal(t, ErrorClassOther, ParseErrorClass("unknown"))
}
