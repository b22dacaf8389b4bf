// Package playback resolves manifest URLs for lesson videos and hands
// them to the streaming player. Segment fetching, buffering and
// recovery belong to the player; this package only picks a quality
// tier once at playback start and applies the fixed fatal-error
// policy.
package playback

import "fmt"

// Tier is one of the three fixed video quality variants
type Tier string

const (
	Tier480p  Tier = "480p"
	Tier720p  Tier = "720p"
	Tier1080p Tier = "1080p"
)

// Downlink thresholds in Mbps for tier selection
const (
	highTierMinDownlink = 5
	midTierMinDownlink  = 2.5
)

// SelectTier picks a quality tier from an instantaneous downlink
// estimate. ok is false when no estimate is available, which selects
// the lowest tier. The choice is made once per playback start and is
// never re-evaluated mid-stream.
func SelectTier(downlinkMbps float64, ok bool) Tier {
	if !ok {
		return Tier480p
	}
	if downlinkMbps >= highTierMinDownlink {
		return Tier1080p
	}
	if downlinkMbps >= midTierMinDownlink {
		return Tier720p
	}
	return Tier480p
}

// ManifestURL composes the manifest location from the streaming
// origin, the course language tag, the lesson identifier and the
// selected tier. The language tag and lesson identifier are trusted to
// be path-safe already.
func ManifestURL(origin, language, lessonID string, tier Tier) string {
	return fmt.Sprintf("%s/videos/%s/%s/%s.m3u8", origin, language, lessonID, tier)
}
