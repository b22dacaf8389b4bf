package playback

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Bootstrap owns the single media playback surface. Ownership
// transfers only by tearing the live player down and constructing a
// new one; a live instance's source is never mutated.
type Bootstrap struct {
	origin  string
	factory Factory
	logger  *zap.Logger

	mu     sync.Mutex
	player Player
	src    string
}

// NewBootstrap creates a playback bootstrap for the given streaming
// origin.
func NewBootstrap(origin string, factory Factory, logger *zap.Logger) *Bootstrap {
	return &Bootstrap{
		origin:  origin,
		factory: factory,
		logger:  logger,
	}
}

// Start resolves the manifest URL for a lesson and hands it to a fresh
// player instance, tearing down any previous instance first. The tier
// is selected once from the provided downlink estimate; haveEstimate
// false means no signal and selects the lowest tier.
func (b *Bootstrap) Start(language, lessonID string, downlinkMbps float64, haveEstimate bool) (string, Tier, error) {
	tier := SelectTier(downlinkMbps, haveEstimate)
	src := ManifestURL(b.origin, language, lessonID, tier)

	b.mu.Lock()
	if b.player != nil {
		b.player.Destroy()
		b.player = nil
	}
	player := b.factory(b.handleEvent)
	b.player = player
	b.src = src
	b.mu.Unlock()

	b.logger.Info("starting playback",
		zap.String("lesson_id", lessonID),
		zap.String("language", language),
		zap.String("tier", string(tier)),
	)

	if err := player.Load(src); err != nil {
		b.Stop()
		return "", "", fmt.Errorf("failed to load manifest: %w", err)
	}

	return src, tier, nil
}

// Stop tears down the current player instance, if any. It is
// idempotent.
func (b *Bootstrap) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player != nil {
		b.player.Destroy()
		b.player = nil
		b.src = ""
	}
}

// Playing reports whether a player instance currently owns the surface
func (b *Bootstrap) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.player != nil
}

// HandleEvent feeds an externally reported player error through the
// recovery policy. Used when the streaming library runs in the client
// runtime and relays its error events here.
func (b *Bootstrap) HandleEvent(ev Event) {
	b.handleEvent(ev)
}

// handleEvent applies the fixed recovery policy. Non-fatal errors are
// logged only. Playback failures never reach application-level error
// state: they either self-heal or the player is destroyed.
func (b *Bootstrap) handleEvent(ev Event) {
	if !ev.Fatal {
		b.logger.Debug("playback error",
			zap.String("class", ev.Class.String()),
			zap.Error(ev.Err),
		)
		return
	}

	b.mu.Lock()
	player := b.player
	b.mu.Unlock()
	if player == nil {
		return
	}

	switch ev.Class {
	case ErrorClassNetwork:
		b.logger.Warn("fatal network error, restarting load", zap.Error(ev.Err))
		player.StartLoad()
	case ErrorClassMedia:
		b.logger.Warn("fatal media error, attempting recovery", zap.Error(ev.Err))
		player.RecoverMediaError()
	default:
		b.logger.Error("unrecoverable playback error, destroying player", zap.Error(ev.Err))
		b.Stop()
	}
}
