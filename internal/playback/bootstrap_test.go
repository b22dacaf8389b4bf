package playback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockPlayer records the commands the bootstrap issues
type mockPlayer struct {
	loaded     []string
	loadErr    error
	startLoads int
	recoveries int
	destroyed  bool
}

func (m *mockPlayer) Load(src string) error {
	m.loaded = append(m.loaded, src)
	return m.loadErr
}

func (m *mockPlayer) StartLoad()         { m.startLoads++ }
func (m *mockPlayer) RecoverMediaError() { m.recoveries++ }
func (m *mockPlayer) Destroy()           { m.destroyed = true }

func newTestBootstrap(t *testing.T) (*Bootstrap, *[]*mockPlayer) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	players := &[]*mockPlayer{}
	factory := func(onEvent func(Event)) Player {
		p := &mockPlayer{}
		*players = append(*players, p)
		return p
	}
	return NewBootstrap("https://stream.example.com", factory, logger), players
}

func TestBootstrap_Start(t *testing.T) {
	b, players := newTestBootstrap(t)

	src, tier, err := b.Start("hindi", "lesson_1", 6, true)

	require.NoError(t, err)
	assert.Equal(t, "https://stream.example.com/videos/hindi/lesson_1/1080p.m3u8", src)
	assert.Equal(t, Tier1080p, tier)
	require.Len(t, *players, 1)
	assert.Equal(t, []string{src}, (*players)[0].loaded)
	assert.True(t, b.Playing())
}

func TestBootstrap_Start_TearsDownPreviousPlayer(t *testing.T) {
	b, players := newTestBootstrap(t)

	_, _, err := b.Start("hindi", "lesson_1", 0, false)
	require.NoError(t, err)
	_, _, err = b.Start("hindi", "lesson_2", 0, false)
	require.NoError(t, err)

	require.Len(t, *players, 2)
	assert.True(t, (*players)[0].destroyed, "previous instance must be destroyed before the new one loads")
	assert.False(t, (*players)[1].destroyed)
}

func TestBootstrap_Start_LoadFailure(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	p := &mockPlayer{loadErr: errors.New("manifest unreachable")}
	b := NewBootstrap("https://stream.example.com", func(func(Event)) Player { return p }, logger)

	_, _, err := b.Start("hindi", "lesson_1", 0, false)

	require.Error(t, err)
	assert.True(t, p.destroyed)
	assert.False(t, b.Playing())
}

func TestBootstrap_Stop(t *testing.T) {
	b, players := newTestBootstrap(t)

	_, _, err := b.Start("hindi", "lesson_1", 0, false)
	require.NoError(t, err)

	b.Stop()
	b.Stop() // idempotent

	assert.True(t, (*players)[0].destroyed)
	assert.False(t, b.Playing())
}

func TestBootstrap_RecoveryPolicy(t *testing.T) {
	tests := []struct {
		name           string
		event          Event
		wantStartLoads int
		wantRecoveries int
		wantPlaying    bool
	}{
		{
			name:        "non-fatal is logged only",
			event:       Event{Class: ErrorClassNetwork, Fatal: false, Err: errors.New("segment stall")},
			wantPlaying: true,
		},
		{
			name:           "fatal network restarts load",
			event:          Event{Class: ErrorClassNetwork, Fatal: true, Err: errors.New("manifest timeout")},
			wantStartLoads: 1,
			wantPlaying:    true,
		},
		{
			name:           "fatal media recovers in place",
			event:          Event{Class: ErrorClassMedia, Fatal: true, Err: errors.New("decode error")},
			wantRecoveries: 1,
			wantPlaying:    true,
		},
		{
			name:  "fatal other destroys the player",
			event: Event{Class: ErrorClassOther, Fatal: true, Err: errors.New("mux error")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, players := newTestBootstrap(t)
			_, _, err := b.Start("hindi", "lesson_1", 0, false)
			require.NoError(t, err)

			b.HandleEvent(tt.event)

			p := (*players)[0]
			assert.Equal(t, tt.wantStartLoads, p.startLoads)
			assert.Equal(t, tt.wantRecoveries, p.recoveries)
			assert.Equal(t, tt.wantPlaying, b.Playing())
		})
	}
}

func TestBootstrap_HandleEventWithoutPlayer(t *testing.T) {
	b, _ := newTestBootstrap(t)

	// Must not panic when an event arrives after teardown.
	b.HandleEvent(Event{Class: ErrorClassNetwork, Fatal: true, Err: errors.New("late event")})

	assert.False(t, b.Playing())
}

func TestClientRelay(t *testing.T) {
	relay := NewClientRelay()
	player := relay.Factory()(nil)

	require.NoError(t, player.Load("https://stream.example.com/videos/hindi/lesson_1/480p.m3u8"))
	player.StartLoad()
	player.RecoverMediaError()
	player.Destroy()

	directives := relay.Drain()
	require.Len(t, directives, 4)
	assert.Equal(t, ActionLoad, directives[0].Action)
	assert.Equal(t, "https://stream.example.com/videos/hindi/lesson_1/480p.m3u8", directives[0].Src)
	assert.Equal(t, ActionStartLoad, directives[1].Action)
	assert.Equal(t, ActionRecoverMedia, directives[2].Action)
	assert.Equal(t, ActionDestroy, directives[3].Action)

	assert.Empty(t, relay.Drain(), "drain clears the queue")
}
