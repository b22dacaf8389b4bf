package playback

import "sync"

// Directive is a player command relayed to the client runtime, which
// hosts the actual streaming library and media surface.
type Directive struct {
	Action string `json:"action"`
	Src    string `json:"src,omitempty"`
}

// Relay command actions
const (
	ActionLoad         = "load"
	ActionStartLoad    = "startLoad"
	ActionRecoverMedia = "recoverMediaError"
	ActionDestroy      = "destroy"
)

// ClientRelay bridges the bootstrap to a streaming library running in
// the client runtime: player commands queue up as directives the
// client polls, and the client reports the library's error events back
// through the bootstrap.
type ClientRelay struct {
	mu         sync.Mutex
	directives []Directive
}

// NewClientRelay creates an empty relay
func NewClientRelay() *ClientRelay {
	return &ClientRelay{}
}

// Factory returns a player factory producing relay-backed instances
func (r *ClientRelay) Factory() Factory {
	return func(onEvent func(Event)) Player {
		return &relayPlayer{relay: r}
	}
}

// Drain returns and clears the queued directives
func (r *ClientRelay) Drain() []Directive {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.directives
	r.directives = nil
	return out
}

func (r *ClientRelay) push(d Directive) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directives = append(r.directives, d)
}

// relayPlayer queues each player command for the client runtime
type relayPlayer struct {
	relay *ClientRelay
}

func (p *relayPlayer) Load(src string) error {
	p.relay.push(Directive{Action: ActionLoad, Src: src})
	return nil
}

func (p *relayPlayer) StartLoad() {
	p.relay.push(Directive{Action: ActionStartLoad})
}

func (p *relayPlayer) RecoverMediaError() {
	p.relay.push(Directive{Action: ActionRecoverMedia})
}

func (p *relayPlayer) Destroy() {
	p.relay.push(Directive{Action: ActionDestroy})
}
