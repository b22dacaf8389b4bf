package playback

// ErrorClass partitions player errors for the recovery policy
type ErrorClass int

const (
	// ErrorClassNetwork covers manifest and segment load failures
	ErrorClassNetwork ErrorClass = iota
	// ErrorClassMedia covers decode and buffering failures
	ErrorClassMedia
	// ErrorClassOther covers everything else; fatal occurrences are
	// unrecoverable
	ErrorClassOther
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassNetwork:
		return "network"
	case ErrorClassMedia:
		return "media"
	default:
		return "other"
	}
}

// ParseErrorClass maps a reported class name to an ErrorClass.
// Unknown names fall into ErrorClassOther.
func ParseErrorClass(s string) ErrorClass {
	switch s {
	case "network":
		return ErrorClassNetwork
	case "media":
		return ErrorClassMedia
	default:
		return ErrorClassOther
	}
}

// Event is an error notification emitted by the player
type Event struct {
	Class ErrorClass
	Fatal bool
	Err   error
}

// Player is the contract of the external streaming library instance.
// The library owns the segmented download/decode loop; this layer only
// loads a source and drives the built-in recovery entry points.
type Player interface {
	// Load attaches the manifest URL and begins playback.
	Load(src string) error
	// StartLoad restarts loading from the beginning after a network
	// failure.
	StartLoad()
	// RecoverMediaError invokes the library's built-in media error
	// recovery.
	RecoverMediaError()
	// Destroy tears the instance down and releases the media surface.
	Destroy()
}

// Factory constructs a player instance whose error notifications are
// delivered to onEvent.
type Factory func(onEvent func(Event)) Player
