package rhythm

// Mode is the engine's top-level state; transitions form
// Idle -> MachineLed -> UserLed -> Ended, with Reset returning to Idle from anywhere
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeMachineLed
	ModeUserLed
	ModeEnded
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeMachineLed:
		return "machine-led"
	case ModeUserLed:
		return "user-led"
	case ModeEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// TakeoverPolicy selects how control passes from the metronome to the player
type TakeoverPolicy uint8

const (
	// TakeoverNatural treats a beat input during MachineLed as takeover plus the first user beat,
	// and bounds the user-led session with a countdown
	TakeoverNatural TakeoverPolicy = iota

	// TakeoverImmediate requires an explicit takeover action; beat inputs during MachineLed are
	// ignored and the user-led session runs until EndSession or Reset
	TakeoverImmediate
)

func (p TakeoverPolicy) String() string {
	switch p {
	case TakeoverNatural:
		return "natural"
	case TakeoverImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ParseTakeoverPolicy maps a config string to a policy
func ParseTakeoverPolicy(s string) (TakeoverPolicy, bool) {
	switch s {
	case "natural", "":
		return TakeoverNatural, true
	case "immediate":
		return TakeoverImmediate, true
	default:
		return TakeoverNatural, false
	}
}

// Channel routes a tone to the metronome or the player output
type Channel uint8

const (
	ChannelMachine Channel = iota
	ChannelUser
)

func (c Channel) String() string {
	if c == ChannelUser {
		return "user"
	}
	return "machine"
}
