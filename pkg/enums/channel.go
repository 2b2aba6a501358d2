package enums

import "fmt"

// Channel identifies the sales path an order came through. The channel
// decides which fields are required and how shipping and commission apply.
type Channel string

const (
	ChannelOnline   Channel = "online"
	ChannelLalamove Channel = "lalamove"
	ChannelWalkin   Channel = "walkin"
	ChannelTiktok   Channel = "tiktok"
)

var validChannels = []Channel{
	ChannelOnline,
	ChannelLalamove,
	ChannelWalkin,
	ChannelTiktok,
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Channel.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// HasShipping reports whether the channel collects shipping from the
// customer. Only online orders carry shipping and commission.
func (c Channel) HasShipping() bool {
	return c == ChannelOnline
}

// ParseChannel converts raw input into a Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}
