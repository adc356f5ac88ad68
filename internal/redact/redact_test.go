package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageRedactsEmail(t *testing.T) {
	got := Message("Contact me at player1@example.com for a trade.")
	assert.Equal(t, "Contact me at [REDACTED] for a trade.", got)
}

func TestMessageRedactsIPv4(t *testing.T) {
	got := Message("Connected from 192.168.1.42 on port 6112.")
	assert.Equal(t, "Connected from [REDACTED] on port 6112.", got)
}

func TestMessageRedactsWalletAddress(t *testing.T) {
	got := Message("Sent to 0x1234567890abcdef1234567890abcdef12345678.")
	assert.Equal(t, "Sent to [REDACTED].", got)
}

func TestMessageRedactsEnvSecret(t *testing.T) {
	got := Message("config dump: API_KEY=sk-deadbeef1234")
	assert.Equal(t, "config dump: [REDACTED]", got)
}

func TestMessageLeavesOrdinaryTextAlone(t *testing.T) {
	got := Message("You have been slain by a spider.")
	assert.Equal(t, "You have been slain by a spider.", got)
}
