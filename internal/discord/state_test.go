// internal/discord/state_test.go
package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTracksJoinOrder(t *testing.T) {
	s := NewState()
	s.MemberJoined("g", "A", "room")
	s.MemberJoined("g", "B", "room")
	s.MemberJoined("g", "C", "room")

	assert.Equal(t, []string{"A", "B", "C"}, s.VoiceMembers("room"))

	s.MemberLeft("g", "B", "room")
	assert.Equal(t, []string{"A", "C"}, s.VoiceMembers("room"))
}

func TestStateMoveRemovesFromPreviousChannel(t *testing.T) {
	s := NewState()
	s.MemberJoined("g", "A", "lobby")
	s.MemberJoined("g", "A", "room")

	assert.Empty(t, s.VoiceMembers("lobby"))
	assert.Equal(t, []string{"A"}, s.VoiceMembers("room"))

	// The trailing leave for the old channel is a no-op.
	s.MemberLeft("g", "A", "lobby")
	assert.Equal(t, []string{"A"}, s.VoiceMembers("room"))
}

func TestStateDuplicateJoinIsIgnored(t *testing.T) {
	s := NewState()
	s.MemberJoined("g", "A", "room")
	s.MemberJoined("g", "A", "room")
	assert.Equal(t, []string{"A"}, s.VoiceMembers("room"))
}

func TestStateChannelRemoved(t *testing.T) {
	s := NewState()
	s.MemberJoined("g", "A", "room")
	s.MemberJoined("g", "B", "room")
	s.ChannelRemoved("room")

	assert.Empty(t, s.VoiceMembers("room"))
	// Guild membership survives the channel.
	assert.True(t, s.HasMember("g", "A"))
}

func TestStateGuildMembership(t *testing.T) {
	s := NewState()
	s.MemberJoined("g", "A", "room")
	assert.True(t, s.HasMember("g", "A"))
	assert.False(t, s.HasMember("g", "B"))

	s.MemberRemoved("g", "A")
	assert.False(t, s.HasMember("g", "A"))
	assert.Empty(t, s.VoiceMembers("room"))
}
