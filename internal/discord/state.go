// internal/discord/state.go
package discord

import "sync"

// State is the gateway-fed cache of live voice occupancy and known guild
// members. It is the ground truth the lifecycle engine consults when
// deciding whether a room is empty: the join tracker can drift after a
// restart, the gateway stream cannot.
//
// Per-channel member lists keep arrival order, which succession's
// cold-cache fallback depends on.
type State struct {
	mu             sync.RWMutex
	channelMembers map[string][]string          // channelID -> userIDs, join order
	memberChannel  map[string]string            // userID -> channelID
	guildMembers   map[string]map[string]bool   // guildID -> userID set
}

func NewState() *State {
	return &State{
		channelMembers: make(map[string][]string),
		memberChannel:  make(map[string]string),
		guildMembers:   make(map[string]map[string]bool),
	}
}

// MemberJoined records userID entering channelID, removing them from any
// channel they were in before (a move is a leave plus a join, but the feed
// can deliver the join first).
func (s *State) MemberJoined(guildID, userID, channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.memberChannel[userID]; ok && prev != channelID {
		s.removeLocked(prev, userID)
	}
	if !contains(s.channelMembers[channelID], userID) {
		s.channelMembers[channelID] = append(s.channelMembers[channelID], userID)
	}
	s.memberChannel[userID] = channelID

	members, ok := s.guildMembers[guildID]
	if !ok {
		members = make(map[string]bool)
		s.guildMembers[guildID] = members
	}
	members[userID] = true
}

// MemberLeft records userID leaving channelID. A stale leave for a channel
// the user already moved out of only touches that channel's list.
func (s *State) MemberLeft(guildID, userID, channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(channelID, userID)
	if s.memberChannel[userID] == channelID {
		delete(s.memberChannel, userID)
	}
	_ = guildID // leaving voice does not leave the guild
}

// ChannelRemoved drops all occupancy for a deleted channel.
func (s *State) ChannelRemoved(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userID := range s.channelMembers[channelID] {
		if s.memberChannel[userID] == channelID {
			delete(s.memberChannel, userID)
		}
	}
	delete(s.channelMembers, channelID)
}

// VoiceMembers returns a snapshot of channelID's occupants in join order.
func (s *State) VoiceMembers(channelID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.channelMembers[channelID]...)
}

// HasMember reports whether userID has been seen in guildID. Used by the
// overwrite builders to skip departed members.
func (s *State) HasMember(guildID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guildMembers[guildID][userID]
}

// MemberRemoved forgets a user who left the guild entirely.
func (s *State) MemberRemoved(guildID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guildMembers[guildID], userID)
	if ch, ok := s.memberChannel[userID]; ok {
		s.removeLocked(ch, userID)
		delete(s.memberChannel, userID)
	}
}

func (s *State) removeLocked(channelID, userID string) {
	ids := s.channelMembers[channelID]
	out := ids[:0]
	for _, id := range ids {
		if id != userID {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		delete(s.channelMembers, channelID)
	} else {
		s.channelMembers[channelID] = out
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
