// internal/voice/engine.go
package voice

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vckeeper/vckeeper/internal/models"
)

// placeholderName is the name every freshly provisioned room starts with.
// The membership event does not carry the member's display name, so the
// owner renames the room through the control panel afterwards.
const placeholderName = "new-channel"

// Store is the persisted-session contract the engine drives. Lookups return
// (nil, nil) when no row exists; DeleteVoiceSessionByChannelID reports
// whether a row was actually removed.
type Store interface {
	GetLobbyByEntryChannel(ctx context.Context, channelID string) (*models.Lobby, error)
	CreateVoiceSession(ctx context.Context, lobbyID int64, channelID, ownerID, name string, userLimit int) (*models.VoiceSession, error)
	GetVoiceSessionByChannelID(ctx context.Context, channelID string) (*models.VoiceSession, error)
	UpdateVoiceSessionOwner(ctx context.Context, sessionID int64, ownerID string) error
	DeleteVoiceSessionByChannelID(ctx context.Context, channelID string) (bool, error)
}

// Client is the transport contract: the external voice resource RPCs.
// DeleteChannel must succeed silently when the channel is already gone.
// GetLiveMembers is ground truth for room occupancy; the join tracker is
// only a ranking hint and can be stale after a restart.
type Client interface {
	CreateVoiceChannel(ctx context.Context, guildID, name, categoryID string, userLimit int, region string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	SetChannelOverwrites(ctx context.Context, channelID string, overwrites []Overwrite) error
	MoveMember(ctx context.Context, guildID, userID, channelID string) error
	GetLiveMembers(ctx context.Context, channelID string) ([]string, error)
	GetChannelCategory(ctx context.Context, channelID string) (string, error)
	SendMessage(ctx context.Context, channelID, content string) error
	ResolveMember(guildID, userID string) bool
}

// Notification is emitted after every state-affecting transition. Consumers
// (control panel, lifecycle queue) re-render or record; they have no write
// path back into the engine.
type Notification struct {
	Event     string // "created", "owner_changed", "deleted"
	SessionID int64
	ChannelID string
	OwnerID   string
	Locked    bool
	Hidden    bool
}

const (
	EventCreated      = "created"
	EventOwnerChanged = "owner_changed"
	EventDeleted      = "deleted"
)

// Notifier receives lifecycle notifications. Implementations log their own
// failures; the engine never blocks a lifecycle transition on a notifier.
type Notifier interface {
	NotifySession(ctx context.Context, n Notification)
}

// Engine reacts to membership-change events: it provisions a fresh room
// when a member enters a lobby, tears the room down when it empties, and
// hands ownership to the longest-present member when the owner leaves.
//
// Events for the same channel are serialized by a keyed mutex held across
// every store and transport call, so a second event for the room can never
// observe a half-finished state. Events for different channels run fully in
// parallel.
type Engine struct {
	log       *logrus.Logger
	store     Store
	client    Client
	tracker   *joinTracker
	keys      *keyedMutex
	region    string
	notifiers []Notifier
}

// NewEngine wires a lifecycle engine. region is the voice region requested
// for every created room.
func NewEngine(log *logrus.Logger, store Store, client Client, region string, notifiers ...Notifier) *Engine {
	return &Engine{
		log:       log,
		store:     store,
		client:    client,
		tracker:   newJoinTracker(),
		keys:      newKeyedMutex(),
		region:    region,
		notifiers: notifiers,
	}
}

// OnMemberJoined handles a member entering channelID. Every join is
// recorded in the tracker (arrival times rank succession candidates); a
// join into a configured lobby additionally provisions a new room for the
// member. Joins into channels that are neither lobbies nor live rooms are
// otherwise no-ops.
func (e *Engine) OnMemberJoined(ctx context.Context, guildID, userID, channelID string) error {
	unlock := e.keys.Lock(channelID)
	e.tracker.Record(channelID, userID)
	unlock()

	lobby, err := e.store.GetLobbyByEntryChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("lobby lookup for channel %s: %w", channelID, err)
	}
	if lobby == nil {
		return nil
	}
	return e.provision(ctx, guildID, userID, channelID, lobby)
}

// provision creates a room for member joining lobby: voice channel, session
// row, owner-only text history, then the move. A failure after the channel
// exists rolls both the channel and the row back, except a store write
// failure, which is surfaced for operator reconciliation instead (rolling
// back a failed DB write risks masking data loss).
func (e *Engine) provision(ctx context.Context, guildID, memberID, lobbyChannelID string, lobby *models.Lobby) error {
	fields := logrus.Fields{
		"guild":   guildID,
		"member":  memberID,
		"lobby":   lobby.ID,
		"channel": lobbyChannelID,
	}

	categoryID := lobby.CategoryID
	if categoryID == "" {
		parent, err := e.client.GetChannelCategory(ctx, lobbyChannelID)
		if err != nil {
			e.log.WithFields(fields).WithError(err).Warn("category fallback lookup failed; creating room uncategorized")
		} else {
			categoryID = parent
		}
	}

	newChannelID, err := e.client.CreateVoiceChannel(ctx, guildID, placeholderName, categoryID, lobby.DefaultUserLimit, e.region)
	if err != nil {
		// Nothing exists yet, nothing to roll back.
		return fmt.Errorf("create voice channel: %w", err)
	}
	fields["room"] = newChannelID

	unlock := e.keys.Lock(newChannelID)
	defer unlock()

	sess, err := e.store.CreateVoiceSession(ctx, lobby.ID, newChannelID, memberID, placeholderName, lobby.DefaultUserLimit)
	if err != nil {
		e.log.WithFields(fields).WithError(err).
			Error("session row write failed after channel creation; channel left dangling, operator reconciliation required")
		return fmt.Errorf("create voice session for channel %s: %w", newChannelID, err)
	}

	if err := e.initializeRoom(ctx, guildID, memberID, sess); err != nil {
		e.rollbackRoom(ctx, sess, fields)
		return err
	}

	e.tracker.Record(newChannelID, memberID)
	e.log.WithFields(fields).Info("ephemeral room created")
	e.notify(ctx, Notification{
		Event:     EventCreated,
		SessionID: sess.ID,
		ChannelID: sess.ChannelID,
		OwnerID:   sess.OwnerID,
		Locked:    sess.IsLocked,
		Hidden:    sess.IsHidden,
	})
	return nil
}

func (e *Engine) initializeRoom(ctx context.Context, guildID, memberID string, sess *models.VoiceSession) error {
	// The @everyone role shares the guild's id.
	history := BuildTextHistoryOverwrites(guildID, memberID)
	if err := e.client.SetChannelOverwrites(ctx, sess.ChannelID, history); err != nil {
		return fmt.Errorf("apply text history overwrites to %s: %w", sess.ChannelID, err)
	}
	if err := e.client.MoveMember(ctx, guildID, memberID, sess.ChannelID); err != nil {
		// The member stays in the lobby; no retry, no user-facing message
		// from here.
		return fmt.Errorf("move member %s into %s: %w", memberID, sess.ChannelID, err)
	}
	return nil
}

// rollbackRoom compensates a failed creation: no session row may outlive its
// channel and vice versa. Row first, then channel, so a crash in between
// leaves a dangling channel (reconcilable) rather than a row pointing at
// nothing.
func (e *Engine) rollbackRoom(ctx context.Context, sess *models.VoiceSession, fields logrus.Fields) {
	if _, err := e.store.DeleteVoiceSessionByChannelID(ctx, sess.ChannelID); err != nil {
		e.log.WithFields(fields).WithError(err).Error("rollback: session row delete failed")
	}
	if err := e.client.DeleteChannel(ctx, sess.ChannelID); err != nil {
		e.log.WithFields(fields).WithError(err).Error("rollback: channel delete failed")
	}
	e.tracker.Drop(sess.ChannelID)
	e.log.WithFields(fields).Warn("room provisioning rolled back")
}

// OnMemberLeft handles a member leaving channelID: forget their arrival,
// then, if the channel is a live ephemeral room, either tear it down (now
// empty) or hand ownership on (owner left, others remain). Both paths are
// idempotent: deleting an already-deleted room and reassigning to a member
// who already owns the room are no-ops in effect.
func (e *Engine) OnMemberLeft(ctx context.Context, guildID, userID, channelID string) error {
	unlock := e.keys.Lock(channelID)
	defer unlock()

	e.tracker.Remove(channelID, userID)

	sess, err := e.store.GetVoiceSessionByChannelID(ctx, channelID)
	if err != nil {
		return fmt.Errorf("session lookup for channel %s: %w", channelID, err)
	}
	if sess == nil {
		// Not an ephemeral room (a lobby, or an unrelated channel).
		return nil
	}

	// The tracker can be stale after a restart; the platform's live member
	// list is the authority on emptiness.
	live, err := e.client.GetLiveMembers(ctx, channelID)
	if err != nil {
		return fmt.Errorf("live member query for channel %s: %w", channelID, err)
	}

	if len(live) == 0 {
		return e.teardown(ctx, sess)
	}
	if sess.OwnerID == userID {
		return e.transferOwnership(ctx, guildID, sess, userID, live)
	}
	return nil
}

// teardown removes an empty room. The session row goes first (per the
// crash contract: at worst a dangling channel remains, never a live row
// pointing at nothing), then the channel, tolerating "already gone".
func (e *Engine) teardown(ctx context.Context, sess *models.VoiceSession) error {
	fields := logrus.Fields{"room": sess.ChannelID, "session": sess.ID}

	deleted, err := e.store.DeleteVoiceSessionByChannelID(ctx, sess.ChannelID)
	if err != nil {
		return fmt.Errorf("delete voice session for channel %s: %w", sess.ChannelID, err)
	}
	if !deleted {
		e.log.WithFields(fields).Debug("session row already removed")
	}

	if err := e.client.DeleteChannel(ctx, sess.ChannelID); err != nil {
		// An orphaned channel self-heals on its next empty check; the row is
		// already gone, so just record it.
		e.log.WithFields(fields).WithError(err).Warn("channel delete failed; channel may be orphaned")
	}

	e.tracker.Drop(sess.ChannelID)
	e.log.WithFields(fields).Info("ephemeral room deleted")
	e.notify(ctx, Notification{
		Event:     EventDeleted,
		SessionID: sess.ID,
		ChannelID: sess.ChannelID,
		OwnerID:   sess.OwnerID,
		Locked:    sess.IsLocked,
		Hidden:    sess.IsHidden,
	})
	return nil
}

// transferOwnership hands the room to the longest-present remaining member
// and re-applies the permission overwrites for the new owner.
func (e *Engine) transferOwnership(ctx context.Context, guildID string, sess *models.VoiceSession, leavingID string, live []string) error {
	fields := logrus.Fields{"room": sess.ChannelID, "session": sess.ID, "old_owner": leavingID}

	next, ok := e.tracker.Successor(sess.ChannelID, live, leavingID)
	if !ok {
		// The live list was non-empty moments ago; reaching this point means
		// the room raced to empty under us. Treat it as empty and clean up.
		e.log.WithFields(fields).Error("invariant violation: no successor in a non-empty room")
		return e.teardown(ctx, sess)
	}
	fields["new_owner"] = next

	if err := e.store.UpdateVoiceSessionOwner(ctx, sess.ID, next); err != nil {
		return fmt.Errorf("update owner of session %d: %w", sess.ID, err)
	}
	sess.OwnerID = next

	resolve := func(userID string) bool { return e.client.ResolveMember(guildID, userID) }
	var overwrites []Overwrite
	if sess.IsLocked {
		overwrites = BuildLockedOverwrites(guildID, next, nil, resolve)
	} else {
		overwrites = BuildUnlockedOverwrites(next, nil, resolve)
	}
	overwrites = append(overwrites, TransferTextHistory(leavingID, next)...)
	if err := e.client.SetChannelOverwrites(ctx, sess.ChannelID, overwrites); err != nil {
		// Ownership already moved; the panel still reflects it. Permissions
		// catch up on the next lock/unlock action.
		e.log.WithFields(fields).WithError(err).Warn("overwrite re-apply failed after succession")
	}

	if err := e.client.SendMessage(ctx, sess.ChannelID, fmt.Sprintf("Room ownership passed to <@%s>.", next)); err != nil {
		e.log.WithFields(fields).WithError(err).Debug("succession notice send failed")
	}

	e.log.WithFields(fields).Info("room ownership transferred")
	e.notify(ctx, Notification{
		Event:     EventOwnerChanged,
		SessionID: sess.ID,
		ChannelID: sess.ChannelID,
		OwnerID:   next,
		Locked:    sess.IsLocked,
		Hidden:    sess.IsHidden,
	})
	return nil
}

// OnChannelDeleted cleans up after a room removed out-of-band (an admin
// deleting the channel by hand). No leave events fire for it, so the row
// and tracker state would otherwise leak.
func (e *Engine) OnChannelDeleted(ctx context.Context, channelID string) error {
	unlock := e.keys.Lock(channelID)
	defer unlock()

	e.tracker.Drop(channelID)
	deleted, err := e.store.DeleteVoiceSessionByChannelID(ctx, channelID)
	if err != nil {
		return fmt.Errorf("delete voice session for channel %s: %w", channelID, err)
	}
	if deleted {
		e.log.WithField("room", channelID).Info("session row removed for externally deleted channel")
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, n Notification) {
	for _, nf := range e.notifiers {
		nf.NotifySession(ctx, n)
	}
}
