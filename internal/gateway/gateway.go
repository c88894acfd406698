// internal/gateway/gateway.go

// Package gateway consumes the platform's membership event feed over a
// websocket and dispatches each event into the lifecycle engine. The feed
// is unordered, at-least-once, and possibly duplicated; every event is
// handled in its own goroutine and the engine's per-room serialization
// keeps same-room events from interleaving.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
	"github.com/vckeeper/vckeeper/internal/discord"
)

// Event is one membership-change message from the feed.
type Event struct {
	Type      string `json:"type"`
	GuildID   string `json:"guild_id"`
	UserID    string `json:"user_id,omitempty"`
	ChannelID string `json:"channel_id"`
}

const (
	EventMemberJoin    = "VOICE_MEMBER_JOIN"
	EventMemberLeave   = "VOICE_MEMBER_LEAVE"
	EventChannelDelete = "CHANNEL_DELETE"
	EventMemberRemove  = "GUILD_MEMBER_REMOVE"
)

// Handler is the engine-facing contract for dispatched events.
type Handler interface {
	OnMemberJoined(ctx context.Context, guildID, userID, channelID string) error
	OnMemberLeft(ctx context.Context, guildID, userID, channelID string) error
	OnChannelDeleted(ctx context.Context, channelID string) error
}

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// Consumer owns the websocket connection to the feed and the reconnect
// loop around it.
type Consumer struct {
	url     string
	token   string
	state   *discord.State
	handler Handler
	log     *logrus.Logger
}

func NewConsumer(url, token string, state *discord.State, handler Handler, log *logrus.Logger) *Consumer {
	return &Consumer{
		url:     url,
		token:   token,
		state:   state,
		handler: handler,
		log:     log,
	}
}

// Run connects and reads events until ctx is cancelled, reconnecting with
// capped backoff on any failure.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := reconnectMin
	for {
		if err := c.readLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.WithError(err).Warnf("gateway connection lost; reconnecting in %s", backoff)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (c *Consumer) readLoop(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bot " + c.token}},
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "shutting down")
	c.log.WithField("url", c.url).Info("gateway connected")

	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			return err
		}
		c.dispatch(ctx, ev)
	}
}

// dispatch updates the live-state cache first (the engine re-reads it to
// decide emptiness), then hands the event to the engine on its own
// goroutine so slow rooms never stall the read loop.
func (c *Consumer) dispatch(ctx context.Context, ev Event) {
	fields := logrus.Fields{
		"type":    ev.Type,
		"guild":   ev.GuildID,
		"user":    ev.UserID,
		"channel": ev.ChannelID,
	}

	switch ev.Type {
	case EventMemberJoin:
		c.state.MemberJoined(ev.GuildID, ev.UserID, ev.ChannelID)
		go func() {
			if err := c.handler.OnMemberJoined(ctx, ev.GuildID, ev.UserID, ev.ChannelID); err != nil {
				c.log.WithFields(fields).WithError(err).Error("join handling failed")
			}
		}()
	case EventMemberLeave:
		c.state.MemberLeft(ev.GuildID, ev.UserID, ev.ChannelID)
		go func() {
			if err := c.handler.OnMemberLeft(ctx, ev.GuildID, ev.UserID, ev.ChannelID); err != nil {
				c.log.WithFields(fields).WithError(err).Error("leave handling failed")
			}
		}()
	case EventChannelDelete:
		c.state.ChannelRemoved(ev.ChannelID)
		go func() {
			if err := c.handler.OnChannelDeleted(ctx, ev.ChannelID); err != nil {
				c.log.WithFields(fields).WithError(err).Error("channel delete handling failed")
			}
		}()
	case EventMemberRemove:
		c.state.MemberRemoved(ev.GuildID, ev.UserID)
	default:
		c.log.WithFields(fields).Debug("ignoring unhandled event type")
	}
}
