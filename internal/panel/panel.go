// internal/panel/panel.go

// Package panel renders the per-room control panel message. It is a pure
// presenter: the engine tells it what changed and it re-posts the
// management surface; it never writes back into lifecycle state.
package panel

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vckeeper/vckeeper/internal/voice"
)

// Poster is the one transport call the presenter needs.
type Poster interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

type Presenter struct {
	client Poster
	log    *logrus.Logger
}

func NewPresenter(client Poster, log *logrus.Logger) *Presenter {
	return &Presenter{client: client, log: log}
}

// NotifySession implements voice.Notifier. Posting is best-effort; a failed
// panel message never blocks a lifecycle transition.
func (p *Presenter) NotifySession(ctx context.Context, n voice.Notification) {
	if n.Event == voice.EventDeleted {
		return // the room is gone, nothing to render into
	}
	if err := p.client.SendMessage(ctx, n.ChannelID, Render(n)); err != nil {
		p.log.WithFields(logrus.Fields{
			"room":    n.ChannelID,
			"session": n.SessionID,
		}).WithError(err).Warn("control panel post failed")
	}
}

// Render produces the management message body for the room's current
// state.
func Render(n voice.Notification) string {
	lock := "unlocked"
	if n.Locked {
		lock = "locked"
	}
	visibility := "visible"
	if n.Hidden {
		visibility = "hidden"
	}
	return fmt.Sprintf(
		"**Room controls**\nOwner: <@%s>\nStatus: %s, %s\nUse the panel buttons to rename, lock, hide, or hand off the room.",
		n.OwnerID, lock, visibility,
	)
}
