// internal/panel/panel_test.go
package panel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vckeeper/vckeeper/internal/voice"

	"github.com/sirupsen/logrus"
)

type fakePoster struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (f *fakePoster) SendMessage(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = make(map[string][]string)
	}
	f.sent[channelID] = append(f.sent[channelID], content)
	return nil
}

func TestPresenterPostsOnCreateAndOwnerChange(t *testing.T) {
	poster := &fakePoster{}
	p := NewPresenter(poster, logrus.New())

	p.NotifySession(context.Background(), voice.Notification{
		Event: voice.EventCreated, ChannelID: "room", OwnerID: "M",
	})
	p.NotifySession(context.Background(), voice.Notification{
		Event: voice.EventOwnerChanged, ChannelID: "room", OwnerID: "N", Locked: true,
	})
	p.NotifySession(context.Background(), voice.Notification{
		Event: voice.EventDeleted, ChannelID: "room", OwnerID: "N",
	})

	require.Len(t, poster.sent["room"], 2, "no panel for a deleted room")
	assert.Contains(t, poster.sent["room"][0], "<@M>")
	assert.Contains(t, poster.sent["room"][1], "<@N>")
	assert.Contains(t, poster.sent["room"][1], "locked")
}
