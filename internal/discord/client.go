// internal/discord/client.go
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vckeeper/vckeeper/internal/voice"
)

// ErrNotFound marks a 404 from the platform API. Delete paths reclassify it
// as success: the resource being already gone is the outcome they wanted.
var ErrNotFound = errors.New("discord: resource not found")

const channelTypeVoice = 2

// RESTClient implements the engine's transport contract against the
// platform's HTTP API, with live occupancy answered from the gateway-fed
// State rather than the REST surface (which has no live voice listing).
type RESTClient struct {
	http  *http.Client
	base  string
	token string
	state *State
	log   *logrus.Logger
}

func NewRESTClient(base, token string, state *State, log *logrus.Logger) *RESTClient {
	return &RESTClient{
		http:  &http.Client{Timeout: 10 * time.Second},
		base:  base,
		token: token,
		state: state,
		log:   log,
	}
}

type channelPayload struct {
	ID       string `json:"id"`
	GuildID  string `json:"guild_id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	ParentID string `json:"parent_id"`
}

func (c *RESTClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// CreateVoiceChannel provisions a voice channel and returns its id.
func (c *RESTClient) CreateVoiceChannel(ctx context.Context, guildID, name, categoryID string, userLimit int, region string) (string, error) {
	body := map[string]any{
		"name":       name,
		"type":       channelTypeVoice,
		"user_limit": userLimit,
	}
	if categoryID != "" {
		body["parent_id"] = categoryID
	}
	if region != "" {
		body["rtc_region"] = region
	}

	var ch channelPayload
	if err := c.do(ctx, http.MethodPost, "/guilds/"+guildID+"/channels", body, &ch); err != nil {
		return "", err
	}
	return ch.ID, nil
}

// DeleteChannel removes a channel; an already-deleted channel is success.
func (c *RESTClient) DeleteChannel(ctx context.Context, channelID string) error {
	err := c.do(ctx, http.MethodDelete, "/channels/"+channelID, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// SetChannelOverwrites applies the overwrite set one subject at a time; a
// zero overwrite clears the subject back to ambient permissions. The
// platform carries permission bits as decimal strings.
func (c *RESTClient) SetChannelOverwrites(ctx context.Context, channelID string, overwrites []voice.Overwrite) error {
	for _, ow := range overwrites {
		path := "/channels/" + channelID + "/permissions/" + ow.SubjectID
		if ow.Allow == 0 && ow.Deny == 0 {
			if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			continue
		}
		body := map[string]any{
			"type":  int(ow.Kind),
			"allow": strconv.FormatInt(ow.Allow, 10),
			"deny":  strconv.FormatInt(ow.Deny, 10),
		}
		if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
			return err
		}
	}
	return nil
}

// MoveMember moves a connected member into channelID.
func (c *RESTClient) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	body := map[string]any{"channel_id": channelID}
	return c.do(ctx, http.MethodPatch, "/guilds/"+guildID+"/members/"+userID, body, nil)
}

// GetLiveMembers answers from the gateway state: the REST API exposes no
// live voice member listing.
func (c *RESTClient) GetLiveMembers(_ context.Context, channelID string) ([]string, error) {
	return c.state.VoiceMembers(channelID), nil
}

// GetChannelCategory returns the channel's parent category id ("" when
// uncategorized).
func (c *RESTClient) GetChannelCategory(ctx context.Context, channelID string) (string, error) {
	var ch channelPayload
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, &ch); err != nil {
		return "", err
	}
	return ch.ParentID, nil
}

// SendMessage posts content to the channel's text surface.
func (c *RESTClient) SendMessage(ctx context.Context, channelID, content string) error {
	body := map[string]any{"content": content}
	return c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", body, nil)
}

// ResolveMember reports whether the user is still known in the guild.
func (c *RESTClient) ResolveMember(guildID, userID string) bool {
	return c.state.HasMember(guildID, userID)
}
