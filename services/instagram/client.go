// Package instagram reads the school account's posts from the Instagram Graph API.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/feed"
)

const (
	DefaultBaseURL = "https://graph.instagram.com"
	mediaFields    = "id,caption,media_type,media_url,permalink,timestamp"
	timestampFmt   = "2006-01-02T15:04:05-0700"
	pageSize       = 50
	maxPages       = 4
)

type (
	media struct {
		ID        string `json:"id"`
		Caption   string `json:"caption"`
		MediaType string `json:"media_type"`
		MediaURL  string `json:"media_url"`
		Permalink string `json:"permalink"`
		Timestamp string `json:"timestamp"`
	}

	mediaPage struct {
		Data   []media `json:"data"`
		Paging struct {
			Next string `json:"next"`
		} `json:"paging"`
	}

	apiError struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
)

// Client fetches the most recent media of one account.
type Client struct {
	BaseURL string

	userID string
	token  string
	http   *http.Client
}

var _ feed.Source = (*Client)(nil)

func NewClient(conf core.InstagramConfig) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		userID:  conf.UserID,
		token:   conf.AccessToken,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an account and a token are set.
func (c *Client) Configured() bool {
	return c.userID != "" && c.token != ""
}

// Fetch returns up to a few pages of the account's posts, newest first.
func (c *Client) Fetch(ctx context.Context) ([]feed.Post, error) {
	if !c.Configured() {
		return nil, feed.ErrNotConfigured
	}

	q := url.Values{}
	q.Set("fields", mediaFields)
	q.Set("limit", fmt.Sprint(pageSize))
	q.Set("access_token", c.token)
	next := fmt.Sprintf("%s/%s/media?%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(c.userID), q.Encode())

	var posts []feed.Post
	for page := 0; next != "" && page < maxPages; page++ {
		mp, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, m := range mp.Data {
			posts = append(posts, m.post())
		}
		next = mp.Paging.Next
	}
	return posts, nil
}

func (c *Client) get(ctx context.Context, u string) (mediaPage, error) {
	var mp mediaPage
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return mp, errors.Wrap(err, "building request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return mp, errors.Wrap(err, "fetching media")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		return mp, errors.Errorf("instagram: %d %s (code %d)", resp.StatusCode, ae.Error.Message, ae.Error.Code)
	}
	if err = json.NewDecoder(resp.Body).Decode(&mp); err != nil {
		return mp, errors.Wrap(err, "decoding media")
	}
	return mp, nil
}

func (m media) post() feed.Post {
	p := feed.Post{
		ExternalID: m.ID,
		Caption:    m.Caption,
		MediaURL:   m.MediaURL,
		Permalink:  m.Permalink,
		MediaType:  strings.ToLower(m.MediaType),
	}
	if ts, err := time.Parse(timestampFmt, m.Timestamp); err == nil {
		p.PostedAt = ts.UTC()
	}
	return p
}
