package instagram_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/feed"
	"github.com/trezcool/yuva/services/instagram"
)

func TestClient_Fetch(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("after") {
		case "":
			assert.Equal(t, "/1784/media", r.URL.Path)
			assert.Contains(t, r.URL.Query().Get("fields"), "permalink")
			_, _ = fmt.Fprintf(w, `{
				"data": [{"id": "p2", "caption": "Spring fest", "media_type": "IMAGE",
					"media_url": "https://cdn/p2.jpg", "permalink": "https://ig/p2", "timestamp": "2024-04-02T09:30:00+0000"}],
				"paging": {"next": "%s/1784/media?after=c1&access_token=tok"}
			}`, srv.URL)
		default:
			_, _ = fmt.Fprint(w, `{"data": [{"id": "p1", "media_type": "VIDEO", "timestamp": "2024-03-01T12:00:00+0300"}]}`)
		}
	}))
	defer srv.Close()

	c := instagram.NewClient(core.InstagramConfig{UserID: "1784", AccessToken: "tok"})
	c.BaseURL = srv.URL

	posts, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, feed.Post{
		ExternalID: "p2",
		Caption:    "Spring fest",
		MediaURL:   "https://cdn/p2.jpg",
		Permalink:  "https://ig/p2",
		MediaType:  "image",
		PostedAt:   time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC),
	}, posts[0])
	assert.Equal(t, "p1", posts[1].ExternalID)
	assert.Equal(t, "video", posts[1].MediaType)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), posts[1].PostedAt)
}

func TestClient_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		_, err := instagram.NewClient(core.InstagramConfig{}).Fetch(context.Background())
		assert.ErrorIs(t, err, feed.ErrNotConfigured)
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}`)
		}))
		defer srv.Close()

		c := instagram.NewClient(core.InstagramConfig{UserID: "1", AccessToken: "bad"})
		c.BaseURL = srv.URL
		_, err := c.Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid OAuth access token")
	})
}
