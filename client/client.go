// Package client is the REST client and local library state used by the
// companion commands. Each store caches what the server acknowledged; a
// mutation touches the cache only after the server accepted it, so the
// local view never runs ahead of the backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tracktide/core/session"
	"tracktide/logger"
	"tracktide/model"
)

// ErrNotLoggedIn is returned when an operation needs credentials and the
// session holds none.
var ErrNotLoggedIn = errors.New("client: not logged in")

// APIError carries the server's JSON error body and status code.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to the TrackTide API. The bearer token comes from the bound
// session store on every request.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

// New creates a client for the API at baseURL, authenticating from sess.
func New(baseURL string, sess *session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: sess,
	}
}

// Session returns the bound session store.
func (c *Client) Session() *session.Store {
	return c.session
}

// authPayload is the signup/login response body.
type authPayload struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// Signup registers a new account and stores the resulting session.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	var out authPayload
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, &out); err != nil {
		return nil, err
	}
	if err := c.session.Set(out.Token, out.User); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login authenticates and stores the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var out authPayload
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	if err := c.session.Set(out.Token, out.User); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout clears the stored session. Purely local; tokens are stateless.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Search queries the song catalog. Works logged out; when logged in the
// server also records the query in search history.
func (c *Client) Search(ctx context.Context, query string) ([]model.Song, error) {
	var out struct {
		Songs []model.Song `json:"songs"`
		Total int          `json:"total"`
	}
	path := "/api/songs/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Songs, nil
}

// do performs one API call. A non-2xx answer is returned as *APIError with
// the server's error message.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// reloadTimeout bounds the background refresh triggered by a login.
const reloadTimeout = 15 * time.Second

// bindSession wires a store's cache to the session lifecycle: logout drops
// the cache synchronously, login refreshes it in the background. A failed
// refresh is logged and leaves the cache empty until the next Load.
func (c *Client) bindSession(reset func(), load func(context.Context) error) {
	c.session.Subscribe(func() {
		if !c.session.LoggedIn() {
			reset()
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
			defer cancel()
			if err := load(ctx); err != nil {
				logger.Warn("[Client] refresh after login failed", logger.ErrorField(err))
			}
		}()
	})
}

// requireAuth fails fast before hitting the network without a token.
func (c *Client) requireAuth() error {
	if !c.session.LoggedIn() {
		return ErrNotLoggedIn
	}
	return nil
}

// songPayload mirrors the denormalized song body the API expects for
// favorites, play history and playlist membership.
type songPayload struct {
	SongID     string `json:"songId"`
	SongTitle  string `json:"songTitle"`
	ArtistName string `json:"artistName"`
	AlbumName  string `json:"albumName"`
	Duration   int    `json:"duration"`
	Cover      string `json:"cover"`
	Preview    string `json:"preview"`
	Context    string `json:"context,omitempty"`
}

func payloadFromSong(s model.Song) songPayload {
	return songPayload{
		SongID:     fmt.Sprintf("%d", s.ID),
		SongTitle:  s.Title,
		ArtistName: s.Artist,
		AlbumName:  s.Album,
		Duration:   s.Duration,
		Cover:      s.Cover,
		Preview:    s.Preview,
	}
}
