package client

import "context"

// Library bundles the per-concern stores over one API client.
type Library struct {
	Favorites     *FavoritesStore
	History       *HistoryStore
	SearchHistory *SearchHistoryStore
	Playlists     *PlaylistsStore
	Follows       *FollowsStore
}

// NewLibrary creates all stores bound to the given client.
func NewLibrary(c *Client) *Library {
	return &Library{
		Favorites:     NewFavoritesStore(c),
		History:       NewHistoryStore(c),
		SearchHistory: NewSearchHistoryStore(c),
		Playlists:     NewPlaylistsStore(c),
		Follows:       NewFollowsStore(c),
	}
}

// Load refreshes every store. The first failure aborts the refresh.
func (l *Library) Load(ctx context.Context) error {
	if err := l.Favorites.Load(ctx); err != nil {
		return err
	}
	if err := l.History.Load(ctx); err != nil {
		return err
	}
	if err := l.SearchHistory.Load(ctx); err != nil {
		return err
	}
	if err := l.Playlists.Load(ctx); err != nil {
		return err
	}
	return l.Follows.Load(ctx)
}
