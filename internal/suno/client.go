package suno

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpx "github.com/mwinther/suno-downloader/internal/http"
	"github.com/mwinther/suno-downloader/internal/model"
	"github.com/mwinther/suno-downloader/internal/suno/dto"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://studio-api.prod.suno.com"

// ErrTokenExpired is returned when the service answers 401. The bearer
// token is short-lived; the user has to fetch a fresh one.
var ErrTokenExpired = errors.New("token expired")

// Source selects which listing endpoint a page is fetched from.
type Source struct {
	// Kind is one of SourceLibrary, SourcePublic, SourceProject,
	// SourcePlaylist.
	Kind SourceKind

	// ID is the project or playlist identifier for those kinds.
	ID string

	// Liked and Trashed are passed through as listing query parameters
	// so the service pre-filters on its side.
	Liked   bool
	Trashed bool
}

// SourceKind enumerates the listing endpoints.
type SourceKind int

const (
	// SourceLibrary lists the user's own library feed.
	SourceLibrary SourceKind = iota

	// SourcePublic lists the user's published clips via the v2 feed.
	SourcePublic

	// SourceProject lists the clips of one workspace.
	SourceProject

	// SourcePlaylist lists the clips of one playlist.
	SourcePlaylist
)

// Project is a workspace as shown in the service UI.
type Project struct {
	ID   string
	Name string
}

// Playlist is a user playlist summary.
type Playlist struct {
	ID       string
	Name     string
	NumClips int
}

// Client talks to the music service's REST API.
//
// All listing endpoints are page-oriented with a 1-based page parameter.
// Responses come in several envelope shapes which are normalized into
// []*model.Clip by the dto package.
//
// Example usage:
//
//	client := suno.NewClient(httpClient, "")
//
//	clips, err := client.ListPage(ctx, suno.Source{Kind: suno.SourceLibrary}, 1)
//	if errors.Is(err, suno.ErrTokenExpired) {
//	    // prompt for a fresh token
//	}
type Client struct {
	http    *httpx.Client
	baseURL string

	wavTimeout  time.Duration
	wavInterval time.Duration
}

// NewClient creates a Client on top of the authenticated HTTP client.
// An empty baseURL selects the production host.
func NewClient(http *httpx.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:        http,
		baseURL:     strings.TrimRight(baseURL, "/"),
		wavTimeout:  wavPollTimeout,
		wavInterval: wavPollInterval,
	}
}

// SetWAVPolling overrides the conversion poll deadline and interval.
// Zero values keep the current setting.
func (c *Client) SetWAVPolling(timeout, interval time.Duration) {
	if timeout > 0 {
		c.wavTimeout = timeout
	}
	if interval > 0 {
		c.wavInterval = interval
	}
}

// listURL builds the listing URL for one page of a source.
func (c *Client) listURL(src Source, page int) string {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))
	if src.Liked {
		params.Set("liked", "true")
	}
	if src.Trashed {
		params.Set("trashed", "true")
	}

	var path string
	switch src.Kind {
	case SourcePublic:
		path = "/api/feed/v2"
		params.Set("is_public", "true")
	case SourceProject:
		id := src.ID
		if id == "" {
			id = "default"
		}
		path = "/api/project/" + id
	case SourcePlaylist:
		path = "/api/playlist/" + src.ID
	default:
		path = "/api/feed/"
	}

	return c.baseURL + path + "?" + params.Encode()
}

// ListPage fetches one page of clips from the given source.
//
// An empty slice with nil error means the page exists but carries no
// clips, which terminates pagination.
func (c *Client) ListPage(ctx context.Context, src Source, page int) ([]*model.Clip, error) {
	body, err := c.http.Get(ctx, c.listURL(src, page))
	if err != nil {
		if src.Kind == SourcePlaylist && isStatus(err, 404) {
			// Older playlists only answer on the legacy route.
			return c.legacyPlaylistPage(ctx, src, page)
		}
		return nil, c.mapErr(err)
	}

	clips, err := dto.UnmarshalPage(body)
	if err != nil {
		return nil, err
	}
	return clips, nil
}

// legacyPlaylistPage retries a playlist page on the legacy plural route.
func (c *Client) legacyPlaylistPage(ctx context.Context, src Source, page int) ([]*model.Clip, error) {
	u := fmt.Sprintf("%s/api/playlists/%s?page=%d", c.baseURL, src.ID, page)
	body, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, c.mapErr(err)
	}
	return dto.UnmarshalPage(body)
}

// ClipDetail fetches the full detail record for one clip.
//
// Listing views often omit the prompt; the detail endpoint always carries
// the complete metadata block.
func (c *Client) ClipDetail(ctx context.Context, id string) (*model.Clip, error) {
	var jc dto.JSONClip
	u := fmt.Sprintf("%s/api/clip/%s", c.baseURL, id)
	if err := c.http.GetJSON(ctx, u, &jc); err != nil {
		return nil, c.mapErr(err)
	}
	return jc.ToClip(), nil
}

// ListProjects fetches the user's workspaces.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var list dto.JSONProjectList
	u := c.baseURL + "/api/project/me?page=1&sort=created_at&show_trashed=false"
	if err := c.http.GetJSON(ctx, u, &list); err != nil {
		return nil, c.mapErr(err)
	}

	projects := make([]Project, 0, len(list.Projects))
	for _, p := range list.Projects {
		projects = append(projects, Project{ID: p.ID, Name: p.Name})
	}
	return projects, nil
}

// ListPlaylists fetches one page of the user's playlists.
func (c *Client) ListPlaylists(ctx context.Context, page int) ([]Playlist, error) {
	var list dto.JSONPlaylistList
	u := fmt.Sprintf("%s/api/playlist/me?page=%d", c.baseURL, page)
	if err := c.http.GetJSON(ctx, u, &list); err != nil {
		return nil, c.mapErr(err)
	}

	playlists := make([]Playlist, 0, len(list.Playlists))
	for _, p := range list.Playlists {
		playlists = append(playlists, Playlist{ID: p.ID, Name: p.Name, NumClips: p.NumClips})
	}
	return playlists, nil
}

// mapErr converts transport-level status errors into package sentinels.
func (c *Client) mapErr(err error) error {
	if isStatus(err, 401) {
		return ErrTokenExpired
	}
	return err
}

func isStatus(err error, code int) bool {
	var se *httpx.StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func isStatusError(err error) bool {
	var se *httpx.StatusError
	return errors.As(err, &se)
}
