package suno

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpx "github.com/mwinther/suno-downloader/internal/http"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(httpx.NewClient("test-token"), srv.URL), srv
}

func TestClient_ListPage_EnvelopeShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantTitle string
	}{
		{
			name:      "bare array",
			body:      `[{"id":"a1","title":"First"},{"id":"a2","title":"Second"}]`,
			wantCount: 2,
			wantTitle: "First",
		},
		{
			name:      "clips envelope",
			body:      `{"clips":[{"id":"b1","title":"Wrapped"}]}`,
			wantCount: 1,
			wantTitle: "Wrapped",
		},
		{
			name:      "project clips with nested clip",
			body:      `{"project_clips":[{"clip":{"id":"c1","title":"Nested"}}]}`,
			wantCount: 1,
			wantTitle: "Nested",
		},
		{
			name:      "empty page",
			body:      `{"clips":[]}`,
			wantCount: 0,
		},
		{
			name:      "entries without id are dropped",
			body:      `{"clips":[{"title":"no id"},{"id":"d1","title":"Kept"}]}`,
			wantCount: 1,
			wantTitle: "Kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))

			clips, err := client.ListPage(context.Background(), Source{Kind: SourceLibrary}, 1)
			if err != nil {
				t.Fatalf("ListPage() error: %v", err)
			}
			if len(clips) != tt.wantCount {
				t.Fatalf("got %d clips, want %d", len(clips), tt.wantCount)
			}
			if tt.wantCount > 0 && clips[0].Title != tt.wantTitle {
				t.Errorf("clips[0].Title = %q, want %q", clips[0].Title, tt.wantTitle)
			}
		})
	}
}

func TestClient_ListPage_URLSelection(t *testing.T) {
	tests := []struct {
		name     string
		src      Source
		wantPath string
		wantQry  map[string]string
	}{
		{
			name:     "library feed",
			src:      Source{Kind: SourceLibrary},
			wantPath: "/api/feed/",
			wantQry:  map[string]string{"page": "3"},
		},
		{
			name:     "public feed",
			src:      Source{Kind: SourcePublic},
			wantPath: "/api/feed/v2",
			wantQry:  map[string]string{"page": "3", "is_public": "true"},
		},
		{
			name:     "project",
			src:      Source{Kind: SourceProject, ID: "ws-1"},
			wantPath: "/api/project/ws-1",
			wantQry:  map[string]string{"page": "3"},
		},
		{
			name:     "default project",
			src:      Source{Kind: SourceProject},
			wantPath: "/api/project/default",
			wantQry:  map[string]string{"page": "3"},
		},
		{
			name:     "liked filter param",
			src:      Source{Kind: SourceLibrary, Liked: true},
			wantPath: "/api/feed/",
			wantQry:  map[string]string{"page": "3", "liked": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotQuery map[string][]string
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				w.Write([]byte(`[]`))
			}))

			if _, err := client.ListPage(context.Background(), tt.src, 3); err != nil {
				t.Fatalf("ListPage() error: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			for k, v := range tt.wantQry {
				if len(gotQuery[k]) == 0 || gotQuery[k][0] != v {
					t.Errorf("query %s = %v, want %q", k, gotQuery[k], v)
				}
			}
		})
	}
}

func TestClient_ListPage_PlaylistLegacyFallback(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/playlist/pl-1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"playlist_clips":[{"clip":{"id":"p1","title":"Legacy"}}]}`))
	}))

	clips, err := client.ListPage(context.Background(), Source{Kind: SourcePlaylist, ID: "pl-1"}, 1)
	if err != nil {
		t.Fatalf("ListPage() error: %v", err)
	}
	if len(clips) != 1 || clips[0].Title != "Legacy" {
		t.Fatalf("unexpected clips: %+v", clips)
	}
	if len(paths) != 2 || paths[1] != "/api/playlists/pl-1" {
		t.Errorf("expected legacy fallback request, got %v", paths)
	}
}

func TestClient_TokenExpired(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ListPage(context.Background(), Source{Kind: SourceLibrary}, 1)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}

	_, err = client.ClipDetail(context.Background(), "x")
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ClipDetail error = %v, want ErrTokenExpired", err)
	}
}

func TestClient_ClipDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/clip/c-42" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":"c-42","title":"Detail","metadata":{"prompt":"verse one","tags":"synthwave"}}`))
	}))

	clip, err := client.ClipDetail(context.Background(), "c-42")
	if err != nil {
		t.Fatalf("ClipDetail() error: %v", err)
	}
	if clip.Prompt != "verse one" || clip.Tags != "synthwave" {
		t.Errorf("unexpected clip: %+v", clip)
	}
}

func TestClient_ListProjects(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/project/me" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"projects":[{"id":"ws-1","name":"Demos"},{"id":"ws-2","name":"Archive"}]}`))
	}))

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error: %v", err)
	}
	if len(projects) != 2 || projects[0].Name != "Demos" {
		t.Errorf("unexpected projects: %+v", projects)
	}
}

func TestClient_ListPlaylists(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/playlist/me" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"playlists":[{"id":"pl-1","name":"Favorites","num_total_results":12}]}`))
	}))

	playlists, err := client.ListPlaylists(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListPlaylists() error: %v", err)
	}
	if len(playlists) != 1 || playlists[0].NumClips != 12 {
		t.Errorf("unexpected playlists: %+v", playlists)
	}
}

func TestClient_AwaitWAV(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"audio_url_wav":"https://cdn.example.com/clip.wav"}`))
	}))

	url, err := client.awaitWAV(context.Background(), "c-1", time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("awaitWAV() error: %v", err)
	}
	if url != "https://cdn.example.com/clip.wav" {
		t.Errorf("url = %q", url)
	}
}

func TestClient_AwaitWAV_Timeout(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.awaitWAV(context.Background(), "c-1", 20*time.Millisecond, time.Millisecond)
	if !errors.Is(err, ErrConversionTimeout) {
		t.Errorf("error = %v, want ErrConversionTimeout", err)
	}
}

func TestClient_AwaitWAV_ServerErrorAborts(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.awaitWAV(context.Background(), "c-1", time.Second, time.Millisecond)
	if err == nil || errors.Is(err, ErrConversionTimeout) {
		t.Fatalf("error = %v, want definitive status failure", err)
	}
	if requests != 1 {
		t.Errorf("status endpoint polled %d times, want 1", requests)
	}
}

func TestClient_SetWAVPolling(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(http.NotFound))
	client.SetWAVPolling(20*time.Millisecond, time.Millisecond)

	start := time.Now()
	_, err := client.AwaitWAV(context.Background(), "c-1")
	if !errors.Is(err, ErrConversionTimeout) {
		t.Fatalf("error = %v, want ErrConversionTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("poll ran %v, configured deadline ignored", elapsed)
	}
}

func TestFindWAVURL(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{
			name: "preferred key",
			data: map[string]any{"audio_url_wav": "https://x/y.wav"},
			want: "https://x/y.wav",
		},
		{
			name: "nested object",
			data: map[string]any{"result": map[string]any{"wav_url": "https://x/z.wav"}},
			want: "https://x/z.wav",
		},
		{
			name: "array entry",
			data: []any{map[string]any{"url": "https://x/a.wav"}},
			want: "https://x/a.wav",
		},
		{
			name: "plain string",
			data: "https://x/b.WAV?sig=1",
			want: "https://x/b.WAV?sig=1",
		},
		{
			name: "non-wav url ignored",
			data: map[string]any{"audio_url": "https://x/song.mp3"},
			want: "",
		},
		{
			name: "non-url wav string ignored",
			data: "file.wav",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindWAVURL(tt.data); got != tt.want {
				t.Errorf("FindWAVURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
