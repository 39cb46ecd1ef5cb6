package suno

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConversionTimeout is returned when a requested WAV conversion does not
// finish within the polling deadline. The item is reported failed for this
// run; it is not retried.
var ErrConversionTimeout = errors.New("wav conversion timed out")

const (
	// wavPollInterval is how often the conversion status is checked.
	wavPollInterval = 2 * time.Second

	// wavPollTimeout bounds the total wait for a server-side conversion.
	wavPollTimeout = 120 * time.Second
)

// wavURLKeys are checked first, in order, when searching a response for a
// WAV stream URL.
var wavURLKeys = []string{
	"audio_url_wav",
	"wav_url",
	"wav_audio_url",
	"master_wav_url",
	"preview_wav_url",
}

// RequestWAV asks the service to render a WAV variant of the clip.
// The conversion runs asynchronously; poll with AwaitWAV.
func (c *Client) RequestWAV(ctx context.Context, clipID string) error {
	u := fmt.Sprintf("%s/api/gen/%s/convert_wav/", c.baseURL, clipID)
	if err := c.http.PostJSON(ctx, u, nil, nil); err != nil {
		return c.mapErr(err)
	}
	return nil
}

// AwaitWAV polls the conversion status endpoint until a WAV URL appears or
// the deadline passes.
//
// A 404 means the file is not ready yet and polling continues. Any other
// HTTP status failure aborts the poll and is returned; transient network
// errors keep the loop alive until the deadline.
func (c *Client) AwaitWAV(ctx context.Context, clipID string) (string, error) {
	return c.awaitWAV(ctx, clipID, c.wavTimeout, c.wavInterval)
}

func (c *Client) awaitWAV(ctx context.Context, clipID string, timeout, interval time.Duration) (string, error) {
	u := fmt.Sprintf("%s/api/gen/%s/wav_file/", c.baseURL, clipID)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		body, err := c.http.Get(ctx, u)
		switch {
		case err == nil:
			var payload any
			if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil {
				if wavURL := FindWAVURL(payload); wavURL != "" {
					return wavURL, nil
				}
			}
		case isStatus(err, 404):
			// Not ready yet.
		case isStatus(err, 401):
			return "", ErrTokenExpired
		case ctx.Err() != nil:
			return "", ctx.Err()
		case isStatusError(err):
			// The service answered definitively; waiting will not help.
			return "", fmt.Errorf("wav conversion status: %w", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}

	return "", ErrConversionTimeout
}

// FindWAVURL searches decoded JSON for a WAV stream URL.
//
// Known key names are preferred; failing those, any string value that looks
// like an http(s) URL ending in a .wav path is accepted. The search
// descends into nested objects and arrays, matching the loosely specified
// response shapes of the conversion endpoints.
func FindWAVURL(data any) string {
	switch v := data.(type) {
	case string:
		if isWAVURL(v) {
			return v
		}
	case map[string]any:
		for _, key := range wavURLKeys {
			if s, ok := v[key].(string); ok && isWAVURL(s) {
				return s
			}
		}
		for _, value := range v {
			if found := FindWAVURL(value); found != "" {
				return found
			}
		}
	case []any:
		for _, entry := range v {
			if found := FindWAVURL(entry); found != "" {
				return found
			}
		}
	}
	return ""
}

func isWAVURL(s string) bool {
	lowered := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lowered, "http") && strings.Contains(lowered, ".wav")
}
