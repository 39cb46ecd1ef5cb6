package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/google/uuid"

	"github.com/mwinther/suno-downloader/internal/audio"
)

// Library provides access to the downloaded files in the output directory.
//
// A Library walks the directory tree, reads each file's embedded tags and
// exposes the result as entries for browsing, duplicate detection and
// playlist generation. An optional Cache avoids re-reading unchanged files.
type Library struct {
	dir   string
	cache *Cache
}

// New creates a Library over the given directory. cache may be nil, in
// which case every file is probed on every scan.
func New(dir string, cache *Cache) *Library {
	return &Library{dir: dir, cache: cache}
}

// Dir returns the library's root directory.
func (l *Library) Dir() string {
	return l.dir
}

// Entries walks the library directory and returns an entry per audio
// file, sorted by path. Files that cannot be read are skipped.
func (l *Library) Entries() ([]*Entry, error) {
	var entries []*Entry

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isAudioFile(path) {
			return nil
		}

		entry, err := l.probe(path)
		if err != nil {
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	l.applyUserTags(entries)

	return entries, nil
}

// applyUserTags overlays the locally stored tags onto scanned entries.
func (l *Library) applyUserTags(entries []*Entry) {
	if l.cache == nil {
		return
	}
	tags, err := l.cache.AllUserTags()
	if err != nil || len(tags) == 0 {
		return
	}
	for _, entry := range entries {
		if t, ok := tags[entry.ClipID]; ok && entry.ClipID != "" {
			entry.UserTags = t
		}
	}
}

// SetUserTags persists locally applied tags for an entry's clip.
func (l *Library) SetUserTags(entry *Entry, tags UserTags) error {
	if entry.ClipID == "" {
		return fmt.Errorf("file %s carries no clip ID", entry.Path)
	}
	if l.cache == nil {
		return fmt.Errorf("no metadata cache configured")
	}
	if err := l.cache.SetUserTags(entry.ClipID, tags); err != nil {
		return err
	}
	entry.UserTags = tags
	return nil
}

// ClipIDs returns the set of generation UUIDs present in the library,
// mapped to their file paths. Files without a valid UUID tag are ignored.
func (l *Library) ClipIDs() (map[string]string, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.ClipID == "" {
			continue
		}
		if uuid.Validate(entry.ClipID) != nil {
			continue
		}
		ids[entry.ClipID] = entry.Path
	}

	return ids, nil
}

// probe builds an entry for a single file, consulting the cache first.
func (l *Library) probe(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		cached, err := l.cache.Get(path, info.Size(), info.ModTime())
		if err == nil && cached != nil {
			cached.HasLyrics = fileExists(lyricsPath(path))
			return cached, nil
		}
	}

	entry := &Entry{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		entry.Duration = audio.MP3Duration(path)
		if id, err := audio.ReadClipID(path); err == nil {
			entry.ClipID = id
		}
		l.fillMP3Tags(entry)
	case ".wav":
		entry.Duration = audio.WAVDuration(path)
		if tag, err := audio.ReadWAVTags(path); err == nil && tag != nil {
			entry.ClipID = audio.ClipID(tag)
			entry.Title = tag.Title()
			entry.Artist = tag.Artist()
		}
	}

	if entry.Title == "" {
		entry.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	entry.HasLyrics = fileExists(lyricsPath(path))

	if l.cache != nil {
		// Cache failures only cost a re-probe next time.
		_ = l.cache.Put(entry)
	}

	return entry, nil
}

func (l *Library) fillMP3Tags(entry *Entry) {
	tag, err := openMP3Tag(entry.Path)
	if err != nil || tag == nil {
		return
	}
	defer tag.Close()

	entry.Title = tag.Title()
	entry.Artist = tag.Artist()
}

// Lyrics returns the lyrics for an entry. A sidecar text file next to
// the audio file takes precedence over the embedded USLT frame.
func (l *Library) Lyrics(entry *Entry) (string, error) {
	sidecar := lyricsPath(entry.Path)
	if data, err := os.ReadFile(sidecar); err == nil {
		return string(data), nil
	}

	switch strings.ToLower(filepath.Ext(entry.Path)) {
	case ".mp3":
		tag, err := openMP3Tag(entry.Path)
		if err != nil || tag == nil {
			return "", err
		}
		defer tag.Close()
		return taggedLyrics(tag), nil
	case ".wav":
		tag, err := audio.ReadWAVTags(entry.Path)
		if err != nil || tag == nil {
			return "", err
		}
		return taggedLyrics(tag), nil
	}

	return "", nil
}

// SaveLyrics writes lyrics to the entry's sidecar text file and updates
// the embedded USLT frame to match.
func (l *Library) SaveLyrics(entry *Entry, text string) error {
	if err := os.WriteFile(lyricsPath(entry.Path), []byte(text), 0644); err != nil {
		return err
	}
	if err := embedLyrics(entry.Path, text); err != nil {
		return err
	}
	entry.HasLyrics = true
	return nil
}

// embedLyrics writes the USLT frame into the file's tag. Files whose
// format carries no tag are left alone.
func embedLyrics(path, text string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		tag, err := openMP3Tag(path)
		if err != nil {
			return err
		}
		defer tag.Close()
		setTaggedLyrics(tag, text)
		return tag.Save()
	case ".wav":
		tag, err := audio.ReadWAVTags(path)
		if err != nil {
			return err
		}
		if tag == nil {
			tag = id3v2.NewEmptyTag()
		}
		setTaggedLyrics(tag, text)
		return audio.WriteWAVTag(path, tag)
	}
	return nil
}

// lyricsPath returns the sidecar lyrics file path for an audio file.
func lyricsPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".txt"
}

func isAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
