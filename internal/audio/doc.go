// Package audio provides audio file manipulation services including
// ID3 tag writing for MP3 and WAV files and duration probing.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to downloaded files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, clip, artworkBytes)
//
// The tagger supports:
//   - Artist, Title, Genre, Year
//   - Generation prompt (comment)
//   - Lyrics
//   - Clip UUID (used for duplicate detection)
//   - Cover Art (embedded)
//
// WAV files have no native ID3 support; SaveWAVTags stores the same
// tag inside a RIFF "id3 " chunk:
//
//	err := tagger.SaveWAVTags(path, clip, artworkBytes)
//
// # Duration Probing
//
// WAVDuration and MP3Duration read just enough of a file to compute or
// estimate its playing time, used when building library listings:
//
//	seconds := audio.WAVDuration("/music/2025-07/Song.wav")
package audio
