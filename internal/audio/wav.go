package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bogem/id3v2"
	"github.com/mwinther/suno-downloader/internal/model"
)

// ErrNotWAV is returned when a file does not start with a RIFF/WAVE header.
var ErrNotWAV = errors.New("not a RIFF/WAVE file")

const (
	riffHeaderLen = 12
	chunkID3      = "id3 "
	chunkFmt      = "fmt "
	chunkData     = "data"
)

// SaveWAVTags writes ID3 tags into a WAV file.
//
// WAV has no native ID3 support, so the serialized tag is stored in a
// RIFF "id3 " chunk, the convention most tag readers understand. An
// existing "id3 " chunk is replaced, otherwise the chunk is appended and
// the RIFF size header updated.
func (t *Tagger) SaveWAVTags(path string, clip *model.Clip, artwork []byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tag := id3v2.NewEmptyTag()
	if existing, err := readWAVChunk(data, chunkID3); err == nil {
		if parsed, err := id3v2.ParseReader(bytes.NewReader(existing), id3v2.Options{Parse: true}); err == nil {
			tag = parsed
		}
	}

	t.ApplyTags(tag, clip, artwork)

	return WriteWAVTag(path, tag)
}

// WriteWAVTag stores an already-built tag in a WAV file's "id3 " chunk,
// replacing any existing one.
func WriteWAVTag(path string, tag *id3v2.Tag) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize tag: %w", err)
	}

	out, err := replaceWAVChunk(data, chunkID3, buf.Bytes())
	if err != nil {
		return err
	}

	return os.WriteFile(path, out, 0644)
}

// ReadWAVClipID extracts the generation UUID stored in a WAV file's
// "id3 " chunk. Returns an empty string when the file carries none.
func ReadWAVClipID(path string) (string, error) {
	tag, err := ReadWAVTags(path)
	if err != nil || tag == nil {
		return "", err
	}
	return ClipID(tag), nil
}

// ReadWAVTags parses the ID3 tag stored in a WAV file. Returns a nil tag
// when the file has no "id3 " chunk.
func ReadWAVTags(path string) (*id3v2.Tag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	chunk, err := readWAVChunk(data, chunkID3)
	if err != nil {
		if errors.Is(err, errChunkNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tag, err := id3v2.ParseReader(bytes.NewReader(chunk), id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("parse tag chunk of %s: %w", path, err)
	}
	return tag, nil
}

var errChunkNotFound = errors.New("chunk not found")

func checkRIFF(data []byte) error {
	if len(data) < riffHeaderLen ||
		string(data[0:4]) != "RIFF" ||
		string(data[8:12]) != "WAVE" {
		return ErrNotWAV
	}
	return nil
}

// readWAVChunk walks the RIFF chunk list and returns the payload of the
// first chunk with the given id.
func readWAVChunk(data []byte, id string) ([]byte, error) {
	if err := checkRIFF(data); err != nil {
		return nil, err
	}

	offset := riffHeaderLen
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		start := offset + 8
		if start+size > len(data) {
			size = len(data) - start
		}
		if chunkID == id {
			return data[start : start+size], nil
		}
		// Chunks are word aligned.
		offset = start + size + size%2
	}

	return nil, errChunkNotFound
}

// replaceWAVChunk returns a copy of the file with the given chunk replaced
// (or appended) and the RIFF size header corrected.
func replaceWAVChunk(data []byte, id string, payload []byte) ([]byte, error) {
	if err := checkRIFF(data); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(data[0:riffHeaderLen])

	replaced := false
	offset := riffHeaderLen
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		start := offset + 8
		if start+size > len(data) {
			size = len(data) - start
		}

		if chunkID == id {
			writeChunk(&out, id, payload)
			replaced = true
		} else {
			end := start + size + size%2
			if end > len(data) {
				end = len(data)
			}
			out.Write(data[offset:end])
		}
		offset = start + size + size%2
	}

	if !replaced {
		writeChunk(&out, id, payload)
	}

	result := out.Bytes()
	binary.LittleEndian.PutUint32(result[4:8], uint32(len(result)-8))
	return result, nil
}

func writeChunk(w *bytes.Buffer, id string, payload []byte) {
	w.WriteString(id)
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
	w.Write(sizeBuf[:])
	w.Write(payload)
	if len(payload)%2 == 1 {
		w.WriteByte(0)
	}
}

// WAVDuration reads a WAV file's fmt and data chunks and computes the
// playing time in seconds. Returns 0 when the file cannot be parsed.
func WAVDuration(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	// fmt and data chunks come early, the head of the file is enough.
	head := make([]byte, 64*1024)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0
	}
	head = head[:n]

	fmtChunk, err := readWAVChunk(head, chunkFmt)
	if err != nil || len(fmtChunk) < 16 {
		return 0
	}
	byteRate := binary.LittleEndian.Uint32(fmtChunk[8:12])
	if byteRate == 0 {
		return 0
	}

	dataSize := wavDataSize(head)
	if dataSize == 0 {
		return 0
	}

	return float64(dataSize) / float64(byteRate)
}

// wavDataSize returns the declared size of the data chunk. Only the chunk
// header is needed, the payload itself is not read.
func wavDataSize(data []byte) int {
	if checkRIFF(data) != nil {
		return 0
	}

	offset := riffHeaderLen
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		if chunkID == chunkData {
			return size
		}
		offset += 8 + size + size%2
	}
	return 0
}
