package audio

import (
	"errors"
	"io"
	"os"
)

// Bitrate tables in kbit/s for Layer III, indexed by the frame header's
// bitrate field.
var (
	mpeg1Bitrates = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	mpeg2Bitrates = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
)

// MP3Duration estimates an MP3 file's playing time in seconds from the
// bitrate of its first audio frame and the file size. Accurate for
// constant-bitrate files, an approximation for VBR. Returns 0 when no
// frame header can be found.
func MP3Duration(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0
	}

	head := make([]byte, 32*1024)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0
	}
	head = head[:n]

	audioStart := skipID3(head)
	bitrate := findFrameBitrate(head[audioStart:])
	if bitrate == 0 {
		return 0
	}

	audioBytes := info.Size() - int64(audioStart)
	if audioBytes <= 0 {
		return 0
	}

	return float64(audioBytes) * 8 / float64(bitrate*1000)
}

// skipID3 returns the offset of the first byte after an ID3v2 tag, or 0
// when the file starts with audio data.
func skipID3(data []byte) int {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return 0
	}
	// Synchsafe 28-bit tag size, header excluded.
	size := int(data[6]&0x7f)<<21 | int(data[7]&0x7f)<<14 |
		int(data[8]&0x7f)<<7 | int(data[9]&0x7f)
	if 10+size > len(data) {
		return len(data)
	}
	return 10 + size
}

// findFrameBitrate scans for the first MPEG audio frame sync and decodes
// its bitrate in kbit/s.
func findFrameBitrate(data []byte) int {
	for i := 0; i+4 <= len(data); i++ {
		if data[i] != 0xff || data[i+1]&0xe0 != 0xe0 {
			continue
		}

		version := data[i+1] >> 3 & 0x03
		layer := data[i+1] >> 1 & 0x03
		index := data[i+2] >> 4
		if version == 1 || layer == 0 || index == 0 || index == 15 {
			continue
		}

		if version == 3 { // MPEG 1
			return mpeg1Bitrates[index]
		}
		return mpeg2Bitrates[index]
	}
	return 0
}
