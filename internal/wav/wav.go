// Package wav unwraps and wraps RIFF/WAVE containers around raw PCM audio.
//
// The TTS servers this plugin talks to return whole WAV files in the HTTP
// response body. Demux extracts the sample rate and the raw PCM payload from
// such a buffer without ever failing: malformed, truncated, or unrecognized
// input degrades to documented fallback values instead of an error, because
// for best-effort audio extraction a wrong guess beats dropping the clip.
package wav

import (
	"bytes"
	"encoding/binary"
)

// FallbackSampleRate is assumed whenever a buffer carries no readable rate.
// 24 kHz is the default output rate of OpenAI-compatible TTS servers.
const FallbackSampleRate = 24000

// headerLen is the canonical minimal WAV header length: 12-byte RIFF
// descriptor, 24-byte fmt chunk, 8-byte data chunk header.
const headerLen = 44

// ReadSampleRate reads the sample rate from the fixed offset of a canonical
// minimal WAV header (bytes 24..27, little-endian), without walking the chunk
// stream. It is the fallback used when Demux finds no data chunk. A buffer
// too short to hold the field, or one not starting with "RIFF", yields
// FallbackSampleRate.
func ReadSampleRate(buf []byte) int {
	if len(buf) < 28 || string(buf[:4]) != "RIFF" {
		return FallbackSampleRate
	}
	return int(binary.LittleEndian.Uint32(buf[24:28]))
}

// Demux walks the RIFF chunk stream in buf and returns the data chunk's
// payload together with the sample rate read from the fmt chunk. The
// returned slice aliases buf; nothing is copied.
//
// Demux never fails. A data chunk whose declared size runs past the end of
// buf is truncated to what is actually there. When no data chunk exists at
// all, the payload falls back to everything after the canonical 44-byte
// header and the rate to ReadSampleRate(buf).
//
// A data chunk encountered before any fmt chunk returns FallbackSampleRate.
// Real encoders always write fmt first, so the case is unobservable in
// practice; the behavior is kept literal rather than reordering the scan.
func Demux(buf []byte) (pcm []byte, sampleRate int) {
	sampleRate = FallbackSampleRate

	// Skip the 12-byte "RIFF <size> WAVE" descriptor. Its declared total
	// size is not trusted.
	cursor := 12
	for cursor < len(buf)-8 {
		id := string(buf[cursor : cursor+4])
		size := int(binary.LittleEndian.Uint32(buf[cursor+4 : cursor+8]))

		switch id {
		case "fmt ":
			// The rate sits 4 bytes into the fmt payload, offset 12 from the
			// chunk header. A truncated fmt chunk leaves the fallback in place.
			if cursor+16 <= len(buf) {
				sampleRate = int(binary.LittleEndian.Uint32(buf[cursor+12 : cursor+16]))
			}
		case "data":
			end := cursor + 8 + size
			if end > len(buf) {
				end = len(buf)
			}
			return buf[cursor+8 : end], sampleRate
		}

		// Unknown chunk ids (LIST, fact, metadata) are skipped by size.
		cursor += 8 + size
	}

	// No data chunk: assume a canonical header and hand back the rest.
	start := headerLen
	if start > len(buf) {
		start = len(buf)
	}
	return buf[start:], ReadSampleRate(buf)
}

// Encode wraps raw PCM samples in a canonical 44-byte WAV header, the
// inverse of Demux for well-formed minimal files.
func Encode(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	dataLen := len(pcm)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := &bytes.Buffer{}
	buf.Grow(headerLen + dataLen)

	// RIFF descriptor
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16)) // fmt payload size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM format tag
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}
