package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the fixed byte length of the RIFF/fmt/data header that
// precedes the PCM payload in every container this package produces.
const HeaderSize = 44

// EncodeWAVFromPCM16 serializes signed 16-bit samples into an uncompressed
// PCM WAV container: a 44-byte header followed by the little-endian payload.
// Every length field declared in the header equals the payload length
// actually written. This is the lossless path; the sample bytes pass through
// untouched.
func EncodeWAVFromPCM16(pcm []int16, sampleRate, channels int) ([]byte, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcm) * 2
	riffSize := 36 + dataSize

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+dataSize))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	for _, s := range pcm {
		_ = binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes(), nil
}

// EncodeWAVPCM16 re-quantizes normalized float samples to int16 and wraps
// them in a mono WAV container. Used after DSP hooks have run; the lossless
// passthrough path is EncodeWAVFromPCM16.
func EncodeWAVPCM16(samples []float32, sampleRate int) ([]byte, error) {
	return EncodeWAVFromPCM16(Requantize(samples), sampleRate, ExpectedChannels)
}

// Requantize converts normalized float samples back to int16. Each sample is
// clamped to [-1, 1]; negative values scale by 32768 and non-negative values
// by 32767, truncating toward zero with no dithering. The asymmetry mirrors
// Normalize and is preserved bit-for-bit rather than replaced with a
// symmetric scheme.
func Requantize(samples []float32) []int16 {
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		clamped := math.Max(-1.0, math.Min(1.0, float64(s)))
		if clamped < 0 {
			pcm[i] = int16(clamped * 32768)
		} else {
			pcm[i] = int16(clamped * 32767)
		}
	}

	return pcm
}
