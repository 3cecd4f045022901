package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cwbudde/wav"
)

// Expected WAV format for scriptcast output. The remote speech service
// returns raw PCM at this rate; everything downstream assumes it.
const (
	ExpectedSampleRate = 24000
	ExpectedChannels   = 1
	ExpectedBitDepth   = 16
)

// MimeTypeWAV is the MIME type declared on every bound audio resource.
const MimeTypeWAV = "audio/wav"

// ErrFormatMismatch is returned when a decoded WAV does not match the
// expected 24000 Hz mono 16-bit PCM format.
var ErrFormatMismatch = errors.New("WAV format mismatch")

// DecodeWAV parses WAV bytes and returns the normalized float32 samples.
// Containers that are not 24000 Hz mono 16-bit PCM are rejected with an
// error wrapping ErrFormatMismatch.
func DecodeWAV(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, errors.New("empty WAV input")
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	if err := checkFormat(dec); err != nil {
		return nil, err
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	return buf.Data, nil
}

// ValidateWAV checks the container format without materializing samples.
func ValidateWAV(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty WAV input")
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return errors.New("invalid WAV file")
	}

	return checkFormat(dec)
}

// PCMPayload walks the chunk list of a WAV container and returns the raw
// bytes of its data chunk. Metadata chunks such as LIST or an extended fmt
// chunk may precede the data chunk, so the payload cannot be assumed to
// start at a fixed offset.
func PCMPayload(data []byte) ([]byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE container", ErrFormatMismatch)
	}

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))

		if id == "data" {
			if offset+8+size > len(data) {
				return nil, fmt.Errorf("%w: data chunk declares %d bytes, %d available",
					ErrFormatMismatch, size, len(data)-offset-8)
			}
			return data[offset+8 : offset+8+size], nil
		}

		offset += 8 + size
		// Chunks are padded to an even boundary.
		if size%2 != 0 {
			offset++
		}
	}

	return nil, fmt.Errorf("%w: no data chunk", ErrFormatMismatch)
}

func checkFormat(dec *wav.Decoder) error {
	if dec.SampleRate != ExpectedSampleRate {
		return fmt.Errorf("%w: sample rate %d, want %d", ErrFormatMismatch, dec.SampleRate, ExpectedSampleRate)
	}
	if dec.NumChans != ExpectedChannels {
		return fmt.Errorf("%w: channels %d, want %d", ErrFormatMismatch, dec.NumChans, ExpectedChannels)
	}
	if dec.BitDepth != ExpectedBitDepth {
		return fmt.Errorf("%w: bit depth %d, want %d", ErrFormatMismatch, dec.BitDepth, ExpectedBitDepth)
	}

	return nil
}
