package audio

import (
	"fmt"
	"io"

	"github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

// EncodeWAV encodes float32 samples as mono 16-bit PCM WAV bytes using the
// wav library encoder. It is the cross-check counterpart to the
// hand-assembled EncodeWAVFromPCM16 path; both produce the same minimal
// 44-byte header for a given sample count.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrPCMContract, sampleRate)
	}

	// The encoder seeks back to patch size fields on Close, so it needs an
	// io.WriteSeeker rather than a plain buffer.
	sink := &sliceWriteSeeker{}

	enc := wav.NewEncoder(sink, sampleRate, ExpectedBitDepth, ExpectedChannels, 1) // 1 = PCM

	pcmBuf := &goaudio.Float32Buffer{
		Data:           samples,
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: ExpectedChannels},
		SourceBitDepth: ExpectedBitDepth,
	}

	if err := enc.Write(pcmBuf); err != nil {
		return nil, fmt.Errorf("writing PCM: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}

	return sink.data, nil
}

// sliceWriteSeeker is an in-memory io.WriteSeeker over a growing byte slice.
type sliceWriteSeeker struct {
	data []byte
	pos  int
}

func (s *sliceWriteSeeker) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.data) {
		s.data = append(s.data, make([]byte, end-len(s.data))...)
	}

	n := copy(s.data[s.pos:], p)
	s.pos += n

	return n, nil
}

func (s *sliceWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int
	switch whence {
	case io.SeekStart:
		pos = int(offset)
	case io.SeekCurrent:
		pos = s.pos + int(offset)
	case io.SeekEnd:
		pos = len(s.data) + int(offset)
	default:
		return 0, fmt.Errorf("invalid seek whence %d", whence)
	}

	if pos < 0 {
		return 0, fmt.Errorf("seek position %d before start", pos)
	}
	s.pos = pos

	return int64(pos), nil
}
