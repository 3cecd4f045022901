package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/scriptcast/internal/audio"
	"github.com/example/scriptcast/internal/script"
)

// GenerateRequest describes one script-to-audio conversion. Either Text is
// supplied directly or Topic is expanded through the script generator first.
type GenerateRequest struct {
	Topic     string
	Text      string
	Voice     string
	FadeInMS  float64
	FadeOutMS float64
}

// Result is a finished conversion. WAV holds the complete container bytes;
// nothing partial is ever returned.
type Result struct {
	Transcript string
	WAV        []byte
	SampleRate int
	Duration   time.Duration
}

// Service chains script generation, remote synthesis, transport decoding,
// and container encoding. All stages after the two remote calls are pure,
// synchronous transforms on in-memory buffers.
type Service struct {
	scripts script.Generator
	speech  Client
}

// NewService wires the pipeline. scripts may be nil when callers always
// supply pre-written text.
func NewService(scripts script.Generator, speech Client) (*Service, error) {
	if speech == nil {
		return nil, fmt.Errorf("tts: speech client must not be nil")
	}

	return &Service{scripts: scripts, speech: speech}, nil
}

// Generate runs the full pipeline for one request. Failures of any stage
// bubble up unchanged; a non-nil Result always carries a playable container.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	transcript := strings.TrimSpace(req.Text)
	if transcript == "" {
		if s.scripts == nil {
			return nil, fmt.Errorf("tts: no text given and no script generator configured")
		}
		generated, err := s.scripts.GenerateScript(ctx, req.Topic)
		if err != nil {
			return nil, fmt.Errorf("generate script: %w", err)
		}
		transcript = generated
	}

	speech, err := s.speech.Synthesize(ctx, transcript, req.Voice)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	raw, err := audio.DecodeTransport(speech.Audio)
	if err != nil {
		return nil, err
	}

	sampleRate := speech.SampleRate
	if sampleRate == 0 {
		sampleRate = audio.ExpectedSampleRate
	}

	// Some services hand back a finished container instead of raw PCM.
	// Validate it and pass the bytes through untouched.
	if speech.MimeType == audio.MimeTypeWAV {
		if err := audio.ValidateWAV(raw); err != nil {
			return nil, fmt.Errorf("service returned WAV: %w", err)
		}
		payload, err := audio.PCMPayload(raw)
		if err != nil {
			return nil, fmt.Errorf("service returned WAV: %w", err)
		}
		pcm, err := audio.SamplesFromBytes(payload)
		if err != nil {
			return nil, err
		}
		return newResult(transcript, raw, pcm, sampleRate), nil
	}

	pcm, err := audio.SamplesFromBytes(raw)
	if err != nil {
		return nil, err
	}

	var wav []byte
	if hooks := buildHooks(sampleRate, req); len(hooks) > 0 {
		samples := audio.ApplyHooks(audio.Normalize(pcm), hooks...)
		wav, err = audio.EncodeWAVPCM16(samples, sampleRate)
	} else {
		wav, err = audio.EncodeWAVFromPCM16(pcm, sampleRate, audio.ExpectedChannels)
	}
	if err != nil {
		return nil, fmt.Errorf("encode container: %w", err)
	}

	return newResult(transcript, wav, pcm, sampleRate), nil
}

func newResult(transcript string, wav []byte, pcm []int16, sampleRate int) *Result {
	return &Result{
		Transcript: transcript,
		WAV:        wav,
		SampleRate: sampleRate,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sampleRate),
	}
}

func buildHooks(sampleRate int, req GenerateRequest) []audio.Hook {
	var hooks []audio.Hook
	if req.FadeInMS > 0 {
		hooks = append(hooks, audio.FadeIn(sampleRate, req.FadeInMS))
	}
	if req.FadeOutMS > 0 {
		hooks = append(hooks, audio.FadeOut(sampleRate, req.FadeOutMS))
	}

	return hooks
}
