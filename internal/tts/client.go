// Package tts talks to the remote speech-synthesis service and runs the
// transcript-to-WAV pipeline on its responses.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/example/scriptcast/internal/audio"
)

// ErrNoAudio is returned when the service response carries no audio payload.
var ErrNoAudio = errors.New("no audio data returned")

// SpeechResult is one synthesis response. Audio is the transport-encoded
// (base64) PCM payload exactly as the service returned it; decoding happens
// in the pipeline so a malformed payload surfaces as a transport error, not
// a client error.
type SpeechResult struct {
	Audio      string
	MimeType   string
	SampleRate int
}

// Client is the abstraction over the remote speech-synthesis service.
// One request, one response; implementations honour ctx for cancellation.
type Client interface {
	Synthesize(ctx context.Context, text, voice string) (*SpeechResult, error)
}

// HTTPClient implements Client against a JSON-over-HTTP synthesis endpoint.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPDoer overrides the underlying *http.Client.
func WithHTTPDoer(c *http.Client) ClientOption {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithAPIKey attaches a bearer token to every request.
func WithAPIKey(key string) ClientOption {
	return func(h *HTTPClient) {
		h.apiKey = key
	}
}

// NewHTTPClient creates a Client for the synthesis service at endpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("tts: endpoint must not be empty")
	}

	h := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{},
	}
	for _, o := range opts {
		o(h)
	}

	return h, nil
}

type synthesisRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice,omitempty"`
	SampleRate int    `json:"sample_rate"`
}

type synthesisResponse struct {
	Audio      string `json:"audio"`
	MimeType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate"`
}

// Synthesize posts the text to the service and returns its transport-encoded
// PCM payload. A response without an audio field fails with ErrNoAudio; no
// retry is attempted.
func (h *HTTPClient) Synthesize(ctx context.Context, text, voice string) (*SpeechResult, error) {
	body, err := json.Marshal(synthesisRequest{
		Text:       text,
		Voice:      voice,
		SampleRate: audio.ExpectedSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts: service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out synthesisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tts: decode response: %w", err)
	}

	if out.Audio == "" {
		return nil, ErrNoAudio
	}

	return &SpeechResult{
		Audio:      out.Audio,
		MimeType:   out.MimeType,
		SampleRate: out.SampleRate,
	}, nil
}
