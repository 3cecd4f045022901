package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/scriptcast/internal/audio"
	"github.com/example/scriptcast/internal/config"
	"github.com/example/scriptcast/internal/resource"
	"github.com/example/scriptcast/internal/tts"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Pipeline runs one script-to-audio conversion.
type Pipeline interface {
	Generate(ctx context.Context, req tts.GenerateRequest) (*tts.Result, error)
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   4096,
		workers:        2,
		requestTimeout: 60 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text/topic length in bytes for
// POST /generate.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent pipeline runs.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request pipeline deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	pipeline Pipeline
	store    *resource.Store
	opts     options
	sem      chan struct{} // semaphore for worker pool
	log      *slog.Logger
}

// NewHandler returns an http.Handler serving /health, POST /generate, and
// GET|DELETE /audio/{id}.
func NewHandler(pipeline Pipeline, store *resource.Store, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		pipeline: pipeline,
		store:    store,
		opts:     opts,
		log:      opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/generate", h.handleGenerate)
	mux.HandleFunc("/audio/", h.handleAudio)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type generateRequest struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type generateResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Transcript string `json:"transcript"`
	DurationMS int64  `json:"duration_ms"`
	Bytes      int    `json:"bytes"`
	SampleRate int    `json:"sample_rate"`
}

func (h *handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" && req.Topic == "" {
		writeError(w, http.StatusBadRequest, "text or topic field is required")
		return
	}

	if len(req.Text) > h.opts.maxTextBytes || len(req.Topic) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("input exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	// Acquire a worker slot — honour context cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	// Apply per-request timeout.
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	result, err := h.pipeline.Generate(ctx, tts.GenerateRequest{
		Topic: req.Topic,
		Text:  req.Text,
		Voice: req.Voice,
	})
	elapsedMS := time.Since(start).Milliseconds()

	if err != nil {
		status := statusForError(err)
		h.log.ErrorContext(r.Context(), "generation failed",
			slog.String("voice", req.Voice),
			slog.Int("text_len", len(req.Text)+len(req.Topic)),
			slog.Int64("elapsed_ms", elapsedMS),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		writeError(w, status, err.Error())
		return
	}

	handle := h.store.Bind(result.WAV, audio.MimeTypeWAV)

	h.log.InfoContext(r.Context(), "generation complete",
		slog.String("voice", req.Voice),
		slog.String("handle", handle.ID),
		slog.Int64("elapsed_ms", elapsedMS),
		slog.Int64("audio_ms", result.Duration.Milliseconds()),
		slog.Int("wav_bytes", len(result.WAV)),
	)

	writeJSON(w, http.StatusOK, generateResponse{
		ID:         handle.ID,
		URL:        "/audio/" + handle.ID,
		Transcript: result.Transcript,
		DurationMS: result.Duration.Milliseconds(),
		Bytes:      len(result.WAV),
		SampleRate: result.SampleRate,
	})
}

// statusForError maps pipeline failures onto HTTP statuses. Upstream service
// faults surface as 502, contract violations and everything unexpected as
// 500, timeouts as 504.
func statusForError(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	case errors.Is(err, tts.ErrNoAudio), errors.Is(err, audio.ErrTransportDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/audio/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "unknown audio resource")
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		data, mime, ok := h.store.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown audio resource")
			return
		}
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	case http.MethodDelete:
		if !h.store.Release(id) {
			writeError(w, http.StatusNotFound, "unknown audio resource")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	pipeline        Pipeline
	store           *resource.Store
	shutdownTimeout time.Duration
}

func New(cfg config.Config, pipeline Pipeline) *Server {
	return &Server{
		cfg:             cfg,
		pipeline:        pipeline,
		store:           resource.NewStore(),
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	handlerOpts := []Option{
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout) * time.Second),
	}

	h := NewHandler(s.pipeline, s.store, handlerOpts...)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		// Bound resources die with the process; release them anyway so a
		// reused Server starts clean.
		s.store.ReleaseAll()
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
