package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/scriptcast/internal/audio"
	"github.com/example/scriptcast/internal/resource"
	"github.com/example/scriptcast/internal/server"
	"github.com/example/scriptcast/internal/testutil"
	"github.com/example/scriptcast/internal/tts"
)

// stubPipeline implements server.Pipeline for tests.
type stubPipeline struct {
	result *tts.Result
	err    error
	got    tts.GenerateRequest
}

func (p *stubPipeline) Generate(_ context.Context, req tts.GenerateRequest) (*tts.Result, error) {
	p.got = req
	return p.result, p.err
}

func testWAV(tb testing.TB, samples int) []byte {
	tb.Helper()

	data, err := audio.EncodeWAVFromPCM16(make([]int16, samples), audio.ExpectedSampleRate, audio.ExpectedChannels)
	if err != nil {
		tb.Fatalf("encode fixture: %v", err)
	}

	return data
}

func newTestHandler(p server.Pipeline, store *resource.Store) http.Handler {
	return server.NewHandler(p, store)
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := newTestHandler(&stubPipeline{}, resource.NewStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}

	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

// ---------------------------------------------------------------------------
// POST /generate
// ---------------------------------------------------------------------------

func postGenerate(t *testing.T, h http.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader(body))
	h.ServeHTTP(rec, req)

	return rec
}

func TestGenerate_BindsResourceAndReturnsURL(t *testing.T) {
	wav := testWAV(t, 2400)
	pipeline := &stubPipeline{result: &tts.Result{
		Transcript: "hello world",
		WAV:        wav,
		SampleRate: 24000,
		Duration:   100 * time.Millisecond,
	}}
	store := resource.NewStore()
	h := newTestHandler(pipeline, store)

	rec := postGenerate(t, h, map[string]string{"topic": "greetings", "voice": "narrator"})

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		ID         string `json:"id"`
		URL        string `json:"url"`
		Transcript string `json:"transcript"`
		DurationMS int64  `json:"duration_ms"`
		Bytes      int    `json:"bytes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if resp.ID == "" {
		t.Fatal("want non-empty resource id")
	}
	if resp.URL != "/audio/"+resp.ID {
		t.Errorf("url %q, want /audio/%s", resp.URL, resp.ID)
	}
	if resp.Transcript != "hello world" {
		t.Errorf("transcript %q", resp.Transcript)
	}
	if resp.DurationMS != 100 {
		t.Errorf("duration_ms %d, want 100", resp.DurationMS)
	}
	if resp.Bytes != len(wav) {
		t.Errorf("bytes %d, want %d", resp.Bytes, len(wav))
	}

	if pipeline.got.Topic != "greetings" || pipeline.got.Voice != "narrator" {
		t.Errorf("pipeline request %+v", pipeline.got)
	}

	// The bound resource serves the exact container bytes.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.URL, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("audio fetch: want 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("content type %q, want audio/wav", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), wav) {
		t.Error("served bytes differ from the encoded container")
	}
	testutil.AssertValidWAV(t, rec.Body.Bytes())
}

func TestGenerate_RequiresTextOrTopic(t *testing.T) {
	h := newTestHandler(&stubPipeline{}, resource.NewStore())

	rec := postGenerate(t, h, map[string]string{"voice": "narrator"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestGenerate_RejectsOversizedInput(t *testing.T) {
	h := server.NewHandler(&stubPipeline{}, resource.NewStore(), server.WithMaxTextBytes(8))

	rec := postGenerate(t, h, map[string]string{"text": "much longer than eight bytes"})

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d", rec.Code)
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubPipeline{}, resource.NewStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", rec.Code)
	}
}

func TestGenerate_UpstreamFailuresMapToBadGateway(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing audio payload", tts.ErrNoAudio, http.StatusBadGateway},
		{"malformed transport payload", audio.ErrTransportDecode, http.StatusBadGateway},
		{"contract violation", audio.ErrPCMContract, http.StatusInternalServerError},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(&stubPipeline{err: tc.err}, resource.NewStore())

			rec := postGenerate(t, h, map[string]string{"text": "x"})

			if rec.Code != tc.want {
				t.Errorf("want %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestGenerate_NoResourceBoundOnFailure(t *testing.T) {
	store := resource.NewStore()
	h := newTestHandler(&stubPipeline{err: tts.ErrNoAudio}, store)

	postGenerate(t, h, map[string]string{"text": "x"})

	if store.Len() != 0 {
		t.Errorf("store holds %d resources after failure, want 0", store.Len())
	}
}

// ---------------------------------------------------------------------------
// GET/DELETE /audio/{id}
// ---------------------------------------------------------------------------

func TestAudio_UnknownHandleIs404(t *testing.T) {
	h := newTestHandler(&stubPipeline{}, resource.NewStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/no-such-id", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", rec.Code)
	}
}

func TestAudio_DeleteReleasesHandle(t *testing.T) {
	store := resource.NewStore()
	handle := store.Bind(testWAV(t, 10), audio.MimeTypeWAV)
	h := newTestHandler(&stubPipeline{}, store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/audio/"+handle.ID, nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Error("handle still live after DELETE")
	}

	// Released handles are gone for good.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/"+handle.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("want 404 after release, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/audio/"+handle.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("want 404 for double release, got %d", rec.Code)
	}
}

func TestAudio_MethodNotAllowed(t *testing.T) {
	store := resource.NewStore()
	handle := store.Bind(testWAV(t, 10), audio.MimeTypeWAV)
	h := newTestHandler(&stubPipeline{}, store)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/audio/"+handle.ID, nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// ParseLogLevel
// ---------------------------------------------------------------------------

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"debug", false},
		{"INFO", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"verbose", true},
	}

	for _, tc := range cases {
		_, err := server.ParseLogLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
}
