package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docchat-dev/docchat/internal/config"
	"github.com/docchat-dev/docchat/internal/db"
	"github.com/docchat-dev/docchat/internal/embeddings"
	"github.com/docchat-dev/docchat/internal/llm"
	"github.com/docchat-dev/docchat/internal/pipeline"
	"github.com/docchat-dev/docchat/internal/session"
)

type stubEmbedder struct {
	dims int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, s.dims)
		for j, ch := range text {
			vec[(int(ch)+j)%s.dims] += 1.0
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range vec {
				vec[j] = float32(float64(vec[j]) / norm)
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dims }
func (s *stubEmbedder) Name() string    { return "stub" }

type stubProvider struct {
	content string
	err     error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content, Model: "stub"}, nil
}

func newTestServer(t *testing.T, provider llm.Provider) *Server {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	registry := embeddings.NewRegistry(func(_ embeddings.ModelSpec) (embeddings.Embedder, error) {
		return &stubEmbedder{dims: 32}, nil
	})

	answerer := pipeline.New(registry, provider, pipeline.Config{CacheIndexes: true})

	app := config.DefaultConfig()
	return New(Config{Port: 0, UploadDir: t.TempDir(), AllowAll: true}, app, answerer, session.NewStore(database))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "ok"})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func uploadFile(t *testing.T, srv *Server, name, content string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	fmt.Fprint(part, content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}
	if resp.FileID == "" {
		t.Fatal("upload response missing file_id")
	}
	return resp.FileID
}

func ask(t *testing.T, srv *Server, body askRequest) (askResponse, int) {
	t.Helper()

	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp askResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding ask response: %v", err)
		}
	}
	return resp, rec.Code
}

func TestUploadAndAsk(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "Paris is the capital of France."})

	fileID := uploadFile(t, srv, "facts.txt",
		"The capital of France is Paris.\n\nThe capital of Japan is Tokyo.")

	resp, code := ask(t, srv, askRequest{FileID: fileID, Question: "What is the capital of France?"})
	if code != http.StatusOK {
		t.Fatalf("ask status = %d", code)
	}
	if resp.Answer != "Paris is the capital of France." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.SessionID == "" {
		t.Error("ask response missing session_id")
	}
	if len(resp.Contexts) == 0 {
		t.Error("ask response missing contexts")
	}

	// A follow-up question with the same session id extends the transcript.
	resp2, code := ask(t, srv, askRequest{
		SessionID: resp.SessionID,
		FileID:    fileID,
		Question:  "And Japan?",
	})
	if code != http.StatusOK {
		t.Fatalf("follow-up ask status = %d", code)
	}
	if resp2.SessionID != resp.SessionID {
		t.Errorf("follow-up session = %q, want %q", resp2.SessionID, resp.SessionID)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+resp.SessionID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rec.Code)
	}
	var sessResp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sessResp); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}
	if len(sessResp.History) != 2 {
		t.Errorf("history length = %d, want 2", len(sessResp.History))
	}
}

func TestAskValidation(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "ok"})

	if _, code := ask(t, srv, askRequest{FileID: "x.txt"}); code != http.StatusBadRequest {
		t.Errorf("missing question status = %d, want %d", code, http.StatusBadRequest)
	}
	if _, code := ask(t, srv, askRequest{Question: "hi"}); code != http.StatusBadRequest {
		t.Errorf("missing file_id status = %d, want %d", code, http.StatusBadRequest)
	}
	if _, code := ask(t, srv, askRequest{
		SessionID: "does-not-exist",
		FileID:    "x.txt",
		Question:  "hi",
	}); code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want %d", code, http.StatusNotFound)
	}
}

func TestAskUnknownEmbeddingModel(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "ok"})
	fileID := uploadFile(t, srv, "doc.txt", "Some content.")

	_, code := ask(t, srv, askRequest{
		FileID:         fileID,
		Question:       "hi",
		EmbeddingModel: "no-such-model",
	})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("unknown model status = %d, want %d", code, http.StatusUnprocessableEntity)
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "ok"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "binary.pdf")
	fmt.Fprint(part, "%PDF-1.4")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("upload status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}

func TestClearSession(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "answer"})
	fileID := uploadFile(t, srv, "doc.txt", "Water boils at 100 degrees Celsius.")

	resp, code := ask(t, srv, askRequest{FileID: fileID, Question: "When does water boil?"})
	if code != http.StatusOK {
		t.Fatalf("ask status = %d", code)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+resp.SessionID+"/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+resp.SessionID, nil))
	var sessResp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sessResp); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}
	if len(sessResp.History) != 0 {
		t.Errorf("history after clear = %d turns, want 0", len(sessResp.History))
	}
}

func TestModels(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "ok"})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("models status = %d", rec.Code)
	}

	var resp struct {
		EmbeddingModels []string `json:"embedding_models"`
		Default         string   `json:"default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding models response: %v", err)
	}
	if len(resp.EmbeddingModels) != 3 {
		t.Errorf("embedding models = %v, want 3 entries", resp.EmbeddingModels)
	}
	if resp.Default == "" {
		t.Error("models response missing default")
	}
}
