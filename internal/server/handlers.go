package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docchat-dev/docchat/internal/embeddings"
	"github.com/docchat-dev/docchat/internal/llm"
	"github.com/docchat-dev/docchat/internal/loader"
	"github.com/docchat-dev/docchat/internal/pipeline"
	"github.com/docchat-dev/docchat/internal/session"
	"github.com/docchat-dev/docchat/internal/vectordb"
)

const maxUploadSize = 32 << 20 // 32 MB

var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".docx": true,
}

type uploadResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// handleUpload stores a multipart "file" in the upload directory and
// returns the id to use in subsequent ask requests.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !supportedExtensions[ext] {
		writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported format %q: use .txt, .md, or .docx", ext))
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "creating upload directory: "+err.Error())
		return
	}

	fileID := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.cfg.UploadDir, fileID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storing upload: "+err.Error())
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storing upload: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		FileID:   fileID,
		Filename: header.Filename,
		Size:     size,
	})
}

type askRequest struct {
	SessionID      string   `json:"session_id,omitempty"`
	FileID         string   `json:"file_id"`
	Question       string   `json:"question"`
	EmbeddingModel string   `json:"embedding_model,omitempty"`
	TopK           int      `json:"top_k,omitempty"`
	HistoryLen     *int     `json:"history_len,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	TopP           *float64 `json:"top_p,omitempty"`
}

type contextResult struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Similarity float32 `json:"similarity"`
}

type askResponse struct {
	SessionID string          `json:"session_id"`
	Answer    string          `json:"answer"`
	Contexts  []contextResult `json:"contexts"`
}

// handleAsk runs one question through the answer pipeline, using the
// session's stored transcript as conversational history.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.FileID == "" {
		writeError(w, http.StatusBadRequest, "file_id is required")
		return
	}

	ctx := r.Context()

	sessionID := req.SessionID
	if sessionID == "" {
		sess, err := s.sessions.Create(ctx, "api")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "creating session: "+err.Error())
			return
		}
		sessionID = sess.ID
	} else if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading history: "+err.Error())
		return
	}

	result, err := s.answerer.Answer(ctx, s.buildRequest(req, history))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if err := s.sessions.AppendTurn(ctx, sessionID, session.Turn{
		Query:  req.Question,
		Answer: result.Answer,
	}); err != nil {
		log.Printf("server: persisting turn for session %s: %v", sessionID, err)
	}

	writeJSON(w, http.StatusOK, askResponse{
		SessionID: sessionID,
		Answer:    result.Answer,
		Contexts:  toContextResults(result.Contexts),
	})
}

// buildRequest merges the request body with configured defaults.
func (s *Server) buildRequest(req askRequest, history session.History) pipeline.Request {
	out := pipeline.Request{
		Query:          req.Question,
		EmbeddingModel: s.app.EmbeddingModel,
		FilePath:       filepath.Join(s.cfg.UploadDir, filepath.Base(req.FileID)),
		TopK:           s.app.TopK,
		HistoryLen:     s.app.HistoryLen,
		Temperature:    s.app.Temperature,
		TopP:           s.app.TopP,
		History:        history,
	}
	if req.EmbeddingModel != "" {
		out.EmbeddingModel = req.EmbeddingModel
	}
	if req.TopK > 0 {
		out.TopK = req.TopK
	}
	if req.HistoryLen != nil {
		out.HistoryLen = *req.HistoryLen
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		out.TopP = *req.TopP
	}
	return out
}

type sessionResponse struct {
	Session *session.Session `json:"session"`
	History session.History  `json:"history"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	history, err := s.sessions.History(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = session.History{}
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, History: history})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.sessions.Clear(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": id})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"embedding_models": embeddings.Models(),
		"default":          s.app.EmbeddingModel,
	})
}

func toContextResults(results []vectordb.SearchResult) []contextResult {
	out := make([]contextResult, len(results))
	for i, r := range results {
		out[i] = contextResult{
			Content:    r.Document.Content,
			Source:     r.Document.Metadata.Source,
			Similarity: r.Similarity,
		}
	}
	return out
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, loader.ErrEmptyDocument),
		errors.Is(err, embeddings.ErrUnknownModel),
		errors.Is(err, vectordb.ErrEmptyIndex):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		var genErr *llm.GenerationError
		if errors.As(err, &genErr) {
			return http.StatusBadGateway
		}
		if errors.Is(err, fs.ErrNotExist) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
