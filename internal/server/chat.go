package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/docchat-dev/docchat/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "ask" or "clear"
	SessionID string `json:"session_id"` // empty for new sessions
	FileID    string `json:"file_id"`
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type      string `json:"type"` // "response" or "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
	Sources   int    `json:"sources,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "ask":
			s.handleAskMessage(conn, r, req)
		case "clear":
			s.handleClearMessage(conn, r, req)
		default:
			s.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleAskMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.Content == "" {
		s.sendError(conn, req.SessionID, "content is required")
		return
	}
	if req.FileID == "" {
		s.sendError(conn, req.SessionID, "file_id is required")
		return
	}

	ctx := r.Context()
	sessionID := req.SessionID

	// Create a new session if needed.
	if sessionID == "" {
		sess, err := s.sessions.Create(ctx, "websocket")
		if err != nil {
			s.sendError(conn, "", "failed to create session: "+err.Error())
			return
		}
		sessionID = sess.ID
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		s.sendError(conn, sessionID, "loading history: "+err.Error())
		return
	}

	result, err := s.answerer.Answer(ctx, s.buildRequest(askRequest{
		FileID:   req.FileID,
		Question: req.Content,
	}, history))
	if err != nil {
		s.sendError(conn, sessionID, err.Error())
		return
	}

	if err := s.sessions.AppendTurn(ctx, sessionID, session.Turn{
		Query:  req.Content,
		Answer: result.Answer,
	}); err != nil {
		log.Printf("server: persisting turn for session %s: %v", sessionID, err)
	}

	s.sendResponse(conn, chatResponse{
		Type:      "response",
		SessionID: sessionID,
		Content:   result.Answer,
		Sources:   len(result.Contexts),
	})
}

func (s *Server) handleClearMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.SessionID == "" {
		s.sendError(conn, "", "session_id is required")
		return
	}
	if err := s.sessions.Clear(r.Context(), req.SessionID); err != nil {
		s.sendError(conn, req.SessionID, err.Error())
		return
	}
	s.sendResponse(conn, chatResponse{
		Type:      "response",
		SessionID: req.SessionID,
		Content:   "session cleared",
	})
}

func (s *Server) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, sessionID, message string) {
	s.sendResponse(conn, chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	})
}
