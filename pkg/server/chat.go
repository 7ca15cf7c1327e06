package server

import (
	"encoding/json"
	"net/http"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/chat"
)

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	done := s.observe(ctx, "chat")

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		done(err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := s.chat.SendMessage(ctx, req)
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}

	done(nil)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuickQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	done := s.observe(ctx, "chat")

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		done(err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}

	answer, err := s.chat.QuickQuestion(ctx, req.Question)
	if err != nil {
		done(err)
		writeError(w, err)
		return
	}

	done(nil)
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	messages, ok := s.chat.Sessions().Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"messages":        messages,
		"status":          "success",
	})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.chat.Sessions().Delete(id)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Conversation cleared successfully",
		"conversation_id": id,
		"status":          "success",
	})
}

func (s *Server) handleChatHealth(w http.ResponseWriter, r *http.Request) {
	llmStatus := "not_configured"
	if s.llmConfigured {
		llmStatus = "configured"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "ok",
		"llm_api":              llmStatus,
		"service":              "chatbox",
		"active_conversations": s.chat.Sessions().Len(),
	})
}
