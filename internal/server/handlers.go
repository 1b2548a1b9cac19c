package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"prism/internal/logging"
	"prism/internal/mode"
	"prism/internal/providers"
	"prism/internal/search"
)

// billingFriendlyMessage replaces upstream billing failures. The raw text can
// reference internal account state and must never reach the caller.
const billingFriendlyMessage = "The AI provider is out of credits or over its quota. Please try again later."

type searchResponse struct {
	Detailed string `json:"detailed_answer"`
	Direct   string `json:"direct_answer"`
}

// flexContent accepts either a plain string or the structured part-array form
// `[{"type":"text","text":...}, ...]` used by richer clients.
type flexContent string

func (f *flexContent) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*f = flexContent(plain)
		return nil
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.New("content must be a string or an array of text parts")
	}
	var b strings.Builder
	for _, part := range parts {
		if part.Type == "" || part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	*f = flexContent(b.String())
	return nil
}

type searchRequestBody struct {
	Messages []struct {
		Role    string      `json:"role"`
		Content flexContent `json:"content"`
	} `json:"messages"`
	Mode    string `json:"mode"`
	Lang    string `json:"lang"`
	Quality string `json:"quality"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	switch r.Method {
	case http.MethodGet:
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			s.writeError(w, http.StatusBadRequest, "missing query parameter q")
			return
		}
		req = search.Request{
			Messages: []providers.ChatMessage{{Role: "user", Content: query}},
			Mode:     mode.Parse(r.URL.Query().Get("mode")),
			Lang:     r.URL.Query().Get("lang"),
			Quality:  providers.ParseQuality(r.URL.Query().Get("quality")),
		}
	case http.MethodPost:
		var body searchRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if len(body.Messages) == 0 {
			s.writeError(w, http.StatusBadRequest, "messages required")
			return
		}
		messages := make([]providers.ChatMessage, 0, len(body.Messages))
		for _, msg := range body.Messages {
			role := strings.TrimSpace(msg.Role)
			if role == "" {
				s.writeError(w, http.StatusBadRequest, "message role required")
				return
			}
			messages = append(messages, providers.ChatMessage{Role: role, Content: string(msg.Content)})
		}
		req = search.Request{
			Messages: messages,
			Mode:     mode.Parse(body.Mode),
			Lang:     body.Lang,
			Quality:  providers.ParseQuality(body.Quality),
		}
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if req.Query() == "" {
		s.writeError(w, http.StatusBadRequest, "a user message is required")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	result, err := s.orchestrator.Execute(ctx, req)
	if err != nil {
		s.store.LogError(ctx, err.Error(), "search")
		if errors.Is(err, providers.ErrBilling) || providers.IsBillingMessage(err.Error()) {
			s.writeError(w, http.StatusPaymentRequired, billingFriendlyMessage)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "error: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, searchResponse{Detailed: result.Detailed, Direct: result.Direct})
}

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	report, err := s.credits.Report(ctx)
	if err != nil {
		s.store.LogError(ctx, err.Error(), "credits")
		s.writeError(w, http.StatusInternalServerError, "error: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type historyRequestBody struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "history store unavailable")
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	switch r.Method {
	case http.MethodPost:
		var body historyRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if strings.TrimSpace(body.Query) == "" {
			s.writeError(w, http.StatusBadRequest, "query required")
			return
		}
		id, err := s.store.AddHistory(ctx, body.Query, body.Answer)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "error: "+err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := s.store.RecentHistory(ctx, limit)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "error: "+err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"history": entries})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestContext bounds the request with the configured timeout and stamps a
// request id for log correlation.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := search.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
	return context.WithTimeout(ctx, s.requestTimeout)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
