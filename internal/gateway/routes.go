package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/KLM-Solutions/swarm-bot/internal/conversation"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
)

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/views", s.handleViews)
	mux.HandleFunc("GET /api/views/{view}/agents", s.handleAgents)
	mux.HandleFunc("GET /api/channels", s.handleChannels)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleEndSession)
	mux.HandleFunc("POST /api/sessions/{id}/views/{view}/messages", s.handleSend)
	mux.HandleFunc("GET /api/sessions/{id}/views/{view}/messages", s.handleHistory)
	mux.HandleFunc("DELETE /api/sessions/{id}/views/{view}/messages", s.handleClear)
	mux.HandleFunc("GET /api/sessions/{id}/views/{view}/appointments", s.handleAppointments)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up all WebSocket RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("views.list", s.rpcViewsList)
	s.Handle("agents.list", s.rpcAgentsList)
	s.Handle("channels.status", s.rpcChannelsStatus)
	s.Handle("chat.send", s.rpcChatSend)
	s.Handle("chat.history", s.rpcChatHistory)
	s.Handle("chat.clear", s.rpcChatClear)
	s.Handle("ledger.list", s.rpcLedgerList)
}

// RPC handlers

type viewParams struct {
	View string `json:"view,omitempty"`
}

type chatSendParams struct {
	View    string `json:"view,omitempty"`
	Message string `json:"message"`
}

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(s.health())
}

func (s *Server) rpcViewsList(rc *RequestContext) {
	rc.Respond(map[string]any{"views": s.listViews()})
}

func (s *Server) rpcAgentsList(rc *RequestContext) {
	var p viewParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	res, err := s.listAgents(p.View)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(res)
}

func (s *Server) rpcChannelsStatus(rc *RequestContext) {
	rc.Respond(map[string]any{"channels": s.channelStatus()})
}

func (s *Server) rpcChatSend(rc *RequestContext) {
	var p chatSendParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	res, err := s.submit(ctx, rc.Client.SessionID, p.View, p.Message)
	if err != nil {
		rc.Fail(err)
		return
	}

	s.pushEvents(rc.Client, res.SessionID, res.View, res.Events)
	rc.Respond(res)
}

// pushEvents sends each conversation event as a chat.event frame.
func (s *Server) pushEvents(c *Client, sessionID, view string, events []domain.Event) {
	for _, ev := range events {
		payload := ChatEvent{SessionID: sessionID, View: view, Event: ev}
		if err := c.Push(EventChat, payload); err != nil {
			s.log.Warn().Err(err).Str("connId", c.ConnID).Msg("failed to push chat event")
		}
	}
}

func (s *Server) rpcChatHistory(rc *RequestContext) {
	var p viewParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	res, err := s.history(rc.Client.SessionID, p.View)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(res)
}

func (s *Server) rpcChatClear(rc *RequestContext) {
	var p viewParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	res, events, err := s.clear(context.Background(), rc.Client.SessionID, p.View)
	if err != nil {
		rc.Fail(err)
		return
	}
	s.pushEvents(rc.Client, res.SessionID, res.View, events)
	rc.Respond(res)
}

func (s *Server) rpcLedgerList(rc *RequestContext) {
	var p viewParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	res, err := s.appointments(context.Background(), rc.Client.SessionID, p.View)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(res)
}

func (s *Server) channelStatus() []domain.ChannelStatus {
	if s.channels == nil {
		return []domain.ChannelStatus{}
	}
	return s.channels.Status()
}

// REST handlers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, shape := errorShape(err)
	writeJSON(w, status, map[string]any{"error": shape})
}

// handleHealth reports liveness only; counters are served over RPC.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"views": s.listViews()})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	res, err := s.listAgents(r.PathValue("view"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"channels": s.channelStatus()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]any{
		"sessionId": conversation.NewSessionID(),
		"views":     s.viewNames(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.End(r.Context(), r.PathValue("id")) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": ErrorShape{Code: CodeNotFound, Message: "unknown session"}})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayload)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": ErrorShape{Code: CodeInvalidParams, Message: err.Error()}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	res, err := s.submit(ctx, r.PathValue("id"), r.PathValue("view"), body.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	res, err := s.history(r.PathValue("id"), r.PathValue("view"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	res, _, err := s.clear(r.Context(), r.PathValue("id"), r.PathValue("view"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	res, err := s.appointments(r.Context(), r.PathValue("id"), r.PathValue("view"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}
