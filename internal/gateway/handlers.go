package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/conversation"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/version"
)

// HealthResponse is returned by health endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Clients  int    `json:"clients"`
	Sessions int    `json:"sessions"`
	UptimeMs int64  `json:"uptimeMs,omitempty"`
}

// ViewInfo describes a conversational view.
type ViewInfo struct {
	Name     string `json:"name"`
	Mode     string `json:"mode"`
	Registry string `json:"registry"`
	Booking  bool   `json:"booking"`
	Agents   int    `json:"agents"`
}

// AgentInfo describes one agent of a view's registry.
type AgentInfo struct {
	ID     string   `json:"id"`
	Color  string   `json:"color,omitempty"`
	Triage bool     `json:"triage,omitempty"`
	Tools  []string `json:"tools,omitempty"`
}

// AgentsResult lists the agents of a view.
type AgentsResult struct {
	View   string      `json:"view"`
	Agents []AgentInfo `json:"agents"`
}

// ChatResult is the outcome of one submitted message.
type ChatResult struct {
	SessionID      string          `json:"sessionId"`
	View           string          `json:"view"`
	CurrentAgentID string          `json:"currentAgentId"`
	Reply          *domain.Message `json:"reply,omitempty"`
	Events         []domain.Event  `json:"events"`
}

// HistoryResult is a view's conversation.
type HistoryResult struct {
	SessionID      string           `json:"sessionId"`
	View           string           `json:"view"`
	CurrentAgentID string           `json:"currentAgentId"`
	History        []domain.Message `json:"history"`
	Transcript     string           `json:"transcript"`
}

// AppointmentsResult lists a session's bookings in one view.
type AppointmentsResult struct {
	SessionID    string                     `json:"sessionId"`
	View         string                     `json:"view"`
	Appointments []domain.AppointmentRecord `json:"appointments"`
}

// ChatEvent is the payload of a chat.event push.
type ChatEvent struct {
	SessionID string       `json:"sessionId"`
	View      string       `json:"view"`
	Event     domain.Event `json:"event"`
}

func (s *Server) health() HealthResponse {
	h := HealthResponse{
		Status:   "ok",
		Version:  version.Version,
		Clients:  s.clients.Count(),
		Sessions: s.sessions.Count(),
	}
	if !s.startedAt.IsZero() {
		h.UptimeMs = time.Since(s.startedAt).Milliseconds()
	}
	return h
}

func (s *Server) listViews() []ViewInfo {
	views := s.sessions.Views()
	out := make([]ViewInfo, 0, len(views))
	for _, v := range views {
		reg := v.Registry()
		out = append(out, ViewInfo{
			Name:     v.Name,
			Mode:     v.Mode,
			Registry: reg.Name(),
			Booking:  v.Booking,
			Agents:   reg.Len(),
		})
	}
	return out
}

// resolveView returns the named view, or the first configured one when name
// is empty.
func (s *Server) resolveView(name string) (conversation.View, error) {
	if name == "" {
		views := s.sessions.Views()
		if len(views) == 0 {
			return conversation.View{}, conversation.ErrUnknownView
		}
		return views[0], nil
	}
	v, ok := s.sessions.View(name)
	if !ok {
		return conversation.View{}, fmt.Errorf("%w: %s", conversation.ErrUnknownView, name)
	}
	return v, nil
}

func (s *Server) listAgents(view string) (AgentsResult, error) {
	v, err := s.resolveView(view)
	if err != nil {
		return AgentsResult{}, err
	}
	reg := v.Registry()
	res := AgentsResult{View: v.Name, Agents: make([]AgentInfo, 0, reg.Len())}
	for _, a := range reg.Agents() {
		res.Agents = append(res.Agents, AgentInfo{
			ID:     a.ID,
			Color:  a.Color,
			Triage: a.ID == reg.TriageID(),
			Tools:  a.Tools,
		})
	}
	return res, nil
}

func (s *Server) submit(ctx context.Context, sessionID, view, message string) (ChatResult, error) {
	v, err := s.resolveView(view)
	if err != nil {
		return ChatResult{}, err
	}
	sess, err := s.sessions.Session(ctx, sessionID, v.Name)
	if err != nil {
		return ChatResult{}, err
	}
	events, err := sess.Submit(ctx, message)
	if err != nil {
		return ChatResult{}, err
	}

	res := ChatResult{
		SessionID:      sessionID,
		View:           v.Name,
		CurrentAgentID: sess.State().CurrentAgentID,
		Events:         events,
	}
	if reply, ok := conversation.LastReply(events); ok {
		res.Reply = &reply
	}
	return res, nil
}

func (s *Server) history(sessionID, view string) (HistoryResult, error) {
	v, err := s.resolveView(view)
	if err != nil {
		return HistoryResult{}, err
	}
	state := v.Engine.NewState()
	if sess, ok := s.sessions.Lookup(sessionID, v.Name); ok {
		state = sess.State()
	}
	return HistoryResult{
		SessionID:      sessionID,
		View:           v.Name,
		CurrentAgentID: state.CurrentAgentID,
		History:        state.History,
		Transcript:     conversation.FormatHistory(state),
	}, nil
}

// clear resets a view's conversation. A view the session never used is
// already clear and yields no events.
func (s *Server) clear(ctx context.Context, sessionID, view string) (HistoryResult, []domain.Event, error) {
	v, err := s.resolveView(view)
	if err != nil {
		return HistoryResult{}, nil, err
	}
	var events []domain.Event
	if sess, ok := s.sessions.Lookup(sessionID, v.Name); ok {
		events = sess.Clear(ctx)
	}
	res, err := s.history(sessionID, v.Name)
	return res, events, err
}

func (s *Server) appointments(ctx context.Context, sessionID, view string) (AppointmentsResult, error) {
	v, err := s.resolveView(view)
	if err != nil {
		return AppointmentsResult{}, err
	}
	if !v.Booking {
		return AppointmentsResult{}, conversation.ErrNoLedger
	}
	res := AppointmentsResult{SessionID: sessionID, View: v.Name, Appointments: []domain.AppointmentRecord{}}
	sess, ok := s.sessions.Lookup(sessionID, v.Name)
	if !ok {
		return res, nil
	}
	recs, err := sess.Appointments(ctx)
	if err != nil {
		return AppointmentsResult{}, err
	}
	if recs != nil {
		res.Appointments = recs
	}
	return res, nil
}

// errorShape maps a session error to a wire error and HTTP status.
func errorShape(err error) (int, ErrorShape) {
	switch {
	case errors.Is(err, conversation.ErrUnknownView):
		return http.StatusNotFound, ErrorShape{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, conversation.ErrEmptyMessage):
		return http.StatusBadRequest, ErrorShape{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, conversation.ErrTurnInProgress):
		return http.StatusConflict, ErrorShape{Code: CodeBusy, Message: err.Error(), Retryable: true, RetryAfter: 1000}
	case errors.Is(err, conversation.ErrNoLedger):
		return http.StatusBadRequest, ErrorShape{Code: CodeUnsupported, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorShape{Code: CodeInternal, Message: err.Error()}
	}
}

// RequestHandler processes an incoming RPC request frame from a client.
type RequestHandler func(ctx *RequestContext)

// RequestContext carries everything a handler needs.
type RequestContext struct {
	Client *Client
	Frame  Frame
	Server *Server
}

// Respond sends a success response.
func (rc *RequestContext) Respond(payload any) {
	if err := rc.Client.Respond(rc.Frame.ID, payload); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send response")
	}
}

// RespondError sends an error response.
func (rc *RequestContext) RespondError(code, message string) {
	rc.Client.RespondError(rc.Frame.ID, ErrorShape{
		Code:    code,
		Message: message,
	})
}

// Fail sends the wire form of a session error.
func (rc *RequestContext) Fail(err error) {
	_, shape := errorShape(err)
	rc.Client.RespondError(rc.Frame.ID, shape)
}

// Params unmarshals the request params into the given target.
func (rc *RequestContext) Params(target any) error {
	return rc.Frame.DecodeParams(target)
}
