package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"go.uber.org/zap"
)

// FlashStore keeps notices between a redirect and the next rendered view.
type FlashStore interface {
	Push(ctx context.Context, sessionID string, f domain.Flash) error
	Pop(ctx context.Context, sessionID string) ([]domain.Flash, error)
}

// Renderer writes a named view with its data.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, view string, data interface{})
}

type viewEnvelope struct {
	View  string         `json:"view"`
	Data  interface{}    `json:"data,omitempty"`
	Flash []domain.Flash `json:"flash"`
}

// JSONRenderer renders views as JSON documents and consumes pending notices.
type JSONRenderer struct {
	flashes FlashStore
	logger  *logger.Logger
}

func NewJSONRenderer(flashes FlashStore, log *logger.Logger) *JSONRenderer {
	return &JSONRenderer{flashes: flashes, logger: log.Named("JSONRenderer")}
}

func (jr *JSONRenderer) Render(w http.ResponseWriter, r *http.Request, status int, view string, data interface{}) {
	env := viewEnvelope{View: view, Data: data, Flash: []domain.Flash{}}
	if sid := middleware.SessionIDFromContext(r.Context()); sid != "" {
		pending, err := jr.flashes.Pop(r.Context(), sid)
		if err != nil {
			jr.logger.Warn("Failed to load flash messages", zap.Error(err))
		} else {
			env.Flash = pending
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		jr.logger.Error("Failed to encode view", zap.String("view", view), zap.Error(err))
	}
}

// sessionNotifier stores notices for the caller's session.
type sessionNotifier struct {
	ctx       context.Context
	store     FlashStore
	sessionID string
	logger    *logger.Logger
}

func (n *sessionNotifier) Flash(kind domain.FlashKind, message string) {
	if n.sessionID == "" {
		return
	}
	if err := n.store.Push(n.ctx, n.sessionID, domain.Flash{Kind: kind, Message: message}); err != nil {
		n.logger.Warn("Failed to store flash message", zap.String("kind", string(kind)), zap.Error(err))
	}
}
