// Package api exposes the dispatcher over HTTP for chat platforms that
// deliver messages via webhook.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/glebk/worklog-bot/internal/api/respond"
	"github.com/glebk/worklog-bot/internal/dispatcher"
)

// inboundEvent mirrors the chat event shape: the message text plus opaque
// user and space identifiers.
type inboundEvent struct {
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
	Space struct {
		Name string `json:"name"`
	} `json:"space"`
}

// eventReply carries the bot's answer back to the chat platform.
type eventReply struct {
	Text string `json:"text"`
}

// EventHandler handles inbound chat events
type EventHandler struct {
	dispatcher *dispatcher.Dispatcher
	ready      func(ctx context.Context) error
}

// NewEventHandler creates an EventHandler. The ready probe reports storage
// connectivity for /healthz.
func NewEventHandler(d *dispatcher.Dispatcher, ready func(ctx context.Context) error) *EventHandler {
	return &EventHandler{dispatcher: d, ready: ready}
}

// HandleEvent handles POST /v1/events. Every well-formed event gets a reply,
// even when the message itself makes no sense; missing identities are the
// only client error.
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event inboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if event.User.Name == "" {
		respond.WriteBadRequest(w, "user.name required")
		return
	}
	if event.Space.Name == "" {
		respond.WriteBadRequest(w, "space.name required")
		return
	}

	reply := h.dispatcher.HandleMessage(r.Context(), event.Message.Text, event.User.Name, event.Space.Name)
	respond.WriteJSON(w, http.StatusOK, eventReply{Text: reply})
}

// Health handles GET /healthz
func (h *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			respond.WriteServiceUnavailable(w, err.Error())
			return
		}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
