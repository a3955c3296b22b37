package http

import (
	"encoding/json"
	"log"
	"net/http"

	"ecg-practice-service/internal/app"
	"ecg-practice-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	CaseID string        `json:"caseId"`
	Report domain.Report `json:"report"`
}

type scoredResult struct {
	CaseID    string               `json:"caseId"`
	Result    domain.ScoringResult `json:"result"`
	XPAwarded int                  `json:"xpAwarded"`
	Stats     domain.UserStats     `json:"stats"`
}

type previewResult struct {
	CaseID    string               `json:"caseId"`
	Result    domain.ScoringResult `json:"result"`
	XPPreview int                  `json:"xpPreview"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// practice use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	cohortID := r.URL.Query().Get("cohortId")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if cohortID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing cohortId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	joined, err := h.service.Join(r.Context(), cohortID, userID, displayName)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), cohortID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(r.Context(), cohortID, userID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; the reader loop and the updates fan-in both
	// feed it through send, so the connection never sees concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joined}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
				continue
			}
			submission, err := h.service.Submit(r.Context(), cohortID, userID, payload.CaseID, payload.Report)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "scored", Payload: scoredResult{
				CaseID:    payload.CaseID,
				Result:    submission.Result,
				XPAwarded: submission.XPAwarded,
				Stats:     submission.Stats,
			}}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: submission.Board}
		case "preview":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid preview payload"}}
				continue
			}
			result, xp, err := h.service.Preview(r.Context(), payload.CaseID, payload.Report)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "preview", Payload: previewResult{
				CaseID:    payload.CaseID,
				Result:    result,
				XPPreview: xp,
			}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
