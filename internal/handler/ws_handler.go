package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
	ws "github.com/zeroclasses/zero-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a quiz attempt: countdown ticks out, answers in.
type WSHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:id/stream?token=...
// Pushes tick and submitted events and accepts attempt actions.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	attemptID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	actor := middleware.GetActor(c)

	// Fail over plain HTTP while we still can.
	view, err := h.attempts.Get(actor, attemptID)
	if err != nil {
		failWith(c, err)
		return
	}
	events, unsubscribe, err := h.attempts.Subscribe(actor, attemptID)
	if err != nil {
		failWith(c, err)
		return
	}
	defer unsubscribe()

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.CloseNormal("bye")

	wsLog := h.log.With().
		Str("student_id", actor.ID.String()).
		Str("attempt_id", attemptID.String()).
		Logger()
	wsLog.Info().Msg("Student connected")

	_ = conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Attempt: view})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.forward(conn, events)
	}()

	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		h.dispatch(c, conn, wsLog, actor, attemptID, &msg)
	}

	unsubscribe()
	<-done
}

// eventSink is the write side of an attempt stream.
type eventSink interface {
	WriteTyped(v interface{}) error
	CloseNormal(reason string)
}

// forward relays attempt events until the stream ends or a write fails, then
// closes the socket so the read loop returns.
func (h *WSHandler) forward(conn eventSink, events <-chan service.AttemptEvent) {
	reason := "attempt finished"
	for ev := range events {
		var err error
		switch ev.Type {
		case service.EventTick:
			err = conn.WriteTyped(ws.TickResponse{Event: ws.EventTick, Remaining: ev.Remaining})
		case service.EventSubmitted:
			err = conn.WriteTyped(ws.SubmittedResponse{Event: ws.EventSubmitted, Result: ev.Result})
		case service.EventAbandoned:
			err = conn.WriteTyped(ws.AbandonedResponse{Event: ws.EventAbandoned})
		}
		if err != nil {
			h.log.Debug().Err(err).Str("attempt_id", ev.AttemptID.String()).Msg("Event write failed")
			reason = "write failed"
			break
		}
	}
	conn.CloseNormal(reason)
}

func (h *WSHandler) dispatch(c *gin.Context, conn *ws.Conn, wsLog zerolog.Logger, actor service.Actor, attemptID uuid.UUID, msg *ws.Request) {
	var (
		view *service.AttemptView
		err  error
	)

	switch msg.Action {
	case ws.ActionPing:
		_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		return
	case ws.ActionState:
		view, err = h.attempts.Get(actor, attemptID)
	case ws.ActionAnswer:
		if msg.Question == nil || msg.Option == nil {
			_ = conn.WriteError(string(response.ErrValidation), "question and option are required")
			return
		}
		view, err = h.attempts.Answer(actor, attemptID, *msg.Question, *msg.Option)
	case ws.ActionFlag:
		if msg.Question == nil {
			_ = conn.WriteError(string(response.ErrValidation), "question is required")
			return
		}
		view, err = h.attempts.ToggleFlag(actor, attemptID, *msg.Question)
	case ws.ActionNavigate:
		view, err = h.attempts.Navigate(actor, attemptID, model.NavigateRequest{Index: msg.Index, Step: msg.Step})
	case ws.ActionSubmit:
		view, err = h.attempts.Submit(c.Request.Context(), actor, attemptID)
	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		_ = conn.WriteError(string(response.ErrValidation), "unknown action: "+string(msg.Action))
		return
	}

	if err != nil {
		_, code := statusFor(err)
		if code == response.ErrInternal {
			wsLog.Error().Err(err).Str("action", string(msg.Action)).Msg("Attempt action failed")
		}
		_ = conn.WriteError(string(code), response.GetMessage(code))
		if view == nil {
			return
		}
	}
	_ = conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Attempt: view})
}
