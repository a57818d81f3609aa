package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"college-quiz-service/internal/app"
	"college-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs a live attempt over a websocket. The server owns the clock:
// it pushes a fresh snapshot whenever the attempt changes and force-submits it
// when the deadline fires, even if the client has gone quiet.
type WSHandler struct {
	attempts   *app.AttemptService
	principals *PrincipalResolver
	upgrader   websocket.Upgrader
	now        func() time.Time
}

func NewWSHandler(attempts *app.AttemptService, principals *PrincipalResolver) *WSHandler {
	return &WSHandler{
		attempts:   attempts,
		principals: principals,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type attemptPayload struct {
	Submission domain.Submission `json:"submission"`
	Deadline   time.Time         `json:"deadline"`
}

// ServeWS upgrades GET /ws?quizId=... and serves start, answer and submit messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	principal, err := h.principals.Resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage[any], 16)
	deadlines := make(chan time.Time, 1)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	timerDone := make(chan struct{})

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	// Only this goroutine writes to conn.
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
		defer close(timerDone)
		h.watchDeadline(ctx, principal, quizID, deadlines, closeSignals, push)
	}()

	snapshot := func(sub domain.Submission) {
		deadline, err := h.attempts.Deadline(ctx, quizID, sub)
		if err != nil {
			push(errorMessage(err))
			return
		}
		armed := deadline
		if sub.Status != domain.StatusStarted {
			armed = time.Time{}
		}
		// replace any pending deadline with the latest one
		select {
		case <-deadlines:
		default:
		}
		deadlines <- armed
		push(outboundMessage[any]{Type: "attempt", Payload: attemptPayload{Submission: sub, Deadline: deadline}})
	}

	// resume an attempt that already exists
	if sub, err := h.attempts.Submission(ctx, principal, quizID); err == nil {
		snapshot(sub)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var (
			sub domain.Submission
			err error
		)
		switch inbound.Type {
		case "start":
			sub, err = h.attempts.Start(ctx, principal, quizID)
		case "answer":
			var payload answerRequest
			if jerr := json.Unmarshal(inbound.Payload, &payload); jerr != nil || payload.QuestionID == "" {
				push(outboundMessage[any]{Type: "error", Payload: errorDetail{Kind: "BadRequest", Message: "invalid answer payload"}})
				continue
			}
			sub, err = h.attempts.UpdateAnswer(ctx, principal, quizID, payload.QuestionID, payload.SelectedOption)
		case "submit":
			sub, err = h.attempts.Submit(ctx, principal, quizID)
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorDetail{Kind: "BadRequest", Message: "unsupported message type"}})
			continue
		}
		if err != nil {
			push(errorMessage(err))
			if sub.ID == "" {
				continue
			}
		}
		snapshot(sub)
	}

	close(closeSignals)
	<-timerDone
	close(send)
	<-writerDone
}

// watchDeadline force-submits the attempt when the latest armed deadline passes.
// A zero deadline disarms the timer.
func (h *WSHandler) watchDeadline(ctx context.Context, principal domain.Principal, quizID string,
	deadlines <-chan time.Time, closeSignals <-chan struct{}, push func(outboundMessage[any])) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case deadline := <-deadlines:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			if !deadline.IsZero() {
				timer.Reset(deadline.Sub(h.now()))
			}
		case <-timer.C:
			sub, err := h.attempts.Submission(ctx, principal, quizID)
			if err != nil {
				push(errorMessage(err))
				continue
			}
			if sub.Status == domain.StatusStarted {
				// server clock has not crossed the deadline yet; check again shortly
				timer.Reset(100 * time.Millisecond)
				continue
			}
			deadline, _ := h.attempts.Deadline(ctx, quizID, sub)
			push(outboundMessage[any]{Type: "attempt", Payload: attemptPayload{Submission: sub, Deadline: deadline}})
		case <-closeSignals:
			return
		}
	}
}

func errorMessage(err error) outboundMessage[any] {
	detail := newErrorDetail(err)
	if detail.Kind == "Internal" {
		log.Printf("ws request failed: %v", err)
	}
	return outboundMessage[any]{Type: "error", Payload: detail}
}
