package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"college-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string `json:"type"`
	Payload struct {
		Submission domain.Submission `json:"submission"`
		Deadline   time.Time         `json:"deadline"`
		Kind       string            `json:"kind"`
		Message    string            `json:"message"`
	} `json:"payload"`
}

func TestWebSocketAttemptFlow(t *testing.T) {
	clock := newClock(t0.Add(2 * time.Minute))
	srv := newTestServer(t, clock.Now, quizAt(t0, time.Hour, 30))
	conn := dialWS(t, srv, studentHeaders(csA1.ID))

	send(t, conn, map[string]any{"type": "start"})
	msg := readNext(t, conn, "attempt")
	if msg.Payload.Submission.Status != domain.StatusStarted {
		t.Fatalf("expected started attempt, got %+v", msg.Payload.Submission)
	}
	if want := t0.Add(32 * time.Minute); !msg.Payload.Deadline.Equal(want) {
		t.Fatalf("expected deadline %s, got %s", want, msg.Payload.Deadline)
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"questionId": "q2", "selectedOption": 1}})
	msg = readNext(t, conn, "attempt")
	if a, ok := msg.Payload.Submission.Answer("q2"); !ok || a.SelectedOption == nil || *a.SelectedOption != 1 {
		t.Fatalf("expected q2 answered, got %+v", msg.Payload.Submission.Answers)
	}

	send(t, conn, map[string]any{"type": "shout"})
	if msg = readNext(t, conn, "error"); msg.Payload.Kind != "BadRequest" {
		t.Fatalf("expected BadRequest, got %+v", msg.Payload)
	}

	send(t, conn, map[string]any{"type": "submit"})
	msg = readNext(t, conn, "attempt")
	if msg.Payload.Submission.Status != domain.StatusEvaluated || msg.Payload.Submission.TotalMarks != 6 {
		t.Fatalf("expected evaluated attempt with 6 marks, got %+v", msg.Payload.Submission)
	}

	send(t, conn, map[string]any{"type": "submit"})
	if msg = readNext(t, conn, "error"); msg.Payload.Kind != "AlreadySubmitted" {
		t.Fatalf("expected AlreadySubmitted, got %+v", msg.Payload)
	}
}

func TestWebSocketAutoSubmitsAtDeadline(t *testing.T) {
	now := func() time.Time { return time.Now().UTC() }
	start := now().Add(-time.Minute)
	// the window closes well before the 30 minute attempt budget runs out
	quiz := quizAt(start, time.Minute+1500*time.Millisecond, 30)
	srv := newTestServer(t, now, quiz)
	conn := dialWS(t, srv, studentHeaders(csA1.ID))

	send(t, conn, map[string]any{"type": "start"})
	if msg := readNext(t, conn, "attempt"); msg.Payload.Submission.Status != domain.StatusStarted {
		t.Fatalf("expected started attempt, got %+v", msg.Payload.Submission)
	}

	msg := readNext(t, conn, "attempt")
	sub := msg.Payload.Submission
	if sub.Status != domain.StatusEvaluated || sub.EndReason != domain.EndReasonWindowClosed {
		t.Fatalf("expected window-closed auto submission, got %+v", sub)
	}
	if sub.SubmitTime == nil || !sub.SubmitTime.Equal(quiz.EndTime) {
		t.Fatalf("expected submit time clamped to %s, got %v", quiz.EndTime, sub.SubmitTime)
	}
}

func TestWebSocketResumesExistingAttempt(t *testing.T) {
	clock := newClock(t0.Add(time.Minute))
	srv := newTestServer(t, clock.Now, quizAt(t0, time.Hour, 30))

	first := dialWS(t, srv, studentHeaders(csA1.ID))
	send(t, first, map[string]any{"type": "start"})
	started := readNext(t, first, "attempt")
	first.Close()

	second := dialWS(t, srv, studentHeaders(csA1.ID))
	resumed := readNext(t, second, "attempt")
	if resumed.Payload.Submission.ID != started.Payload.Submission.ID {
		t.Fatalf("expected the same attempt, got %s and %s", started.Payload.Submission.ID, resumed.Payload.Submission.ID)
	}
}

func TestWebSocketRequiresIdentity(t *testing.T) {
	clock := newClock(t0)
	srv := newTestServer(t, clock.Now, quizAt(t0, time.Hour, 30))

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "quiz-1"), nil)
	if err == nil {
		t.Fatalf("expected dial to fail without identity")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func wsURL(srv *testServer, quizID string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?quizId=" + quizID
}

func dialWS(t *testing.T, srv *testServer, headers http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "quiz-1"), headers)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%+v)", expect, msg.Type, msg.Payload)
	}
	return msg
}
