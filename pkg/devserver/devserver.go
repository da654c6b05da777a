// Package devserver exposes the conversation over a websocket so the
// flow can be exercised from a browser playground without a telephony
// stack: text frames in, spoken lines and the final result out.
package devserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	genaidriver "github.com/hirevox/prescreen/pkg/adapters/genai"
	"github.com/hirevox/prescreen/pkg/calendar"
	"github.com/hirevox/prescreen/pkg/config"
	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
	"github.com/hirevox/prescreen/pkg/core/stage"
	"github.com/hirevox/prescreen/pkg/webhook"
)

const handshakeTimeout = 5 * time.Second

// Server runs playground sessions. One websocket connection is one
// call.
type Server struct {
	cfg       config.Config
	scheduler calendar.Scheduler
	webhook   *webhook.Client
	logger    *slog.Logger
}

func New(cfg config.Config, scheduler calendar.Scheduler, wh *webhook.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, scheduler: scheduler, webhook: wh, logger: logger}
}

// Handler returns the HTTP surface of the dev server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/session", s.handleSession)
	return mux
}

type clientHello struct {
	Type  string          `json:"type"`
	Input json.RawMessage `json:"input"`
}

type clientUserText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type serverHelloAck struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
}

type serverSay struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type serverResult struct {
	Type   string          `json:"type"`
	Result *webhook.Result `json:"result"`
}

type serverError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsWriter serializes frames onto one connection; the speak callback
// and the result write race otherwise.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	writer := &wsWriter{conn: conn}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	messageType, firstFrame, err := conn.ReadMessage()
	if err != nil || messageType != websocket.TextMessage {
		s.writeWSError(writer, "bad_request", "first frame must be hello")
		return
	}

	var hello clientHello
	if err := json.Unmarshal(firstFrame, &hello); err != nil || hello.Type != "hello" {
		s.writeWSError(writer, "bad_request", "invalid hello frame")
		return
	}
	in, err := session.ParseInput(hello.Input)
	if err != nil {
		s.writeWSError(writer, "bad_request", err.Error())
		return
	}
	if in.CallID == "" {
		in.CallID = "dev_" + randHex(8)
	}
	// Playground calls never write back to the backend.
	in.Playground = true

	if err := writer.writeJSON(serverHelloAck{Type: "hello_ack", CallID: in.CallID}); err != nil {
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	logger := s.logger.With("call_id", in.CallID)
	result, err := s.runCall(r.Context(), in, writer, conn, logger)
	if err != nil {
		logger.Error("playground call failed", "error", err)
		s.writeWSError(writer, "internal", "call failed")
		return
	}
	_ = writer.writeJSON(serverResult{Type: "result", Result: result})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "call complete"),
		time.Now().Add(2*time.Second))
}

func (s *Server) runCall(ctx context.Context, in session.Input, writer *wsWriter, conn *websocket.Conn, logger *slog.Logger) (*webhook.Result, error) {
	driver, err := genaidriver.New(ctx, genaidriver.Config{
		APIKey:      s.cfg.GeminiAPIKey,
		Model:       s.cfg.Model,
		AwayTimeout: s.cfg.AwayTimeout,
		Logger:      logger,
		Speak: func(text string) {
			_ = writer.writeJSON(serverSay{Type: "say", Text: text})
		},
	})
	if err != nil {
		return nil, err
	}

	conv, err := flow.New(flow.Config{
		Driver:    driver,
		State:     session.NewState(in),
		Scheduler: s.scheduler,
		Webhook:   s.webhook,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	// Reader feeds candidate turns until the peer goes away, then closes
	// the driver so the conversation tears down.
	go func() {
		defer driver.Close(false)
		for {
			var frame clientUserText
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			if frame.Type == "user_text" && frame.Text != "" {
				driver.SubmitUserText(frame.Text)
			}
		}
	}()

	return conv.Run(ctx, stage.ForName(in.StartStage, in))
}

func (s *Server) writeWSError(writer *wsWriter, code, message string) {
	_ = writer.writeJSON(serverError{Type: "error", Code: code, Message: message})
}

func randHex(nbytes int) string {
	b := make([]byte, nbytes)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
