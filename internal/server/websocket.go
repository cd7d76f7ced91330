package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	mdwlog "github.com/msto63/pnc/foundation/core/log"
)

// Message types
const (
	TypeEval   = "eval"
	TypeResult = "result"
	TypePing   = "ping"
	TypePong   = "pong"
	TypeError  = "error"
)

// Error codes sent in ErrorPayload
const (
	ErrInvalidMessage = "invalid_message"
	ErrInvalidPayload = "invalid_payload"
	ErrUnknownType    = "unknown_type"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, no browser session to protect
	},
}

// WSMessage is an inbound WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse is an outbound WebSocket message. ID echoes the request ID.
type WSResponse struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WebSocketHandler evaluates expressions sent over a WebSocket connection
type WebSocketHandler struct {
	evaluator   *evaluator
	logger      *mdwlog.Logger
	readTimeout time.Duration

	// readLimit bounds a single message, like maxBodySize for POST
	readLimit int64
}

func newWebSocketHandler(ev *evaluator, logger *mdwlog.Logger, readTimeout time.Duration) *WebSocketHandler {
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}
	return &WebSocketHandler{
		evaluator:   ev,
		logger:      logger.WithField("component", "pnc-websocket"),
		readTimeout: readTimeout,
		readLimit:   maxBodySize,
	}
}

// ServeHTTP handles the WebSocket upgrade and the connection
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnWithErr("WebSocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection serves one client. Messages are answered in order.
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	logger := h.logger.WithField("remote", conn.RemoteAddr().String())
	logger.Info("WebSocket connection established")

	conn.SetReadLimit(h.readLimit)
	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnWithErr("WebSocket read error", err)
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn, "", ErrInvalidMessage, "message is not valid JSON")
			continue
		}

		switch msg.Type {
		case TypePing:
			h.send(conn, WSResponse{Type: TypePong, ID: msg.ID})

		case TypeEval:
			var req EvalRequest
			if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &req) != nil {
				h.sendError(conn, msg.ID, ErrInvalidPayload, "eval payload must be {\"input\": \"...\"}")
				continue
			}
			h.send(conn, WSResponse{Type: TypeResult, ID: msg.ID, Payload: h.evaluator.evaluate(ctx, req.Input)})

		default:
			h.sendError(conn, msg.ID, ErrUnknownType, "unknown message type: "+msg.Type)
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, resp WSResponse) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.WarnWithErr("WebSocket send error", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, id, code, message string) {
	h.send(conn, WSResponse{
		Type: TypeError,
		ID:   id,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}
