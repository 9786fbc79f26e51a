// Package ws upgrades authenticated HTTP requests to websocket connections
// and relays client actions through the hub.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/domain/entity"
	"clinic-queue/internal/hub"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	maxMessageSize = 4096
)

// ClientMessage is the single inbound frame shape. Action selects what the
// rest of the fields mean.
type ClientMessage struct {
	Action   string          `json:"action"`
	DoctorID string          `json:"doctor_id,omitempty"`
	RoomID   string          `json:"room_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionChat        = "chat"
	ActionTyping      = "typing"
	ActionEmergency   = "emergency"
)

type Handler struct {
	hub      *hub.Hub
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandler(h *hub.Hub, log *logrus.Logger) *Handler {
	return &Handler{
		hub: h,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and runs the read loop until the client
// disconnects. Auth happens before the upgrade via the usual middleware.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("Failed to upgrade connection: %+v", err)
		return
	}

	client := hub.NewClient(uuid.NewString())
	h.hub.Register(client)

	go h.writePump(conn, client)
	h.readPump(conn, client, userID.String(), role)
}

func (h *Handler) readPump(conn *websocket.Conn, client *hub.Client, userID string, role entity.UserRole) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugf("websocket read error: %+v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		h.dispatch(client, &msg, userID, role)
	}
}

func (h *Handler) dispatch(client *hub.Client, msg *ClientMessage, userID string, role entity.UserRole) {
	switch msg.Action {
	case ActionSubscribe:
		h.hub.Subscribe(client, hub.Subscription{
			DoctorID: msg.DoctorID,
			RoomID:   msg.RoomID,
		})
	case ActionUnsubscribe:
		h.hub.Subscribe(client, hub.Subscription{})
	case ActionChat:
		if msg.RoomID == "" {
			return
		}
		h.hub.PublishRoom(msg.RoomID, hub.Marshal(hub.SessionEvent{
			Type:    hub.EventSessionMessage,
			RoomID:  msg.RoomID,
			From:    userID,
			Payload: msg.Payload,
		}), "")
	case ActionTyping:
		if msg.RoomID == "" {
			return
		}
		// Typing signals never echo back to the sender.
		h.hub.PublishRoom(msg.RoomID, hub.Marshal(hub.SessionEvent{
			Type:   hub.EventSessionTyping,
			RoomID: msg.RoomID,
			From:   userID,
		}), client.ID)
	case ActionEmergency:
		if role != entity.RoleDoctor && role != entity.RoleAdmin {
			return
		}
		h.hub.PublishAll(hub.Marshal(hub.EmergencyEvent{
			Type:    hub.EventEmergencyBroadcast,
			From:    userID,
			Payload: msg.Payload,
			Time:    time.Now().UTC().Format(time.RFC3339),
		}))
	}
}

func (h *Handler) writePump(conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
