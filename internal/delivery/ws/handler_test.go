package ws

import (
	"encoding/json"
	"testing"

	"clinic-queue/internal/domain/entity"
	"clinic-queue/internal/hub"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *hub.Hub) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	h := hub.New(log)
	return NewHandler(h, log), h
}

func TestDispatchSubscribeScopesClient(t *testing.T) {
	handler, h := newTestHandler()

	client := hub.NewClient("c1")
	h.Register(client)

	handler.dispatch(client, &ClientMessage{Action: ActionSubscribe, DoctorID: "doc-1"}, "user-1", entity.RolePatient)

	h.PublishQueue("doc-1", []byte("mine"))
	h.PublishQueue("doc-2", []byte("not mine"))
	require.Len(t, client.Send, 1)
	assert.Equal(t, []byte("mine"), <-client.Send)

	handler.dispatch(client, &ClientMessage{Action: ActionUnsubscribe}, "user-1", entity.RolePatient)

	h.PublishQueue("doc-2", []byte("now visible"))
	assert.Len(t, client.Send, 1)
}

func TestDispatchTypingSkipsSender(t *testing.T) {
	handler, h := newTestHandler()

	sender := hub.NewClient("sender")
	h.Register(sender)
	handler.dispatch(sender, &ClientMessage{Action: ActionSubscribe, RoomID: "room-1"}, "user-1", entity.RolePatient)

	peer := hub.NewClient("peer")
	h.Register(peer)
	handler.dispatch(peer, &ClientMessage{Action: ActionSubscribe, RoomID: "room-1"}, "user-2", entity.RoleDoctor)

	handler.dispatch(sender, &ClientMessage{Action: ActionTyping, RoomID: "room-1"}, "user-1", entity.RolePatient)

	assert.Len(t, sender.Send, 0)
	require.Len(t, peer.Send, 1)

	var event hub.SessionEvent
	require.NoError(t, json.Unmarshal(<-peer.Send, &event))
	assert.Equal(t, hub.EventSessionTyping, event.Type)
	assert.Equal(t, "user-1", event.From)
}

func TestDispatchChatEchoesToWholeRoom(t *testing.T) {
	handler, h := newTestHandler()

	sender := hub.NewClient("sender")
	h.Register(sender)
	handler.dispatch(sender, &ClientMessage{Action: ActionSubscribe, RoomID: "room-1"}, "user-1", entity.RolePatient)

	payload := json.RawMessage(`{"text":"hello"}`)
	handler.dispatch(sender, &ClientMessage{Action: ActionChat, RoomID: "room-1", Payload: payload}, "user-1", entity.RolePatient)

	// Chat messages do echo back, unlike typing signals.
	require.Len(t, sender.Send, 1)

	var event hub.SessionEvent
	require.NoError(t, json.Unmarshal(<-sender.Send, &event))
	assert.Equal(t, hub.EventSessionMessage, event.Type)
	assert.JSONEq(t, `{"text":"hello"}`, string(event.Payload))
}

func TestDispatchEmergencyRequiresStaffRole(t *testing.T) {
	handler, h := newTestHandler()

	listener := hub.NewClient("listener")
	h.Register(listener)

	sender := hub.NewClient("sender")
	h.Register(sender)

	handler.dispatch(sender, &ClientMessage{Action: ActionEmergency, Payload: json.RawMessage(`{}`)}, "user-1", entity.RolePatient)
	assert.Len(t, listener.Send, 0, "patients cannot broadcast emergencies")

	handler.dispatch(sender, &ClientMessage{Action: ActionEmergency, Payload: json.RawMessage(`{}`)}, "user-2", entity.RoleDoctor)
	require.Len(t, listener.Send, 1)

	var event hub.EmergencyEvent
	require.NoError(t, json.Unmarshal(<-listener.Send, &event))
	assert.Equal(t, hub.EventEmergencyBroadcast, event.Type)
	assert.Equal(t, "user-2", event.From)
}

func TestClientMessageIgnoresUnknownAction(t *testing.T) {
	handler, h := newTestHandler()

	client := hub.NewClient("c1")
	h.Register(client)

	handler.dispatch(client, &ClientMessage{Action: "bogus"}, "user-1", entity.RolePatient)

	h.PublishQueue("doc-1", []byte("update"))
	assert.Len(t, client.Send, 1, "unknown actions must not change the subscription")
}
