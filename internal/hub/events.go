package hub

import "encoding/json"

// Event type strings shared by the HTTP-triggered publishers and the
// websocket relays.
const (
	EventQueueUpdated       = "queue.updated"
	EventEmergencyBroadcast = "emergency.broadcast"
	EventSessionMessage     = "session.message"
	EventSessionTyping      = "session.typing"
)

// QueueUpdatedEvent mirrors the queue snapshot: always recomputed from the
// store after the triggering mutation, never a delta.
type QueueUpdatedEvent struct {
	Type           string `json:"type"`
	DoctorID       string `json:"doctor_id"`
	CurrentServing int    `json:"current_serving"`
	TotalIssued    int    `json:"total_issued"`
	Remaining      int    `json:"remaining"`
}

type EmergencyEvent struct {
	Type    string          `json:"type"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload"`
	Time    string          `json:"time"`
}

type SessionEvent struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func Marshal(event interface{}) []byte {
	data, _ := json.Marshal(event)
	return data
}
