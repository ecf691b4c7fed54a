package chat

import "github.com/collabsphere-dev/collabsphere/internal/types"

// Client → server event types.
const (
	EventJoinProject  = "join-project"
	EventLeaveProject = "leave-project"
	EventSendMessage  = "send-message"
)

// Server → client event types.
const (
	EventConnected      = "connected"
	EventJoined         = "joined"
	EventLeft           = "left"
	EventReceiveMessage = "receive-message"
	EventError          = "error"
)

// inboundEvent is the single envelope shape clients send. The sender identity
// is taken from the authenticated connection, never from the payload, so any
// userId/userName fields a client includes are ignored.
type inboundEvent struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	ProjectID uint   `json:"projectId"`
}

type ackEvent struct {
	Type      string `json:"type"`
	ProjectID uint   `json:"project,omitempty"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// messageEvent wraps the enriched persisted message for broadcast.
type messageEvent struct {
	Type string `json:"type"`
	types.MessageResponse
}
