// Package chat implements the project-scoped messaging relay: live WebSocket
// connections announce interest in a project and receive every chat message
// posted to it, in the order the messages were persisted.
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/collabsphere-dev/collabsphere/internal/logger"
	"github.com/collabsphere-dev/collabsphere/internal/models"
	"github.com/collabsphere-dev/collabsphere/internal/types"
)

const storeTimeout = 5 * time.Second

// Hub owns the projectID → subscriber-set map. It is constructed once in main
// and handed to the WebSocket handler; nothing else touches the subscriber
// sets. A connection subscribes to at most one project at a time; joining
// another project replaces the subscription.
type Hub struct {
	store Store

	mu          sync.RWMutex
	subscribers map[uint]map[*Client]bool

	// Per-project post serialization: persist-then-broadcast runs under the
	// project's lock, which is what gives subscribers insertion order.
	locksMu sync.Mutex
	locks   map[uint]*sync.Mutex
}

func NewHub(store Store) *Hub {
	return &Hub{
		store:       store,
		subscribers: make(map[uint]map[*Client]bool),
		locks:       make(map[uint]*sync.Mutex),
	}
}

// Join subscribes the client to a project after a membership check. Joining
// the current project again is a no-op; joining a different project leaves
// the old one first.
func (h *Hub) Join(ctx context.Context, client *Client, projectID uint) {
	if projectID == 0 {
		client.sendEvent(errorEvent{Type: EventError, Code: "validation", Message: "Project ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	isMember, err := h.store.IsProjectMember(ctx, client.identity.ID, projectID)

	if err != nil {
		logger.Error("Membership check failed", "project_id", projectID, "user_id", client.identity.ID, "error", err)
		client.sendEvent(errorEvent{Type: EventError, Code: "internal", Message: "Could not verify project membership"})
		return
	}

	if !isMember {
		client.sendEvent(errorEvent{Type: EventError, Code: "forbidden", Message: "Not a member of this project"})
		return
	}

	h.mu.Lock()
	if client.projectID == projectID {
		h.mu.Unlock()
		client.sendEvent(ackEvent{Type: EventJoined, ProjectID: projectID})
		return
	}

	if client.projectID != 0 {
		h.removeLocked(client, client.projectID)
	}

	if h.subscribers[projectID] == nil {
		h.subscribers[projectID] = make(map[*Client]bool)
	}
	h.subscribers[projectID][client] = true
	client.projectID = projectID
	h.mu.Unlock()

	logger.Debug("Client joined project", "project_id", projectID, "user_id", client.identity.ID)
	client.sendEvent(ackEvent{Type: EventJoined, ProjectID: projectID})
}

// Leave unsubscribes the client from the project; a no-op if it is not
// subscribed to it.
func (h *Hub) Leave(client *Client, projectID uint) {
	h.mu.Lock()
	if client.projectID == projectID && projectID != 0 {
		h.removeLocked(client, projectID)
	}
	h.mu.Unlock()

	client.sendEvent(ackEvent{Type: EventLeft, ProjectID: projectID})
}

// Disconnect removes the client from whatever project it is subscribed to and
// closes its send channel. Safe to call once per client, at any time.
func (h *Hub) Disconnect(client *Client) {
	h.mu.Lock()
	if client.projectID != 0 {
		h.removeLocked(client, client.projectID)
	}
	h.mu.Unlock()

	close(client.send)
}

// Post persists a message and broadcasts the enriched result to every current
// subscriber of the project, including the sender. The broadcast happens only
// after persistence succeeds; on store failure the sender gets an error event
// and the message is dropped (no retry, no queue).
func (h *Hub) Post(ctx context.Context, client *Client, projectID uint, content string) {
	content = strings.TrimSpace(content)

	if content == "" || projectID == 0 {
		client.sendEvent(errorEvent{Type: EventError, Code: "validation", Message: "Message content and project ID are required"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	isMember, err := h.store.IsProjectMember(ctx, client.identity.ID, projectID)

	if err != nil {
		logger.Error("Membership check failed", "project_id", projectID, "user_id", client.identity.ID, "error", err)
		client.sendEvent(errorEvent{Type: EventError, Code: "internal", Message: "Could not verify project membership"})
		return
	}

	if !isMember {
		client.sendEvent(errorEvent{Type: EventError, Code: "forbidden", Message: "Not a member of this project"})
		return
	}

	lock := h.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	message, err := h.store.CreateMessage(ctx, projectID, client.identity.ID, content)

	if err != nil {
		logger.Error("Failed to persist message", "project_id", projectID, "user_id", client.identity.ID, "error", err)
		client.sendEvent(errorEvent{Type: EventError, Code: "internal", Message: "Failed to send message"})
		return
	}

	h.broadcast(projectID, message)
}

// SubscriberCount reports how many connections are currently joined to the
// project.
func (h *Hub) SubscriberCount(projectID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[projectID])
}

func (h *Hub) broadcast(projectID uint, message models.Message) {
	event := messageEvent{
		Type:            EventReceiveMessage,
		MessageResponse: types.NewMessageResponse(message),
	}

	payload, err := json.Marshal(event)

	if err != nil {
		logger.Error("Failed to encode message event", "message_id", message.ID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.subscribers[projectID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer with a full buffer; drop the payload rather
			// than stall the whole project.
			logger.Warn("Dropping message for slow client", "project_id", projectID, "user_id", client.identity.ID)
		}
	}
}

// removeLocked drops the client from a project's subscriber set. Caller holds
// h.mu.
func (h *Hub) removeLocked(client *Client, projectID uint) {
	if clients, exists := h.subscribers[projectID]; exists {
		delete(clients, client)

		if len(clients) == 0 {
			delete(h.subscribers, projectID)
		}
	}

	client.projectID = 0
}

func (h *Hub) projectLock(projectID uint) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()

	lock, exists := h.locks[projectID]

	if !exists {
		lock = &sync.Mutex{}
		h.locks[projectID] = lock
	}

	return lock
}
