package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/collabsphere-dev/collabsphere/internal/models"
)

// fakeStore keeps messages in memory and lets tests flip persistence failures.
type fakeStore struct {
	mu       sync.Mutex
	nextID   uint
	failNext bool
	members  map[uint]map[uint]bool // projectID -> userID
	users    map[uint]models.User
	messages []models.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members: make(map[uint]map[uint]bool),
		users:   make(map[uint]models.User),
	}
}

func (s *fakeStore) addMember(projectID uint, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.members[projectID] == nil {
		s.members[projectID] = make(map[uint]bool)
	}
	s.members[projectID][user.ID] = true
	s.users[user.ID] = user
}

func (s *fakeStore) CreateMessage(ctx context.Context, projectID, senderID uint, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext {
		s.failNext = false
		return models.Message{}, context.DeadlineExceeded
	}

	s.nextID++
	message := models.Message{
		Content:   content,
		SenderID:  senderID,
		ProjectID: projectID,
		Sender:    s.users[senderID],
	}
	message.ID = s.nextID
	message.CreatedAt = time.Now()

	s.messages = append(s.messages, message)
	return message, nil
}

func (s *fakeStore) IsProjectMember(ctx context.Context, userID, projectID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.members[projectID][userID], nil
}

func testUser(id uint, name string) models.User {
	user := models.User{Name: name, Email: name + "@example.com", Avatar: "🙂"}
	user.ID = id
	return user
}

func testClient(hub *Hub, user models.User) *Client {
	return NewClient(hub, nil, Identity{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	})
}

// recvEvent decodes the next outbound event queued for the client.
func recvEvent(t *testing.T, client *Client) map[string]interface{} {
	t.Helper()

	select {
	case payload := <-client.send:
		var event map[string]interface{}
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, client *Client) {
	t.Helper()

	select {
	case payload := <-client.send:
		t.Fatalf("unexpected event: %s", payload)
	default:
	}
}

func joinOK(t *testing.T, hub *Hub, client *Client, projectID uint) {
	t.Helper()

	hub.Join(context.Background(), client, projectID)
	event := recvEvent(t, client)
	if event["type"] != EventJoined {
		t.Fatalf("expected %q ack, got %v", EventJoined, event)
	}
}

func TestPostBroadcastsToAllSubscribersIncludingSender(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	bob := testUser(2, "bob")
	store.addMember(10, alice)
	store.addMember(10, bob)

	hub := NewHub(store)
	a := testClient(hub, alice)
	b := testClient(hub, bob)
	joinOK(t, hub, a, 10)
	joinOK(t, hub, b, 10)

	hub.Post(context.Background(), a, 10, "hello team")

	for _, client := range []*Client{a, b} {
		event := recvEvent(t, client)
		if event["type"] != EventReceiveMessage {
			t.Fatalf("expected receive-message, got %v", event)
		}
		if event["content"] != "hello team" {
			t.Fatalf("wrong content: %v", event["content"])
		}
		if event["project"] != float64(10) {
			t.Fatalf("wrong project: %v", event["project"])
		}
		sender, ok := event["sender"].(map[string]interface{})
		if !ok {
			t.Fatalf("missing enriched sender: %v", event)
		}
		if sender["name"] != "alice" || sender["email"] != "alice@example.com" || sender["avatar"] != "🙂" {
			t.Fatalf("sender not enriched: %v", sender)
		}
		if event["_id"] == nil || event["createdAt"] == nil {
			t.Fatalf("missing id or timestamp: %v", event)
		}
	}

	// Exactly one broadcast per subscriber.
	assertNoEvent(t, a)
	assertNoEvent(t, b)
}

func TestMessagesDeliveredInPostOrder(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	bob := testUser(2, "bob")
	store.addMember(10, alice)
	store.addMember(10, bob)

	hub := NewHub(store)
	a := testClient(hub, alice)
	b := testClient(hub, bob)
	joinOK(t, hub, a, 10)
	joinOK(t, hub, b, 10)

	hub.Post(context.Background(), a, 10, "first")
	hub.Post(context.Background(), b, 10, "second")

	for _, client := range []*Client{a, b} {
		if got := recvEvent(t, client)["content"]; got != "first" {
			t.Fatalf("expected first, got %v", got)
		}
		if got := recvEvent(t, client)["content"]; got != "second" {
			t.Fatalf("expected second, got %v", got)
		}
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	bob := testUser(2, "bob")
	store.addMember(10, alice)
	store.addMember(10, bob)

	hub := NewHub(store)
	a := testClient(hub, alice)
	b := testClient(hub, bob)
	joinOK(t, hub, a, 10)
	joinOK(t, hub, b, 10)

	hub.Leave(b, 10)
	if event := recvEvent(t, b); event["type"] != EventLeft {
		t.Fatalf("expected left ack, got %v", event)
	}

	hub.Post(context.Background(), a, 10, "after leave")

	if got := recvEvent(t, a)["content"]; got != "after leave" {
		t.Fatalf("sender missed own message: %v", got)
	}
	assertNoEvent(t, b)

	// Rejoining resumes delivery.
	joinOK(t, hub, b, 10)
	hub.Post(context.Background(), a, 10, "after rejoin")
	recvEvent(t, a)
	if got := recvEvent(t, b)["content"]; got != "after rejoin" {
		t.Fatalf("rejoined client missed message: %v", got)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	store.addMember(10, alice)

	hub := NewHub(store)
	a := testClient(hub, alice)
	joinOK(t, hub, a, 10)
	joinOK(t, hub, a, 10)

	if count := hub.SubscriberCount(10); count != 1 {
		t.Fatalf("expected 1 subscriber, got %d", count)
	}

	hub.Post(context.Background(), a, 10, "once")
	recvEvent(t, a)
	assertNoEvent(t, a)
}

func TestRejoinReplacesSubscription(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	store.addMember(10, alice)
	store.addMember(20, alice)

	hub := NewHub(store)
	a := testClient(hub, alice)
	joinOK(t, hub, a, 10)
	joinOK(t, hub, a, 20)

	if count := hub.SubscriberCount(10); count != 0 {
		t.Fatalf("old subscription not replaced, %d subscribers left", count)
	}
	if count := hub.SubscriberCount(20); count != 1 {
		t.Fatalf("expected 1 subscriber on new project, got %d", count)
	}
}

func TestNonMemberCannotJoinOrPost(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	mallory := testUser(3, "mallory")
	store.addMember(10, alice)
	store.users[mallory.ID] = mallory

	hub := NewHub(store)
	m := testClient(hub, mallory)

	hub.Join(context.Background(), m, 10)
	if event := recvEvent(t, m); event["code"] != "forbidden" {
		t.Fatalf("expected forbidden error, got %v", event)
	}
	if count := hub.SubscriberCount(10); count != 0 {
		t.Fatalf("non-member was subscribed")
	}

	hub.Post(context.Background(), m, 10, "sneaky")
	if event := recvEvent(t, m); event["code"] != "forbidden" {
		t.Fatalf("expected forbidden error, got %v", event)
	}
	if len(store.messages) != 0 {
		t.Fatalf("message from non-member was persisted")
	}
}

func TestEmptyContentRejected(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	store.addMember(10, alice)

	hub := NewHub(store)
	a := testClient(hub, alice)
	joinOK(t, hub, a, 10)

	hub.Post(context.Background(), a, 10, "   ")

	if event := recvEvent(t, a); event["code"] != "validation" {
		t.Fatalf("expected validation error, got %v", event)
	}
	if len(store.messages) != 0 {
		t.Fatalf("blank message was persisted")
	}
}

func TestStoreFailureMeansNoBroadcast(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	bob := testUser(2, "bob")
	store.addMember(10, alice)
	store.addMember(10, bob)

	hub := NewHub(store)
	a := testClient(hub, alice)
	b := testClient(hub, bob)
	joinOK(t, hub, a, 10)
	joinOK(t, hub, b, 10)

	store.failNext = true
	hub.Post(context.Background(), a, 10, "lost")

	if event := recvEvent(t, a); event["code"] != "internal" {
		t.Fatalf("sender should get an error event, got %v", event)
	}
	assertNoEvent(t, b)

	// The relay keeps working after a store failure.
	hub.Post(context.Background(), a, 10, "recovered")
	if got := recvEvent(t, a)["content"]; got != "recovered" {
		t.Fatalf("relay did not recover: %v", got)
	}
	recvEvent(t, b)
}

func TestDisconnectRemovesSubscription(t *testing.T) {
	store := newFakeStore()
	alice := testUser(1, "alice")
	bob := testUser(2, "bob")
	store.addMember(10, alice)
	store.addMember(10, bob)

	hub := NewHub(store)
	a := testClient(hub, alice)
	b := testClient(hub, bob)
	joinOK(t, hub, a, 10)
	joinOK(t, hub, b, 10)

	hub.Disconnect(b)

	if count := hub.SubscriberCount(10); count != 1 {
		t.Fatalf("expected 1 subscriber after disconnect, got %d", count)
	}

	hub.Post(context.Background(), a, 10, "still flowing")
	if got := recvEvent(t, a)["content"]; got != "still flowing" {
		t.Fatalf("remaining subscriber missed message: %v", got)
	}
}
