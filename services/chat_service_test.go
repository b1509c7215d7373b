package services_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"pawhome_server/models"
	"pawhome_server/services"
)

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetUser(_ context.Context, userID string) (*models.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, services.ErrNotFound
}

func newChatFixture() (*services.ChatService, *fakeDynamo, *fakeUsers) {
	fake := newFakeDynamo()
	users := &fakeUsers{users: map[string]*models.User{
		"1": adopterUser("1"),
		"2": centerUser("2"),
	}}
	return &services.ChatService{Dynamo: fake, Users: users}, fake, users
}

func mustSend(t *testing.T, svc *services.ChatService, sender, recipient, content string) *models.ChatMessage {
	t.Helper()
	stored, err := svc.SendMessage(context.Background(), models.ChatMessage{
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
	})
	if err != nil {
		t.Fatalf("SendMessage(%s -> %s) err: %v", sender, recipient, err)
	}
	return stored
}

func TestSendMessageStampsRecord(t *testing.T) {
	svc, _, _ := newChatFixture()

	stored := mustSend(t, svc, "1", "2", "Hello")
	if stored.MessageID == "" {
		t.Fatal("expected a generated messageId")
	}
	if stored.IsRead {
		t.Fatal("new messages must start unread")
	}
	if stored.ConversationID != models.ConversationKey("2", "1") {
		t.Fatalf("conversation key not canonical: %s", stored.ConversationID)
	}
	if _, err := time.Parse(time.RFC3339Nano, stored.CreatedAt); err != nil {
		t.Fatalf("createdAt not a timestamp: %v", err)
	}
}

func TestSendMessageRejectsInvalid(t *testing.T) {
	svc, _, _ := newChatFixture()
	ctx := context.Background()

	cases := []struct {
		name    string
		message models.ChatMessage
	}{
		{"missing content", models.ChatMessage{SenderID: "1", RecipientID: "2"}},
		{"missing recipient", models.ChatMessage{SenderID: "1", Content: "hi"}},
		{"self message", models.ChatMessage{SenderID: "1", RecipientID: "1", Content: "hi"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SendMessage(ctx, tc.message); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestGetConversationSymmetricAndOrdered(t *testing.T) {
	svc, _, _ := newChatFixture()
	ctx := context.Background()

	mustSend(t, svc, "1", "2", "Hello")
	mustSend(t, svc, "2", "1", "Hi")

	forward, err := svc.GetConversation(ctx, "1", "2")
	if err != nil {
		t.Fatalf("GetConversation(1,2) err: %v", err)
	}
	reverse, err := svc.GetConversation(ctx, "2", "1")
	if err != nil {
		t.Fatalf("GetConversation(2,1) err: %v", err)
	}

	if !reflect.DeepEqual(forward, reverse) {
		t.Fatal("conversation lookup must be symmetric in its arguments")
	}
	if len(forward) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(forward))
	}
	if forward[0].Content != "Hello" || forward[1].Content != "Hi" {
		t.Fatalf("messages out of order: %q, %q", forward[0].Content, forward[1].Content)
	}
	for _, msg := range forward {
		if msg.IsRead {
			t.Fatalf("message %q should be unread", msg.Content)
		}
	}
}

func TestGetMessagesByParticipant(t *testing.T) {
	svc, _, users := newChatFixture()
	users.users["3"] = adopterUser("3")

	mustSend(t, svc, "1", "2", "about the tabby")
	mustSend(t, svc, "2", "1", "she's still available")
	mustSend(t, svc, "3", "2", "unrelated thread")

	messages, err := svc.GetMessagesByParticipant(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetMessagesByParticipant err: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages touching user 1, got %d", len(messages))
	}
}

func TestGetMessagesByParticipantChronological(t *testing.T) {
	svc, fake, _ := newChatFixture()
	ctx := context.Background()

	// Seed the table out of chronological order; the scan must not be
	// trusted to return chronology on its own.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		msg := models.ChatMessage{
			MessageID:      string(rune('a' + i)),
			ConversationID: models.ConversationKey("1", "2"),
			SenderID:       "1",
			RecipientID:    "2",
			Content:        "msg",
			CreatedAt:      base.Add(offset).Format(time.RFC3339Nano),
		}
		if err := fake.PutItem(ctx, models.ChatMessagesTable, msg); err != nil {
			t.Fatalf("seed message err: %v", err)
		}
	}

	messages, err := svc.GetMessagesByParticipant(ctx, "1")
	if err != nil {
		t.Fatalf("GetMessagesByParticipant err: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i-1].CreatedAt > messages[i].CreatedAt {
			t.Fatalf("messages out of order at %d: %s > %s", i, messages[i-1].CreatedAt, messages[i].CreatedAt)
		}
	}
}

func TestGetConversationsDirectory(t *testing.T) {
	svc, _, _ := newChatFixture()
	ctx := context.Background()

	// Several messages, still exactly one entry per counterparty.
	mustSend(t, svc, "1", "2", "Hello")
	mustSend(t, svc, "2", "1", "Hi")
	mustSend(t, svc, "1", "2", "When can I visit?")

	forAdopter, err := svc.GetConversations(ctx, "1")
	if err != nil {
		t.Fatalf("GetConversations(1) err: %v", err)
	}
	if len(forAdopter) != 1 {
		t.Fatalf("expected 1 conversation for user 1, got %d", len(forAdopter))
	}
	entry := forAdopter[0]
	if entry.CounterpartyID != "2" {
		t.Fatalf("unexpected counterparty: %s", entry.CounterpartyID)
	}
	if entry.Name != "Happy Paws Shelter" {
		t.Fatalf("expected adoption center name, got %q", entry.Name)
	}
	if entry.UnreadCount != 1 {
		t.Fatalf("user 1 has 1 unread (the reply), got %d", entry.UnreadCount)
	}

	forCenter, err := svc.GetConversations(ctx, "2")
	if err != nil {
		t.Fatalf("GetConversations(2) err: %v", err)
	}
	if len(forCenter) != 1 || forCenter[0].CounterpartyID != "1" {
		t.Fatalf("expected one conversation with user 1, got %+v", forCenter)
	}
	if forCenter[0].Name != "Jamie Rivera" {
		t.Fatalf("expected first+last name, got %q", forCenter[0].Name)
	}
	if forCenter[0].UnreadCount != 2 {
		t.Fatalf("user 2 has 2 unread, got %d", forCenter[0].UnreadCount)
	}

	// Idempotent with no new messages.
	again, err := svc.GetConversations(ctx, "1")
	if err != nil {
		t.Fatalf("GetConversations(1) second call err: %v", err)
	}
	if !reflect.DeepEqual(forAdopter, again) {
		t.Fatal("directory changed without new messages")
	}
}

func TestGetConversationsSkipsUnresolvableCounterparty(t *testing.T) {
	svc, _, users := newChatFixture()
	users.users["3"] = adopterUser("3")

	mustSend(t, svc, "1", "2", "hi shelter")
	mustSend(t, svc, "1", "3", "hi other")
	delete(users.users, "3")

	conversations, err := svc.GetConversations(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetConversations err: %v", err)
	}
	if len(conversations) != 1 || conversations[0].CounterpartyID != "2" {
		t.Fatalf("expected only the resolvable counterparty, got %+v", conversations)
	}
}

func TestGetConversationsNameFallback(t *testing.T) {
	svc, _, users := newChatFixture()
	users.users["2"] = &models.User{UserID: "2", Role: models.RoleAdoptionCenter}

	mustSend(t, svc, "1", "2", "hello?")

	conversations, err := svc.GetConversations(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetConversations err: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	if conversations[0].Name != "Unknown" {
		t.Fatalf("expected Unknown placeholder, got %q", conversations[0].Name)
	}
	if conversations[0].ProfilePhoto != "" {
		t.Fatalf("expected empty photo, got %q", conversations[0].ProfilePhoto)
	}
}

func TestMarkConversationReadAndUnreadCount(t *testing.T) {
	svc, _, _ := newChatFixture()
	ctx := context.Background()

	mustSend(t, svc, "1", "2", "Hello")
	mustSend(t, svc, "2", "1", "Hi")
	mustSend(t, svc, "2", "1", "Still interested?")

	count, err := svc.GetUnreadCount(ctx, "1")
	if err != nil {
		t.Fatalf("GetUnreadCount err: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread for user 1, got %d", count)
	}

	if err := svc.MarkConversationRead(ctx, "1", "2"); err != nil {
		t.Fatalf("MarkConversationRead err: %v", err)
	}

	count, err = svc.GetUnreadCount(ctx, "1")
	if err != nil {
		t.Fatalf("GetUnreadCount err: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after marking, got %d", count)
	}

	// The other side's unread message is untouched.
	count, err = svc.GetUnreadCount(ctx, "2")
	if err != nil {
		t.Fatalf("GetUnreadCount err: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected user 2 to still have 1 unread, got %d", count)
	}
}

func TestChatServiceStoreTimeout(t *testing.T) {
	svc, fake, _ := newChatFixture()
	fake.failWith = context.DeadlineExceeded

	_, err := svc.SendMessage(context.Background(), models.ChatMessage{
		SenderID: "1", RecipientID: "2", Content: "hi",
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout from SendMessage, got %v", err)
	}

	if _, err := svc.GetConversation(context.Background(), "1", "2"); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout from GetConversation, got %v", err)
	}
}
