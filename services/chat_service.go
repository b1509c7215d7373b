package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"pawhome_server/models"
	"pawhome_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// UserLookup resolves a user id to its account record. *UserService is
// the production implementation.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// ChatService owns the append-only message log and the conversation
// directory derived from it.
type ChatService struct {
	Dynamo DynamoAPI
	Users  UserLookup
}

// SendMessage stamps and persists a new message, returning the stored
// record as it will be echoed to the sender and broadcast to subscribers.
func (s *ChatService) SendMessage(ctx context.Context, message models.ChatMessage) (*models.ChatMessage, error) {
	if message.SenderID == "" || message.RecipientID == "" || message.Content == "" {
		return nil, errors.New("senderId, recipientId and content are required")
	}
	if message.SenderID == message.RecipientID {
		return nil, errors.New("sender and recipient must be distinct")
	}

	if message.MessageID == "" {
		message.MessageID = uuid.New().String()
	}
	message.ConversationID = models.ConversationKey(message.SenderID, message.RecipientID)
	message.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	message.IsRead = false

	sctx, cancel := storeContext(ctx)
	defer cancel()
	if err := s.Dynamo.PutItem(sctx, models.ChatMessagesTable, message); err != nil {
		return nil, translateStoreErr(err)
	}
	return &message, nil
}

// GetConversation returns every message between the two users in either
// direction, ascending by timestamp. Symmetric in a and b: both orderings
// map to the same canonical pair key.
func (s *ChatService) GetConversation(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	sctx, cancel := storeContext(ctx)
	defer cancel()
	items, err := s.Dynamo.QueryItems(sctx, models.ChatMessagesTable,
		"conversationId = :conversationId",
		map[string]types.AttributeValue{
			":conversationId": &types.AttributeValueMemberS{Value: models.ConversationKey(a, b)},
		}, nil, 0)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	var messages []models.ChatMessage
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	sortMessages(messages)
	return messages, nil
}

// GetMessagesByParticipant returns every message where the user appears as
// sender or recipient, oldest first. The conversation directory consumes
// this so it never needs a per-counterparty round trip.
func (s *ChatService) GetMessagesByParticipant(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	sctx, cancel := storeContext(ctx)
	defer cancel()
	items, err := s.Dynamo.ScanItems(sctx, models.ChatMessagesTable,
		"senderId = :userId OR recipientId = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}, nil)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	var messages []models.ChatMessage
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	// A scan returns items in undefined order; restore chronology.
	sortMessages(messages)
	return messages, nil
}

// GetConversations derives the distinct counterparties the user has
// exchanged messages with, resolving display metadata for each. A
// counterparty that no longer resolves is skipped, never a failure.
func (s *ChatService) GetConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	messages, err := s.GetMessagesByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Group by counterparty; the map guarantees uniqueness regardless of
	// how many messages were exchanged.
	byCounterparty := make(map[string][]models.ChatMessage)
	for _, msg := range messages {
		other := msg.RecipientID
		if msg.SenderID != userID {
			other = msg.SenderID
		}
		if other == userID {
			// Should not occur: the log never stores self-messages.
			continue
		}
		byCounterparty[other] = append(byCounterparty[other], msg)
	}

	conversations := make([]models.Conversation, 0, len(byCounterparty))
	for otherID, thread := range byCounterparty {
		user, err := s.Users.GetUser(ctx, otherID)
		if err != nil {
			log.Printf("Skipping conversation with unresolvable user %s: %v", otherID, err)
			continue
		}

		sortMessages(thread)
		unread := 0
		for _, msg := range thread {
			if msg.RecipientID == userID && !msg.IsRead {
				unread++
			}
		}

		conversations = append(conversations, models.Conversation{
			CounterpartyID:  otherID,
			Name:            user.DisplayName(),
			ProfilePhoto:    user.ProfilePhoto,
			LastMessageTime: thread[len(thread)-1].CreatedAt,
			UnreadCount:     unread,
		})
	}

	// Most recent activity first, so clients can render the list as-is.
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessageTime > conversations[j].LastMessageTime
	})
	return conversations, nil
}

// GetUnreadMessages returns every unread message addressed to the user,
// across all conversations.
func (s *ChatService) GetUnreadMessages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	sctx, cancel := storeContext(ctx)
	defer cancel()
	items, err := s.Dynamo.ScanItems(sctx, models.ChatMessagesTable,
		"recipientId = :userId AND isRead = :false",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
			":false":  &types.AttributeValueMemberBOOL{Value: false},
		}, nil)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	var messages []models.ChatMessage
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// GetUnreadCount is the total across GetUnreadMessages.
func (s *ChatService) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	messages, err := s.GetUnreadMessages(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(messages), nil
}

// MarkConversationRead flips the read flag on every message in the
// conversation that is addressed to readerID and still unread. The flag
// transitions false -> true exactly once; already-read messages are
// untouched.
func (s *ChatService) MarkConversationRead(ctx context.Context, readerID, otherID string) error {
	conversationID := models.ConversationKey(readerID, otherID)

	sctx, cancel := storeContext(ctx)
	defer cancel()
	items, err := s.Dynamo.QueryItems(sctx, models.ChatMessagesTable,
		"conversationId = :conversationId",
		map[string]types.AttributeValue{
			":conversationId": &types.AttributeValueMemberS{Value: conversationID},
		}, nil, 0)
	if err != nil {
		return translateStoreErr(err)
	}

	for _, item := range items {
		if utils.ExtractString(item, "recipientId") != readerID || utils.ExtractBool(item, "isRead") {
			continue
		}
		messageID := utils.ExtractString(item, "messageId")
		if messageID == "" {
			continue
		}

		key := map[string]types.AttributeValue{
			"conversationId": &types.AttributeValueMemberS{Value: conversationID},
			"messageId":      &types.AttributeValueMemberS{Value: messageID},
		}
		_, err := s.Dynamo.UpdateItem(sctx, models.ChatMessagesTable,
			"SET isRead = :true", key,
			map[string]types.AttributeValue{
				":true": &types.AttributeValueMemberBOOL{Value: true},
			}, nil)
		if err != nil {
			log.Printf("Failed to mark message %s as read: %v", messageID, err)
			return translateStoreErr(err)
		}
	}
	return nil
}

// sortMessages orders ascending by timestamp; the stable sort preserves
// stored order for equal timestamps.
func sortMessages(messages []models.ChatMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		ti, errI := time.Parse(time.RFC3339Nano, messages[i].CreatedAt)
		tj, errJ := time.Parse(time.RFC3339Nano, messages[j].CreatedAt)
		if errI != nil || errJ != nil {
			return messages[i].CreatedAt < messages[j].CreatedAt
		}
		return ti.Before(tj)
	})
}
