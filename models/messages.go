package models

import (
	"encoding/json"
	"log"
)

// PetContext is an optional structured snapshot of the pet a message is
// about, embedded so the conversation keeps rendering it even if the pet
// listing is later edited or removed.
type PetContext struct {
	ID     string `dynamodbav:"id" json:"id"`
	Name   string `dynamodbav:"name" json:"name"`
	Breed  string `dynamodbav:"breed" json:"breed"`
	Age    int    `dynamodbav:"age" json:"age"`
	Gender string `dynamodbav:"gender" json:"gender"`
	Image  string `dynamodbav:"image" json:"image"`
}

type ChatMessage struct {
	MessageID      string      `dynamodbav:"messageId" json:"messageId"`
	ConversationID string      `dynamodbav:"conversationId" json:"conversationId"`
	SenderID       string      `dynamodbav:"senderId" json:"senderId"`
	RecipientID    string      `dynamodbav:"recipientId" json:"recipientId"`
	Content        string      `dynamodbav:"content" json:"content"`
	CreatedAt      string      `dynamodbav:"createdAt" json:"createdAt"`
	IsRead         bool        `dynamodbav:"isRead" json:"isRead"`
	PetContext     *PetContext `dynamodbav:"petContext,omitempty" json:"petContext,omitempty"`
}

// ParsePetContext decodes the optional pet snapshot from a raw request
// field. Both the HTTP and socket send paths go through here, so a
// malformed snapshot is dropped the same way on each: the message body
// still goes through without it.
func ParsePetContext(raw json.RawMessage) *PetContext {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var pet PetContext
	if err := json.Unmarshal(raw, &pet); err != nil {
		log.Printf("Ignoring malformed petContext: %v", err)
		return nil
	}
	return &pet
}

// ConversationKey returns the canonical id for the unordered pair of
// participants, so lookups are symmetric in sender and recipient.
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "#" + b
}

// Conversation is a derived directory entry for one counterparty; it is
// never stored, always recomputed from the message log.
type Conversation struct {
	CounterpartyID  string `json:"id"`
	Name            string `json:"name"`
	ProfilePhoto    string `json:"profilePhoto"`
	LastMessageTime string `json:"lastMessageTime"`
	UnreadCount     int    `json:"unreadCount"`
}

// ChatMessagesTable is the DynamoDB table name for chat messages
const ChatMessagesTable = "ChatMessages"
