package repositories

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"social-service/internal/models"
)

// messagePageSize caps a single message history read.
const messagePageSize = 50

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateChatMessage(ctx context.Context, chatID, senderUID, text string) (models.Message, error)
	GetChatMessages(ctx context.Context, chatID string) ([]models.Message, error)
}

// MessageRepo is a Firestore implementation of MessageRepository.
// Messages live in a subcollection of their chat.
type MessageRepo struct {
	client *firestore.Client
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(client *firestore.Client) *MessageRepo {
	return &MessageRepo{client: client}
}

func (r *MessageRepo) col(chatID string) *firestore.CollectionRef {
	return r.client.Collection("chats").Doc(chatID).Collection("messages")
}

// CreateChatMessage appends a message to the chat.
func (r *MessageRepo) CreateChatMessage(ctx context.Context, chatID, senderUID, text string) (models.Message, error) {
	msg := models.Message{SenderID: senderUID, Text: text}
	ref, _, err := r.col(chatID).Add(ctx, msg)
	if err != nil {
		return models.Message{}, err
	}
	msg.ID = ref.ID
	return msg, nil
}

// GetChatMessages returns the latest page of messages, oldest first.
func (r *MessageRepo) GetChatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	it := r.col(chatID).
		OrderBy("createdAt", firestore.Desc).
		Limit(messagePageSize).
		Documents(ctx)
	defer it.Stop()

	var msgs []models.Message
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var msg models.Message
		if err := doc.DataTo(&msg); err != nil {
			return nil, err
		}
		msg.ID = doc.Ref.ID
		msgs = append(msgs, msg)
	}
	// reverse the descending page into chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
