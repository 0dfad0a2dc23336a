package repositories

import (
	"context"
	"errors"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"social-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatID derives the chat document ID for a pair of users. The UIDs
// are sorted first, so both orderings map to the same document.
func ChatID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	EnsureChat(ctx context.Context, userUID, friendUID string) (models.Chat, error)
	GetChat(ctx context.Context, chatID string) (models.Chat, error)
	ListChats(ctx context.Context, uid string) ([]models.Chat, error)
	MarkRead(ctx context.Context, chatID, uid string) error
	TouchOnMessage(ctx context.Context, chatID, senderUID, friendUID, preview string) error
}

// ChatRepo is a Firestore implementation of ChatRepository.
type ChatRepo struct {
	client *firestore.Client
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(client *firestore.Client) *ChatRepo {
	return &ChatRepo{client: client}
}

func (r *ChatRepo) col() *firestore.CollectionRef {
	return r.client.Collection("chats")
}

// EnsureChat creates the chat document for the pair if it does not
// exist yet. The merge write is idempotent, so concurrent opens from
// both participants settle on the same document.
func (r *ChatRepo) EnsureChat(ctx context.Context, userUID, friendUID string) (models.Chat, error) {
	if userUID == friendUID {
		return models.Chat{}, errors.New("cannot create chat with self")
	}
	chatID := ChatID(userUID, friendUID)
	participants := []string{userUID, friendUID}
	sort.Strings(participants)

	_, err := r.col().Doc(chatID).Set(ctx, map[string]interface{}{
		"participants": participants,
		"updatedAt":    firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return models.Chat{}, err
	}
	return r.GetChat(ctx, chatID)
}

// GetChat fetches a chat by ID.
func (r *ChatRepo) GetChat(ctx context.Context, chatID string) (models.Chat, error) {
	doc, err := r.col().Doc(chatID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.Chat{}, ErrChatNotFound
	}
	if err != nil {
		return models.Chat{}, err
	}
	var chat models.Chat
	if err := doc.DataTo(&chat); err != nil {
		return models.Chat{}, err
	}
	chat.ID = doc.Ref.ID
	return chat, nil
}

// ListChats returns the user's chats, most recently active first. The
// sort happens here rather than in the query so the array-contains
// filter needs no composite index.
func (r *ChatRepo) ListChats(ctx context.Context, uid string) ([]models.Chat, error) {
	it := r.col().Where("participants", "array-contains", uid).Documents(ctx)
	defer it.Stop()

	var chats []models.Chat
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var chat models.Chat
		if err := doc.DataTo(&chat); err != nil {
			return nil, err
		}
		chat.ID = doc.Ref.ID
		chats = append(chats, chat)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

// MarkRead flags the chat as read for the given participant.
func (r *ChatRepo) MarkRead(ctx context.Context, chatID, uid string) error {
	_, err := r.col().Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "readStatus." + uid, Value: true},
	})
	if status.Code(err) == codes.NotFound {
		return ErrChatNotFound
	}
	return err
}

// TouchOnMessage records a new message on the chat document: preview,
// activity timestamp and both read flags move in one write, so the
// counterpart's unread badge can never observe a half-applied state.
func (r *ChatRepo) TouchOnMessage(ctx context.Context, chatID, senderUID, friendUID, preview string) error {
	_, err := r.col().Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: preview},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
		{Path: "readStatus." + senderUID, Value: true},
		{Path: "readStatus." + friendUID, Value: false},
	})
	if status.Code(err) == codes.NotFound {
		return ErrChatNotFound
	}
	return err
}
