package repositories

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"social-service/internal/models"
)

// NotificationRepository abstracts notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListForRecipient(ctx context.Context, uid string) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	UnreadQuery(uid string) firestore.Query
}

// NotificationRepo is a Firestore implementation of NotificationRepository.
type NotificationRepo struct {
	client *firestore.Client
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(client *firestore.Client) *NotificationRepo {
	return &NotificationRepo{client: client}
}

func (r *NotificationRepo) col() *firestore.CollectionRef {
	return r.client.Collection("notifications")
}

// Create writes a new notification document.
func (r *NotificationRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	ref, _, err := r.col().Add(ctx, n)
	if err != nil {
		return models.Notification{}, err
	}
	n.ID = ref.ID
	return n, nil
}

// ListForRecipient returns a user's notifications, newest first. The
// sort happens here so the recipient filter needs no composite index.
func (r *NotificationRepo) ListForRecipient(ctx context.Context, uid string) ([]models.Notification, error) {
	it := r.col().Where("recipientId", "==", uid).Documents(ctx)
	defer it.Stop()

	var items []models.Notification
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, err
		}
		n.ID = doc.Ref.ID
		items = append(items, n)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// MarkRead flags a single notification as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string) error {
	_, err := r.col().Doc(notificationID).Update(ctx, []firestore.Update{
		{Path: "isRead", Value: true},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

// UnreadQuery builds the live query backing the unread badge stream.
func (r *NotificationRepo) UnreadQuery(uid string) firestore.Query {
	return r.col().
		Where("recipientId", "==", uid).
		Where("isRead", "==", false)
}
