package repositories

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"social-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// usernameSearchLimit caps prefix search results per query.
const usernameSearchLimit = 20

// UserRepository abstracts profile persistence.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (models.User, error)
	CreateProfile(ctx context.Context, user models.User) error
	UpdateProfile(ctx context.Context, uid string, fields map[string]interface{}) error
	SavePushToken(ctx context.Context, uid, email, token string) error
	SearchByUsernamePrefix(ctx context.Context, prefix, excludeUID string) ([]models.User, error)
	Follow(ctx context.Context, actorUID, targetUID string) error
	Unfollow(ctx context.Context, actorUID, targetUID string) error
}

// UserRepo is a Firestore implementation of UserRepository.
type UserRepo struct {
	client *firestore.Client
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(client *firestore.Client) *UserRepo {
	return &UserRepo{client: client}
}

func (r *UserRepo) col() *firestore.CollectionRef {
	return r.client.Collection("users")
}

// GetUser fetches a profile document by UID.
func (r *UserRepo) GetUser(ctx context.Context, uid string) (models.User, error) {
	doc, err := r.col().Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return models.User{}, err
	}
	user.UID = doc.Ref.ID
	return user, nil
}

// CreateProfile writes the initial profile document keyed by UID.
func (r *UserRepo) CreateProfile(ctx context.Context, user models.User) error {
	if user.Following == nil {
		user.Following = []string{}
	}
	if user.Followers == nil {
		user.Followers = []string{}
	}
	_, err := r.col().Doc(user.UID).Set(ctx, user)
	return err
}

// UpdateProfile merges the given fields into the profile document.
func (r *UserRepo) UpdateProfile(ctx context.Context, uid string, fields map[string]interface{}) error {
	_, err := r.col().Doc(uid).Set(ctx, fields, firestore.MergeAll)
	if status.Code(err) == codes.NotFound {
		return ErrUserNotFound
	}
	return err
}

// SavePushToken stores the device push token on the profile, creating
// the document if registration has not written it yet.
func (r *UserRepo) SavePushToken(ctx context.Context, uid, email, token string) error {
	_, err := r.col().Doc(uid).Set(ctx, map[string]interface{}{
		"pushToken": token,
		"email":     email,
	}, firestore.MergeAll)
	return err
}

// SearchByUsernamePrefix returns users whose username starts with the
// given prefix, excluding the caller. The upper bound uses the last
// code point in the private use area so the range covers every
// continuation of the prefix.
func (r *UserRepo) SearchByUsernamePrefix(ctx context.Context, prefix, excludeUID string) ([]models.User, error) {
	it := r.col().
		Where("username", ">=", prefix).
		Where("username", "<=", prefix+"\uf8ff").
		Limit(usernameSearchLimit).
		Documents(ctx)
	defer it.Stop()

	var users []models.User
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if doc.Ref.ID == excludeUID {
			continue
		}
		var user models.User
		if err := doc.DataTo(&user); err != nil {
			return nil, err
		}
		user.UID = doc.Ref.ID
		users = append(users, user)
	}
	return users, nil
}

// Follow adds the edge to both adjacency sets in one transaction.
func (r *UserRepo) Follow(ctx context.Context, actorUID, targetUID string) error {
	return r.setFollowEdge(ctx, actorUID, targetUID, true)
}

// Unfollow removes the edge from both adjacency sets in one transaction.
func (r *UserRepo) Unfollow(ctx context.Context, actorUID, targetUID string) error {
	return r.setFollowEdge(ctx, actorUID, targetUID, false)
}

func (r *UserRepo) setFollowEdge(ctx context.Context, actorUID, targetUID string, follow bool) error {
	if actorUID == targetUID {
		return errors.New("cannot follow self")
	}
	actorRef := r.col().Doc(actorUID)
	targetRef := r.col().Doc(targetUID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(targetRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrUserNotFound
			}
			return err
		}
		var op interface{} = firestore.ArrayUnion(targetUID)
		var rev interface{} = firestore.ArrayUnion(actorUID)
		if !follow {
			op = firestore.ArrayRemove(targetUID)
			rev = firestore.ArrayRemove(actorUID)
		}
		if err := tx.Update(actorRef, []firestore.Update{{Path: "following", Value: op}}); err != nil {
			return err
		}
		return tx.Update(targetRef, []firestore.Update{{Path: "followers", Value: rev}})
	})
}
