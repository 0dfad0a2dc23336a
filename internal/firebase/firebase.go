package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"social-service/internal/config"
)

// Clients bundles the Firebase-backed service clients the rest of the
// service depends on.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
	Bucket    *storage.BucketHandle
}

// Connect initializes the Firebase app and opens the Firestore, Auth
// and Storage clients.
func Connect(ctx context.Context, cfg config.Config) (*Clients, error) {
	opts := []option.ClientOption{}
	if _, err := os.Stat(cfg.CredentialsFile); err == nil {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("open auth client: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open storage client: %w", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("resolve storage bucket: %w", err)
	}

	return &Clients{Firestore: fs, Auth: authClient, Bucket: bucket}, nil
}

// Close releases the Firestore client. The other clients hold no
// connections of their own.
func (c *Clients) Close() error {
	return c.Firestore.Close()
}
