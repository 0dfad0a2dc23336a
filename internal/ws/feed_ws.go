package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"social-service/internal/feed"
	"social-service/internal/live"
	"social-service/internal/middleware"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/sync"
)

var errInvalidToken = errors.New("invalid token")

// FeedWebSocketHandler streams the composed home feed. Each connection
// owns one Firestore snapshot subscription, torn down when the client
// disconnects.
type FeedWebSocketHandler struct {
	postRepo repositories.PostRepository
	store    *sync.PostStore
	verifier middleware.TokenVerifier
}

// NewFeedWebSocketHandler constructs a FeedWebSocketHandler.
func NewFeedWebSocketHandler(postRepo repositories.PostRepository, store *sync.PostStore, verifier middleware.TokenVerifier) *FeedWebSocketHandler {
	return &FeedWebSocketHandler{postRepo: postRepo, store: store, verifier: verifier}
}

// Handle upgrades the connection and pushes a fresh feed view whenever
// the posts collection or the local mirror changes.
func (h *FeedWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("social-service/ws").Start(c.Request.Context(), "ws.feed")
	defer span.End()

	if _, err := authorizeWS(ctx, c, h.verifier); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	sub := live.Subscribe(streamCtx, h.postRepo.FeedQuery())
	changed, release := h.store.Watch()
	observability.IncLiveSubscriptions()
	observability.IncWSActive("feed")

	// reader: its only job is to notice the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// pump: remote snapshots reconcile the mirror, which signals below
	go func() {
		defer cancel()
		for {
			docs, ok := sub.Next(streamCtx)
			if !ok {
				return
			}
			posts, err := repositories.PostsFromDocs(docs)
			if err != nil {
				log.Printf("feed ws: decode snapshot: %v", err)
				continue
			}
			h.store.Reconcile(posts)
		}
	}()

	go func() {
		defer func() {
			cancel()
			sub.Unsubscribe()
			release()
			observability.DecLiveSubscriptions()
			observability.DecWSActive("feed")
			conn.Close()
		}()
		for {
			select {
			case <-streamCtx.Done():
				return
			case <-changed:
				if !h.push(conn, h.store.List()) {
					return
				}
			}
		}
	}()
}

func (h *FeedWebSocketHandler) push(conn *websocket.Conn, posts []models.Post) bool {
	view := feed.Compose(posts, time.Now())
	event := models.FeedEvent{Type: "feed", Feed: &view}
	if err := conn.WriteJSON(event); err != nil {
		log.Printf("feed ws: write: %v", err)
		return false
	}
	observability.IncWSEvent("feed", "feed_push")
	return true
}

func authorizeWS(ctx context.Context, c *gin.Context, verifier middleware.TokenVerifier) (string, error) {
	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}
	parts := strings.Split(token, " ")
	if len(parts) != 2 {
		return "", errInvalidToken
	}
	return verifier.Verify(ctx, parts[1])
}
