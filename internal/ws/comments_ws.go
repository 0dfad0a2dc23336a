package ws

import (
	"context"
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"social-service/internal/live"
	"social-service/internal/middleware"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

// CommentWebSocketHandler streams a post's comment thread while it is
// open on a client.
type CommentWebSocketHandler struct {
	commentRepo repositories.CommentRepository
	verifier    middleware.TokenVerifier
}

// NewCommentWebSocketHandler constructs a CommentWebSocketHandler.
func NewCommentWebSocketHandler(commentRepo repositories.CommentRepository, verifier middleware.TokenVerifier) *CommentWebSocketHandler {
	return &CommentWebSocketHandler{commentRepo: commentRepo, verifier: verifier}
}

// Handle upgrades the connection and pushes the full thread, oldest
// first, on every change.
func (h *CommentWebSocketHandler) Handle(c *gin.Context) {
	postID := c.Param("post_id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	ctx, span := otel.Tracer("social-service/ws").Start(c.Request.Context(), "ws.comments")
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
	sub := live.Subscribe(streamCtx, h.commentRepo.ThreadQuery(postID))
	observability.IncLiveSubscriptions()
	observability.IncWSActive("comments")

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			cancel()
			sub.Unsubscribe()
			observability.DecLiveSubscriptions()
			observability.DecWSActive("comments")
			conn.Close()
		}()
		for {
			docs, ok := sub.Next(streamCtx)
			if !ok {
				return
			}
			comments, err := commentsFromDocs(docs)
			if err != nil {
				log.Printf("comments ws: decode snapshot: %v", err)
				continue
			}
			event := models.CommentThreadEvent{Type: "comments", PostID: postID, Comments: comments}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			observability.IncWSEvent("comments", "thread_push")
		}
	}()
}

func commentsFromDocs(docs []*firestore.DocumentSnapshot) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		var comment models.Comment
		if err := doc.DataTo(&comment); err != nil {
			return nil, err
		}
		comment.ID = doc.Ref.ID
		comments = append(comments, comment)
	}
	return comments, nil
}
