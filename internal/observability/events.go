package observability

// Routing keys for domain events published to the broker.
const (
	EventPostCreated    = "social.post.created"
	EventPostDeleted    = "social.post.deleted"
	EventPostLiked      = "social.post.liked"
	EventCommentAdded   = "social.comment.added"
	EventCommentDeleted = "social.comment.deleted"
	EventUserFollowed   = "social.user.followed"
	EventUserUnfollowed = "social.user.unfollowed"
	EventMessageSent    = "social.message.sent"
	EventUserRegistered = "social.user.registered"
)

type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
