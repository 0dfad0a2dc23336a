package ws

import "testing"

func TestHubAddAndRemoveChatClient(t *testing.T) {
	hub := NewHub()

	hub.AddChatClient("u1_u2", nil, ConnInfo{ConnID: "c1", UserID: "u1"})
	if len(hub.chatRooms) != 1 {
		t.Fatalf("expected chat room to be created")
	}
	if _, ok := hub.getConnInfo("u1_u2", nil); !ok {
		t.Fatalf("expected conn info to be tracked")
	}

	hub.RemoveChatClient("u1_u2", nil)
	if len(hub.chatRooms) != 0 {
		t.Fatalf("expected chat room to be removed")
	}
	if len(hub.chatConnInfo) != 0 {
		t.Fatalf("expected conn info to be removed")
	}
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub()

	// removing from a room that never existed must not panic
	hub.RemoveChatClient("nope", nil)
	if len(hub.chatRooms) != 0 {
		t.Fatalf("expected no chat rooms")
	}
}
