package ws

import "testing"

func TestConversationKeyStableAcrossPair(t *testing.T) {
	catID := 5
	if ConversationKey(1, 2, &catID) != ConversationKey(2, 1, &catID) {
		t.Fatalf("expected the same key regardless of participant order")
	}
	if ConversationKey(1, 2, nil) != "1:2:-" {
		t.Fatalf("unexpected uncategorised key: %s", ConversationKey(1, 2, nil))
	}
	if ConversationKey(2, 1, &catID) != "1:2:5" {
		t.Fatalf("unexpected key: %s", ConversationKey(2, 1, &catID))
	}
}

func TestConversationKeySeparatesCategories(t *testing.T) {
	a, b := 3, 7
	if ConversationKey(a, b, nil) == ConversationKey(a, b, &a) {
		t.Fatalf("expected category scopes to map to distinct rooms")
	}
}

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()
	key := ConversationKey(1, 2, nil)

	hub.AddClient(key, nil, ConnInfo{UserID: 1})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected room to be created")
	}

	hub.RemoveClient(key, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected room to be removed")
	}
	if len(hub.connInfo) != 0 {
		t.Fatalf("expected conn info to be cleaned up")
	}
}
