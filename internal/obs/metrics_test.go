package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                         "/",
		"/metrics":                 "/metrics",
		"/api/events/42":           "/api/events/:id",
		"/api/events/42/attend":    "/api/events/:id/attend",
		"/api/chats/join/7":        "/api/chats/join/:id",
		"/api/chats/7/messages":    "/api/chats/:id/messages",
		"/api/chats/invite/accept": "/api/chats/invite/accept",
		"/api/friends":             "/api/friends",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
