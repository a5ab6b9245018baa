package services

import (
	"context"
	"testing"

	"kidala/models"
)

func TestCanMutate(t *testing.T) {
	users := newFakeUserRepo()
	users.put(models.User{ID: "owner-1"})
	users.put(models.User{ID: "plain", Username: "plain"})
	users.put(models.User{ID: "boss", Username: "boss", Role: models.RoleAdmin})
	file := models.File{ID: "file-1", AuthorID: "owner-1"}

	cases := []struct {
		name   string
		caller Caller
		want   bool
	}{
		{"anonymous", Caller{}, false},
		{"owner", Caller{UserID: "owner-1"}, true},
		{"other user", Caller{UserID: "plain"}, false},
		{"admin role", Caller{UserID: "boss"}, true},
		{"unknown caller", Caller{UserID: "ghost"}, false},
	}
	for _, tc := range cases {
		got, err := canMutate(context.Background(), users, tc.caller, file)
		if err != nil {
			t.Fatalf("%s: canMutate returned error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: canMutate = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanMutateOrphanRecord(t *testing.T) {
	users := newFakeUserRepo()
	users.put(models.User{ID: "plain", Username: "plain"})

	// A record with no author can only be mutated by an admin.
	got, err := canMutate(context.Background(), users, Caller{UserID: "plain"}, models.File{ID: "file-1"})
	if err != nil {
		t.Fatalf("canMutate returned error: %v", err)
	}
	if got {
		t.Fatalf("non-admin must not mutate an authorless record")
	}
}
