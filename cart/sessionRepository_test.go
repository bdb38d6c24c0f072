package cart

import (
	"context"
	"testing"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRepository(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionRepository(client, time.Hour), mr
}

func TestLoadMissingSessionIsFresh(t *testing.T) {
	repo, _ := newTestRepository(t)
	s, err := repo.Load(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if s.ID != "abc" || s.Authenticated || s.Language != LangEnglish {
		t.Fatalf("unexpected fresh session %+v", s)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepository(t)

	s := NewSession("s1")
	s.Login("u1", models.RoleUser)
	_ = s.Cart.Add(product("atta", 55, models.UnitKilogram), 1.25)
	if err := repo.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(sessionKey("s1")); ttl != time.Hour {
		t.Fatalf("expected ttl of 1h, got %s", ttl)
	}
	if ok, _ := mr.SIsMember(userSessionsKey("u1"), "s1"); !ok {
		t.Fatal("session not indexed under its user")
	}

	loaded, err := repo.Load(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.UserID != "u1" || loaded.Cart.Count() != 1 || loaded.Cart.Items[0].Quantity != 1.25 {
		t.Fatalf("unexpected loaded session %+v", loaded)
	}
}

func TestRevokeUserSignsOutEverySession(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	for _, id := range []string{"phone", "laptop"} {
		s := NewSession(id)
		s.Login("u1", models.RoleUser)
		_ = s.Cart.Add(product("salt", 25, models.UnitKilogram), 1)
		if err := repo.Save(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	other := NewSession("other")
	other.Login("u2", models.RoleUser)
	_ = repo.Save(ctx, other)

	n, err := repo.RevokeUser(ctx, "u1", NoticeAccountDisabled)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 revoked sessions, got %d", n)
	}
	for _, id := range []string{"phone", "laptop"} {
		s, _ := repo.Load(ctx, id)
		if s.Authenticated || !s.Cart.IsEmpty() || s.Notice != NoticeAccountDisabled {
			t.Fatalf("session %s still signed in: %+v", id, s)
		}
	}
	if s, _ := repo.Load(ctx, "other"); !s.Authenticated {
		t.Fatal("unrelated session was signed out")
	}
}
