package accounts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/realtime"
)

// Subscriber is the part of realtime.Hub the watchers need.
type Subscriber interface {
	Subscribe(topic string) *realtime.Subscription
}

// profileFeed delivers every user profile written after it was created. A
// subscription dropped for lagging is replaced transparently.
type profileFeed struct {
	hub Subscriber
	sub *realtime.Subscription
}

func subscribeProfiles(hub Subscriber) *profileFeed {
	return &profileFeed{hub: hub, sub: hub.Subscribe(realtime.TopicUsers)}
}

// next blocks for the next profile write. It reports false once ctx ends.
func (f *profileFeed) next(ctx context.Context) (models.UserProfile, bool) {
	for {
		select {
		case <-ctx.Done():
			return models.UserProfile{}, false
		case evt, ok := <-f.sub.Events():
			if !ok {
				f.sub = f.hub.Subscribe(realtime.TopicUsers)
				continue
			}
			if u, isProfile := evt.Data.(models.UserProfile); isProfile {
				return u, true
			}
		}
	}
}

func (f *profileFeed) Close() { f.sub.Close() }

func profileEvents(ctx context.Context, hub Subscriber, fn func(models.UserProfile) bool) {
	feed := subscribeProfiles(hub)
	defer feed.Close()
	for {
		u, ok := feed.next(ctx)
		if !ok || !fn(u) {
			return
		}
	}
}

// ProfileWatch follows one user's profile. Create it before reading the
// profile so a change made in between is not missed.
type ProfileWatch struct {
	feed   *profileFeed
	userID string
}

func NewProfileWatch(hub Subscriber, userID string) *ProfileWatch {
	return &ProfileWatch{feed: subscribeProfiles(hub), userID: userID}
}

// Close releases the subscription. Safe to call more than once.
func (w *ProfileWatch) Close() { w.feed.Close() }

// Wait blocks until the profile becomes disabled or ctx ends. When current is
// set it is read once first, and an account that is already disabled fires
// at once. onDisabled is called at most once; Wait reports whether it was.
func (w *ProfileWatch) Wait(ctx context.Context, current func(context.Context) (models.UserProfile, error), onDisabled func(models.UserProfile)) bool {
	if current != nil {
		u, err := current(ctx)
		if errors.Is(err, ErrAccountDisabled) || (err == nil && u.Disabled) {
			u.ID = w.userID
			onDisabled(u)
			return true
		}
	}
	for {
		u, ok := w.feed.next(ctx)
		if !ok {
			return false
		}
		if u.ID == w.userID && u.Disabled {
			onDisabled(u)
			return true
		}
	}
}

// WatchProfile blocks until userID's profile becomes disabled or ctx ends. It
// calls onDisabled at most once and reports whether it did.
func WatchProfile(ctx context.Context, hub Subscriber, userID string, onDisabled func(models.UserProfile)) bool {
	w := NewProfileWatch(hub, userID)
	defer w.Close()
	return w.Wait(ctx, nil, onDisabled)
}

// SessionRevoker signs out every session of a user.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID, notice string) (int, error)
}

// DisableEnforcer signs a user out everywhere as soon as their account is
// disabled.
type DisableEnforcer struct {
	hub      Subscriber
	sessions SessionRevoker
	notice   string
	log      *slog.Logger
}

func NewDisableEnforcer(hub Subscriber, sessions SessionRevoker, notice string, logger *slog.Logger) *DisableEnforcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DisableEnforcer{hub: hub, sessions: sessions, notice: notice, log: logger}
}

// Run processes profile changes until ctx ends.
func (e *DisableEnforcer) Run(ctx context.Context) error {
	profileEvents(ctx, e.hub, func(u models.UserProfile) bool {
		if !u.Disabled {
			return true
		}
		n, err := e.sessions.RevokeUser(ctx, u.ID, e.notice)
		if err != nil {
			e.log.Error("failed to revoke sessions of disabled user", "user_id", u.ID, "error", err)
			return true
		}
		e.log.Info("signed out disabled user", "user_id", u.ID, "sessions", n)
		return true
	})
	return ctx.Err()
}
