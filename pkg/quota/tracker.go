package quota

import (
	"fmt"
	"math"
	"time"
)

// Kind identifies which per-session budget a request draws from.
type Kind string

const (
	KindSearch Kind = "search"
	KindChat   Kind = "chat"
)

// Config encapsulates quota limits and cooldown windows
type Config struct {
	MaxSearches      int
	MaxChats         int
	UserCooldown     time.Duration
	ProviderCooldown time.Duration
}

// DefaultConfig returns the default quota configuration
func DefaultConfig() Config {
	return Config{
		MaxSearches:      3,
		MaxChats:         5,
		UserCooldown:     15 * time.Minute,
		ProviderCooldown: 30 * time.Minute,
	}
}

// ExceededError is returned when a session denies a request on its local budget
type ExceededError struct {
	Kind        Kind
	MinutesLeft int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("%s quota exhausted, try again in %d minutes", e.Kind, e.MinutesLeft)
}

// Tracker tracks usage counters and cooldowns for a single session.
// It is NOT safe for concurrent use; the owning session must serialize
// the check-then-increment sequence as one critical section.
type Tracker struct {
	cfg Config
	now func() time.Time

	searchCount int
	chatCount   int

	searchExhaustedAt   *time.Time
	chatExhaustedAt     *time.Time
	providerExhaustedAt *time.Time
}

// NewTracker creates a tracker using the wall clock.
func NewTracker(cfg Config) *Tracker {
	return NewTrackerWithClock(cfg, time.Now)
}

// NewTrackerWithClock allows injecting a clock for tests.
func NewTrackerWithClock(cfg Config, now func() time.Time) *Tracker {
	return &Tracker{cfg: cfg, now: now}
}

// CanUse checks whether a request of the given kind is admitted.
// Returns (allowed, minutes left in cooldown when denied).
//
// The check is also the side-effecting trigger: the first call after a
// counter reaches its limit starts the cooldown, and a call after the
// window has lapsed clears the timestamp and resets the counter before
// re-evaluating. There is no separate "exhaust" event.
func (t *Tracker) CanUse(kind Kind) (bool, int) {
	count, limit, exhaustedAt := t.stateFor(kind)

	if count >= limit {
		if *exhaustedAt != nil {
			minutesLeft := t.minutesRemaining(**exhaustedAt, t.cfg.UserCooldown)
			if minutesLeft > 0 {
				return false, minutesLeft
			}
			// Cooldown lapsed: reset and fall through to the provider check.
			*exhaustedAt = nil
			t.resetCount(kind)
		} else {
			// This call just hit the limit; the cooldown starts now.
			ts := t.now()
			*exhaustedAt = &ts
			return false, int(t.cfg.UserCooldown.Minutes())
		}
	}

	if t.providerExhaustedAt != nil {
		minutesLeft := t.minutesRemaining(*t.providerExhaustedAt, t.cfg.ProviderCooldown)
		if minutesLeft > 0 {
			return false, minutesLeft
		}
		t.providerExhaustedAt = nil
	}

	return true, 0
}

// Increment bumps the counter for the given kind. Callers must check
// CanUse first and only increment on an admitted request.
func (t *Tracker) Increment(kind Kind) {
	if kind == KindSearch {
		t.searchCount++
	} else {
		t.chatCount++
	}
}

// MarkProviderExhausted starts the provider-wide cooldown. Called when the
// upstream provider itself reports exhaustion, independent of local counters.
func (t *Tracker) MarkProviderExhausted() {
	ts := t.now()
	t.providerExhaustedAt = &ts
}

// Remaining returns how many requests of the given kind are left before
// the limit, floored at zero.
func (t *Tracker) Remaining(kind Kind) int {
	count, limit, _ := t.stateFor(kind)
	if limit > count {
		return limit - count
	}
	return 0
}

// Used returns the current counter for the given kind.
func (t *Tracker) Used(kind Kind) int {
	count, _, _ := t.stateFor(kind)
	return count
}

// KindStatus is the quota snapshot for one budget
type KindStatus struct {
	Allowed         bool `json:"allowed"`
	Used            int  `json:"used"`
	Remaining       int  `json:"remaining"`
	CooldownMinutes int  `json:"cooldown_minutes"`
}

// Status is the full quota snapshot for a session
type Status struct {
	Search            KindStatus `json:"search"`
	Chat              KindStatus `json:"chat"`
	ProviderExhausted bool       `json:"provider_exhausted"`
}

// Status returns the current quota snapshot. It performs the same lazy
// cooldown maintenance as CanUse, so calling it can clear an expired window.
func (t *Tracker) Status() Status {
	searchAllowed, searchCooldown := t.CanUse(KindSearch)
	chatAllowed, chatCooldown := t.CanUse(KindChat)

	if searchAllowed {
		searchCooldown = 0
	}
	if chatAllowed {
		chatCooldown = 0
	}

	return Status{
		Search: KindStatus{
			Allowed:         searchAllowed,
			Used:            t.searchCount,
			Remaining:       t.Remaining(KindSearch),
			CooldownMinutes: searchCooldown,
		},
		Chat: KindStatus{
			Allowed:         chatAllowed,
			Used:            t.chatCount,
			Remaining:       t.Remaining(KindChat),
			CooldownMinutes: chatCooldown,
		},
		ProviderExhausted: t.providerExhaustedAt != nil,
	}
}

func (t *Tracker) stateFor(kind Kind) (int, int, **time.Time) {
	if kind == KindSearch {
		return t.searchCount, t.cfg.MaxSearches, &t.searchExhaustedAt
	}
	return t.chatCount, t.cfg.MaxChats, &t.chatExhaustedAt
}

func (t *Tracker) resetCount(kind Kind) {
	if kind == KindSearch {
		t.searchCount = 0
	} else {
		t.chatCount = 0
	}
}

// minutesRemaining reports the cooldown minutes left, rounded up, never negative.
func (t *Tracker) minutesRemaining(exhaustedAt time.Time, cooldown time.Duration) int {
	remaining := cooldown - t.now().Sub(exhaustedAt)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Minutes()))
}
