package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"paper-brain-be/pkg/store"
)

// SessionRepository holds live sessions in memory. Sessions expire after
// the configured TTL; expiry destroys the quota tracker and loaded papers
// with them.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// Count returns the number of live sessions, for the health endpoint.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
