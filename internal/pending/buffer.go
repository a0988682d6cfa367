package pending

import (
	"context"
	"sync"
	"time"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

// Buffer is an in-process Store, suitable when a single instance of the service
// handles both legs of every login
type Buffer struct {
	entries []entry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

type entry struct {
	cred      twitterauth.TemporaryCredential
	expiresAt time.Time
}

// NewBuffer returns an empty Buffer whose entries expire after DefaultTTL
func NewBuffer() *Buffer {
	return &Buffer{
		entries: make([]entry, 0, 8),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
}

func (b *Buffer) Put(ctx context.Context, cred twitterauth.TemporaryCredential) error {
	if cred.Token == "" || cred.Secret == "" {
		return ErrInvalidCredential
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Drop credentials from logins that were never finished
	now := b.now()
	retained := b.entries[:0]
	for _, e := range b.entries {
		if !e.expiresAt.Before(now) {
			retained = append(retained, e)
		}
	}
	b.entries = append(retained, entry{
		cred:      cred,
		expiresAt: now.Add(b.ttl),
	})
	return nil
}

func (b *Buffer) Take(ctx context.Context, token string) (twitterauth.TemporaryCredential, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found twitterauth.TemporaryCredential
	ok := false
	retained := make([]entry, 0, 8)
	for _, e := range b.entries {
		// If the credential has expired, purge it
		if e.expiresAt.Before(b.now()) {
			continue
		}

		// A matching credential is returned and dropped from the buffer, since each
		// request token may only be exchanged once
		if !ok && e.cred.Token == token {
			found = e.cred
			ok = true
			continue
		}

		// All other not-yet-expired credentials should be retained
		retained = append(retained, e)
	}
	b.entries = retained

	return found, ok, nil
}
