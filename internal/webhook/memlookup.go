package webhook

import (
	"context"
	"sync"

	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// MemLookup is an in-memory Lookup, used in tests and by the dispatcher's
// own test suite.
type MemLookup struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
}

// NewMemLookup builds an empty MemLookup.
func NewMemLookup() *MemLookup {
	return &MemLookup{endpoints: make(map[string]Endpoint)}
}

// Register installs or replaces a client's endpoint.
func (l *MemLookup) Register(e Endpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.endpoints[e.ClientID] = e
}

func (l *MemLookup) GetByClientID(_ context.Context, clientID string) (Endpoint, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.endpoints[clientID]
	if !ok {
		return Endpoint{}, alerterrors.ErrWebhookNotFound.Wrapf("client %s", clientID)
	}
	if !e.Valid {
		return Endpoint{}, alerterrors.ErrJWTRevoked.Wrapf("client %s", clientID)
	}
	return e, nil
}
