// Package registry wires the service bundle together once at startup (spec
// §5 "shared service registry", §9 Design Notes).
//
// spec.md describes the source's registry as a lock-protected container
// whose write side is only ever used during initialisation; §9 flags that
// as over-engineered for a single-writer-then-read-only lifetime and
// recommends injecting the bundle by value at construction instead. This
// Registry does exactly that: every field is set once by New and never
// reassigned, so there is no lock to take and no interior mutability to
// reason about. The zero cost of a stale read is eliminated by never
// allowing one.
package registry

import (
	"net/http"

	"cosmossdk.io/log"

	"github.com/archway-network/alertrelay/internal/dispatcher"
	"github.com/archway-network/alertrelay/internal/notificationstore"
	"github.com/archway-network/alertrelay/internal/pipeline"
	"github.com/archway-network/alertrelay/internal/rulestore"
	"github.com/archway-network/alertrelay/internal/webhook"
)

// Registry holds one handle to each sub-service, assembled once at startup
// and shared read-only by every request handler and pipeline invocation
// afterward. It is never surfaced outside the process boundary.
type Registry struct {
	Rules         rulestore.Store
	Notifications notificationstore.Store
	Endpoints     webhook.Lookup
	Dispatcher    *dispatcher.Dispatcher
	Pipeline      *pipeline.Coordinator
}

// New assembles a Registry from already-constructed sub-services. Callers
// build the Postgres-backed stores (or MemStore-backed ones, for tests) and
// an *http.Client first, then hand them here; New does the gluing the
// source's registry init path used to do behind its lock.
func New(
	rules rulestore.Store,
	notifications notificationstore.Store,
	endpoints webhook.Lookup,
	httpClient *http.Client,
	logger log.Logger,
) *Registry {
	d := dispatcher.New(rules, notifications, endpoints, httpClient, logger)
	p := pipeline.New(rules, d, logger)

	return &Registry{
		Rules:         rules,
		Notifications: notifications,
		Endpoints:     endpoints,
		Dispatcher:    d,
		Pipeline:      p,
	}
}
