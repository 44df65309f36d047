package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/notificationstore"
	"github.com/archway-network/alertrelay/internal/registry"
	"github.com/archway-network/alertrelay/internal/rulestore"
	"github.com/archway-network/alertrelay/internal/webhook"
)

func TestRegistryWiresPipelineThroughToDispatch(t *testing.T) {
	received := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		received <- struct{}{}
	}))
	defer server.Close()

	rules := rulestore.NewMemStore(func() int64 { return 1 })
	notifications := notificationstore.NewMemStore(func() int64 { return 1 })
	endpoints := webhook.NewMemLookup()
	endpoints.Register(webhook.Endpoint{ClientID: "client-1", WebhookEndpoint: server.URL, Valid: true})

	reg := registry.New(rules, notifications, endpoints, server.Client(), log.NewNopLogger())

	ctx := context.Background()
	_, err := reg.Rules.Create(ctx, rulestore.CreateRequest{
		UserID:  "user-1",
		ChainID: "archway-1",
		Body:    alertdomain.ArchwayBroadcast{},
	}, "client-1")
	require.NoError(t, err)

	event := &alertdomain.ArchwayBroadcastEvent{ChainID: "archway-1", Message: "hi"}
	require.NoError(t, reg.Pipeline.ProcessEvent(ctx, event))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook never received a request")
	}
}
