// Package pipeline implements the Pipeline Coordinator (spec §4.1): paging
// rules for an ingested event and fanning each one out to the Filter Engine
// and Dispatcher.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/log"
	"github.com/google/uuid"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
	"github.com/archway-network/alertrelay/internal/metrics"
	"github.com/archway-network/alertrelay/internal/ruleengine"
	"github.com/archway-network/alertrelay/internal/rulestore"
)

// Sender is the subset of the Dispatcher's contract the coordinator depends
// on (spec §4.3 send()).
type Sender interface {
	Send(ctx context.Context, payload alertdomain.NotificationPayload, ownerUserID string, ruleID int32, eventID string) error
}

// Coordinator pages the Rule Store for every ingested event and fans each
// matching rule out to the Filter Engine and Dispatcher (spec §4.1).
type Coordinator struct {
	rules      rulestore.Store
	dispatcher Sender
	logger     log.Logger
}

// New builds a Coordinator.
func New(rules rulestore.Store, dispatcher Sender, logger log.Logger) *Coordinator {
	return &Coordinator{
		rules:      rules,
		dispatcher: dispatcher,
		logger:     logger.With("module", "pipeline"),
	}
}

// ProcessEvent implements the event-ingress contract (spec §6,
// process_event): it pages the Rule Store filtered to the event's chain id
// and source type in batches of 20, starting at page 0, until an empty page
// is returned. Every rule in a page gets its own fire-and-forget goroutine;
// a per-rule failure is logged at WARN and never aborts sibling rules or
// subsequent pages (spec §4.1 steps 2-4). A Rule Store paging error aborts
// the whole event (spec §4.8, "Per-rule query: a Rule Store error aborts the
// event").
func (c *Coordinator) ProcessEvent(ctx context.Context, event alertdomain.Event) error {
	metrics.EventsIngested.Mark(1)

	eventCtx := event.Context()
	correlationID := uuid.NewString()
	logger := c.logger.With("correlation_id", correlationID, "event_id", eventCtx.ID, "chain_id", eventCtx.ChainID, "source_type", eventCtx.SourceType.String())

	chainID := eventCtx.ChainID
	source := eventCtx.SourceType
	filter := rulestore.Filter{ChainID: &chainID, AlertSource: &source}

	page := 0
	for {
		rules, err := c.rules.Get(ctx, filter, &page)
		if err != nil {
			logger.Error("rule store paging failed, aborting event", "page", page, "err", err)
			return alerterrors.ErrPipelineAborted.Wrapf("page %d: %s", page, err)
		}
		if len(rules) == 0 {
			return nil
		}

		for _, rule := range rules {
			go c.processRule(ctx, logger, event, rule)
		}

		page++
	}
}

func (c *Coordinator) processRule(ctx context.Context, logger log.Logger, event alertdomain.Event, rule alertdomain.UserAlert) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RulesPanicked.Mark(1)
			logger.Warn("panic while processing rule, recovered", "rule_id", rule.ID, "reason", fmt.Sprintf("%v", r))
		}
	}()

	if rule.Status == alertdomain.StatusDisabled {
		return
	}

	metrics.RulesEvaluated.Mark(1)
	notification, err := ruleengine.Evaluate(rule.Body, event)
	if err != nil {
		if errors.Is(err, alerterrors.ErrNoMatch) || errors.Is(err, alerterrors.ErrWrongEventKind) {
			return
		}
		logger.Warn("rule evaluation failed", "rule_id", rule.ID, "reason", err.Error())
		return
	}
	metrics.RulesMatched.Mark(1)

	if err := c.dispatcher.Send(ctx, notification, rule.UserID, rule.ID, event.Context().ID); err != nil {
		logger.Warn("dispatch failed", "rule_id", rule.ID, "reason", err.Error())
	}
}
