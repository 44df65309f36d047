// Package alerterrors collects the sentinel errors every alert-relay
// component wraps and returns. One codespace per component, following the
// cosmos-sdk module convention (see x/erc20/types errors in the teacher
// module) so that errors.Is keeps working across package boundaries.
package alerterrors

import "cosmossdk.io/errors"

const (
	codespaceFilter              = "filter"
	codespaceRuleStore           = "rulestore"
	codespaceNotificationStore   = "notificationstore"
	codespaceDispatcher          = "dispatcher"
	codespacePipeline            = "pipeline"
	codespaceWebhook             = "webhook"
)

// Filter engine errors (spec §7: WrongEventKind / NoMatch / Decode).
var (
	ErrWrongEventKind = errors.Register(codespaceFilter, 2, "event kind does not match rule body")
	ErrNoMatch        = errors.Register(codespaceFilter, 3, "event does not satisfy rule predicate")
	ErrDecode         = errors.Register(codespaceFilter, 4, "malformed message, log, or ABI payload")
	ErrUnknownVariant = errors.Register(codespaceFilter, 5, "unknown rule body variant")
)

// Rule store errors (spec §7: InvalidInput / NotFound / Decode).
var (
	ErrRuleNotFound    = errors.Register(codespaceRuleStore, 2, "rule not found")
	ErrInvalidRule     = errors.Register(codespaceRuleStore, 3, "rule request is invalid")
	ErrRuleDecode      = errors.Register(codespaceRuleStore, 4, "stored rule body could not be decoded")
	ErrRuleStoreFailed = errors.Register(codespaceRuleStore, 5, "rule store operation failed")
)

// Notification store errors.
var (
	ErrNotificationNotFound = errors.Register(codespaceNotificationStore, 2, "notification not found")
	ErrNotificationDecode   = errors.Register(codespaceNotificationStore, 3, "stored notification payload could not be decoded")
	ErrNotificationStoreFailed = errors.Register(codespaceNotificationStore, 4, "notification store operation failed")
	ErrTelegramChatIDNotFound  = errors.Register(codespaceNotificationStore, 5, "no telegram chat id registered for username")
)

// Dispatcher errors (spec §7: Transport).
var (
	ErrWebhookNotFound = errors.Register(codespaceDispatcher, 2, "no webhook endpoint registered for client")
	ErrTransport       = errors.Register(codespaceDispatcher, 3, "webhook delivery failed at the transport layer")
)

// Pipeline coordinator errors.
var (
	ErrPipelineAborted = errors.Register(codespacePipeline, 2, "rule store paging failed, event processing aborted")
)

// Webhook endpoint / JWT record errors (spec §7: Auth).
var (
	ErrJWTRevoked = errors.Register(codespaceWebhook, 2, "jwt associated with client has been revoked")
)
