// Package alertdomain defines the rule, event, and notification-payload
// shapes the rest of the service operates on (spec §3, §4.6).
package alertdomain

// Status is the rule's enable/disable state (spec §4.7).
type Status int32

const (
	StatusEnabled Status = iota
	StatusDisabled
)

// SourceType is the coarse event-source class used to index rules against
// events (spec glossary: "Source type").
type SourceType int32

const (
	SourceCosmosTx SourceType = iota
	SourceCosmosMsg
	SourceEthTx
	SourceEthLog
	SourceArchwaysBroadcast
)

func (s SourceType) String() string {
	switch s {
	case SourceCosmosTx:
		return "COSMOS_TX"
	case SourceCosmosMsg:
		return "COSMOS_MSG"
	case SourceEthTx:
		return "ETH_TX"
	case SourceEthLog:
		return "ETH_LOG"
	case SourceArchwaysBroadcast:
		return "ARCHWAYS_BROADCAST"
	default:
		return "UNKNOWN"
	}
}

// UserAlert is a persisted declarative alert rule (spec §3, "Rule").
type UserAlert struct {
	ID          int32
	UserID      string
	ClientID    string
	// ChainID is the chain's own string identifier (e.g. "cosmoshub-4", or
	// an EVM chain id stringified), the same identifier events carry in
	// their EventContext, not a surrogate integer key.
	ChainID     string
	Status      Status
	AlertSource SourceType
	Name        string
	Message     string
	Body        RuleBody

	CreatedAtNanos int64
	UpdatedAtNanos int64
	DeletedAtNanos *int64
}

// Deleted reports whether the soft-delete marker has been set (spec §8
// invariant 2, soft-delete invisibility).
func (u *UserAlert) Deleted() bool {
	return u.DeletedAtNanos != nil
}
