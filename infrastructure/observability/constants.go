package observability

// Metric name prefixes
const (
	MetricPrefix = "dotabot"
)

// Metric names
const (
	// Session metrics
	SessionsFiredTotal = MetricPrefix + ".sessions.fired_total"

	// Wager metrics
	WagersSettledTotal = MetricPrefix + ".wagers.settled_total"
	WagersExpiredTotal = MetricPrefix + ".wagers.expired_total"
	WagersActive       = MetricPrefix + ".wagers.active"

	// Ledger metrics
	LedgerUpdatesTotal   = MetricPrefix + ".ledger.updates_total"
	LedgerUpdateDuration = MetricPrefix + ".ledger.update_duration"
)

// Label keys
const (
	LabelType    = "type"
	LabelResult  = "result"
	LabelVariant = "variant"
	LabelStatus  = "status"
)

// Wager results
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// Ledger update statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)
