// Package gate holds the pure run-admission checks evaluated before any
// external API work happens: a minimum interval since the last successful
// post, and a monthly post quota. Both must pass; the caller persists the
// last-run timestamp only after a fully successful publish.
package gate

import (
	"fmt"
	"time"
)

// MinInterval is the minimum gap between two successful runs.
const MinInterval = 2 * time.Hour

// DefaultMonthlyLimit caps posts per calendar month (free API tier headroom).
const DefaultMonthlyLimit = 495

// Decision is the outcome of a schedule check.
type Decision struct {
	Allowed bool
	Reason  string
}

// QuotaDecision is the outcome of a monthly quota check.
type QuotaDecision struct {
	Allowed bool
	Count   int
	Limit   int
}

// CheckSchedule decides whether an invocation may proceed. lastRun is nil
// when no prior run has been recorded. dryRun bypasses the check entirely.
func CheckSchedule(now time.Time, lastRun *time.Time, dryRun bool) Decision {
	if dryRun {
		return Decision{Allowed: true, Reason: "dry-run mode, bypassing schedule check"}
	}
	if lastRun == nil {
		return Decision{Allowed: true, Reason: "first run"}
	}
	elapsed := now.Sub(*lastRun)
	if elapsed < MinInterval {
		remaining := MinInterval - elapsed
		minutes := int((remaining + time.Minute - 1) / time.Minute)
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("too soon, wait %d minutes", minutes),
		}
	}
	return Decision{Allowed: true, Reason: "interval passed"}
}

// CheckQuota rejects once the monthly post count reaches the limit.
func CheckQuota(monthlyCount, limit int) QuotaDecision {
	return QuotaDecision{
		Allowed: monthlyCount < limit,
		Count:   monthlyCount,
		Limit:   limit,
	}
}
