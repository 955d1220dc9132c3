package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CheckViolation reports one segment whose available budget does not cover the
// requested amount.
type CheckViolation struct {
	Segment      string          `json:"segment"`
	SegmentType  string          `json:"segmentType"`
	ControlLevel ControlLevel    `json:"controlLevel"`
	TotalBudget  decimal.Decimal `json:"totalBudget"`
	Committed    decimal.Decimal `json:"committed"`
	Encumbered   decimal.Decimal `json:"encumbered"`
	Actual       decimal.Decimal `json:"actual"`
	Available    decimal.Decimal `json:"available"`
	Requested    decimal.Decimal `json:"requested"`
	Shortage     decimal.Decimal `json:"shortage"`
}

// CheckResult is the allow/block decision for a candidate transaction.
type CheckResult struct {
	Allowed      bool             `json:"allowed"`
	ControlLevel ControlLevel     `json:"controlLevel"`
	Violations   []CheckViolation `json:"violations"`
	Message      string           `json:"message"`
}

// CheckTarget is one budgeted segment the transaction touches: the membership,
// its segment master entry, and the funded ledger row.
type CheckTarget struct {
	Segment      BudgetSegment
	SegmentValue SegmentValue
	Amount       BudgetAmount
}

// CheckBudget evaluates a candidate transaction against one budget.
//
// The strictest control level is resolved over ALL evaluated memberships, not
// only the violating ones: a non-violating ABSOLUTE segment still raises the
// bar for an over-budget ADVISORY segment in the same transaction.
func CheckBudget(budget *Budget, targets []CheckTarget, amount decimal.Decimal, date time.Time) CheckResult {
	if !budget.IsDateInRange(date) {
		return CheckResult{
			Allowed:      false,
			ControlLevel: ControlAbsolute,
			Violations:   []CheckViolation{},
			Message: fmt.Sprintf("transaction date %s is outside budget period (%s to %s)",
				date.Format("2006-01-02"), budget.StartDate.Format("2006-01-02"), budget.EndDate.Format("2006-01-02")),
		}
	}

	if len(targets) == 0 {
		return CheckResult{
			Allowed:      true,
			ControlLevel: ControlNone,
			Violations:   []CheckViolation{},
			Message:      "no budget control defined for these segments",
		}
	}

	violations := []CheckViolation{}
	levels := make([]ControlLevel, 0, len(targets))
	for _, target := range targets {
		level := target.Segment.EffectiveControlLevel(budget.DefaultControlLevel)
		levels = append(levels, level)

		check := target.Amount.CheckFundsAvailable(amount)
		if !check.Sufficient {
			violations = append(violations, CheckViolation{
				Segment:      target.SegmentValue.Code,
				SegmentType:  target.SegmentValue.SegmentTypeName,
				ControlLevel: level,
				TotalBudget:  target.Amount.TotalBudget(),
				Committed:    target.Amount.CommittedAmount,
				Encumbered:   target.Amount.EncumberedAmount,
				Actual:       target.Amount.ActualAmount,
				Available:    check.Available,
				Requested:    check.Requested,
				Shortage:     check.Shortage,
			})
		}
	}

	strictest := StrictestControlLevel(levels)

	if len(violations) == 0 {
		return CheckResult{
			Allowed:      true,
			ControlLevel: strictest,
			Violations:   violations,
			Message:      "budget check passed",
		}
	}

	var allowed bool
	var message string
	switch strictest {
	case ControlNone:
		allowed = true
		message = "budget exceeded but no control enforced - transaction allowed"
	case ControlTrackOnly:
		allowed = true
		message = "budget exceeded - tracked for reporting only, transaction allowed"
	case ControlAdvisory:
		allowed = true
		message = "budget exceeded - advisory warning issued, transaction allowed"
	default: // ABSOLUTE
		allowed = false
		message = "budget exceeded - transaction blocked by absolute control"
	}

	return CheckResult{
		Allowed:      allowed,
		ControlLevel: strictest,
		Violations:   violations,
		Message:      message,
	}
}
