// Package errors provides structured error handling for the scoring engine.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Match lifecycle errors
	CodeMatchAlreadyComplete   Code = "MATCH_ALREADY_COMPLETE"
	CodeMatchNotInProgress     Code = "MATCH_NOT_IN_PROGRESS"
	CodeTossAlreadyRecorded    Code = "TOSS_ALREADY_RECORDED"
	CodeTossNotRecorded        Code = "TOSS_NOT_RECORDED"
	CodeTossInvalidDecision    Code = "TOSS_INVALID_DECISION"
	CodeMatchInvalidTeam       Code = "MATCH_INVALID_TEAM"
	CodeMatchInvalidFormat     Code = "MATCH_INVALID_FORMAT"
	CodeMatchInvalidTransition Code = "MATCH_INVALID_STATUS_TRANSITION"

	// Innings lifecycle errors
	CodeInningsAlreadyComplete Code = "INNINGS_ALREADY_COMPLETE"
	CodeInningsAlreadyStarted  Code = "INNINGS_ALREADY_STARTED"
	CodeInningsNotStarted      Code = "INNINGS_NOT_STARTED"
	CodeInningsInvalidOpeners  Code = "INNINGS_INVALID_OPENERS"
	CodeInningsNotCurrent      Code = "INNINGS_NOT_CURRENT"

	// Delivery/over errors
	CodeOverAlreadyComplete     Code = "OVER_ALREADY_COMPLETE"
	CodeOverInProgress          Code = "OVER_IN_PROGRESS"
	CodeConsecutiveOverByBowler Code = "CONSECUTIVE_OVER_BY_BOWLER"
	CodeBowlerInvalid           Code = "BOWLER_INVALID"
	CodeDeliveryInvalidRuns     Code = "DELIVERY_INVALID_RUNS"
	CodeDeliveryInvalidExtra    Code = "DELIVERY_INVALID_EXTRA"
	CodeDeliveryInvalidShortRun Code = "DELIVERY_INVALID_SHORT_RUN"

	// Dismissal errors
	CodeWicketLimitExceeded      Code = "WICKET_LIMIT_EXCEEDED"
	CodeDismissalInvalidKind     Code = "DISMISSAL_INVALID_KIND"
	CodeDismissalInvalidOnNoBall Code = "DISMISSAL_INVALID_ON_NO_BALL"
	CodeDismissalInvalidOnWide   Code = "DISMISSAL_INVALID_ON_WIDE"
	CodeDismissalUnknownPlayer   Code = "DISMISSAL_UNKNOWN_PLAYER"
	CodeAwaitingReplacement      Code = "AWAITING_REPLACEMENT_BATTER"
	CodeNotAwaitingReplacement   Code = "NOT_AWAITING_REPLACEMENT"
	CodeReplacementInvalidBatter Code = "REPLACEMENT_INVALID_BATTER"

	// Command envelope errors
	CodeInvalidCommand   Code = "INVALID_COMMAND"
	CodeDuplicateRequest Code = "DUPLICATE_REQUEST"

	// Undo errors
	CodeNothingToUndo Code = "NOTHING_TO_UNDO"

	// Consistency errors
	CodeStateDiverged Code = "STATE_DIVERGED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes for the REST transport.
// Rule violations are user-correctable conflicts, consistency violations are
// server faults.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidCommand:
		return http.StatusBadRequest
	case CodeNotFound, CodeNothingToUndo:
		return http.StatusNotFound
	case CodeMatchInvalidTeam, CodeMatchInvalidFormat, CodeTossInvalidDecision,
		CodeInningsInvalidOpeners, CodeBowlerInvalid,
		CodeDeliveryInvalidRuns, CodeDeliveryInvalidExtra, CodeDeliveryInvalidShortRun,
		CodeDismissalInvalidKind, CodeDismissalUnknownPlayer, CodeReplacementInvalidBatter:
		return http.StatusUnprocessableEntity
	case CodeStateDiverged, CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}
