package intake

// SubmitOutcome tells the caller what a Submit call actually did.
type SubmitOutcome string

const (
	OutcomeCreated     SubmitOutcome = "created"
	OutcomeExisting    SubmitOutcome = "existing"
	OutcomeResubmitted SubmitOutcome = "resubmitted"
)

// transitions is the full lifecycle rule table. A status/event pair absent
// from it is a conflict; terminal statuses have no outgoing entries at all.
var transitions = map[RequestStatus]map[EventType]RequestStatus{
	StatusSubmitted: {
		EventReturned:  StatusReturnedToClinic,
		EventAccepted:  StatusAccepted,
		EventRejected:  StatusRejected,
		EventWithdrawn: StatusWithdrawn,
	},
	StatusReturnedToClinic: {
		EventResubmitted: StatusSubmitted,
		EventWithdrawn:   StatusWithdrawn,
	},
	StatusAccepted: {
		EventConverted: StatusConverted,
	},
}

// opNames maps transition events to the verbs used in conflict messages.
var opNames = map[EventType]string{
	EventResubmitted: "resubmit",
	EventReturned:    "return",
	EventAccepted:    "accept",
	EventRejected:    "reject",
	EventWithdrawn:   "withdraw",
	EventConverted:   "convert",
}

// nextStatus resolves one transition, failing with a ConflictError when the
// current status does not permit the event.
func nextStatus(current RequestStatus, event EventType) (RequestStatus, error) {
	if next, ok := transitions[current][event]; ok {
		return next, nil
	}
	return current, &ConflictError{Op: opNames[event], Status: current}
}
