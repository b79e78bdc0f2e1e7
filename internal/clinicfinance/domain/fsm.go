package domain

// Action is something a caller tries to do to a ledger entry.
type Action string

const (
	// ActionEdit covers direct field edits through upsert.
	ActionEdit Action = "edit"
	// ActionPay sets the entry paid through upsert.
	ActionPay Action = "pay"
	// ActionMarkOverdue is reserved for the sweeper.
	ActionMarkOverdue Action = "mark_overdue"
	ActionRefund      Action = "refund"
	ActionDelete      Action = "delete"
)

type transitionKey struct {
	From   Status
	Action Action
}

// transitions holds every allowed (state, action) pair. A zero next status means
// the action leaves the state unchanged (or removes the row, for delete).
var transitions = map[transitionKey]Status{
	{StatusPending, ActionEdit}: "",
	{StatusOverdue, ActionEdit}: "",
	{StatusPaid, ActionEdit}:    "",

	{StatusPending, ActionPay}: StatusPaid,
	{StatusOverdue, ActionPay}: StatusPaid,
	{StatusPaid, ActionPay}:    StatusPaid,

	{StatusPending, ActionMarkOverdue}: StatusOverdue,

	{StatusPaid, ActionRefund}: StatusRefunded,

	// Entries with settled money are never deleted.
	{StatusPending, ActionDelete}: "",
	{StatusOverdue, ActionDelete}: "",
}

// Can reports whether the action is allowed from the given state.
func Can(from Status, action Action) bool {
	_, ok := transitions[transitionKey{From: from, Action: action}]
	return ok
}

// Transition returns the state the action leads to. The second return is false
// when the action is not allowed from the given state.
func Transition(from Status, action Action) (Status, bool) {
	next, ok := transitions[transitionKey{From: from, Action: action}]
	if !ok {
		return from, false
	}
	if next == "" {
		return from, true
	}
	return next, true
}
