package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    Status
		action  Action
		next    Status
		allowed bool
	}{
		{StatusPending, ActionEdit, StatusPending, true},
		{StatusOverdue, ActionEdit, StatusOverdue, true},
		{StatusPaid, ActionEdit, StatusPaid, true},
		{StatusRefunded, ActionEdit, StatusRefunded, false},

		{StatusPending, ActionPay, StatusPaid, true},
		{StatusOverdue, ActionPay, StatusPaid, true},
		{StatusPaid, ActionPay, StatusPaid, true},
		{StatusRefunded, ActionPay, StatusRefunded, false},

		{StatusPending, ActionMarkOverdue, StatusOverdue, true},
		{StatusPaid, ActionMarkOverdue, StatusPaid, false},
		{StatusOverdue, ActionMarkOverdue, StatusOverdue, false},
		{StatusRefunded, ActionMarkOverdue, StatusRefunded, false},

		{StatusPaid, ActionRefund, StatusRefunded, true},
		{StatusPending, ActionRefund, StatusPending, false},
		{StatusOverdue, ActionRefund, StatusOverdue, false},
		{StatusRefunded, ActionRefund, StatusRefunded, false},

		{StatusPending, ActionDelete, StatusPending, true},
		{StatusOverdue, ActionDelete, StatusOverdue, true},
		{StatusPaid, ActionDelete, StatusPaid, false},
		{StatusRefunded, ActionDelete, StatusRefunded, false},
	}

	for _, tc := range cases {
		next, allowed := Transition(tc.from, tc.action)
		assert.Equal(t, tc.allowed, allowed, "%s + %s", tc.from, tc.action)
		assert.Equal(t, tc.next, next, "%s + %s", tc.from, tc.action)
		assert.Equal(t, tc.allowed, Can(tc.from, tc.action), "%s + %s", tc.from, tc.action)
	}
}

func TestRefundedIsTerminal(t *testing.T) {
	for _, action := range []Action{ActionEdit, ActionPay, ActionMarkOverdue, ActionRefund, ActionDelete} {
		assert.False(t, Can(StatusRefunded, action), "refunded must reject %s", action)
	}
}
