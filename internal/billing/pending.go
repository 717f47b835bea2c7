package billing

// PendingPayment is a plan a user selected but has not yet had approved.
// Entries never expire on their own; only approval consumes them.
type PendingPayment struct {
	Days    int
	Amount  int
	Forever bool
}

func pendingFromPlan(p Plan) PendingPayment {
	return PendingPayment{
		Days:    p.Days,
		Amount:  p.Amount,
		Forever: p.Forever,
	}
}
