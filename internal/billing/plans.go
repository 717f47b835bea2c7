// Package billing implements the subscription sales workflow: the plan
// catalog, the pending payment table, and the manual approval step.
package billing

// Plan is one fixed subscription offer. Days == 0 together with Forever marks
// the unlimited plan.
type Plan struct {
	Key     string
	Label   string
	Days    int
	Amount  int
	Forever bool
}

// Callback keys for plan selection buttons. The keys are part of the wire
// contract with previously issued inline keyboards and must not change.
const (
	PlanKeyWeek      = "buy_7"
	PlanKeyMonth     = "buy_30"
	PlanKeyTwoMonths = "buy_2_months"
	PlanKeyForever   = "buy_forever"
)

// ApproveKey is the callback key of the administrator's approval button; the
// payload carries the buyer's decimal user id.
const ApproveKey = "approve"

var catalog = []Plan{
	{Key: PlanKeyWeek, Label: "7 days — 25 $", Days: 7, Amount: 25},
	{Key: PlanKeyMonth, Label: "30 days — 100 $", Days: 30, Amount: 100},
	{Key: PlanKeyTwoMonths, Label: "2 months — 165 $", Days: 60, Amount: 165},
	{Key: PlanKeyForever, Label: "Forever — 400 $", Amount: 400, Forever: true},
}

// Plans returns the fixed plan catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// PlanByKey looks up a plan by its callback key.
func PlanByKey(key string) (Plan, bool) {
	for _, p := range catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}
