package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCatalog(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 4)

	keys := make([]string, 0, len(plans))
	for _, p := range plans {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{PlanKeyWeek, PlanKeyMonth, PlanKeyTwoMonths, PlanKeyForever}, keys)

	forever, ok := PlanByKey(PlanKeyForever)
	require.True(t, ok)
	assert.True(t, forever.Forever)
	assert.Zero(t, forever.Days)
}

func TestPlansReturnsCopy(t *testing.T) {
	plans := Plans()
	plans[0].Amount = 9999

	fresh, ok := PlanByKey(PlanKeyWeek)
	require.True(t, ok)
	assert.Equal(t, 25, fresh.Amount)
}

func TestPlanByKeyUnknown(t *testing.T) {
	_, ok := PlanByKey("buy_lifetime")
	assert.False(t, ok)
}
