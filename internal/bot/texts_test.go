package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acropolistg/Manager-Bot/internal/billing"
	"github.com/acropolistg/Manager-Bot/internal/store"
)

func displayTime(t time.Time) string {
	return t.Format(displayTimeLayout)
}

func TestPlanChosenMessage(t *testing.T) {
	week, ok := billing.PlanByKey(billing.PlanKeyWeek)
	require.True(t, ok)

	msg := planChosenMessage(week, "TWalletAddr")
	assert.Contains(t, msg, "7 days")
	assert.Contains(t, msg, "25 $")
	assert.Contains(t, msg, "`TWalletAddr`")
	assert.Contains(t, msg, "screenshot")

	forever, ok := billing.PlanByKey(billing.PlanKeyForever)
	require.True(t, ok)
	msg = planChosenMessage(forever, "TWalletAddr")
	assert.Contains(t, msg, "forever")
	assert.Contains(t, msg, "400 $")
}

func TestProofSummaryMessage(t *testing.T) {
	msg := proofSummaryMessage("alice", 42, billing.PendingPayment{Days: 30, Amount: 100})
	assert.Contains(t, msg, "alice")
	assert.Contains(t, msg, "(42)")
	assert.Contains(t, msg, "100 $")
	assert.Contains(t, msg, "30 days")

	msg = proofSummaryMessage("", 42, billing.PendingPayment{Amount: 400, Forever: true})
	assert.Contains(t, msg, "unknown")
	assert.Contains(t, msg, "forever")
}

func TestFormatExpiry(t *testing.T) {
	exp := time.Date(2025, 4, 1, 18, 45, 30, 0, time.UTC)

	assert.Equal(t, "until 2025-04-01 18:45:30", formatExpiry(store.Subscriber{ExpiresAt: &exp}))
	assert.Equal(t, "forever", formatExpiry(store.Subscriber{Forever: true}))
	assert.Equal(t, "forever", formatExpiry(store.Subscriber{}))
}

func TestApprovedMessage(t *testing.T) {
	exp := time.Date(2025, 4, 1, 18, 45, 30, 0, time.UTC)

	msg := approvedMessage(store.Subscriber{ExpiresAt: &exp})
	assert.Contains(t, msg, "Payment confirmed!")
	assert.Contains(t, msg, displayTime(exp))

	msg = approvedMessage(store.Subscriber{Forever: true})
	assert.Contains(t, msg, "active forever")
}

func TestInviteMessage(t *testing.T) {
	msg := inviteMessage("https://t.me/+abc")
	assert.Contains(t, msg, "https://t.me/+abc")
}
