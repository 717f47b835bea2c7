package bot

import (
	"fmt"

	"github.com/acropolistg/Manager-Bot/internal/billing"
	"github.com/acropolistg/Manager-Bot/internal/store"
)

const displayTimeLayout = "2006-01-02 15:04:05"

const (
	buttonBuy     = "Buy subscription"
	buttonSupport = "Support"
	buttonApprove = "Confirm payment"
	buttonContact = "Message the owner"

	msgWelcome       = "Welcome! Choose an action:"
	msgChoosePlan    = "Choose a subscription period (payment via TRC-20 USDT):"
	msgNoPlanChosen  = "You haven't chosen a subscription yet."
	msgProofReceived = "Thank you for the confirmation! We will check your payment. After verification you will get access to the group."
	msgSupportPrompt = "Press the button below to contact support:"
	msgAdminOnly     = "Only the administrator can approve payments."
	msgNotPending    = "User not found among pending payments."
)

// statusMessage is the admin-facing workflow summary for /status.
func statusMessage(subscribers, pending int) string {
	return fmt.Sprintf("Subscribers: %d\nPending approvals: %d", subscribers, pending)
}

// term renders the plan duration for user-facing messages.
func term(days int, forever bool) string {
	if forever {
		return "forever"
	}
	return fmt.Sprintf("%d days", days)
}

// planChosenMessage is sent after a plan button press. The payment address is
// wrapped in backticks so Telegram renders it as tappable monospace.
func planChosenMessage(p billing.Plan, address string) string {
	return fmt.Sprintf(
		"You selected a %s subscription for %d $.\n`%s`\n\nAfter paying, send a screenshot confirming the payment.",
		term(p.Days, p.Forever), p.Amount, address,
	)
}

// proofSummaryMessage is the admin-facing description of a submitted proof.
func proofSummaryMessage(username string, userID int64, p billing.PendingPayment) string {
	who := username
	if who == "" {
		who = "unknown"
	}
	return fmt.Sprintf(
		"User %s (%d) sent a payment screenshot for %d $ for a %s subscription.",
		who, userID, p.Amount, term(p.Days, p.Forever),
	)
}

// formatExpiry renders the subscription end for confirmation messages.
func formatExpiry(sub store.Subscriber) string {
	if sub.Forever || sub.ExpiresAt == nil {
		return "forever"
	}
	return "until " + sub.ExpiresAt.Format(displayTimeLayout)
}

func approvedMessage(sub store.Subscriber) string {
	return fmt.Sprintf("Payment confirmed! Your subscription is active %s.\n\nWelcome to the group!", formatExpiry(sub))
}

func inviteMessage(inviteLink string) string {
	return fmt.Sprintf("Thank you for your purchase! Join our group: %s", inviteLink)
}

func adminErrorMessage(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
