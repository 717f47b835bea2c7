// Package bot wires the subscription sales workflow to Telegram updates:
// the main menu, plan selection, payment proof intake and manual approval.
package bot

import (
	"fmt"
	"log/slog"

	"github.com/acropolistg/Manager-Bot/internal/billing"
	"github.com/acropolistg/Manager-Bot/internal/config"
	"github.com/acropolistg/Manager-Bot/internal/logger"
	"github.com/acropolistg/Manager-Bot/internal/metrics"
	"github.com/acropolistg/Manager-Bot/internal/telegram"
	"github.com/acropolistg/Manager-Bot/internal/telegram/callbacks"
	"github.com/acropolistg/Manager-Bot/internal/telegram/commands"
	tghelpers "github.com/acropolistg/Manager-Bot/internal/telegram/helpers"
	"github.com/acropolistg/Manager-Bot/internal/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Bot binds handlers for the sales workflow to a registry.
type Bot struct {
	cfg *config.Config
	svc *billing.Service
	reg *telegram.Registry
}

// New builds the bot and registers all commands, text buttons and callbacks.
func New(cfg *config.Config, svc *billing.Service) *Bot {
	b := &Bot{
		cfg: cfg,
		svc: svc,
		reg: telegram.NewRegistry(),
	}
	b.register()
	return b
}

// Registry exposes the populated handler registry.
func (b *Bot) Registry() *telegram.Registry {
	return b.reg
}

// Routes assembles the full route table for RunTelegram.
func (b *Bot) Routes() []telegram.Route {
	routes := telegram.CommandRoutes(b.reg, telegram.CommandRouteOptions{
		AdminID: b.cfg.Telegram.AdminID,
	})
	routes = append(routes,
		telegram.TextRoute(b.reg),
		telegram.PhotoRoute(b.reg),
		telegram.CallbackRoute(b.reg, telegram.CallbackOptions{}),
	)
	return routes
}

func (b *Bot) register() {
	b.reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Show the main menu",
		Aliases:     []string{"menu"},
	})
	b.reg.RegisterCommand("/status", commands.Command{
		Handler:     b.handleStatus,
		Description: "Show subscriber and pending counts",
		AdminOnly:   true,
	})

	b.reg.RegisterText(buttonBuy, b.handleBuy)
	b.reg.RegisterText(buttonSupport, b.handleSupport)
	b.reg.SetPhotoHandler(b.handlePhoto)

	for _, plan := range billing.Plans() {
		_ = b.reg.RegisterCallback(plan.Key, b.handlePlanSelected)
	}
	_ = b.reg.RegisterCallback(billing.ApproveKey, b.handleApprove)
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{buttonBuy},
		[]string{buttonSupport},
	)
}

func planKeyboard() *tele.ReplyMarkup {
	plans := billing.Plans()
	rows := make([][]keyboard.InlineBtn, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   p.Label,
			Unique: p.Key,
		}})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func (b *Bot) handleStart(c tele.Context) error {
	return tghelpers.SendText(c, msgWelcome, &tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (b *Bot) handleStatus(c tele.Context) error {
	return tghelpers.SendText(c, statusMessage(b.svc.SubscriberCount(), b.svc.PendingCount()))
}

func (b *Bot) handleBuy(c tele.Context) error {
	return tghelpers.SendText(c, msgChoosePlan, &tele.SendOptions{ReplyMarkup: planKeyboard()})
}

func (b *Bot) handleSupport(c tele.Context) error {
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{{
		Text: buttonContact,
		URL:  fmt.Sprintf("https://t.me/%s", b.cfg.Group.SupportHandle),
	}})
	return tghelpers.SendText(c, msgSupportPrompt, &tele.SendOptions{ReplyMarkup: markup})
}

func (b *Bot) handlePlanSelected(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	key := callbacks.Key(c)

	plan, ok := b.svc.SelectPlan(user.ID, key)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown subscription plan"})
	}

	_ = c.Respond()
	return tghelpers.SendMD(c, planChosenMessage(plan, b.cfg.Payments.Address))
}

// handlePhoto treats any incoming photo as a payment proof. Without a plan
// selected first the photo is rejected.
func (b *Bot) handlePhoto(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}

	payment, ok := b.svc.Pending(user.ID)
	if !ok {
		return tghelpers.SendText(c, msgNoPlanChosen)
	}

	metrics.ProofsReceived.Inc()
	logger.Info(tghelpers.BuildContext(c), "bot", "proof.received",
		slog.Int64("user_id", user.ID),
		slog.Int("amount", payment.Amount),
		slog.Bool("forever", payment.Forever),
	)

	if err := tghelpers.SendText(c, msgProofReceived); err != nil {
		return err
	}

	adminID := b.cfg.Telegram.AdminID
	if err := tghelpers.ForwardTo(c, adminID); err != nil {
		return err
	}

	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{{
		Text:   buttonApprove,
		Unique: billing.ApproveKey,
		Data:   fmt.Sprintf("%d", user.ID),
	}})
	return tghelpers.SendTo(c, adminID, proofSummaryMessage(user.Username, user.ID, payment),
		&tele.SendOptions{ReplyMarkup: markup})
}

// handleApprove is the admin-side approval boundary. Any failure inside the
// flow is reported back to the administrator instead of being swallowed.
func (b *Bot) handleApprove(c tele.Context) error {
	if err := b.approve(c); err != nil {
		return tghelpers.SendTo(c, b.cfg.Telegram.AdminID, adminErrorMessage(err))
	}
	return nil
}

func (b *Bot) approve(c tele.Context) error {
	actor := c.Sender()
	if actor == nil {
		return nil
	}

	userID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return fmt.Errorf("bad approval payload: %w", err)
	}

	result := b.svc.Approve(actor.ID, userID)
	switch result.Status {
	case billing.StatusUnauthorized:
		return c.Respond(&tele.CallbackResponse{Text: msgAdminOnly})
	case billing.StatusNotPending:
		_ = c.Respond()
		return tghelpers.SendTo(c, b.cfg.Telegram.AdminID, msgNotPending)
	case billing.StatusApproved:
		_ = c.Respond()
		// The confirmation must land before the invite link.
		return tghelpers.SendSeq(c, userID,
			approvedMessage(result.Subscriber),
			inviteMessage(b.cfg.Group.InviteLink),
		)
	}
	return nil
}
