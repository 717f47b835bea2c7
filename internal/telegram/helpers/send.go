package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/acropolistg/Manager-Bot/internal/logger"
	"github.com/acropolistg/Manager-Bot/internal/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm}
	return SendText(c, text, opts)
}

// SendTo delivers text to an arbitrary chat, not the one the update came from.
// Used for admin notifications and approval confirmations.
func SendTo(c tele.Context, chatID int64, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	recipient := &tele.Chat{ID: chatID}
	return sendAsync(c, "send.to", "sendMessage", func() error {
		var err error
		if sendOpts != nil {
			_, err = c.Bot().Send(recipient, text, sendOpts)
		} else {
			_, err = c.Bot().Send(recipient, text)
		}
		return err
	})
}

// SendSeq delivers several texts to one chat inside a single dispatcher job,
// so a later message can never overtake an earlier one on the worker pool.
func SendSeq(c tele.Context, chatID int64, texts ...string) error {
	if len(texts) == 0 {
		return nil
	}
	recipient := &tele.Chat{ID: chatID}
	return sendAsync(c, "send.seq", "sendMessage", func() error {
		for _, text := range texts {
			if _, err := c.Bot().Send(recipient, text); err != nil {
				return err
			}
		}
		return nil
	})
}

// ForwardTo forwards the current message to another chat.
func ForwardTo(c tele.Context, chatID int64) error {
	msg := c.Message()
	if msg == nil {
		return errors.New("helpers: no message to forward")
	}
	recipient := &tele.Chat{ID: chatID}
	return sendAsync(c, "forward", "forwardMessage", func() error {
		_, err := c.Bot().Forward(recipient, msg)
		return err
	})
}
