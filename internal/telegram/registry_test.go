package telegram

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acropolistg/Manager-Bot/internal/logger"
	"github.com/acropolistg/Manager-Bot/internal/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func TestMain(m *testing.M) {
	_ = logger.Init(nil)
	os.Exit(m.Run())
}

func noopHandler(c tele.Context) error { return nil }

func TestRegisterCommand(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "start"})

	key, cmd, ok := reg.LookupCommand("/start")
	require.True(t, ok)
	assert.Equal(t, "/start", key)
	assert.NotNil(t, cmd.Handler)

	// lookup tolerates a missing slash
	_, _, ok = reg.LookupCommand("start")
	assert.True(t, ok)
}

func TestRegisterCommandRejectsInvalid(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("start", commands.Command{Handler: noopHandler, Description: "no slash"})
	reg.RegisterCommand("/nodesc", commands.Command{Handler: noopHandler})
	reg.RegisterCommand("/nohandler", commands.Command{Description: "x"})

	assert.Empty(t, reg.Commands())
}

func TestRegisterCommandDuplicateKeepsFirst(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "first"})
	reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "second"})

	_, cmd, ok := reg.LookupCommand("/start")
	require.True(t, ok)
	assert.Equal(t, "first", cmd.Description)
}

func TestListCommandsFiltersHidden(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "start"})
	reg.RegisterCommand("/debug", commands.Command{Handler: noopHandler, Description: "debug", Hidden: true})
	reg.RegisterCommand("/admin", commands.Command{Handler: noopHandler, Description: "admin", AdminOnly: true})

	visible := reg.ListCommands(true)
	require.Len(t, visible, 1)
	assert.Equal(t, "/start", visible[0].Text)

	assert.Len(t, reg.ListCommands(false), 3)
}

func TestRegisterCallback(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("approve", noopHandler))

	h, ok := reg.GetCallback("approve")
	require.True(t, ok)
	assert.NotNil(t, h)

	assert.Error(t, reg.RegisterCallback("approve", noopHandler), "duplicate keys are rejected")
	assert.Error(t, reg.RegisterCallback("", noopHandler))
	assert.Error(t, reg.RegisterCallback("x", nil))

	assert.Equal(t, []string{"approve"}, reg.ListCallbacks())
}

func TestRegisterText(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterText("Buy subscription", noopHandler)

	h, ok := reg.LookupText("Buy subscription")
	require.True(t, ok)
	assert.NotNil(t, h)

	_, ok = reg.LookupText("buy subscription")
	assert.False(t, ok, "labels match exactly")
}

func TestCallbackNotFoundDefault(t *testing.T) {
	reg := NewRegistry()
	assert.NotNil(t, reg.CallbackNotFound())

	replaced := func(c tele.Context) error { return nil }
	reg.SetCallbackNotFound(replaced)
	assert.NotNil(t, reg.CallbackNotFound())

	reg.SetCallbackNotFound(nil)
	assert.NotNil(t, reg.CallbackNotFound(), "nil does not clear the fallback")
}
