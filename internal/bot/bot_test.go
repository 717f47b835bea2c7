package bot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acropolistg/Manager-Bot/internal/billing"
	"github.com/acropolistg/Manager-Bot/internal/config"
	"github.com/acropolistg/Manager-Bot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

func TestMain(m *testing.M) {
	// registry wiring logs through the shared logger
	_ = logger.Init(nil)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{
			Token:   "123:token",
			AdminID: 1000,
		},
		Group: config.GroupConfig{
			InviteLink:    "https://t.me/+abc",
			SupportHandle: "owner",
		},
		Payments: config.PaymentsConfig{Address: "TWalletAddr"},
	}
}

type apiCall struct {
	method string
	chatID string
	text   string
}

// recordingAPI stands in for the Bot API and records outbound calls in order.
type recordingAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (a *recordingAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	method := parts[len(parts)-1]

	var payload struct {
		ChatID string `json:"chat_id"`
		Text   string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	a.mu.Lock()
	a.calls = append(a.calls, apiCall{method: method, chatID: payload.ChatID, text: payload.Text})
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"private"},"date":1}}`))
}

func (a *recordingAPI) recorded() []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]apiCall(nil), a.calls...)
}

func newAPIBot(t *testing.T) (*recordingAPI, *tele.Bot) {
	t.Helper()
	api := &recordingAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	tb, err := tele.NewBot(tele.Settings{Offline: true, URL: srv.URL})
	require.NoError(t, err)
	return api, tb
}

func photoContext(tb *tele.Bot, userID int64) tele.Context {
	return tb.NewContext(tele.Update{Message: &tele.Message{
		ID:     77,
		Photo:  &tele.Photo{File: tele.File{FileID: "proof"}},
		Sender: &tele.User{ID: userID, Username: "buyer"},
		Chat:   &tele.Chat{ID: userID},
	}})
}

func TestHandlePhotoWithoutPendingSelection(t *testing.T) {
	api, tb := newAPIBot(t)
	svc := billing.New(1000, nil, nil)
	b := New(testConfig(), svc)

	require.NoError(t, b.handlePhoto(photoContext(tb, 42)))

	calls := api.recorded()
	require.Len(t, calls, 1, "only the rejection reply may go out")
	assert.Equal(t, "sendMessage", calls[0].method)
	assert.Equal(t, "42", calls[0].chatID)
	assert.Equal(t, msgNoPlanChosen, calls[0].text)

	_, pending := svc.Pending(42)
	assert.False(t, pending)
}

func TestHandlePhotoForwardsProofToAdmin(t *testing.T) {
	api, tb := newAPIBot(t)
	svc := billing.New(1000, nil, nil)
	b := New(testConfig(), svc)

	_, ok := svc.SelectPlan(42, billing.PlanKeyWeek)
	require.True(t, ok)

	require.NoError(t, b.handlePhoto(photoContext(tb, 42)))

	calls := api.recorded()
	require.Len(t, calls, 3)

	assert.Equal(t, "sendMessage", calls[0].method)
	assert.Equal(t, "42", calls[0].chatID)
	assert.Equal(t, msgProofReceived, calls[0].text)

	assert.Equal(t, "forwardMessage", calls[1].method)
	assert.Equal(t, "1000", calls[1].chatID)

	assert.Equal(t, "sendMessage", calls[2].method)
	assert.Equal(t, "1000", calls[2].chatID)
	assert.Contains(t, calls[2].text, "buyer")
}

func TestHandleStatusReportsCounts(t *testing.T) {
	api, tb := newAPIBot(t)
	svc := billing.New(1000, nil, nil)
	b := New(testConfig(), svc)

	_, ok := svc.SelectPlan(42, billing.PlanKeyWeek)
	require.True(t, ok)

	c := tb.NewContext(tele.Update{Message: &tele.Message{
		Text:   "/status",
		Sender: &tele.User{ID: 1000},
		Chat:   &tele.Chat{ID: 1000},
	}})
	require.NoError(t, b.handleStatus(c))

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, statusMessage(0, 1), calls[0].text)
}

func TestRegistryWiring(t *testing.T) {
	svc := billing.New(1000, nil, nil)
	b := New(testConfig(), svc)
	reg := b.Registry()

	_, _, ok := reg.LookupCommand("/start")
	assert.True(t, ok)

	// /menu resolves to the main menu command
	key, _, ok := reg.LookupCommand("/menu")
	assert.True(t, ok)
	assert.Equal(t, "/start", key)

	_, status, ok := reg.LookupCommand("/status")
	require.True(t, ok)
	assert.True(t, status.AdminOnly)

	for _, label := range []string{buttonBuy, buttonSupport} {
		_, ok := reg.LookupText(label)
		assert.True(t, ok, "text button %q must be registered", label)
	}

	for _, plan := range billing.Plans() {
		_, ok := reg.GetCallback(plan.Key)
		assert.True(t, ok, "plan callback %q must be registered", plan.Key)
	}
	_, ok = reg.GetCallback(billing.ApproveKey)
	assert.True(t, ok)

	require.NotNil(t, reg.PhotoHandler())
}

func TestRoutesCoverAllUpdateKinds(t *testing.T) {
	svc := billing.New(1000, nil, nil)
	b := New(testConfig(), svc)

	routes := b.Routes()
	// /start + /status + text + photo + callback
	assert.Len(t, routes, 5)
	for _, r := range routes {
		assert.NotNil(t, r.Endpoint)
		assert.NotNil(t, r.Handler)
	}
}

func TestPlanKeyboardLayout(t *testing.T) {
	markup := planKeyboard()
	require.Len(t, markup.InlineKeyboard, len(billing.Plans()))
	for i, plan := range billing.Plans() {
		row := markup.InlineKeyboard[i]
		require.Len(t, row, 1)
		assert.Equal(t, plan.Label, row[0].Text)
		assert.Equal(t, plan.Key, row[0].Unique)
	}
}

func TestMainMenuLayout(t *testing.T) {
	markup := mainMenu()
	require.Len(t, markup.ReplyKeyboard, 2)
	assert.Equal(t, buttonBuy, markup.ReplyKeyboard[0][0].Text)
	assert.Equal(t, buttonSupport, markup.ReplyKeyboard[1][0].Text)
}
