package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acropolistg/Manager-Bot/internal/logger"
	"github.com/acropolistg/Manager-Bot/internal/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

func TestMain(m *testing.M) {
	_ = logger.Init(nil)
	os.Exit(m.Run())
}

// fakeAPI answers sendMessage calls and records text payloads in arrival order.
type fakeAPI struct {
	mu    sync.Mutex
	texts []string
	// delayFirst stalls the first request so a concurrent second send
	// would overtake it.
	delayFirst time.Duration
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	a.mu.Lock()
	first := len(a.texts) == 0
	a.texts = append(a.texts, payload.Text)
	a.mu.Unlock()

	if first && a.delayFirst > 0 {
		time.Sleep(a.delayFirst)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":7,"type":"private"},"date":1}}`))
}

func (a *fakeAPI) received() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.texts...)
}

func TestSendSeqPreservesOrder(t *testing.T) {
	api := &fakeAPI{delayFirst: 50 * time.Millisecond}
	srv := httptest.NewServer(api)
	defer srv.Close()

	bot, err := tele.NewBot(tele.Settings{Offline: true, URL: srv.URL})
	require.NoError(t, err)

	disp := sender.NewDispatcher(sender.Options{Workers: 4})
	SetDispatcher(disp)
	defer SetDispatcher(nil)

	c := bot.NewContext(tele.Update{Message: &tele.Message{
		Chat:   &tele.Chat{ID: 7},
		Sender: &tele.User{ID: 7},
	}})
	require.NoError(t, SendSeq(c, 7, "confirmation", "invite"))

	disp.Close()
	require.Equal(t, []string{"confirmation", "invite"}, api.received())
}

func TestSendSeqNoTexts(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)

	c := bot.NewContext(tele.Update{Message: &tele.Message{Chat: &tele.Chat{ID: 7}}})
	require.NoError(t, SendSeq(c, 7))
}
