package middleware

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acropolistg/Manager-Bot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

func TestMain(m *testing.M) {
	_ = logger.Init(nil)
	os.Exit(m.Run())
}

func newUpdateContext(t *testing.T, userID int64) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b.NewContext(tele.Update{
		ID: 1,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID},
			Text:   "hi",
		},
	})
}

func newCallbackContext(t *testing.T, userID int64) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b.NewContext(tele.Update{
		ID: 2,
		Callback: &tele.Callback{
			Sender: &tele.User{ID: userID},
			Data:   "\fbuy_7",
		},
	})
}

func countingHandler(calls *int) tele.HandlerFunc {
	return func(c tele.Context) error {
		*calls++
		return nil
	}
}

func TestRateLimitBlocksRapidMessages(t *testing.T) {
	var calls int
	h := RateLimitMiddleware(RateLimitOptions{Interval: time.Minute})(countingHandler(&calls))

	c := newUpdateContext(t, 42)
	require.NoError(t, h(c))
	require.NoError(t, h(c))

	assert.Equal(t, 1, calls, "second message within the interval must be dropped")
}

func TestRateLimitPerUser(t *testing.T) {
	var calls int
	h := RateLimitMiddleware(RateLimitOptions{Interval: time.Minute})(countingHandler(&calls))

	require.NoError(t, h(newUpdateContext(t, 1)))
	require.NoError(t, h(newUpdateContext(t, 2)))

	assert.Equal(t, 2, calls)
}

func TestRateLimitExclusions(t *testing.T) {
	var calls int
	h := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Minute,
		Exclude:  map[string]struct{}{"callback": {}},
	})(countingHandler(&calls))

	c := newCallbackContext(t, 42)
	require.NoError(t, h(c))
	require.NoError(t, h(c))

	assert.Equal(t, 2, calls, "excluded update kinds bypass the limiter")
}

func TestRateLimitDisabled(t *testing.T) {
	var calls int
	h := RateLimitMiddleware(RateLimitOptions{})(countingHandler(&calls))

	c := newUpdateContext(t, 42)
	require.NoError(t, h(c))
	require.NoError(t, h(c))

	assert.Equal(t, 2, calls)
}

func TestRateLimitOnLimited(t *testing.T) {
	var limited int
	h := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Minute,
		OnLimited: func(c tele.Context) error {
			limited++
			return nil
		},
	})(countingHandler(new(int)))

	c := newUpdateContext(t, 42)
	require.NoError(t, h(c))
	require.NoError(t, h(c))

	assert.Equal(t, 1, limited)
}

func TestAdminOnlyRejectsOthers(t *testing.T) {
	var calls, rejects int
	h := AdminOnlyMiddleware(AdminOptions{
		AdminID: 1000,
		OnReject: func(c tele.Context) error {
			rejects++
			return nil
		},
	})(countingHandler(&calls))

	require.NoError(t, h(newUpdateContext(t, 42)))
	require.NoError(t, h(newUpdateContext(t, 1000)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rejects)
}

func TestRecoverSwallowsPanic(t *testing.T) {
	h := RecoverMiddleware(func(c tele.Context) error {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		_ = h(newUpdateContext(t, 42))
	})
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})

	require.NoError(t, h(newUpdateContext(t, 42)))
	assert.Equal(t, "1:42:42", rid)
}
