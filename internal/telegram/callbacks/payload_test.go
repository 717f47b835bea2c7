package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, cb *tele.Callback) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b.NewContext(tele.Update{Callback: cb})
}

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		unique  string
		payload string
	}{
		{name: "unique only", data: "\fbuy_7", unique: "buy_7"},
		{name: "unique with payload", data: "\fapprove|42", unique: "approve", payload: "42"},
		{name: "no formfeed prefix", data: "approve|42", unique: "approve", payload: "42"},
		{name: "payload keeps separators", data: "\fx|a|b", unique: "x", payload: "a|b"},
		{name: "empty", data: "", unique: "", payload: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(&tele.Callback{Data: tt.data})
			assert.Equal(t, tt.unique, unique)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestKeyPrefersUnique(t *testing.T) {
	c := newContext(t, &tele.Callback{Unique: "approve", Data: "42"})
	assert.Equal(t, "approve", Key(c))
}

func TestKeyFallsBackToData(t *testing.T) {
	c := newContext(t, &tele.Callback{Data: "\fbuy_30"})
	assert.Equal(t, "buy_30", Key(c))
}

func TestPayloadInt64(t *testing.T) {
	c := newContext(t, &tele.Callback{Data: "\fapprove|123456789"})
	id, err := PayloadInt64(c)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)
}

func TestPayloadInt64Invalid(t *testing.T) {
	c := newContext(t, &tele.Callback{Data: "\fapprove|not-a-number"})
	_, err := PayloadInt64(c)
	assert.Error(t, err)
}
