package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewHTTPClient("test-token").WithBaseURL(srv.URL)
}

func TestGetUpdates_OmitsAbsentOffset(t *testing.T) {
	var body map[string]any

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getUpdates", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{"update_id": 5, "message": map[string]any{"message_id": 1, "text": "hi"}},
				{"update_id": 6, "callback_query": map[string]any{"id": "cb", "data": "x"}},
			},
		})
	})

	updates, err := c.GetUpdates(context.Background(), GetUpdatesParams{Timeout: 0})
	require.NoError(t, err)

	_, hasOffset := body["offset"]
	assert.False(t, hasOffset)
	assert.EqualValues(t, 0, body["timeout"])

	require.Len(t, updates, 2)
	assert.Equal(t, 5, updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "hi", updates[0].Message.Text)
	assert.Nil(t, updates[0].CallbackQuery)
	require.NotNil(t, updates[1].CallbackQuery)
	assert.Equal(t, "x", updates[1].CallbackQuery.Data)
}

func TestGetUpdates_SendsOffset(t *testing.T) {
	var body map[string]any

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	offset := 7
	updates, err := c.GetUpdates(context.Background(), GetUpdatesParams{Offset: &offset, Timeout: 1})
	require.NoError(t, err)
	assert.Empty(t, updates)
	assert.EqualValues(t, 7, body["offset"])
	assert.EqualValues(t, 1, body["timeout"])
}

func TestGetUpdates_APIErrorIsTransportError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Conflict: terminated by other getUpdates request"}`))
	})

	_, err := c.GetUpdates(context.Background(), GetUpdatesParams{})
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "getUpdates", transportErr.Method)
	assert.Equal(t, http.StatusConflict, transportErr.StatusCode)
	assert.Contains(t, err.Error(), "Conflict")
}

func TestGetUpdates_MalformedBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := c.GetUpdates(context.Background(), GetUpdatesParams{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
}

func TestGetUpdates_CancelledContext(t *testing.T) {
	c := newTestServer(t, func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetUpdates(ctx, GetUpdatesParams{Timeout: 30})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetMe(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getMe", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Poll","username":"poll_bot"}}`))
	})

	info, err := c.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.ID)
	assert.True(t, info.IsBot)
	assert.Equal(t, "poll_bot", info.Username)
}

func TestSendMessage(t *testing.T) {
	var body map[string]any

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":10,"text":"pong"}}`))
	})

	msg, err := c.SendMessage(context.Background(), 100, "pong", &SendOptions{ReplyToMessageID: 3})
	require.NoError(t, err)
	assert.Equal(t, 10, msg.MessageID)
	assert.EqualValues(t, 100, body["chat_id"])
	assert.EqualValues(t, 3, body["reply_to_message_id"])
	_, hasParseMode := body["parse_mode"]
	assert.False(t, hasParseMode)
}

func TestAnswerCallback(t *testing.T) {
	var body map[string]any

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	})

	require.NoError(t, c.AnswerCallback(context.Background(), "cb-1", "ok"))
	assert.Equal(t, "cb-1", body["callback_query_id"])
}

func TestTransportError_HidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient("secret-token").WithBaseURL(url)

	_, err := c.GetMe(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "getMe", transportErr.Method)
}
