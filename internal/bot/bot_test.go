package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/pollbot/internal/client"
	"github.com/letsssgooo/pollbot/internal/events"
	"github.com/letsssgooo/pollbot/internal/storage"
)

type stubClient struct {
	mu       sync.Mutex
	me       *client.BotInfo
	meErr    error
	meCalls  int
	batches  [][]client.Update
	timeouts []int
	done     func()
}

func (c *stubClient) GetMe(context.Context) (*client.BotInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.meCalls++
	return c.me, c.meErr
}

func (c *stubClient) GetUpdates(_ context.Context, params client.GetUpdatesParams) ([]client.Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timeouts = append(c.timeouts, params.Timeout)
	if len(c.batches) == 0 {
		c.done()
		return nil, nil
	}

	batch := c.batches[0]
	c.batches = c.batches[1:]

	return batch, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewBot_LoadsIdentityOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &stubClient{me: &client.BotInfo{ID: 42, Username: "poll_bot"}, done: cancel}

	b, err := NewBot(ctx, c, WithLogger(testLogger()), WithPollTimeout(5))
	require.NoError(t, err)
	assert.Equal(t, "poll_bot", b.Me().Username)

	require.NoError(t, b.Run(ctx))

	assert.Equal(t, 1, c.meCalls)
	assert.Equal(t, []int{5}, c.timeouts)
}

func TestNewBot_GetMeError(t *testing.T) {
	c := &stubClient{meErr: &client.TransportError{Method: "getMe", StatusCode: 401, Description: "Unauthorized"}}

	_, err := NewBot(context.Background(), c, WithLogger(testLogger()))
	require.Error(t, err)

	var transportErr *client.TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestBot_TypedHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &stubClient{
		me:   &client.BotInfo{ID: 1},
		done: cancel,
		batches: [][]client.Update{{
			{UpdateID: 1, Message: &client.Message{Text: "hi"}},
			{UpdateID: 2, EditedMessage: &client.Message{Text: "hi!"}},
			{UpdateID: 3, CallbackQuery: &client.CallbackQuery{Data: "yes"}},
		}},
	}

	b, err := NewBot(ctx, c, WithLogger(testLogger()))
	require.NoError(t, err)

	var got []string
	b.OnMessage(func(_ context.Context, msg *client.Message) error {
		got = append(got, "message:"+msg.Text)
		return nil
	})
	b.OnEditedMessage(func(_ context.Context, msg *client.Message) error {
		got = append(got, "edited:"+msg.Text)
		return nil
	})
	b.OnCallbackQuery(func(_ context.Context, query *client.CallbackQuery) error {
		got = append(got, "callback:"+query.Data)
		return nil
	})
	b.On(events.EventTypeMessage, func(_ context.Context, e events.Event) error {
		got = append(got, "raw:"+string(e.Type()))
		return nil
	})

	require.NoError(t, b.Run(ctx))

	assert.Equal(t, []string{"message:hi", "raw:message", "edited:hi!", "callback:yes"}, got)
	assert.Equal(t, 4, b.Dispatcher().Cursor().Offset)
}

func TestBot_CursorStoreKeyedByIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.NewMemoryStorage()
	c := &stubClient{
		me:      &client.BotInfo{ID: 99},
		done:    cancel,
		batches: [][]client.Update{{{UpdateID: 10, Message: &client.Message{}}}},
	}

	var factoryID int64
	b, err := NewBot(ctx, c, WithLogger(testLogger()), WithCursorStore(func(me client.BotInfo) storage.CursorStore {
		factoryID = me.ID
		return store
	}))
	require.NoError(t, err)
	require.NoError(t, b.Run(ctx))

	assert.Equal(t, int64(99), factoryID)

	offset, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 11, offset)
}
