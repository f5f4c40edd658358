package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/database/dbtest"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	m.Run()
}

func newRouter(t *testing.T) *Router {
	provider, _ := dbtest.Provider(t)
	return NewRouter(repository.NewChatRepository(provider))
}

func TestRoomIDForIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"9876543210", "1234567890"},
		{"a", "b"},
		{"alice", "alice2"},
		{"", "x"},
	}
	for _, p := range pairs {
		assert.Equal(t, RoomIDFor(p[0], p[1]), RoomIDFor(p[1], p[0]), "pair %v", p)
	}
	assert.Equal(t, "1234567890_9876543210", RoomIDFor("9876543210", "1234567890"))
}

func TestRoomIDForSelf(t *testing.T) {
	for _, id := range []string{"a", "1234567890", "x_y"} {
		assert.Equal(t, id, RoomIDFor(id, id))
	}
	assert.Equal(t, []string{"a"}, Participants("a", "a"))
	assert.Equal(t, []string{"a", "b"}, Participants("b", "a"))
}

func TestLoadHistoryBeforeAnyMessage(t *testing.T) {
	r := newRouter(t)

	messages, err := r.LoadHistory(context.Background(), "111", "222")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestLoadHistoryMatchesExactPair(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	_, err := r.AppendMessage(ctx, "a", "a", "a", "note to self")
	require.NoError(t, err)
	_, err = r.AppendMessage(ctx, "a", "b", "a", "hi b")
	require.NoError(t, err)

	withC, err := r.LoadHistory(ctx, "a", "c")
	require.NoError(t, err)
	assert.Empty(t, withC)

	self, err := r.LoadHistory(ctx, "a", "a")
	require.NoError(t, err)
	require.Len(t, self, 1)
	assert.Equal(t, "note to self", self[0].Text)

	withB, err := r.LoadHistory(ctx, "b", "a")
	require.NoError(t, err)
	require.Len(t, withB, 1)
	assert.Equal(t, "hi b", withB[0].Text)
}

func TestAppendMessageAssignsServerTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := newRouter(t).WithClock(func() time.Time { return fixed })

	room, err := r.AppendMessage(context.Background(), "222", "111", "222", "hello")
	require.NoError(t, err)

	assert.Equal(t, "111_222", room.ID)
	assert.Equal(t, []string{"111", "222"}, room.Chat.Participants)
	assert.Equal(t, "222", room.Message.Sender)
	assert.True(t, fixed.Equal(room.Message.CreatedAt))
	assert.Len(t, room.Chat.Messages, 1)
}

func TestAppendMessageValidation(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	_, err := r.AppendMessage(ctx, "", "b", "a", "x")
	assert.ErrorIs(t, err, ErrEmptyIdentity)

	_, err = r.AppendMessage(ctx, "a", "b", "a", "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()
	const n = 40

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, receiver := "a", "b"
			if i%2 == 1 {
				sender, receiver = receiver, sender
			}
			_, err := r.AppendMessage(ctx, sender, receiver, sender, fmt.Sprintf("%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := r.LoadHistory(ctx, "a", "b")
	require.NoError(t, err)
	assert.Len(t, history, n)
}

func TestDeletePairEitherOrder(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	_, err := r.AppendMessage(ctx, "u1", "u2", "u1", "x")
	require.NoError(t, err)

	require.NoError(t, r.DeletePair(ctx, "u2", "u1"))
	assert.ErrorIs(t, r.DeletePair(ctx, "u1", "u2"), ErrChatNotFound)

	history, err := r.LoadHistory(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDeleteMessages(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	var ids []string
	for _, text := range []string{"zero", "one", "two"} {
		room, err := r.AppendMessage(ctx, "a", "b", "a", text)
		require.NoError(t, err)
		ids = append(ids, room.Message.ID)
	}

	msg, err := r.DeleteMessageAt(ctx, "b", "a", 0)
	require.NoError(t, err)
	assert.Equal(t, "zero", msg.Text)

	_, err = r.DeleteMessageAt(ctx, "a", "b", 9)
	assert.ErrorIs(t, err, ErrMessageNotFound)

	msg, err = r.DeleteMessage(ctx, "a", "b", ids[2])
	require.NoError(t, err)
	assert.Equal(t, "two", msg.Text)

	_, err = r.DeleteMessage(ctx, "a", "b", ids[2])
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestListChats(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	_, err := r.AppendMessage(ctx, "me", "you", "me", "x")
	require.NoError(t, err)
	_, err = r.AppendMessage(ctx, "me", "me", "me", "y")
	require.NoError(t, err)

	chats, err := r.ListChats(ctx, "me")
	require.NoError(t, err)
	require.Len(t, chats, 2)

	with := map[string]bool{}
	for _, c := range chats {
		with[c.With] = true
	}
	assert.True(t, with["you"])
	assert.True(t, with["me"])
}

type failingProvider struct{}

func (failingProvider) Get(context.Context) (*gorm.DB, error) {
	return nil, fmt.Errorf("%w: refused", database.ErrUnavailable)
}

func TestAppendSurfacesUnavailable(t *testing.T) {
	r := NewRouter(repository.NewChatRepository(failingProvider{}))

	_, err := r.AppendMessage(context.Background(), "a", "b", "a", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, database.ErrUnavailable))
}
