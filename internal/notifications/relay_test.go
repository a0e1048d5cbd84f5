package notifications

import (
	"context"
	"testing"
	"time"

	"glimpse/internal/docstore/memstore"
	"glimpse/internal/models"
	"glimpse/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) (*RedisRelay, repository.UserRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	userRepo := repository.NewUserRepository(memstore.New())
	return NewRedisRelay(client, userRepo), userRepo
}

func createRecipient(t *testing.T, userRepo repository.UserRepository, id string) {
	t.Helper()
	require.NoError(t, userRepo.Create(context.Background(), &models.User{
		ID:          id,
		DisplayName: "Ada",
	}))
}

func waitPayload(t *testing.T, ch chan Payload) Payload {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payload")
		return Payload{}
	}
}

func TestRedisRelay_TokenBookkeeping(t *testing.T) {
	relay, userRepo := newTestRelay(t)
	ctx := context.Background()
	createRecipient(t, userRepo, "u1")

	require.NoError(t, relay.RegisterToken(ctx, "u1", "device-token"))
	user, err := userRepo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "device-token", user.FCMToken)

	require.NoError(t, relay.RemoveToken(ctx, "u1"))
	user, err = userRepo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, user.FCMToken)
}

func TestRedisRelay_PublishSkipsTokenless(t *testing.T) {
	relay, userRepo := newTestRelay(t)
	ctx := context.Background()
	createRecipient(t, userRepo, "u1")

	received := make(chan Payload, 1)
	relay.SetForeground(true)
	cancel := relay.OnForegroundMessage(func(p Payload) { received <- p })
	defer cancel()
	require.NoError(t, relay.StartListener(ctx, "u1"))

	// No token registered: the publish is dropped before the wire.
	require.NoError(t, relay.Publish(ctx, "u1", Payload{Title: "hi"}))

	select {
	case <-received:
		t.Fatal("payload delivered to tokenless recipient")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRedisRelay_PublishAndDispatch(t *testing.T) {
	relay, userRepo := newTestRelay(t)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	createRecipient(t, userRepo, "u1")
	require.NoError(t, relay.RegisterToken(ctx, "u1", "device-token"))

	foreground := make(chan Payload, 4)
	background := make(chan Payload, 4)
	cancelFg := relay.OnForegroundMessage(func(p Payload) { foreground <- p })
	defer cancelFg()
	cancelBg := relay.OnBackgroundMessage(func(p Payload) { background <- p })
	defer cancelBg()

	require.NoError(t, relay.StartListener(ctx, "u1"))
	time.Sleep(50 * time.Millisecond) // let the subscription attach

	relay.SetForeground(true)
	require.NoError(t, relay.Publish(ctx, "u1", Payload{Title: "New comment", PostID: "p1"}))
	got := waitPayload(t, foreground)
	assert.Equal(t, "New comment", got.Title)
	assert.Equal(t, "p1", got.PostID)

	relay.SetForeground(false)
	require.NoError(t, relay.Publish(ctx, "u1", Payload{Title: "While away"}))
	got = waitPayload(t, background)
	assert.Equal(t, "While away", got.Title)

	select {
	case <-foreground:
		t.Fatal("background payload reached foreground handler")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedisRelay_HandlerCancel(t *testing.T) {
	relay, userRepo := newTestRelay(t)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	createRecipient(t, userRepo, "u1")
	require.NoError(t, relay.RegisterToken(ctx, "u1", "device-token"))

	received := make(chan Payload, 1)
	relay.SetForeground(true)
	cancel := relay.OnForegroundMessage(func(p Payload) { received <- p })
	require.NoError(t, relay.StartListener(ctx, "u1"))

	cancel()
	require.NoError(t, relay.Publish(ctx, "u1", Payload{Title: "gone"}))

	select {
	case <-received:
		t.Fatal("payload delivered after handler cancel")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRedisRelay_InitialNotificationConsumedOnce(t *testing.T) {
	relay, _ := newTestRelay(t)

	assert.Nil(t, relay.GetInitialNotification())

	relay.SetInitialNotification(Payload{Title: "launch", PostID: "p1"})

	first := relay.GetInitialNotification()
	require.NotNil(t, first)
	assert.Equal(t, "p1", first.PostID)

	assert.Nil(t, relay.GetInitialNotification())
}
