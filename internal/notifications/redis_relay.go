package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"glimpse/internal/observability"
	"glimpse/internal/repository"

	"github.com/redis/go-redis/v9"
)

// RedisRelay implements Relay over Redis pub/sub. Each principal has a
// channel; outbound sends check the recipient's stored token first, the
// way the real push gateway would.
type RedisRelay struct {
	rdb      *redis.Client
	userRepo repository.UserRepository

	mu         sync.Mutex
	foreground bool
	fgHandlers map[int]MessageHandler
	bgHandlers map[int]MessageHandler
	nextID     int
	initial    *Payload
}

// NewRedisRelay creates a relay using the provided Redis client and the
// user repository for token bookkeeping.
func NewRedisRelay(rdb *redis.Client, userRepo repository.UserRepository) *RedisRelay {
	return &RedisRelay{
		rdb:        rdb,
		userRepo:   userRepo,
		fgHandlers: make(map[int]MessageHandler),
		bgHandlers: make(map[int]MessageHandler),
	}
}

var _ Relay = (*RedisRelay)(nil)

func userChannel(principalID string) string {
	return fmt.Sprintf("notify:user:%s", principalID)
}

func (r *RedisRelay) RegisterToken(ctx context.Context, principalID, token string) error {
	return r.userRepo.SetNotificationToken(ctx, principalID, token)
}

func (r *RedisRelay) RemoveToken(ctx context.Context, principalID string) error {
	return r.userRepo.RemoveNotificationToken(ctx, principalID)
}

// Publish sends a payload to one recipient's channel. Recipients without
// a registered token are skipped, matching push-gateway behavior.
func (r *RedisRelay) Publish(ctx context.Context, recipientID string, p Payload) error {
	if r.rdb == nil {
		return nil
	}
	recipient, err := r.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return err
	}
	if recipient.FCMToken == "" {
		return nil
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, userChannel(recipientID), raw).Err(); err != nil {
		return err
	}
	observability.RelayPublishes.WithLabelValues("user").Inc()
	return nil
}

// StartListener subscribes to the principal's channel and dispatches
// inbound payloads to the registered handlers until ctx is cancelled.
func (r *RedisRelay) StartListener(ctx context.Context, principalID string) error {
	if r.rdb == nil {
		return nil
	}
	sub := r.rdb.Subscribe(ctx, userChannel(principalID))
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if rec := recover(); rec != nil {
							log.Printf("PANIC in notification listener: %v\n%s", rec, debug.Stack())
						}
					}()
					var p Payload
					if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
						log.Printf("malformed notification payload: %v", err)
						return
					}
					r.dispatch(p)
				}()
			}
		}
	}()

	return nil
}

// SetForeground records whether the app is foregrounded, which decides
// the handler set inbound payloads dispatch to.
func (r *RedisRelay) SetForeground(foreground bool) {
	r.mu.Lock()
	r.foreground = foreground
	r.mu.Unlock()
}

// SetInitialNotification records the payload the app was launched from.
func (r *RedisRelay) SetInitialNotification(p Payload) {
	r.mu.Lock()
	r.initial = &p
	r.mu.Unlock()
}

func (r *RedisRelay) OnForegroundMessage(handler MessageHandler) CancelFunc {
	return r.addHandler(handler, true)
}

func (r *RedisRelay) OnBackgroundMessage(handler MessageHandler) CancelFunc {
	return r.addHandler(handler, false)
}

func (r *RedisRelay) GetInitialNotification() *Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.initial
	r.initial = nil
	return p
}

func (r *RedisRelay) addHandler(handler MessageHandler, foreground bool) CancelFunc {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	if foreground {
		r.fgHandlers[id] = handler
	} else {
		r.bgHandlers[id] = handler
	}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		if foreground {
			delete(r.fgHandlers, id)
		} else {
			delete(r.bgHandlers, id)
		}
		r.mu.Unlock()
	}
}

func (r *RedisRelay) dispatch(p Payload) {
	r.mu.Lock()
	var handlers []MessageHandler
	if r.foreground {
		for _, h := range r.fgHandlers {
			handlers = append(handlers, h)
		}
	} else {
		for _, h := range r.bgHandlers {
			handlers = append(handlers, h)
		}
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(p)
	}
}
