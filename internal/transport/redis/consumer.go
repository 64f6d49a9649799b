// redis - потребитель payload профилей из Redis pub/sub.
//
// Сообщение канала - JSON-конверт {"user_id": "...", "payload": {...}};
// payload без изменений передаётся в сервисный слой. Битые сообщения
// логируются и пропускаются, цикл чтения останавливается по отмене контекста.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-user-profiles/internal/service"
	"github.com/pribylovaa/go-user-profiles/pkg/log"
)

var (
	// ErrMalformedMessage - сообщение канала не является корректным конвертом.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrSubscriptionClosed - канал подписки закрыт со стороны клиента Redis.
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// Applier - приёмник payload (реализуется service.Service).
type Applier interface {
	Apply(ctx context.Context, input service.ApplyInput) (*service.ProfileView, error)
}

// Envelope - формат сообщения в канале.
// UserID необязателен: без него владелец берётся из payload.user.id.
type Envelope struct {
	UserID  string          `json:"user_id" validate:"omitempty,numeric,max=20"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// Consumer читает канал и применяет payload через Applier.
type Consumer struct {
	rdb     redis.UniversalClient
	channel string
	svc     Applier
	timeout time.Duration
	valid   *validator.Validate
}

// Dial создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

// NewConsumer создаёт потребителя. timeout <= 0 - без отдельного дедлайна на сообщение.
func NewConsumer(rdb redis.UniversalClient, channel string, svc Applier, timeout time.Duration) *Consumer {
	return &Consumer{
		rdb:     rdb,
		channel: channel,
		svc:     svc,
		timeout: timeout,
		valid:   validator.New(),
	}
}

// Run подписывается на канал и обрабатывает сообщения до отмены ctx.
// Ошибка обработки отдельного сообщения не останавливает цикл.
func (c *Consumer) Run(ctx context.Context) error {
	const op = "transport/redis/Run"

	lg := log.From(ctx).With("op", op, "channel", c.channel)

	sub := c.rdb.Subscribe(ctx, c.channel)
	defer sub.Close()

	// Дожидаемся подтверждения подписки, чтобы ошибки соединения всплыли сразу.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("%s: subscribe: %w", op, err)
	}

	lg.Info("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			lg.Info("consumer stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("%s: %w", op, ErrSubscriptionClosed)
			}

			_ = c.HandleMessage(ctx, []byte(msg.Payload))
		}
	}
}

// HandleMessage разбирает конверт и применяет payload.
// Ошибки логируются здесь и возвращаются для тестов и вызывающего кода.
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	const op = "transport/redis/HandleMessage"

	lg := log.From(ctx).With("op", op)

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		lg.Warn("skip message", "err", err)
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedMessage, err)
	}

	if err := c.valid.Struct(env); err != nil {
		lg.Warn("skip message: invalid envelope", "user_id", env.UserID, "err", err)
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedMessage, err)
	}

	ctx = log.With(ctx, "user_id", env.UserID)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if _, err := c.svc.Apply(ctx, service.ApplyInput{UserID: env.UserID, Payload: env.Payload}); err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			lg.Warn("payload rejected", "user_id", env.UserID, "err", err)
		} else {
			lg.Error("apply failed", "user_id", env.UserID, "err", err)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
