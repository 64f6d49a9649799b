package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/disgoorg/snowflake/v2"

	"github.com/pribylovaa/go-user-profiles/internal/metrics"
	"github.com/pribylovaa/go-user-profiles/internal/models"
	"github.com/pribylovaa/go-user-profiles/internal/profile"
	"github.com/pribylovaa/go-user-profiles/pkg/log"
)

// ApplyInput - payload профиля и (опционально) id владельца.
// Пустой UserID - id берётся из payload.user.id.
type ApplyInput struct {
	UserID  string
	Payload []byte
}

// ProfileView - неизменяемый снимок профиля для транспортного слоя.
type ProfileView struct {
	User                       *models.User
	Display                    string
	ConnectedAccounts          []models.ConnectedAccount
	PremiumType                null.Int8
	PremiumSince               null.Time
	PremiumSinceTimestamp      null.Int64
	PremiumGuildSince          null.Time
	PremiumGuildSinceTimestamp null.Int64
	Bio                        null.String
	AccentColor                null.Int
	Pronouns                   null.String
	Badges                     []models.Badge
	GuildBadges                []models.GuildBadge
	MutualGuilds               []models.MutualGuild
	MutualFriends              []*models.User
	CreatedAt                  time.Time
}

// Apply применяет payload к профилю владельца: первый payload создаёт профиль,
// последующие сливаются в него.
//
// Валидация:
//   - payload должен быть JSON-объектом распознаваемой формы;
//   - id владельца берётся из UserID или payload.user.id, при расхождении - ErrInvalidArgument;
//   - первый payload обязан содержать user.
//
// Поведение:
//   - ошибки формы/владельца маппятся в ErrInvalidArgument;
//   - отменённый или истёкший ctx возвращается как есть, профиль не меняется;
//   - прочие ошибки - в ErrInternal.
func (s *Service) Apply(ctx context.Context, input ApplyInput) (*ProfileView, error) {
	const op = "service/profiles/Apply"

	lg := log.From(ctx).With("op", op)

	payload, err := models.DecodeProfilePayload(input.Payload)
	if err != nil {
		lg.Warn("invalid argument: malformed payload", "err", err)
		s.metrics.ObserveApply(metrics.ResultRejected)

		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	id, err := ownerID(input.UserID, payload)
	if err != nil {
		lg.Warn("invalid argument: owner id", "requested_user_id", input.UserID, "err", err)
		s.metrics.ObserveApply(metrics.ResultRejected)

		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	lg = lg.With("user_id", id.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	// Запрос мог истечь, пока ждал очереди на mu.
	if err := ctx.Err(); err != nil {
		lg.Warn("apply abandoned", "err", err)
		s.metrics.ObserveApply(metrics.ResultFailed)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := metrics.ResultPatched

	p, ok := s.profiles[id]
	if ok {
		err = p.Patch(payload)
	} else {
		result = metrics.ResultCreated
		p, err = profile.New(s.users, payload)
	}

	if err != nil {
		switch {
		case errors.Is(err, models.ErrMalformedPayload),
			errors.Is(err, profile.ErrNoOwner),
			errors.Is(err, profile.ErrUnresolvedUser):
			lg.Warn("payload rejected", "err", err)
			s.metrics.ObserveApply(metrics.ResultRejected)

			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
		default:
			lg.Error("apply failed", "err", err)
			s.metrics.ObserveApply(metrics.ResultFailed)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if !ok {
		s.profiles[id] = p
		s.metrics.SetTracked(len(s.profiles))
	}

	s.metrics.ObserveApply(result)
	lg.Debug("payload applied", "result", result)

	return snapshot(p), nil
}

// ProfileByID возвращает снимок профиля по id владельца.
//
// Поведение:
//   - некорректный id - ErrInvalidArgument;
//   - профиль ещё не создавался - ErrNotFound.
func (s *Service) ProfileByID(ctx context.Context, userID string) (*ProfileView, error) {
	const op = "service/profiles/ProfileByID"

	lg := log.From(ctx).With("op", op, "user_id", userID)

	id, err := models.ParseUserID(userID)
	if err != nil {
		lg.Warn("invalid argument: user_id", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		lg.Warn("profile not found")

		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return snapshot(p), nil
}

// UserByID возвращает пользователя из общего кэша.
func (s *Service) UserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "service/profiles/UserByID"

	lg := log.From(ctx).With("op", op, "user_id", userID)

	id, err := models.ParseUserID(userID)
	if err != nil {
		lg.Warn("invalid argument: user_id", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, ok := s.users.Get(id)
	if !ok {
		lg.Warn("user not found")

		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return user, nil
}

// ownerID согласует id из запроса и из payload.user.id.
func ownerID(raw string, payload *models.ProfilePayload) (snowflake.ID, error) {
	var fromPayload snowflake.ID

	if payload.User.HasValue() {
		id, err := payload.User.Value.Snowflake()
		if err != nil {
			return 0, err
		}

		fromPayload = id
	}

	if raw == "" {
		if fromPayload == 0 {
			return 0, fmt.Errorf("%w: no user_id and no payload.user", models.ErrInvalidUserID)
		}

		return fromPayload, nil
	}

	id, err := models.ParseUserID(raw)
	if err != nil {
		return 0, err
	}

	if fromPayload != 0 && fromPayload != id {
		return 0, fmt.Errorf("%w: payload.user.id %s does not match %s", models.ErrInvalidUserID, fromPayload, id)
	}

	return id, nil
}

// snapshot копирует профиль; вызывается под s.mu.
// Handles пользователей разделяются: они неизменяемы.
func snapshot(p *profile.Profile) *ProfileView {
	return &ProfileView{
		User:                       p.User,
		Display:                    p.String(),
		ConnectedAccounts:          clone(p.ConnectedAccounts),
		PremiumType:                p.PremiumType,
		PremiumSince:               p.PremiumSince,
		PremiumSinceTimestamp:      p.PremiumSinceTimestamp(),
		PremiumGuildSince:          p.PremiumGuildSince,
		PremiumGuildSinceTimestamp: p.PremiumGuildSinceTimestamp(),
		Bio:                        p.Bio,
		AccentColor:                p.AccentColor,
		Pronouns:                   p.Pronouns,
		Badges:                     clone(p.Badges),
		GuildBadges:                clone(p.GuildBadges),
		MutualGuilds:               clone(p.MutualGuilds),
		MutualFriends:              clone(p.MutualFriends),
		CreatedAt:                  p.CreatedAt(),
	}
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)

	return out
}
