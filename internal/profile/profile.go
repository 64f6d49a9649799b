// profile содержит расширенный профиль пользователя удалённой платформы
// и слияние partial-payload в него.
//
// Правило слияния для каждого ключа верхнего уровня:
//   - ключ присутствует - поле перезаписывается преобразованным значением;
//   - ключа нет - поле не трогается.
//
// Значения по умолчанию (пустые последовательности, null) выставляются один раз
// при создании профиля, поэтому отсутствие ключа в последующих апдейтах никогда
// не сбрасывает накопленное состояние.
package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/disgoorg/snowflake/v2"

	"github.com/pribylovaa/go-user-profiles/internal/models"
)

var (
	// ErrNoOwner - в payload нет ссылки на владельца профиля.
	ErrNoOwner = errors.New("profile owner is missing")
	// ErrUnresolvedUser - ссылку на пользователя не удалось разрешить через кэш.
	ErrUnresolvedUser = errors.New("user reference cannot be resolved")
	// ErrNilResolver - профиль создаётся без кэша пользователей.
	ErrNilResolver = errors.New("user resolver is nil")
)

// maxAccentColor - accent_color хранится как 24-битный RGB.
const maxAccentColor = 0xFFFFFF

// UserResolver - кэш пользователей, через который разрешаются все вложенные
// ссылки на пользователей (владелец, общие друзья).
type UserResolver interface {
	// Get возвращает закэшированного пользователя.
	Get(id snowflake.ID) (*models.User, bool)
	// Add регистрирует пользователя и возвращает его handle.
	Add(raw models.UserPayload) (*models.User, error)
}

// Profile - расширенный профиль пользователя.
// Не предназначен для конкурентного использования: синхронизацию обеспечивает владелец.
type Profile struct {
	User              *models.User
	ConnectedAccounts []models.ConnectedAccount
	PremiumType       null.Int8
	PremiumSince      null.Time
	PremiumGuildSince null.Time
	Bio               null.String
	AccentColor       null.Int
	Pronouns          null.String
	Badges            []models.Badge
	GuildBadges       []models.GuildBadge
	MutualGuilds      []models.MutualGuild
	MutualFriends     []*models.User

	users UserResolver
}

// New создаёт профиль из первого payload: слияние поверх пустых значений по умолчанию.
// Payload обязан содержать user, иначе ErrNoOwner.
func New(users UserResolver, payload *models.ProfilePayload) (*Profile, error) {
	const op = "profile/New"

	if users == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNilResolver)
	}

	if payload == nil || !payload.User.Present {
		return nil, fmt.Errorf("%s: %w", op, ErrNoOwner)
	}

	p := &Profile{
		ConnectedAccounts: []models.ConnectedAccount{},
		Badges:            []models.Badge{},
		GuildBadges:       []models.GuildBadge{},
		MutualGuilds:      []models.MutualGuild{},
		MutualFriends:     []*models.User{},
		users:             users,
	}

	if err := p.Patch(payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// NewFromJSON - New поверх сырого JSON.
func NewFromJSON(users UserResolver, data []byte) (*Profile, error) {
	payload, err := models.DecodeProfilePayload(data)
	if err != nil {
		return nil, fmt.Errorf("profile/NewFromJSON: %w", err)
	}

	return New(users, payload)
}

// Patch сливает payload в профиль.
//
// Все преобразования вычисляются до записи: если хотя бы одно поле некорректно,
// профиль остаётся без изменений. Регистрация новых пользователей в кэше при этом
// не откатывается - кэшем владеет UserResolver.
func (p *Profile) Patch(payload *models.ProfilePayload) error {
	const op = "profile/Patch"

	if payload == nil {
		return nil
	}

	// Профиль, собранный не через New, не умеет разрешать пользователей.
	if p.users == nil {
		return fmt.Errorf("%s: %w", op, ErrNilResolver)
	}

	next := *p
	if err := next.merge(payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	*p = next

	return nil
}

// PatchJSON - Patch поверх сырого JSON.
func (p *Profile) PatchJSON(data []byte) error {
	payload, err := models.DecodeProfilePayload(data)
	if err != nil {
		return fmt.Errorf("profile/PatchJSON: %w", err)
	}

	return p.Patch(payload)
}

func (p *Profile) merge(in *models.ProfilePayload) error {
	if in.User.Present {
		if in.User.Null {
			return ErrNoOwner
		}

		owner, err := p.resolve(in.User.Value)
		if err != nil {
			return fmt.Errorf("user: %w", err)
		}

		p.User = owner
	}

	if in.ConnectedAccounts.Present {
		if in.ConnectedAccounts.Null {
			return nullSequence("connected_accounts")
		}

		p.ConnectedAccounts = nonNil(in.ConnectedAccounts.Value)
	}

	if in.PremiumType.Present {
		switch {
		case in.PremiumType.Null:
			p.PremiumType = null.Int8{}
		case !in.PremiumType.Value.Valid():
			return fmt.Errorf("%w: premium_type %d is unknown", models.ErrMalformedPayload, in.PremiumType.Value)
		default:
			p.PremiumType = null.Int8From(int8(in.PremiumType.Value))
		}
	}

	if in.PremiumSince.Present {
		t, err := parseInstant("premium_since", in.PremiumSince.Value, in.PremiumSince.Null)
		if err != nil {
			return err
		}

		p.PremiumSince = t
	}

	if in.PremiumGuildSince.Present {
		t, err := parseInstant("premium_guild_since", in.PremiumGuildSince.Value, in.PremiumGuildSince.Null)
		if err != nil {
			return err
		}

		p.PremiumGuildSince = t
	}

	// bio, accent_color и pronouns меняются только вместе.
	if in.UserProfile.Present {
		if in.UserProfile.Null {
			return fmt.Errorf("%w: user_profile is null", models.ErrMalformedPayload)
		}

		section := in.UserProfile.Value
		if c := section.AccentColor; c != nil && (*c < 0 || *c > maxAccentColor) {
			return fmt.Errorf("%w: user_profile.accent_color %d is not a 24-bit color", models.ErrMalformedPayload, *c)
		}

		p.Bio = null.StringFromPtr(section.Bio)
		p.AccentColor = null.IntFromPtr(section.AccentColor)
		p.Pronouns = null.StringFromPtr(section.Pronouns)
	}

	if in.Badges.Present {
		if in.Badges.Null {
			return nullSequence("badges")
		}

		p.Badges = nonNil(in.Badges.Value)
	}

	if in.GuildBadges.Present {
		if in.GuildBadges.Null {
			return nullSequence("guild_badges")
		}

		p.GuildBadges = nonNil(in.GuildBadges.Value)
	}

	if in.MutualGuilds.Present {
		if in.MutualGuilds.Null {
			return nullSequence("mutual_guilds")
		}

		p.MutualGuilds = nonNil(in.MutualGuilds.Value)
	}

	if in.MutualFriends.Present {
		if in.MutualFriends.Null {
			return nullSequence("mutual_friends")
		}

		friends := make([]*models.User, 0, len(in.MutualFriends.Value))
		for i, raw := range in.MutualFriends.Value {
			friend, err := p.resolve(raw)
			if err != nil {
				return fmt.Errorf("mutual_friends[%d]: %w", i, err)
			}

			friends = append(friends, friend)
		}

		p.MutualFriends = friends
	}

	return nil
}

// resolve - get ?? add через кэш пользователей.
func (p *Profile) resolve(raw models.UserPayload) (*models.User, error) {
	id, err := raw.Snowflake()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvedUser, err)
	}

	if user, ok := p.users.Get(id); ok {
		return user, nil
	}

	user, err := p.users.Add(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvedUser, err)
	}

	if user == nil {
		return nil, fmt.Errorf("%w: resolver returned no user for %s", ErrUnresolvedUser, id)
	}

	return user, nil
}

// instantLayouts - форматы даты-времени, которые отдаёт платформа.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseInstant: null или пустая строка - null («нет подписки»), иначе момент времени.
func parseInstant(key, raw string, isNull bool) (null.Time, error) {
	raw = strings.TrimSpace(raw)
	if isNull || raw == "" {
		return null.Time{}, nil
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return null.TimeFrom(t.UTC()), nil
		}
	}

	return null.Time{}, fmt.Errorf("%w: %s %q is not a date-time", models.ErrMalformedPayload, key, raw)
}

func nullSequence(key string) error {
	return fmt.Errorf("%w: %s is null, array expected", models.ErrMalformedPayload, key)
}

// nonNil: пустой JSON-массив и nil-срез после декодирования приводятся к пустому срезу.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

// PremiumSinceTimestamp - PremiumSince в миллисекундах Unix; null, если подписки нет.
func (p *Profile) PremiumSinceTimestamp() null.Int64 {
	return timestamp(p.PremiumSince)
}

// PremiumGuildSinceTimestamp - PremiumGuildSince в миллисекундах Unix; null, если буста нет.
func (p *Profile) PremiumGuildSinceTimestamp() null.Int64 {
	return timestamp(p.PremiumGuildSince)
}

// Premium возвращает тип подписки и признак его наличия.
func (p *Profile) Premium() (models.PremiumType, bool) {
	if !p.PremiumType.Valid {
		return models.PremiumNone, false
	}

	return models.PremiumType(p.PremiumType.Int8), true
}

// CreatedAt - время создания аккаунта владельца.
func (p *Profile) CreatedAt() time.Time {
	return p.User.CreatedAt()
}

// CreatedTimestamp - CreatedAt в миллисекундах Unix.
func (p *Profile) CreatedTimestamp() int64 {
	return p.User.CreatedTimestamp()
}

// String возвращает упоминание владельца, а не внутреннее представление профиля.
func (p *Profile) String() string {
	return p.User.String()
}

func timestamp(t null.Time) null.Int64 {
	if !t.Valid {
		return null.Int64{}
	}

	return null.Int64From(t.Time.UnixMilli())
}
