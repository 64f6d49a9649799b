// models содержит доменные сущности profiles-service:
// пользователя удалённой платформы (User), тип подписки (PremiumType),
// непрозрачные записи профиля и схему входящего partial-payload.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/disgoorg/snowflake/v2"
)

// ErrInvalidUserID - id пользователя пуст или не является snowflake.
var ErrInvalidUserID = errors.New("invalid user id")

// UserPayload - сырая запись пользователя, как она приходит от платформы.
type UserPayload struct {
	ID            string      `json:"id"`
	Username      string      `json:"username"`
	GlobalName    null.String `json:"global_name"`
	Discriminator string      `json:"discriminator"`
	Avatar        null.String `json:"avatar"`
	Bot           bool        `json:"bot"`
}

// Snowflake разбирает id записи.
func (p UserPayload) Snowflake() (snowflake.ID, error) {
	return ParseUserID(p.ID)
}

// ParseUserID разбирает строковый snowflake; нулевой id недопустим.
func ParseUserID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidUserID)
	}

	id, err := snowflake.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, raw)
	}

	if id == 0 {
		return 0, fmt.Errorf("%w: zero", ErrInvalidUserID)
	}

	return id, nil
}

// User - identity-stable handle пользователя.
// Экземпляры создаёт только кэш пользователей, после создания они не меняются,
// поэтому их можно разделять между профилями и горутинами и сравнивать по указателю.
type User struct {
	ID            snowflake.ID
	Username      string
	GlobalName    null.String
	Discriminator string
	Avatar        null.String
	Bot           bool
}

// NewUser строит User из сырой записи.
func NewUser(p UserPayload) (*User, error) {
	id, err := p.Snowflake()
	if err != nil {
		return nil, err
	}

	return &User{
		ID:            id,
		Username:      p.Username,
		GlobalName:    p.GlobalName,
		Discriminator: p.Discriminator,
		Avatar:        p.Avatar,
		Bot:           p.Bot,
	}, nil
}

// CreatedAt - момент создания аккаунта, закодированный в snowflake.
func (u *User) CreatedAt() time.Time {
	return u.ID.Time()
}

// CreatedTimestamp - CreatedAt в миллисекундах Unix.
func (u *User) CreatedTimestamp() int64 {
	return u.CreatedAt().UnixMilli()
}

// DisplayName - global_name, если задан, иначе username.
func (u *User) DisplayName() string {
	if u.GlobalName.Valid && u.GlobalName.String != "" {
		return u.GlobalName.String
	}

	return u.Username
}

// Mention - упоминание пользователя в тексте.
func (u *User) Mention() string {
	return "<@" + u.ID.String() + ">"
}

// String возвращает Mention, чтобы при подстановке в текст выводилось упоминание.
func (u *User) String() string {
	return u.Mention()
}
