package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-user-profiles/pkg/optional"
)

// ErrMalformedPayload - распознанный ключ payload имеет неожиданную форму.
var ErrMalformedPayload = errors.New("malformed payload")

// ProfilePayload - схема partial-payload профиля.
// Каждое поле - optional.Field: Present=false означает «ключа не было, данных нет».
// Неизвестные ключи игнорируются.
type ProfilePayload struct {
	User              optional.Field[UserPayload]        `json:"user"`
	ConnectedAccounts optional.Field[[]ConnectedAccount] `json:"connected_accounts"`
	PremiumType       optional.Field[PremiumType]        `json:"premium_type"`
	PremiumSince      optional.Field[string]             `json:"premium_since"`
	PremiumGuildSince optional.Field[string]             `json:"premium_guild_since"`
	UserProfile       optional.Field[UserProfileSection] `json:"user_profile"`
	Badges            optional.Field[[]Badge]            `json:"badges"`
	GuildBadges       optional.Field[[]GuildBadge]       `json:"guild_badges"`
	MutualGuilds      optional.Field[[]MutualGuild]      `json:"mutual_guilds"`
	MutualFriends     optional.Field[[]UserPayload]      `json:"mutual_friends"`
}

// UserProfileSection - вложенная секция user_profile.
// Все три значения обновляются только вместе; отсутствующий подключ означает null.
type UserProfileSection struct {
	Bio         *string `json:"bio"`
	AccentColor *int    `json:"accent_color"`
	Pronouns    *string `json:"pronouns"`
}

// DecodeProfilePayload разбирает JSON-объект payload.
// Ошибки формы (не объект, массив вместо строки и т.п.) оборачиваются в ErrMalformedPayload.
func DecodeProfilePayload(data []byte) (*ProfilePayload, error) {
	var p ProfilePayload

	// json.Unmarshal молча пропускает null для структуры.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: document is null, object expected", ErrMalformedPayload)
	}

	if err := json.Unmarshal(data, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedPayload, typeErr.Field, err)
		}

		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return &p, nil
}
