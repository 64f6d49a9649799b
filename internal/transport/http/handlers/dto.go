package handlers

import (
	"time"

	"github.com/aarondl/null/v8"

	"github.com/pribylovaa/go-user-profiles/internal/models"
	"github.com/pribylovaa/go-user-profiles/internal/service"
)

// UserResponse - JSON-представление пользователя.
type UserResponse struct {
	ID               string      `json:"id"`
	Username         string      `json:"username"`
	GlobalName       null.String `json:"global_name"`
	DisplayName      string      `json:"display_name"`
	Discriminator    string      `json:"discriminator"`
	Avatar           null.String `json:"avatar"`
	Bot              bool        `json:"bot"`
	Mention          string      `json:"mention"`
	CreatedAt        time.Time   `json:"created_at"`
	CreatedTimestamp int64       `json:"created_timestamp"`
}

// ProfileResponse - JSON-представление профиля. Nullable-поля сериализуются как null.
type ProfileResponse struct {
	User                       UserResponse              `json:"user"`
	Display                    string                    `json:"display"`
	ConnectedAccounts          []models.ConnectedAccount `json:"connected_accounts"`
	PremiumType                null.Int8                 `json:"premium_type"`
	PremiumTypeName            null.String               `json:"premium_type_name"`
	PremiumSince               null.Time                 `json:"premium_since"`
	PremiumSinceTimestamp      null.Int64                `json:"premium_since_timestamp"`
	PremiumGuildSince          null.Time                 `json:"premium_guild_since"`
	PremiumGuildSinceTimestamp null.Int64                `json:"premium_guild_since_timestamp"`
	Bio                        null.String               `json:"bio"`
	AccentColor                null.Int                  `json:"accent_color"`
	Pronouns                   null.String               `json:"pronouns"`
	Badges                     []models.Badge            `json:"badges"`
	GuildBadges                []models.GuildBadge       `json:"guild_badges"`
	MutualGuilds               []models.MutualGuild      `json:"mutual_guilds"`
	MutualFriends              []UserResponse            `json:"mutual_friends"`
	CreatedAt                  time.Time                 `json:"created_at"`
	CreatedTimestamp           int64                     `json:"created_timestamp"`
}

func UserFromModel(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID.String(),
		Username:         u.Username,
		GlobalName:       u.GlobalName,
		DisplayName:      u.DisplayName(),
		Discriminator:    u.Discriminator,
		Avatar:           u.Avatar,
		Bot:              u.Bot,
		Mention:          u.Mention(),
		CreatedAt:        u.CreatedAt().UTC(),
		CreatedTimestamp: u.CreatedTimestamp(),
	}
}

func ProfileFromView(v *service.ProfileView) ProfileResponse {
	friends := make([]UserResponse, 0, len(v.MutualFriends))
	for _, f := range v.MutualFriends {
		friends = append(friends, UserFromModel(f))
	}

	var typeName null.String
	if v.PremiumType.Valid {
		typeName = null.StringFrom(models.PremiumType(v.PremiumType.Int8).String())
	}

	return ProfileResponse{
		User:                       UserFromModel(v.User),
		Display:                    v.Display,
		ConnectedAccounts:          v.ConnectedAccounts,
		PremiumType:                v.PremiumType,
		PremiumTypeName:            typeName,
		PremiumSince:               v.PremiumSince,
		PremiumSinceTimestamp:      v.PremiumSinceTimestamp,
		PremiumGuildSince:          v.PremiumGuildSince,
		PremiumGuildSinceTimestamp: v.PremiumGuildSinceTimestamp,
		Bio:                        v.Bio,
		AccentColor:                v.AccentColor,
		Pronouns:                   v.Pronouns,
		Badges:                     v.Badges,
		GuildBadges:                v.GuildBadges,
		MutualGuilds:               v.MutualGuilds,
		MutualFriends:              friends,
		CreatedAt:                  v.CreatedAt.UTC(),
		CreatedTimestamp:           v.CreatedAt.UnixMilli(),
	}
}
