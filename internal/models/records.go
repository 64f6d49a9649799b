package models

import (
	"encoding/json"

	"github.com/aarondl/null/v8"
)

// Записи ниже непрозрачны для профиля: приходят массивом и заменяются целиком.
//
// Каждая запись хранит исходный JSON-элемент в Raw и сериализуется обратно именно им,
// поэтому поля, которые здесь не описаны, не теряются. Типизированные поля - только
// проекция для чтения: они заполняются, если значение подходящего типа, иначе остаются
// нулевыми, и форма вложенных полей никогда не делает payload некорректным.

// ConnectedAccount - привязанный внешний аккаунт.
type ConnectedAccount struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`

	Raw json.RawMessage `json:"-"`
}

func (a *ConnectedAccount) UnmarshalJSON(data []byte) error {
	*a = ConnectedAccount{Raw: cloneRaw(data)}
	project(data, map[string]any{
		"type":     &a.Type,
		"id":       &a.ID,
		"name":     &a.Name,
		"verified": &a.Verified,
	})

	return nil
}

func (a ConnectedAccount) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}

	type plain ConnectedAccount
	return json.Marshal(plain(a))
}

// Badge - значок профиля.
type Badge struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Link        string `json:"link,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (b *Badge) UnmarshalJSON(data []byte) error {
	*b = Badge{Raw: cloneRaw(data)}
	project(data, map[string]any{
		"id":          &b.ID,
		"description": &b.Description,
		"icon":        &b.Icon,
		"link":        &b.Link,
	})

	return nil
}

func (b Badge) MarshalJSON() ([]byte, error) {
	if len(b.Raw) > 0 {
		return b.Raw, nil
	}

	type plain Badge
	return json.Marshal(plain(b))
}

// GuildBadge - значок, выданный в рамках конкретного сервера.
type GuildBadge Badge

func (g *GuildBadge) UnmarshalJSON(data []byte) error {
	return (*Badge)(g).UnmarshalJSON(data)
}

func (g GuildBadge) MarshalJSON() ([]byte, error) {
	return Badge(g).MarshalJSON()
}

// MutualGuild - общий сервер текущего клиента и пользователя.
type MutualGuild struct {
	ID   string      `json:"id"`
	Nick null.String `json:"nick"`

	Raw json.RawMessage `json:"-"`
}

func (m *MutualGuild) UnmarshalJSON(data []byte) error {
	*m = MutualGuild{Raw: cloneRaw(data)}
	project(data, map[string]any{
		"id":   &m.ID,
		"nick": &m.Nick,
	})

	return nil
}

func (m MutualGuild) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}

	type plain MutualGuild
	return json.Marshal(plain(m))
}

// project заполняет fields из JSON-объекта data.
// Не объект, отсутствующий ключ или значение чужого типа - поле не трогается.
func project(data []byte, fields map[string]any) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return
	}

	for key, dst := range fields {
		if v, ok := obj[key]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
}

// cloneRaw копирует data: encoding/json не гарантирует жизнь буфера после UnmarshalJSON.
func cloneRaw(data []byte) json.RawMessage {
	out := make(json.RawMessage, len(data))
	copy(out, data)

	return out
}
