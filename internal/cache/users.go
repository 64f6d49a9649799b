// cache - процессный кэш пользователей с семантикой get-or-create.
//
// Гарантия identity: для одного snowflake id кэш всегда отдаёт один и тот же *models.User,
// поэтому потребители могут сравнивать пользователей по указателю.
package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pribylovaa/go-user-profiles/internal/models"
)

// ErrInvalidUser - сырая запись пользователя не может быть зарегистрирована.
var ErrInvalidUser = errors.New("invalid user")

// LookupObserver получает исход каждого Get (hit/miss). Используется для метрик.
type LookupObserver func(hit bool)

// Option - параметр конструктора Users.
type Option func(*Users)

// WithLookupObserver подключает наблюдателя за попаданиями в кэш.
func WithLookupObserver(o LookupObserver) Option {
	return func(u *Users) {
		u.observe = o
	}
}

// Users - кэш пользователей по id. Безопасен для конкурентного использования.
type Users struct {
	mu      sync.RWMutex
	byID    map[snowflake.ID]*models.User
	observe LookupObserver
}

// NewUsers создаёт пустой кэш.
func NewUsers(opts ...Option) *Users {
	u := &Users{byID: make(map[snowflake.ID]*models.User)}
	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Get возвращает закэшированного пользователя.
func (u *Users) Get(id snowflake.ID) (*models.User, bool) {
	u.mu.RLock()
	user, ok := u.byID[id]
	u.mu.RUnlock()

	if u.observe != nil {
		u.observe(ok)
	}

	return user, ok
}

// Add регистрирует пользователя из сырой записи и возвращает его handle.
// Если id уже есть в кэше, возвращается существующий handle без изменений,
// поэтому повторные Add для одного id идемпотентны.
func (u *Users) Add(raw models.UserPayload) (*models.User, error) {
	const op = "cache/users/Add"

	user, err := models.NewUser(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidUser, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if existing, ok := u.byID[user.ID]; ok {
		return existing, nil
	}

	u.byID[user.ID] = user

	return user, nil
}

// Resolve - get-or-create: Get(id) ?? Add(raw).
func (u *Users) Resolve(raw models.UserPayload) (*models.User, error) {
	const op = "cache/users/Resolve"

	id, err := raw.Snowflake()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidUser, err)
	}

	if user, ok := u.Get(id); ok {
		return user, nil
	}

	return u.Add(raw)
}

// Len - количество закэшированных пользователей.
func (u *Users) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return len(u.byID)
}
