// service содержит бизнес-логику profiles-service:
//   - реестр профилей по id владельца (создание из первого payload, далее - patch);
//   - чтение профилей и пользователей в виде неизменяемых снимков.
package service

import (
	"errors"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pribylovaa/go-user-profiles/internal/cache"
	"github.com/pribylovaa/go-user-profiles/internal/metrics"
	"github.com/pribylovaa/go-user-profiles/internal/profile"
)

var (
	// ErrInvalidArgument - некорректные входные данные (payload, id).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound - сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrInternal - внутренняя ошибка сервиса.
	ErrInternal = errors.New("internal")
)

// Service - реестр профилей поверх общего кэша пользователей.
// Все изменения и чтения профилей сериализуются через mu.
type Service struct {
	mu       sync.Mutex
	profiles map[snowflake.ID]*profile.Profile
	users    *cache.Users
	metrics  *metrics.Metrics
}

// New создает новый экземпляр Service. m может быть nil.
func New(users *cache.Users, m *metrics.Metrics) *Service {
	return &Service{
		profiles: make(map[snowflake.ID]*profile.Profile),
		users:    users,
		metrics:  m,
	}
}
