// handlers - REST-обработчики profiles-service поверх сервисного слоя.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-user-profiles/internal/models"
	"github.com/pribylovaa/go-user-profiles/internal/service"
)

// maxPayloadBytes - ограничение тела PUT /profiles/{id}.
const maxPayloadBytes = 1 << 20

// ProfileService - операции сервисного слоя, нужные HTTP-транспорту.
type ProfileService interface {
	Apply(ctx context.Context, input service.ApplyInput) (*service.ProfileView, error)
	ProfileByID(ctx context.Context, userID string) (*service.ProfileView, error)
	UserByID(ctx context.Context, userID string) (*models.User, error)
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	Profiles ProfileService
}

func New(s ProfileService) *Handlers {
	return &Handlers{Profiles: s}
}

// writeJSON - единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
