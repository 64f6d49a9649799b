package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-user-profiles/internal/service"
	apierrors "github.com/pribylovaa/go-user-profiles/internal/transport/http/errors"
)

// ApplyProfile - PUT /profiles/{id}: тело запроса - partial-payload профиля.
// Первый payload создаёт профиль, последующие сливаются в него.
func (h *Handlers) ApplyProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.WriteError(w, r, fmt.Errorf("payload too large: %w", service.ErrInvalidArgument))
			return
		}

		apierrors.WriteError(w, r, err)
		return
	}

	view, err := h.Profiles.Apply(r.Context(), service.ApplyInput{UserID: id, Payload: body})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileFromView(view))
}

// GetProfile - GET /profiles/{id}.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	view, err := h.Profiles.ProfileByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileFromView(view))
}

// GetUser - GET /users/{id}: пользователь из общего кэша.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Profiles.UserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UserFromModel(user))
}
