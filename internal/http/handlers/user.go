package handlers

import (
	"net/http"
	"strings"
	"time"

	"dcatracker/internal/domain"
	"dcatracker/internal/i18n"
)

type userDTO struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	Avatar        *string           `json:"avatar"`
	CreatedAt     time.Time         `json:"createdAt"`
	Contributions []contributionDTO `json:"contributions"`
}

// Profile returns the caller with every contribution, creating the user row
// on first contact.
func (a *App) Profile(w http.ResponseWriter, r *http.Request) {
	who, ok := a.currentIdentity(r)
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	if strings.TrimSpace(who.Email) == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", i18n.MissingEmail)
		return
	}
	user, err := a.ensureUser(r.Context(), who)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items, err := a.Contributions.ListByOwner(r.Context(), user.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	profile := domain.Profile{User: *user, Contributions: items}
	a.json(w, http.StatusOK, map[string]any{"user": userDTO{
		ID:            profile.ID,
		Email:         profile.Email,
		Name:          profile.Name,
		Avatar:        profile.Avatar,
		CreatedAt:     profile.CreatedAt,
		Contributions: toContributionDTOs(profile.Contributions),
	}})
}
