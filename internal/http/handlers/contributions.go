package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dcatracker/internal/domain"
	"dcatracker/internal/i18n"
)

type contributionDTO struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Coin               string    `json:"coin"`
	CoinPrice          float64   `json:"coinPrice"`
	ContributionAmount float64   `json:"contributionAmount"`
	CoinQuantity       float64   `json:"coinQuantity"`
	Date               time.Time `json:"date"`
	CreatedAt          time.Time `json:"createdAt"`
}

func toContributionDTO(c domain.Contribution) contributionDTO {
	return contributionDTO{
		ID:                 c.ID,
		UserID:             c.UserID,
		Coin:               string(c.Coin),
		CoinPrice:          c.CoinPrice.InexactFloat64(),
		ContributionAmount: c.Amount.InexactFloat64(),
		CoinQuantity:       c.Quantity.InexactFloat64(),
		Date:               c.Date,
		CreatedAt:          c.CreatedAt,
	}
}

func toContributionDTOs(in []domain.Contribution) []contributionDTO {
	out := make([]contributionDTO, 0, len(in))
	for _, c := range in {
		out = append(out, toContributionDTO(c))
	}
	return out
}

// Numeric fields accept JSON numbers or numeric strings.
type createContributionRequest struct {
	Coin               string           `json:"coin"`
	CoinPrice          *decimal.Decimal `json:"coinPrice"`
	ContributionAmount *decimal.Decimal `json:"contributionAmount"`
	CoinQuantity       *decimal.Decimal `json:"coinQuantity"`
	Date               string           `json:"date"`
}

func (req createContributionRequest) toDomain() (domain.NewContribution, error) {
	n := domain.NewContribution{
		Coin:      strings.TrimSpace(req.Coin),
		CoinPrice: req.CoinPrice,
		Amount:    req.ContributionAmount,
		Quantity:  req.CoinQuantity,
	}
	if c, err := domain.ParseCoin(n.Coin); err == nil {
		n.Coin = string(c)
	}
	if d := strings.TrimSpace(req.Date); d != "" {
		date, err := parseDate(d)
		if err != nil {
			return n, &domain.ValidationError{Field: "date", Reason: domain.ReasonInvalid}
		}
		n.Date = &date
	}
	return n, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

type deleteContributionRequest struct {
	ID string `json:"id"`
}

// ListContributions returns the caller's contributions, newest first.
func (a *App) ListContributions(w http.ResponseWriter, r *http.Request) {
	who, ok := a.currentIdentity(r)
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	items, err := a.Contributions.ListByOwner(r.Context(), who.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"contributions": toContributionDTOs(items)})
}

// CreateContribution validates and stores one purchase. The caller's user row
// is created on first use.
func (a *App) CreateContribution(w http.ResponseWriter, r *http.Request) {
	who, ok := a.currentIdentity(r)
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	var req createContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", i18n.InvalidBody)
		return
	}
	input, err := req.toDomain()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	record, err := input.Build(a.newID(), who.ID, a.now())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(who.Email) == "" {
		a.error(w, r, http.StatusBadRequest, "validation", i18n.MissingEmail)
		return
	}
	if _, err := a.ensureUser(r.Context(), who); err != nil {
		a.fail(w, r, err)
		return
	}
	created, err := a.Contributions.Create(r.Context(), record)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.log(r).Info().Str("contribution_id", created.ID).Str("coin", string(created.Coin)).Msg("contribution created")
	a.json(w, http.StatusOK, map[string]any{"contribution": toContributionDTO(*created)})
}

// DeleteContribution removes one of the caller's contributions. The id comes
// from the JSON body, or from ?id= for clients that cannot send a body.
func (a *App) DeleteContribution(w http.ResponseWriter, r *http.Request) {
	who, ok := a.currentIdentity(r)
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return
	}
	var req deleteContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, r, http.StatusBadRequest, "bad_request", i18n.InvalidBody)
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		a.error(w, r, http.StatusBadRequest, "validation", i18n.MissingContributionID)
		return
	}
	if err := a.Contributions.Delete(r.Context(), who.ID, id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.log(r).Info().Str("contribution_id", id).Msg("contribution deleted")
	locale := localeOf(r)
	a.json(w, http.StatusOK, map[string]string{"message": i18n.T(locale, i18n.ContributionDeleted)})
}
