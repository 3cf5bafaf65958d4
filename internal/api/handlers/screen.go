package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/kscreener/internal/external/ranking"
	"github.com/wonny/kscreener/internal/screen"
	"github.com/wonny/kscreener/pkg/logger"
	"github.com/wonny/kscreener/pkg/theme"
)

// ScreenHandler exposes the screen controller to the dashboard front end
// ⭐ SSOT: 대시보드 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	controller    *screen.Controller
	rankingClient *ranking.Client
	themeStore    *theme.Store
	logger        *logger.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(controller *screen.Controller, rankingClient *ranking.Client, themeStore *theme.Store, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		controller:    controller,
		rankingClient: rankingClient,
		themeStore:    themeStore,
		logger:        log,
	}
}

// GetState returns the full read-only snapshot
// GET /api/screen/state
func (h *ScreenHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.controller.Snapshot())
}

// UpdateFilters replaces the filter state; invalid states are rejected
// PUT /api/screen/filters
func (h *ScreenHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var filters screen.FilterState
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		respondError(w, http.StatusBadRequest, "invalid filter payload")
		return
	}

	if err := h.controller.UpdateFilters(filters); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.controller.Snapshot())
}

// Refresh forces a ranked-list re-fetch
// POST /api/screen/refresh
func (h *ScreenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.controller.RefreshNow()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

// GetSearch returns only the symbol-search slice of the snapshot
// GET /api/screen/search
func (h *ScreenHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.controller.Snapshot().Search)
}

// searchRequest is one input change from the search box
type searchRequest struct {
	Query string `json:"query"`
}

// SearchInput forwards a search box change; results arrive via state/push
// POST /api/screen/search
func (h *ScreenHandler) SearchInput(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid search payload")
		return
	}

	h.controller.OnSearchInput(req.Query)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Select picks one symbol from the search results
// POST /api/screen/select
func (h *ScreenHandler) Select(w http.ResponseWriter, r *http.Request) {
	var sym ranking.Symbol
	if err := json.NewDecoder(r.Body).Decode(&sym); err != nil || sym.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid symbol payload")
		return
	}

	h.controller.SelectSymbol(sym)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// GetQuote looks up a single quote directly (deep links, bookmarks)
// GET /api/quote/{code}
func (h *ScreenHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	quote, err := h.rankingClient.GetQuote(r.Context(), code)
	if err != nil {
		if errors.Is(err, ranking.ErrQuoteNotFound) {
			respondError(w, http.StatusNotFound, "quote not found: "+code)
			return
		}
		h.logger.WithError(err).WithField("code", code).Warn("Quote lookup failed")
		respondError(w, http.StatusBadGateway, "quote lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// GetTheme returns the persisted theme preference
// GET /api/theme
func (h *ScreenHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"theme": string(h.themeStore.Current())})
}

// themeRequest is the theme toggle payload
type themeRequest struct {
	Theme string `json:"theme"`
}

// PutTheme persists a theme preference
// PUT /api/theme
func (h *ScreenHandler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid theme payload")
		return
	}

	if err := h.themeStore.Set(theme.Theme(req.Theme)); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"theme": string(h.themeStore.Current())})
}
