package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// GetHandler обрабатывает GET /matches/{matchID}
func (h *MatchHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, match)
}

// FirstPlayerHandler обрабатывает PUT /matches/{matchID}/first-player
func (h *MatchHandler) FirstPlayerHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID string `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.AssignFirstPlayer(r.Context(), actor, matchID, input.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, match)
}

// ResultHandler обрабатывает PUT /matches/{matchID}/result
func (h *MatchHandler) ResultHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ReportResult(r.Context(), actor, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, match)
}

// ConfirmHandler обрабатывает POST /matches/{matchID}/confirm
func (h *MatchHandler) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	h.toggleConfirmation(w, r, h.matchService.Confirm)
}

// UnconfirmHandler обрабатывает DELETE /matches/{matchID}/confirm
func (h *MatchHandler) UnconfirmHandler(w http.ResponseWriter, r *http.Request) {
	h.toggleConfirmation(w, r, h.matchService.Unconfirm)
}

type confirmationFunc func(ctx context.Context, actor services.Actor, matchID string) (*models.Match, error)

func (h *MatchHandler) toggleConfirmation(w http.ResponseWriter, r *http.Request, fn confirmationFunc) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := fn(r.Context(), actor, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, match)
}

func (h *MatchHandler) respond(w http.ResponseWriter, r *http.Request, match *models.Match) {
	env := jsonResponse{"match": match, "state": match.State()}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
