package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/command"
	"github.com/creaselive/crease/internal/scoring/domain/delivery"
	"github.com/creaselive/crease/internal/scoring/domain/event"
	"github.com/creaselive/crease/internal/scoring/domain/match"
	"github.com/creaselive/crease/internal/scoring/engine"
	"github.com/creaselive/crease/internal/scoring/storage"
)

// requestIDHeader carries the caller's idempotency token. The engine
// generates one when the header is absent.
const requestIDHeader = "X-Request-Id"

// Handler serves the scoring REST API.
type Handler struct {
	engine *engine.Engine
	store  storage.Store
}

// NewHandler creates a REST handler over the engine and its store.
func NewHandler(e *engine.Engine, store storage.Store) *Handler {
	return &Handler{engine: e, store: store}
}

// commandResponse is the JSON shape of every accepted command.
type commandResponse struct {
	MatchID   string           `json:"match_id"`
	RequestID string           `json:"request_id"`
	Events    []eventSummary   `json:"events"`
	Scorecard engine.Scorecard `json:"scorecard"`
}

type eventSummary struct {
	Seq           uint64     `json:"seq"`
	Type          event.Type `json:"type"`
	InningsNumber int        `json:"innings_number,omitempty"`
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, cmd command.Command) {
	cmd.RequestID = r.Header.Get(requestIDHeader)

	res, err := h.engine.Execute(r.Context(), cmd)
	if err != nil {
		respondError(w, err)
		return
	}
	if !res.Decision.Accepted() {
		respondRejections(w, res.Decision.Rejections)
		return
	}

	body := commandResponse{
		MatchID:   res.Command.MatchID,
		RequestID: res.Command.RequestID,
		Scorecard: engine.ScorecardFromState(res.State),
	}
	for _, evt := range res.Events {
		body.Events = append(body.Events, eventSummary{
			Seq:           evt.Seq,
			Type:          evt.Type,
			InningsNumber: evt.InningsNumber,
		})
	}
	status := http.StatusOK
	if cmd.Type == command.TypeCreateMatch {
		status = http.StatusCreated
	}
	respondJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		respondError(w, apperrors.Wrap(apperrors.CodeInvalidCommand, "decode request body: "+err.Error(), err))
		return false
	}
	return true
}

func inningsNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "inningsNumber"))
	if err != nil || number <= 0 {
		respondError(w, apperrors.New(apperrors.CodeInvalidCommand, "innings number must be a positive integer"))
		return 0, false
	}
	return number, true
}

type createMatchRequest struct {
	TeamA  teamRequest   `json:"team_a"`
	TeamB  teamRequest   `json:"team_b"`
	Format formatRequest `json:"format"`
}

type teamRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type formatRequest struct {
	BallsPerOver    int `json:"balls_per_over"`
	OversPerInnings int `json:"overs_per_innings"`
	PlayersPerSide  int `json:"players_per_side"`
}

func (h *Handler) createMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.execute(w, r, command.Command{
		Type: command.TypeCreateMatch,
		Payload: command.CreateMatchPayload{
			TeamA:  matchTeam(req.TeamA),
			TeamB:  matchTeam(req.TeamB),
			Format: matchFormat(req.Format),
		},
	})
}

type recordTossRequest struct {
	WinnerTeamID string `json:"winner_team_id"`
	Decision     string `json:"decision"`
}

func (h *Handler) recordToss(w http.ResponseWriter, r *http.Request) {
	var req recordTossRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.execute(w, r, command.Command{
		Type:    command.TypeRecordToss,
		MatchID: chi.URLParam(r, "matchID"),
		Payload: command.RecordTossPayload{
			WinnerTeamID: req.WinnerTeamID,
			Decision:     tossDecision(req.Decision),
		},
	})
}

func (h *Handler) endMatch(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, command.Command{
		Type:    command.TypeEndMatch,
		MatchID: chi.URLParam(r, "matchID"),
	})
}

type startInningsRequest struct {
	StrikerID       string `json:"striker_id"`
	NonStrikerID    string `json:"non_striker_id"`
	OpeningBowlerID string `json:"opening_bowler_id"`
}

func (h *Handler) startInnings(w http.ResponseWriter, r *http.Request) {
	number, ok := inningsNumber(w, r)
	if !ok {
		return
	}
	var req startInningsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.execute(w, r, command.Command{
		Type:          command.TypeStartInnings,
		MatchID:       chi.URLParam(r, "matchID"),
		InningsNumber: number,
		Payload: command.StartInningsPayload{
			StrikerID:       req.StrikerID,
			NonStrikerID:    req.NonStrikerID,
			OpeningBowlerID: req.OpeningBowlerID,
		},
	})
}

func (h *Handler) endInnings(w http.ResponseWriter, r *http.Request) {
	number, ok := inningsNumber(w, r)
	if !ok {
		return
	}
	h.execute(w, r, command.Command{
		Type:          command.TypeEndInnings,
		MatchID:       chi.URLParam(r, "matchID"),
		InningsNumber: number,
	})
}

type deliveryRequest struct {
	BatRuns         int    `json:"bat_runs"`
	Extra           string `json:"extra"`
	ExtraRuns       int    `json:"extra_runs"`
	Dismissal       string `json:"dismissal"`
	DismissedID     string `json:"dismissed_id"`
	FielderID       string `json:"fielder_id"`
	DeadBall        bool   `json:"dead_ball"`
	ShortRuns       int    `json:"short_runs"`
	DeliberateShort bool   `json:"deliberate_short"`
	Commentary      string `json:"commentary"`
}

func (h *Handler) submitDelivery(w http.ResponseWriter, r *http.Request) {
	number, ok := inningsNumber(w, r)
	if !ok {
		return
	}
	var req deliveryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Extra == "" {
		req.Extra = string(delivery.ExtraNone)
	}
	h.execute(w, r, command.Command{
		Type:          command.TypeSubmitDelivery,
		MatchID:       chi.URLParam(r, "matchID"),
		InningsNumber: number,
		Payload: command.SubmitDeliveryPayload{Outcome: delivery.Outcome{
			BatRuns:         req.BatRuns,
			Extra:           delivery.Extra(req.Extra),
			ExtraRuns:       req.ExtraRuns,
			Dismissal:       delivery.Dismissal(req.Dismissal),
			DismissedID:     req.DismissedID,
			FielderID:       req.FielderID,
			DeadBall:        req.DeadBall,
			ShortRuns:       req.ShortRuns,
			DeliberateShort: req.DeliberateShort,
			Commentary:      req.Commentary,
		}},
	})
}

// undoDelivery removes the latest delivery and everything it triggered.
func (h *Handler) undoDelivery(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Undo(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		respondError(w, err)
		return
	}
	body := struct {
		MatchID   string           `json:"match_id"`
		RequestID string           `json:"request_id"`
		Removed   []eventSummary   `json:"removed"`
		Scorecard engine.Scorecard `json:"scorecard"`
	}{
		MatchID:   chi.URLParam(r, "matchID"),
		Scorecard: engine.ScorecardFromState(res.State),
	}
	for _, evt := range res.Events {
		body.RequestID = evt.RequestID
		body.Removed = append(body.Removed, eventSummary{
			Seq:           evt.Seq,
			Type:          evt.Type,
			InningsNumber: evt.InningsNumber,
		})
	}
	respondJSON(w, http.StatusOK, body)
}

type changeBowlerRequest struct {
	BowlerID string `json:"bowler_id"`
}

func (h *Handler) changeBowler(w http.ResponseWriter, r *http.Request) {
	number, ok := inningsNumber(w, r)
	if !ok {
		return
	}
	var req changeBowlerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.execute(w, r, command.Command{
		Type:          command.TypeChangeBowler,
		MatchID:       chi.URLParam(r, "matchID"),
		InningsNumber: number,
		Payload:       command.ChangeBowlerPayload{BowlerID: req.BowlerID},
	})
}

type replacementRequest struct {
	PlayerID string `json:"player_id"`
}

func (h *Handler) selectReplacement(w http.ResponseWriter, r *http.Request) {
	number, ok := inningsNumber(w, r)
	if !ok {
		return
	}
	var req replacementRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.execute(w, r, command.Command{
		Type:          command.TypeSelectReplacement,
		MatchID:       chi.URLParam(r, "matchID"),
		InningsNumber: number,
		Payload:       command.SelectReplacementPayload{PlayerID: req.PlayerID},
	})
}

func (h *Handler) switchStrike(w http.ResponseWriter, r *http.Request) {
	number, ok := inningsNumber(w, r)
	if !ok {
		return
	}
	h.execute(w, r, command.Command{
		Type:          command.TypeSwitchStrike,
		MatchID:       chi.URLParam(r, "matchID"),
		InningsNumber: number,
	})
}

func (h *Handler) getScorecard(w http.ResponseWriter, r *http.Request) {
	card, err := h.engine.Scorecard(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (h *Handler) listMatches(w http.ResponseWriter, r *http.Request) {
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	page, err := h.store.ListMatches(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if _, err := h.store.GetMatch(r.Context(), matchID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, storage.ErrNotFound)
			return
		}
		respondError(w, err)
		return
	}

	afterSeq, _ := strconv.ParseUint(r.URL.Query().Get("after_seq"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.store.ListEvents(r.Context(), matchID, afterSeq, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	type eventView struct {
		Seq           uint64          `json:"seq"`
		Type          event.Type      `json:"type"`
		InningsNumber int             `json:"innings_number,omitempty"`
		RequestID     string          `json:"request_id"`
		Timestamp     string          `json:"timestamp"`
		Payload       json.RawMessage `json:"payload"`
	}
	views := make([]eventView, 0, len(events))
	for _, evt := range events {
		views = append(views, eventView{
			Seq:           evt.Seq,
			Type:          evt.Type,
			InningsNumber: evt.InningsNumber,
			RequestID:     evt.RequestID,
			Timestamp:     evt.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Payload:       json.RawMessage(evt.PayloadJSON),
		})
	}
	respondJSON(w, http.StatusOK, struct {
		Events []eventView `json:"events"`
	}{Events: views})
}

// verifyMatch replays the ledger and confirms it matches the live state.
func (h *Handler) verifyMatch(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Verify(r.Context(), chi.URLParam(r, "matchID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Consistent bool `json:"consistent"`
	}{Consistent: true})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

func matchTeam(req teamRequest) match.Team {
	return match.Team{ID: req.ID, Name: req.Name}
}

func matchFormat(req formatRequest) match.Format {
	return match.Format{
		BallsPerOver:    req.BallsPerOver,
		OversPerInnings: req.OversPerInnings,
		PlayersPerSide:  req.PlayersPerSide,
	}
}

func tossDecision(value string) match.TossDecision {
	return match.TossDecision(value)
}
