package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auction"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auctionconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/roster"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/stats"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

// API serves the read surface and the admin mutation surface over
// HTTP. Reads are open; mutations require the shared admin key.
type API struct {
	st         *store.Store
	auctionApp *auction.App
	tournament *auctionconfig.Config
	normalizer *roster.Normalizer
	adminKey   string
}

// NewAPI creates the HTTP API.
func NewAPI(st *store.Store, auctionApp *auction.App, tournament *auctionconfig.Config, adminKey string) *API {
	return &API{
		st:         st,
		auctionApp: auctionApp,
		tournament: tournament,
		normalizer: roster.NewNormalizer(tournament.Categories),
		adminKey:   adminKey,
	}
}

// RegisterRoutes registers all API routes with an HTTP mux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/teams/stats", a.handleTeamStats)
	mux.HandleFunc("/api/export", a.handleExport)

	mux.HandleFunc("/api/auction/spin", requireAdmin(a.adminKey, a.handleSpin))
	mux.HandleFunc("/api/auction/offer", requireAdmin(a.adminKey, a.handleOffer))
	mux.HandleFunc("/api/auction/clear", requireAdmin(a.adminKey, a.handleClearOffer))
	mux.HandleFunc("/api/auction/sell", requireAdmin(a.adminKey, a.handleSell))
	mux.HandleFunc("/api/auction/unsell", requireAdmin(a.adminKey, a.handleUnsell))
	mux.HandleFunc("/api/auction/correct", requireAdmin(a.adminKey, a.handleCorrect))
	mux.HandleFunc("/api/auction/captain", requireAdmin(a.adminKey, a.handleCaptain))
	mux.HandleFunc("/api/config", requireAdmin(a.adminKey, a.handleConfig))
	mux.HandleFunc("/api/import", requireAdmin(a.adminKey, a.handleImport))
	mux.HandleFunc("/api/reset", requireAdmin(a.adminKey, a.handleReset))
}

type stateResponse struct {
	Players          []models.Player        `json:"players"`
	Config           models.TournamentConfig `json:"config"`
	CurrentAuctionID *int                   `json:"current_auction_id"`
	Activity         []models.ActivityEntry `json:"activity"`
	Leaderboard      []stats.TeamStats      `json:"leaderboard"`
	Overview         stats.Overview         `json:"overview"`
}

const activityViewLimit = 50

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	players := a.st.Players()
	cfg := a.st.Config()

	resp := stateResponse{
		Players:     players,
		Config:      cfg,
		Activity:    a.st.Activity(activityViewLimit),
		Leaderboard: stats.Leaderboard(a.tournament.Teams, players, cfg, a.tournament.CategoryNames()),
		Overview:    stats.ComputeOverview(players),
	}
	if id, ok := a.st.CurrentOfferID(); ok {
		resp.CurrentAuctionID = &id
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	team := r.URL.Query().Get("team")
	if team == "" {
		http.Error(w, "team is required", http.StatusBadRequest)
		return
	}
	if !a.tournament.HasTeam(team) {
		http.Error(w, "unknown team", http.StatusNotFound)
		return
	}

	s := stats.Compute(team, a.st.Players(), a.st.Config(), a.tournament.CategoryNames())
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleSpin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	picked, err := a.auctionApp.Spin(r.Context())
	if errors.Is(err, auction.ErrNoUnsoldPlayers) {
		http.Error(w, "no unsold players left", http.StatusConflict)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("spin failed")
		http.Error(w, "spin failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, picked)
}

type offerRequest struct {
	PlayerID int `json:"player_id"`
}

func (a *API) handleOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !decodePost(w, r, &req) {
		return
	}
	a.respondTransition(w, a.auctionApp.Offer(r.Context(), req.PlayerID))
}

func (a *API) handleClearOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.respondTransition(w, a.auctionApp.ClearOffer(r.Context()))
}

type sellRequest struct {
	PlayerID int    `json:"player_id"`
	Team     string `json:"team"`
	Price    int    `json:"price"`
}

func (a *API) handleSell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if !decodePost(w, r, &req) {
		return
	}
	a.respondTransition(w, a.auctionApp.Sell(r.Context(), req.PlayerID, req.Team, req.Price))
}

func (a *API) handleUnsell(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !decodePost(w, r, &req) {
		return
	}
	a.respondTransition(w, a.auctionApp.Unsell(r.Context(), req.PlayerID))
}

func (a *API) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if !decodePost(w, r, &req) {
		return
	}
	a.respondTransition(w, a.auctionApp.Correct(r.Context(), req.PlayerID, req.Team, req.Price))
}

type captainRequest struct {
	PlayerID int    `json:"player_id"`
	Team     string `json:"team"`
	Category string `json:"category"`
	Price    int    `json:"price"`
}

func (a *API) handleCaptain(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req captainRequest
		if !decodeBody(w, r, &req) {
			return
		}
		a.respondTransition(w, a.auctionApp.AssignCaptain(r.Context(), req.PlayerID, req.Team, req.Category, req.Price))
	case http.MethodDelete:
		var req offerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		a.respondTransition(w, a.auctionApp.RemoveCaptain(r.Context(), req.PlayerID))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cfg models.TournamentConfig
	if !decodeBody(w, r, &cfg) {
		return
	}
	if err := a.auctionApp.SaveConfig(r.Context(), cfg); err != nil {
		if errors.Is(err, auction.ErrInvalidConfig) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("failed to save config")
		http.Error(w, "failed to save config", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleImport accepts a CSV roster in the request body. With
// ?merge=name, auction state is carried over from existing players by
// case-insensitive exact name before committing; without it the import
// replaces by id and can orphan previously-sold records.
func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows, err := roster.DecodeCSV(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid csv: %v", err), http.StatusBadRequest)
		return
	}

	players := a.normalizer.Normalize(rows)
	if r.URL.Query().Get("merge") == "name" {
		players = roster.MergeByName(players, a.st.Players())
	}

	if err := a.auctionApp.ApplyImport(r.Context(), players); err != nil {
		log.Error().Err(err).Msg("import failed")
		http.Error(w, "import failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"imported": len(players)})
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="auction_roster.csv"`)
	if err := roster.ExportCSV(w, a.st.Players(), a.tournament.CategoryNames()); err != nil {
		log.Error().Err(err).Msg("failed to write export")
	}
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// Destructive and irreversible; the confirm=yes parameter stands in
	// for the boundary's explicit confirmation.
	if r.URL.Query().Get("confirm") != "yes" {
		http.Error(w, "confirm=yes is required", http.StatusBadRequest)
		return
	}
	a.respondTransition(w, a.auctionApp.Reset(r.Context()))
}

// respondTransition reports a transition result. A nil error covers
// both applied transitions and silent no-ops; only infrastructure
// failures surface.
func (a *API) respondTransition(w http.ResponseWriter, err error) {
	if err != nil {
		log.Error().Err(err).Msg("transition write failed")
		http.Error(w, "write failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return decodeBody(w, r, v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write json response")
	}
}
