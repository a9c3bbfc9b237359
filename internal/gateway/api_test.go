package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auction"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auctionconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

const testAdminKey = "test-admin-key"

func newTestMux(t *testing.T, players ...models.Player) (*http.ServeMux, *store.Store) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	st := store.New(clock)
	st.Hydrate(players, nil, nil, nil)

	tournament := auctionconfig.Default()
	app := auction.NewApp(st, tournament.Teams, clock)

	mux := http.NewServeMux()
	NewAPI(st, app, tournament, testAdminKey).RegisterRoutes(mux)
	return mux, st
}

func adminPost(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(AdminKeyHeader, testAdminKey)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStateEndpointIsOpen(t *testing.T) {
	mux, _ := newTestMux(t,
		models.Player{ID: 1, Name: "Asha", Team: "Alfen Royals", Price: 1500},
		models.Player{ID: 2, Name: "Bilal"},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Players          []models.Player `json:"players"`
		CurrentAuctionID *int            `json:"current_auction_id"`
		Overview         struct {
			TotalSold int `json:"total_sold"`
		} `json:"overview"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Players) != 2 {
		t.Errorf("expected 2 players, got %d", len(resp.Players))
	}
	if resp.CurrentAuctionID != nil {
		t.Errorf("expected no current offer, got %v", *resp.CurrentAuctionID)
	}
	if resp.Overview.TotalSold != 1 {
		t.Errorf("expected 1 sold, got %d", resp.Overview.TotalSold)
	}
}

func TestMutationsRequireAdminKey(t *testing.T) {
	mux, st := newTestMux(t, models.Player{ID: 1, Name: "Asha"})

	req := httptest.NewRequest(http.MethodPost, "/api/auction/sell", strings.NewReader(`{"player_id":1,"team":"Alfen Royals","price":500}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin key, got %d", rec.Code)
	}
	if p, _ := st.Player(1); p.Sold() {
		t.Error("expected rejected request to leave state untouched")
	}
}

func TestSellEndpoint(t *testing.T) {
	mux, st := newTestMux(t, models.Player{ID: 1, Name: "Asha"})

	rec := adminPost(mux, "/api/auction/sell", `{"player_id":1,"team":"Alfen Royals","price":1200}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	p, _ := st.Player(1)
	if p.Team != "Alfen Royals" || p.Price != 1200 {
		t.Errorf("unexpected player after sell: %+v", p)
	}
}

func TestSilentNoOpStillReportsOK(t *testing.T) {
	mux, _ := newTestMux(t)

	// Unknown player id: the transition is ignored, not failed.
	rec := adminPost(mux, "/api/auction/sell", `{"player_id":99,"team":"Alfen Royals","price":1200}`)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for ignored transition, got %d", rec.Code)
	}
}

func TestSpinWithEmptyPoolConflicts(t *testing.T) {
	mux, _ := newTestMux(t, models.Player{ID: 1, Name: "Asha", Team: "Alfen Royals", Price: 500})

	rec := adminPost(mux, "/api/auction/spin", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 with no unsold players, got %d", rec.Code)
	}
}

func TestConfigEndpointValidates(t *testing.T) {
	mux, st := newTestMux(t)

	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"purse_limit":0,"max_squad_size":25,"base_price":10}`))
	req.Header.Set(AdminKeyHeader, testAdminKey)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid config, got %d", rec.Code)
	}
	if st.Config().PurseLimit != 10000 {
		t.Error("expected config unchanged after rejected update")
	}
}

func TestImportEndpoint(t *testing.T) {
	mux, st := newTestMux(t)

	csv := "Name,Cricket,Badminton,TT,Mobile\nAsha,A,0,B,9999999999\nBilal,C,B,0,\n"
	rec := adminPost(mux, "/api/import", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	players := st.Players()
	if len(players) != 2 {
		t.Fatalf("expected 2 imported players, got %d", len(players))
	}
	if players[0].Name != "Asha" || players[0].Ratings["Cricket"] != models.GradeA {
		t.Errorf("unexpected first player: %+v", players[0])
	}
}

func TestImportWithMergeCarriesSoldState(t *testing.T) {
	soldAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mux, st := newTestMux(t, models.Player{ID: 1, Name: "Asha", Team: "Alfen Royals", Price: 1500, SoldAt: &soldAt})

	csv := "Name,Cricket\nBilal,A\nAsha,B\n"
	rec := adminPost(mux, "/api/import?merge=name", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	players := st.Players()
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
	// Asha is now id 2 but keeps her sale through the name merge.
	if players[1].Name != "Asha" || players[1].Team != "Alfen Royals" || players[1].Price != 1500 {
		t.Errorf("expected sold state carried by merge, got %+v", players[1])
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	mux, st := newTestMux(t, models.Player{ID: 1, Name: "Asha"})

	rec := adminPost(mux, "/api/reset", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirmation, got %d", rec.Code)
	}
	if len(st.Players()) != 1 {
		t.Error("expected players untouched without confirmation")
	}

	rec = adminPost(mux, "/api/reset?confirm=yes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with confirmation, got %d", rec.Code)
	}
	if len(st.Players()) != 0 {
		t.Error("expected players wiped after confirmed reset")
	}
}

func TestExportEndpoint(t *testing.T) {
	mux, _ := newTestMux(t, models.Player{ID: 1, Name: "Asha", Team: "Alfen Royals", Price: 1500})

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Asha") {
		t.Errorf("expected exported roster to contain player, got %q", rec.Body.String())
	}
}

func TestTeamStatsEndpoint(t *testing.T) {
	mux, _ := newTestMux(t, models.Player{ID: 1, Name: "Asha", Team: "Alfen Royals", Price: 1500})

	req := httptest.NewRequest(http.MethodGet, "/api/teams/stats?team=Alfen+Royals", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var s struct {
		Spent     int `json:"spent"`
		Remaining int `json:"remaining"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if s.Spent != 1500 || s.Remaining != 8500 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestTeamStatsUnknownTeam(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/teams/stats?team=Nonexistent+XI", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
