package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

type snapshotMsg struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func readSnapshot(t *testing.T, conn *websocket.Conn) snapshotMsg {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var snap snapshotMsg
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return snap
}

func TestWebSocketReplayAndBroadcast(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	st := store.New(clock)
	st.Hydrate([]models.Player{{ID: 1, Name: "Asha"}}, nil, nil, nil)

	cm := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cm.Start(ctx)

	for _, path := range []string{store.PathPlayers, store.PathConfig, store.PathCurrentOffer, store.PathActivityLog} {
		st.Subscribe(path, func(path string, value any) {
			cm.Broadcast(Snapshot{Path: path, Value: value})
		})
	}

	mux := http.NewServeMux()
	NewWebSocketHandler(cm, st).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	// New clients get a full replay of every observable path.
	replay := make(map[string]json.RawMessage, 4)
	for i := 0; i < 8 && len(replay) < 4; i++ {
		snap := readSnapshot(t, conn)
		replay[snap.Path] = snap.Value
	}
	for _, path := range []string{store.PathPlayers, store.PathConfig, store.PathCurrentOffer, store.PathActivityLog} {
		if _, ok := replay[path]; !ok {
			t.Errorf("expected initial snapshot for %s", path)
		}
	}
	var players []models.Player
	if err := json.Unmarshal(replay[store.PathPlayers], &players); err != nil {
		t.Fatalf("unmarshal players snapshot: %v", err)
	}
	if len(players) != 1 || players[0].Name != "Asha" {
		t.Errorf("unexpected players snapshot: %+v", players)
	}

	// A store write reaches the client as the full new collection.
	if err := st.PutPlayer(context.Background(), models.Player{ID: 2, Name: "Bilal"}); err != nil {
		t.Fatalf("PutPlayer: %v", err)
	}

	for {
		snap := readSnapshot(t, conn)
		if snap.Path != store.PathPlayers {
			continue
		}
		if err := json.Unmarshal(snap.Value, &players); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if len(players) == 2 {
			break
		}
	}
}
