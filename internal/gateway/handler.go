package gateway

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

// WebSocketHandler upgrades viewer connections and replays the current
// state of every observable path to new clients.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	st                *store.Store
}

// NewWebSocketHandler creates a websocket handler.
func NewWebSocketHandler(cm *ConnectionManager, st *store.Store) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm, st: st}
}

// HandleConnection upgrades the request and sends the initial
// snapshots, after which the client only receives broadcasts.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.connectionManager.Upgrade(w, r)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}

	for _, path := range []string{store.PathPlayers, store.PathConfig, store.PathCurrentOffer, store.PathActivityLog} {
		h.connectionManager.SendTo(conn, h.snapshot(path))
	}
}

func (h *WebSocketHandler) snapshot(path string) Snapshot {
	switch path {
	case store.PathPlayers:
		return Snapshot{Path: path, Value: h.st.Players()}
	case store.PathConfig:
		return Snapshot{Path: path, Value: h.st.Config()}
	case store.PathCurrentOffer:
		if id, ok := h.st.CurrentOfferID(); ok {
			return Snapshot{Path: path, Value: id}
		}
		return Snapshot{Path: path, Value: nil}
	case store.PathActivityLog:
		return Snapshot{Path: path, Value: h.st.Activity(0)}
	}
	return Snapshot{Path: path}
}

// RegisterRoutes registers websocket routes with an HTTP mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleConnection)
}
