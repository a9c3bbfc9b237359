package gateway

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AdminKeyHeader carries the shared admin passphrase. This gates the
// mutating surface the way the original password prompt did: it is a
// UI gate for a single trusted administrator, not a credential system.
const AdminKeyHeader = "X-Admin-Key"

func requireAdmin(adminKey string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			log.Warn().Str("path", r.URL.Path).Msg("rejected request with bad admin key")
			http.Error(w, "admin key required", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
