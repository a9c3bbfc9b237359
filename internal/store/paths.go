package store

import (
	"fmt"
	"strconv"
	"strings"
)

// The store is addressed as a keyed hierarchical space. These are the
// four independently-observable roots.
const (
	PathPlayers      = "players"
	PathConfig       = "config"
	PathCurrentOffer = "current_auction_id"
	PathActivityLog  = "activity_log"
)

// PlayerPath returns the path of one player record.
func PlayerPath(id int) string {
	return fmt.Sprintf("%s/%d", PathPlayers, id)
}

// ActivityPath returns the path of one activity-log entry, keyed by
// its millisecond write time.
func ActivityPath(writeMillis int64) string {
	return fmt.Sprintf("%s/%d", PathActivityLog, writeMillis)
}

// splitPath breaks a path into its root and optional key segment.
func splitPath(path string) (root, key string) {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// RootOf returns the observable root a path belongs to.
func RootOf(path string) string {
	root, _ := splitPath(path)
	return root
}

func parsePlayerKey(key string) (int, error) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("invalid player key %q: %w", key, err)
	}
	return id, nil
}

func parseActivityKey(key string) (int64, error) {
	ms, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid activity key %q: %w", key, err)
	}
	return ms, nil
}
