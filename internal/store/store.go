// Package store holds the canonical auction record: the player
// collection, the tournament config singleton, the current offer
// pointer and the append-only activity log. Every other component
// reads from and writes through this store; none holds private
// authoritative state.
//
// Consistency contract: every write is last-write-wins at the
// granularity of the path written. There is no locking across paths,
// no transaction isolation and no rollback. A backend failure is
// surfaced to the caller while the local optimistic state keeps the
// new value until the next successful sync.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

// Backend persists or propagates record-store writes. Implementations
// must treat every Put as last-write-wins for the given path; the
// store never retries a failed call.
type Backend interface {
	Put(ctx context.Context, path string, value any) error
	Delete(ctx context.Context, path string) error
}

// Subscriber observes one of the four root paths. On every change it
// receives the entire current value at that path, never a delta, so
// consumers fully replace their local view on each notification.
type Subscriber func(path string, value any)

// Store is the single source of truth for the auction.
type Store struct {
	clock    clockwork.Clock
	backends []Backend

	mu       sync.RWMutex
	players  map[int]models.Player
	config   models.TournamentConfig
	offerID  *int
	activity map[int64]models.ActivityEntry
	subs     map[string][]Subscriber
}

// New creates a store with first-boot defaults. Backends are invoked
// in order on every write.
func New(clock clockwork.Clock, backends ...Backend) *Store {
	return &Store{
		clock:    clock,
		backends: backends,
		players:  make(map[int]models.Player),
		config:   models.DefaultTournamentConfig(),
		activity: make(map[int64]models.ActivityEntry),
		subs:     make(map[string][]Subscriber),
	}
}

// Hydrate seeds the in-memory state from persistence at boot. It does
// not notify subscribers or touch backends.
func (s *Store) Hydrate(players []models.Player, config *models.TournamentConfig, offerID *int, activity map[int64]models.ActivityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range players {
		s.players[p.ID] = p
	}
	if config != nil {
		s.config = *config
	}
	s.offerID = offerID
	for ms, e := range activity {
		s.activity[ms] = e
	}
}

// Subscribe registers fn for a root path and immediately delivers the
// current value, matching the snapshot-then-updates semantics clients
// expect from the propagation layer.
func (s *Store) Subscribe(path string, fn Subscriber) {
	s.mu.Lock()
	s.subs[path] = append(s.subs[path], fn)
	s.mu.Unlock()

	fn(path, s.snapshot(path))
}

// Players returns all players ordered by id.
func (s *Store) Players() []models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playersLocked()
}

func (s *Store) playersLocked() []models.Player {
	players := make([]models.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

// Player looks up one player by id.
func (s *Store) Player(id int) (models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	return p, ok
}

// Config returns the tournament config singleton.
func (s *Store) Config() models.TournamentConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// CurrentOfferID returns the id of the player currently up for bid.
func (s *Store) CurrentOfferID() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.offerID == nil {
		return 0, false
	}
	return *s.offerID, true
}

// Activity returns the most recent limit entries, newest first. The
// bound is a display concern; the underlying log is never truncated.
func (s *Store) Activity(limit int) []models.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]int64, 0, len(s.activity))
	for ms := range s.activity {
		keys = append(keys, ms)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	entries := make([]models.ActivityEntry, len(keys))
	for i, ms := range keys {
		entries[i] = s.activity[ms]
	}
	return entries
}

// PutPlayer upserts one player record.
func (s *Store) PutPlayer(ctx context.Context, p models.Player) error {
	s.mu.Lock()
	s.players[p.ID] = p
	s.mu.Unlock()

	s.notify(PathPlayers)
	return s.backendPut(ctx, PlayerPath(p.ID), p)
}

// PutPlayers applies a bulk upsert keyed by id. Pre-existing players
// whose id is not covered by the batch are left in place; that is how
// a re-import orphans previously-sold records, and it is deliberate.
func (s *Store) PutPlayers(ctx context.Context, players []models.Player) error {
	s.mu.Lock()
	for _, p := range players {
		s.players[p.ID] = p
	}
	s.mu.Unlock()

	s.notify(PathPlayers)

	var firstErr error
	for _, p := range players {
		if err := s.backendPut(ctx, PlayerPath(p.ID), p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PutConfig overwrites the tournament config wholesale.
func (s *Store) PutConfig(ctx context.Context, cfg models.TournamentConfig) error {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.notify(PathConfig)
	return s.backendPut(ctx, PathConfig, cfg)
}

// SetCurrentOffer points the system-wide offer at a player. Last
// writer wins; there is no queue of offers.
func (s *Store) SetCurrentOffer(ctx context.Context, id int) error {
	s.mu.Lock()
	s.offerID = &id
	s.mu.Unlock()

	s.notify(PathCurrentOffer)
	return s.backendPut(ctx, PathCurrentOffer, strconv.Itoa(id))
}

// ClearCurrentOffer resolves the offer back to idle.
func (s *Store) ClearCurrentOffer(ctx context.Context) error {
	s.mu.Lock()
	s.offerID = nil
	s.mu.Unlock()

	s.notify(PathCurrentOffer)
	return s.backendDelete(ctx, PathCurrentOffer)
}

// AppendActivity writes one immutable log entry keyed by its
// millisecond write time. Clock skew across writers means key order
// only approximates chronological order; collisions within this
// process bump the key forward.
func (s *Store) AppendActivity(ctx context.Context, e models.ActivityEntry) error {
	now := s.clock.Now()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}

	s.mu.Lock()
	key := now.UnixMilli()
	for {
		if _, exists := s.activity[key]; !exists {
			break
		}
		key++
	}
	s.activity[key] = e
	s.mu.Unlock()

	s.notify(PathActivityLog)
	return s.backendPut(ctx, ActivityPath(key), e)
}

// Wipe destroys the player collection, the current offer and the
// activity log. Config is deliberately untouched. Irreversible;
// confirmation is the boundary's concern.
func (s *Store) Wipe(ctx context.Context) error {
	s.mu.Lock()
	s.players = make(map[int]models.Player)
	s.offerID = nil
	s.activity = make(map[int64]models.ActivityEntry)
	s.mu.Unlock()

	s.notify(PathPlayers)
	s.notify(PathCurrentOffer)
	s.notify(PathActivityLog)

	var firstErr error
	for _, path := range []string{PathPlayers, PathCurrentOffer, PathActivityLog} {
		if err := s.backendDelete(ctx, path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ApplyRemote applies a change observed from another writer, without
// re-persisting or re-publishing it.
func (s *Store) ApplyRemote(path string, value json.RawMessage) error {
	root, key := splitPath(path)

	switch root {
	case PathPlayers:
		if key == "" {
			return fmt.Errorf("refusing whole-collection put for %s", path)
		}
		id, err := parsePlayerKey(key)
		if err != nil {
			return err
		}
		var p models.Player
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("failed to decode player %d: %w", id, err)
		}
		s.mu.Lock()
		s.players[id] = p
		s.mu.Unlock()
		s.notify(PathPlayers)

	case PathConfig:
		var cfg models.TournamentConfig
		if err := json.Unmarshal(value, &cfg); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}
		s.mu.Lock()
		s.config = cfg
		s.mu.Unlock()
		s.notify(PathConfig)

	case PathCurrentOffer:
		id, err := decodeOfferID(value)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.offerID = &id
		s.mu.Unlock()
		s.notify(PathCurrentOffer)

	case PathActivityLog:
		ms, err := parseActivityKey(key)
		if err != nil {
			return err
		}
		var e models.ActivityEntry
		if err := json.Unmarshal(value, &e); err != nil {
			return fmt.Errorf("failed to decode activity entry: %w", err)
		}
		s.mu.Lock()
		s.activity[ms] = e
		s.mu.Unlock()
		s.notify(PathActivityLog)

	default:
		return fmt.Errorf("unknown path %q", path)
	}
	return nil
}

// ApplyRemoteDelete applies a deletion observed from another writer.
func (s *Store) ApplyRemoteDelete(path string) error {
	root, key := splitPath(path)

	switch root {
	case PathPlayers:
		s.mu.Lock()
		if key == "" {
			s.players = make(map[int]models.Player)
		} else {
			id, err := parsePlayerKey(key)
			if err != nil {
				s.mu.Unlock()
				return err
			}
			delete(s.players, id)
		}
		s.mu.Unlock()
		s.notify(PathPlayers)

	case PathCurrentOffer:
		s.mu.Lock()
		s.offerID = nil
		s.mu.Unlock()
		s.notify(PathCurrentOffer)

	case PathActivityLog:
		s.mu.Lock()
		if key == "" {
			s.activity = make(map[int64]models.ActivityEntry)
		} else {
			ms, err := parseActivityKey(key)
			if err != nil {
				s.mu.Unlock()
				return err
			}
			delete(s.activity, ms)
		}
		s.mu.Unlock()
		s.notify(PathActivityLog)

	default:
		return fmt.Errorf("unknown path %q", path)
	}
	return nil
}

// snapshot builds the full current value for a root path.
func (s *Store) snapshot(path string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch path {
	case PathPlayers:
		return s.playersLocked()
	case PathConfig:
		return s.config
	case PathCurrentOffer:
		if s.offerID == nil {
			return nil
		}
		id := *s.offerID
		return &id
	case PathActivityLog:
		keys := make([]int64, 0, len(s.activity))
		for ms := range s.activity {
			keys = append(keys, ms)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		entries := make([]models.ActivityEntry, len(keys))
		for i, ms := range keys {
			entries[i] = s.activity[ms]
		}
		return entries
	}
	return nil
}

// notify fans the full current value of a root path out to its
// subscribers.
func (s *Store) notify(path string) {
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subs[path]))
	copy(subs, s.subs[path])
	s.mu.RUnlock()

	if len(subs) == 0 {
		return
	}
	value := s.snapshot(path)
	for _, fn := range subs {
		fn(path, value)
	}
}

func (s *Store) backendPut(ctx context.Context, path string, value any) error {
	var firstErr error
	for _, b := range s.backends {
		if err := b.Put(ctx, path, value); err != nil {
			log.Error().Err(err).Str("path", path).Msg("backend put failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to put %s: %w", path, err)
			}
		}
	}
	return firstErr
}

func (s *Store) backendDelete(ctx context.Context, path string) error {
	var firstErr error
	for _, b := range s.backends {
		if err := b.Delete(ctx, path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("backend delete failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete %s: %w", path, err)
			}
		}
	}
	return firstErr
}

func decodeOfferID(value json.RawMessage) (int, error) {
	var asString string
	if err := json.Unmarshal(value, &asString); err == nil {
		id, err := strconv.Atoi(asString)
		if err != nil {
			return 0, fmt.Errorf("invalid offer id %q: %w", asString, err)
		}
		return id, nil
	}
	var asInt int
	if err := json.Unmarshal(value, &asInt); err != nil {
		return 0, fmt.Errorf("invalid offer id payload: %w", err)
	}
	return asInt, nil
}
