// Package auction implements the state machine governing the player
// currently up for bid and the sell/unsell/correct/captain transitions.
//
// Failure semantics: a transition whose player or team precondition
// fails is a silent no-op, not an error. The only writer is a trusted
// admin surface that offers transitions on ids it just displayed, so
// "not found" means a stale click, not a fault worth reporting.
package auction

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

// ErrNoUnsoldPlayers is returned by Spin when the unsold pool is empty.
var ErrNoUnsoldPlayers = errors.New("no unsold players left")

// ErrInvalidConfig is returned by SaveConfig for non-positive budgets.
var ErrInvalidConfig = errors.New("config fields must be positive")

// Store defines what the state machine needs from the record store.
type Store interface {
	Player(id int) (models.Player, bool)
	Players() []models.Player
	Config() models.TournamentConfig
	CurrentOfferID() (int, bool)
	PutPlayer(ctx context.Context, p models.Player) error
	PutPlayers(ctx context.Context, players []models.Player) error
	PutConfig(ctx context.Context, cfg models.TournamentConfig) error
	SetCurrentOffer(ctx context.Context, id int) error
	ClearCurrentOffer(ctx context.Context) error
	AppendActivity(ctx context.Context, e models.ActivityEntry) error
	Wipe(ctx context.Context) error
}

// App drives auction transitions against the record store.
type App struct {
	store Store
	teams []string
	clock clockwork.Clock

	// overridable for deterministic spins in tests
	randIntN func(n int) int
}

// NewApp creates the auction state machine. teams is the fixed,
// externally-configured roster of team names.
func NewApp(store Store, teams []string, clock clockwork.Clock) *App {
	return &App{
		store:    store,
		teams:    teams,
		clock:    clock,
		randIntN: rand.Intn,
	}
}

// Offer points the system-wide current offer at an unsold player.
// Overwrites any prior offer; the last writer wins.
func (a *App) Offer(ctx context.Context, playerID int) error {
	p, ok := a.store.Player(playerID)
	if !ok {
		log.Debug().Int("player_id", playerID).Msg("offer ignored: player not found")
		return nil
	}
	if p.Sold() {
		log.Debug().Int("player_id", playerID).Str("team", p.Team).Msg("offer ignored: player already sold")
		return nil
	}
	return a.store.SetCurrentOffer(ctx, playerID)
}

// Spin offers a uniformly random unsold player.
func (a *App) Spin(ctx context.Context) (models.Player, error) {
	var pool []models.Player
	for _, p := range a.store.Players() {
		if !p.Sold() {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return models.Player{}, ErrNoUnsoldPlayers
	}
	picked := pool[a.randIntN(len(pool))]
	if err := a.store.SetCurrentOffer(ctx, picked.ID); err != nil {
		return models.Player{}, err
	}
	return picked, nil
}

// ClearOffer resolves the current offer back to idle without a sale.
func (a *App) ClearOffer(ctx context.Context) error {
	return a.store.ClearCurrentOffer(ctx)
}

// Sell finalizes a player's assignment to a team at a price and closes
// the current offer if it points at that player. Budget, squad and
// base-price caps are advisory and deliberately not enforced here.
func (a *App) Sell(ctx context.Context, playerID int, team string, price int) error {
	p, ok := a.store.Player(playerID)
	if !ok {
		log.Debug().Int("player_id", playerID).Msg("sell ignored: player not found")
		return nil
	}
	if !a.hasTeam(team) {
		log.Debug().Str("team", team).Msg("sell ignored: unknown team")
		return nil
	}
	if price < 0 {
		log.Debug().Int("price", price).Msg("sell ignored: negative price")
		return nil
	}

	now := a.clock.Now()
	p.Team = team
	p.Price = price
	p.SoldAt = &now
	if err := a.store.PutPlayer(ctx, p); err != nil {
		return fmt.Errorf("failed to sell player %d: %w", playerID, err)
	}

	if cur, ok := a.store.CurrentOfferID(); ok && cur == playerID {
		if err := a.store.ClearCurrentOffer(ctx); err != nil {
			return fmt.Errorf("failed to close offer for player %d: %w", playerID, err)
		}
	}

	return a.store.AppendActivity(ctx, models.ActivityEntry{
		Type:    models.ActivitySale,
		Message: fmt.Sprintf("%s sold to %s for %d", p.Name, team, price),
		Details: models.ActivityDetails{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Team:       team,
			Price:      price,
		},
	})
}

// Unsell returns a player to the unsold pool. Unselling an already
// unsold player is a harmless no-op.
func (a *App) Unsell(ctx context.Context, playerID int) error {
	p, ok := a.store.Player(playerID)
	if !ok {
		log.Debug().Int("player_id", playerID).Msg("unsell ignored: player not found")
		return nil
	}
	if !p.Sold() {
		return nil
	}

	team := p.Team
	p.Team = ""
	p.Price = 0
	p.CaptainFor = ""
	p.SoldAt = nil
	if err := a.store.PutPlayer(ctx, p); err != nil {
		return fmt.Errorf("failed to unsell player %d: %w", playerID, err)
	}

	return a.store.AppendActivity(ctx, models.ActivityEntry{
		Type:    models.ActivityRevert,
		Message: fmt.Sprintf("%s returned to the unsold pool (was %s)", p.Name, team),
		Details: models.ActivityDetails{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Team:       team,
		},
	})
}

// Correct retroactively fixes a player's team and price without going
// through the offer cycle. The current offer is left untouched. An
// empty team resets the player to unsold wholesale: a player without a
// team can hold no price, captaincy or sale time.
func (a *App) Correct(ctx context.Context, playerID int, team string, price int) error {
	p, ok := a.store.Player(playerID)
	if !ok {
		log.Debug().Int("player_id", playerID).Msg("correction ignored: player not found")
		return nil
	}

	if team == "" {
		p.Team = ""
		p.Price = 0
		p.CaptainFor = ""
		p.SoldAt = nil
	} else {
		p.Team = team
		p.Price = price
	}
	if err := a.store.PutPlayer(ctx, p); err != nil {
		return fmt.Errorf("failed to correct player %d: %w", playerID, err)
	}

	message := fmt.Sprintf("%s corrected to %s at %d", p.Name, p.Team, p.Price)
	if p.Team == "" {
		message = fmt.Sprintf("%s corrected to unsold", p.Name)
	}
	return a.store.AppendActivity(ctx, models.ActivityEntry{
		Type:    models.ActivityCorrection,
		Message: message,
		Details: models.ActivityDetails{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Team:       p.Team,
			Price:      p.Price,
		},
	})
}

// AssignCaptain pre-assigns a player to a team as captain for one
// category. A captain occupies a roster slot exactly like a sold
// player.
func (a *App) AssignCaptain(ctx context.Context, playerID int, team, category string, price int) error {
	p, ok := a.store.Player(playerID)
	if !ok {
		log.Debug().Int("player_id", playerID).Msg("captain assignment ignored: player not found")
		return nil
	}

	now := a.clock.Now()
	p.Team = team
	p.Price = price
	p.CaptainFor = category
	p.SoldAt = &now
	if err := a.store.PutPlayer(ctx, p); err != nil {
		return fmt.Errorf("failed to assign captain %d: %w", playerID, err)
	}

	return a.store.AppendActivity(ctx, models.ActivityEntry{
		Type:    models.ActivityCaptain,
		Message: fmt.Sprintf("%s named %s captain for %s", p.Name, category, team),
		Details: models.ActivityDetails{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Team:       team,
			Price:      price,
			Category:   category,
		},
	})
}

// RemoveCaptain has the same effect as Unsell but writes no activity
// entry. The asymmetry with AssignCaptain is intentional: captain
// removal needs no audit trail.
func (a *App) RemoveCaptain(ctx context.Context, playerID int) error {
	p, ok := a.store.Player(playerID)
	if !ok {
		log.Debug().Int("player_id", playerID).Msg("captain removal ignored: player not found")
		return nil
	}
	if !p.Sold() {
		return nil
	}

	p.Team = ""
	p.Price = 0
	p.CaptainFor = ""
	p.SoldAt = nil
	if err := a.store.PutPlayer(ctx, p); err != nil {
		return fmt.Errorf("failed to remove captain %d: %w", playerID, err)
	}
	return nil
}

// ApplyImport commits a normalized roster to the store as a bulk
// upsert keyed by id. Re-importing reassigns ids from scratch, which
// can orphan previously-sold records; see the roster package.
func (a *App) ApplyImport(ctx context.Context, players []models.Player) error {
	if err := a.store.PutPlayers(ctx, players); err != nil {
		return fmt.Errorf("failed to apply import: %w", err)
	}
	log.Info().Int("players", len(players)).Msg("roster import applied")
	return nil
}

// SaveConfig overwrites the tournament config wholesale.
func (a *App) SaveConfig(ctx context.Context, cfg models.TournamentConfig) error {
	if !cfg.Valid() {
		return ErrInvalidConfig
	}
	return a.store.PutConfig(ctx, cfg)
}

// Reset wipes players, the current offer and the activity log. Config
// survives.
func (a *App) Reset(ctx context.Context) error {
	log.Warn().Msg("resetting auction data")
	return a.store.Wipe(ctx)
}

func (a *App) hasTeam(name string) bool {
	for _, t := range a.teams {
		if t == name {
			return true
		}
	}
	return false
}
