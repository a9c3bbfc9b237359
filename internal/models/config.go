package models

// TournamentConfig holds the auction-wide budget rules. It is a
// singleton record, always written wholesale (no partial-field merge).
type TournamentConfig struct {
	PurseLimit   int `json:"purse_limit" yaml:"purse_limit"`
	MaxSquadSize int `json:"max_squad_size" yaml:"max_squad_size"`
	BasePrice    int `json:"base_price" yaml:"base_price"`
}

// DefaultTournamentConfig returns the first-boot defaults.
func DefaultTournamentConfig() TournamentConfig {
	return TournamentConfig{
		PurseLimit:   10000,
		MaxSquadSize: 25,
		BasePrice:    10,
	}
}

// Valid reports whether every budget field is positive.
func (c TournamentConfig) Valid() bool {
	return c.PurseLimit > 0 && c.MaxSquadSize > 0 && c.BasePrice > 0
}
