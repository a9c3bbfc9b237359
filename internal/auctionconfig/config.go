package auctionconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

// Category is one sport/skill dimension of the tournament. Aliases are
// the spreadsheet header variants accepted for its rating column.
type Category struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Config is the externally-configured shape of the tournament: the
// fixed team roster, the category set, and the default budget rules.
// Teams are never created or destroyed at runtime.
type Config struct {
	Tournament models.TournamentConfig `yaml:"tournament"`
	Teams      []string                `yaml:"teams"`
	Categories []Category              `yaml:"categories"`
}

// Default returns the tournament shape shipped with the original
// IIID Auction deployment.
func Default() *Config {
	return &Config{
		Tournament: models.DefaultTournamentConfig(),
		Teams: []string{
			"Aditya Avengers", "Alfen Royals", "Lantern Legends",
			"Primark Superkings", "Sai Kripa Soldiers", "Taluka Fighters",
		},
		Categories: []Category{
			{Name: "Cricket", Aliases: []string{"cricket", "cric"}},
			{Name: "Badminton", Aliases: []string{"badminton", "bad"}},
			{Name: "TT", Aliases: []string{"tt", "table tennis", "table"}},
		},
	}
}

// Load reads a tournament YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Tournament == (models.TournamentConfig{}) {
		config.Tournament = models.DefaultTournamentConfig()
	}
	// Without teams every sale is rejected, so an absent teams key
	// falls back to the defaults rather than booting a dead auction.
	if len(config.Teams) == 0 {
		config.Teams = Default().Teams
	}
	if len(config.Categories) == 0 {
		config.Categories = Default().Categories
	}
	return &config, nil
}

// HasTeam reports whether name is part of the configured roster.
func (c *Config) HasTeam(name string) bool {
	for _, t := range c.Teams {
		if t == name {
			return true
		}
	}
	return false
}

// HasCategory reports whether name is a configured category, matched
// case-insensitively.
func (c *Config) HasCategory(name string) bool {
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) {
			return true
		}
	}
	return false
}

// CategoryNames returns the configured category names in declaration
// order.
func (c *Config) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}
