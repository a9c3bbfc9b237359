package auctionconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultShape(t *testing.T) {
	cfg := Default()

	if len(cfg.Teams) != 6 {
		t.Errorf("expected 6 teams, got %d", len(cfg.Teams))
	}
	if cfg.Tournament.PurseLimit != 10000 || cfg.Tournament.MaxSquadSize != 25 || cfg.Tournament.BasePrice != 10 {
		t.Errorf("unexpected default tournament config: %+v", cfg.Tournament)
	}
	if got := cfg.CategoryNames(); len(got) != 3 || got[0] != "Cricket" {
		t.Errorf("unexpected categories: %v", got)
	}
}

func TestLoadBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournament.yaml")
	content := "teams:\n  - Red Rockets\n  - Blue Bulls\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Teams) != 2 || cfg.Teams[0] != "Red Rockets" {
		t.Errorf("unexpected teams: %v", cfg.Teams)
	}
	if cfg.Tournament.PurseLimit != 10000 {
		t.Errorf("expected default purse backfilled, got %d", cfg.Tournament.PurseLimit)
	}
	if len(cfg.Categories) != 3 {
		t.Errorf("expected default categories backfilled, got %v", cfg.Categories)
	}
}

func TestLoadBackfillsTeams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournament.yaml")
	content := "tournament:\n  purse_limit: 5000\n  max_squad_size: 15\n  base_price: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// A file without a teams key must not produce a roster nothing can
	// be sold to.
	if len(cfg.Teams) != 6 {
		t.Errorf("expected default teams backfilled, got %v", cfg.Teams)
	}
}

func TestLoadFullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournament.yaml")
	content := `tournament:
  purse_limit: 5000
  max_squad_size: 15
  base_price: 50
teams:
  - Red Rockets
categories:
  - name: Chess
    aliases: [chess]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Tournament.PurseLimit != 5000 || cfg.Tournament.MaxSquadSize != 15 {
		t.Errorf("unexpected tournament config: %+v", cfg.Tournament)
	}
	if !cfg.HasCategory("chess") {
		t.Error("expected chess category")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHasTeamIsExact(t *testing.T) {
	cfg := Default()
	if !cfg.HasTeam("Alfen Royals") {
		t.Error("expected exact team match")
	}
	if cfg.HasTeam("alfen royals") {
		t.Error("team matching is case-sensitive")
	}
}

func TestHasCategoryIsCaseInsensitive(t *testing.T) {
	cfg := Default()
	if !cfg.HasCategory("tt") || !cfg.HasCategory("CRICKET") {
		t.Error("expected case-insensitive category match")
	}
	if cfg.HasCategory("Chess") {
		t.Error("unexpected category match")
	}
}
