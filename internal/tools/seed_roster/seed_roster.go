package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/auctionconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/dbconfig"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/roster"
	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/store"
)

// Seeds the players table from a registration CSV. Usage:
//
//	seed_roster <roster.csv>
func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: seed_roster <roster.csv>")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	tournament := auctionconfig.Default()
	if path := os.Getenv("TOURNAMENT_CONFIG"); path != "" {
		var err error
		tournament, err = auctionconfig.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load tournament config: %v\n", err)
			os.Exit(1)
		}
	}

	// 1) Parse the CSV
	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open csv: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := roster.DecodeCSV(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode csv: %v\n", err)
		os.Exit(1)
	}

	players := roster.NewNormalizer(tournament.Categories).Normalize(rows)

	// 2) Connect to DB
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := store.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ensure schema: %v\n", err)
		os.Exit(1)
	}

	// 3) Seed players
	total, inserted, errs := len(rows), 0, 0
	for _, p := range players {
		if err := repo.Put(ctx, store.PlayerPath(p.ID), p); err != nil {
			fmt.Fprintf(os.Stderr, "seed player %d (%s): %v\n", p.ID, p.Name, err)
			errs++
			continue
		}
		inserted++
	}
	fmt.Printf(
		"Roster seed: rows=%d inserted=%d rejected=%d errors=%d\n",
		total, inserted, total-len(players), errs,
	)

	// 4) Seed config if none persisted yet
	if _, persisted, _, _, err := repo.Load(ctx); err == nil && persisted == nil {
		if err := repo.Put(ctx, store.PathConfig, tournament.Tournament); err != nil {
			fmt.Fprintf(os.Stderr, "seed config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Seeded default tournament config")
	}
}
