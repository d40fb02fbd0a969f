package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/rating-ledger/internal/database"
	"github.com/mauv0809/rating-ledger/internal/ledger"
)

const (
	ratingStep = 16
	seedRegion = "SD"
)

func main() {
	numPlayers := flag.Int("players", 8, "number of seeded players")
	numMatches := flag.Int("matches", 1000, "number of completed matches to insert")
	flag.Parse()

	log.Info("Starting database seeder...")
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok {
		log.Fatalf("Error: Required environment variable %s is not set.", "DB_NAME")
	}

	db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	// Matches start an hour from now so they follow any existing data.
	base := time.Now().UTC().Truncate(time.Hour).Add(time.Hour)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	startTime := time.Now()
	inserted, conflicts, err := seed(context.Background(), ledger.New(db), *numPlayers, *numMatches, base, rng)
	if err != nil {
		log.Fatalf("Seeding failed: %s", err)
	}
	log.Info("Successfully seeded database.", "matches", inserted, "conflicts", conflicts, "duration", time.Since(startTime))
}

// seed ensures numPlayers players exist and inserts numMatches completed
// matches two hours apart from base, carrying every rating forward.
func seed(ctx context.Context, l ledger.Ledger, numPlayers, numMatches int, base time.Time, rng *rand.Rand) (int, int, error) {
	if numPlayers < 2 {
		return 0, 0, fmt.Errorf("at least two players are needed to seed matches, got %d", numPlayers)
	}

	ratings := make(map[string]int, numPlayers)
	ids := make([]string, 0, numPlayers)
	for i := 0; i < numPlayers; i++ {
		p := ledger.Player{
			ID:        fmt.Sprintf("S%d", i+1),
			Name:      fmt.Sprintf("Seeder%d", i+1),
			Birthdate: time.Date(1980+i%20, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC),
			Rating:    1000,
			Region:    seedRegion,
		}
		current, err := l.GetPlayer(ctx, p.ID)
		switch {
		case err == nil:
			p.Rating = current.Rating
		case ledger.KindOf(err) == ledger.KindNotFound:
			if err := l.CreatePlayer(ctx, p); err != nil {
				return 0, 0, fmt.Errorf("failed to insert seeded player %s: %w", p.ID, err)
			}
		default:
			return 0, 0, fmt.Errorf("failed to check player %s: %w", p.ID, err)
		}
		ratings[p.ID] = p.Rating
		ids = append(ids, p.ID)
	}
	log.Info("Ensured seeded players exist.", "count", len(ids))

	inserted, conflicts := 0, 0
	for i := 0; i < numMatches; i++ {
		host := ids[rng.Intn(len(ids))]
		guest := ids[rng.Intn(len(ids))]
		for guest == host {
			guest = ids[rng.Intn(len(ids))]
		}
		start := base.Add(time.Duration(i) * 2 * time.Hour)
		hostWon := rng.Intn(2) == 0
		delta := ratingStep
		if !hostWon {
			delta = -ratingStep
		}

		c := ledger.Completion{
			HostID:          host,
			GuestID:         guest,
			Start:           start,
			End:             start.Add(time.Hour),
			HostWon:         hostWon,
			PreRatingHost:   ratings[host],
			PostRatingHost:  ratings[host] + delta,
			PreRatingGuest:  ratings[guest],
			PostRatingGuest: ratings[guest] - delta,
		}
		if _, err := l.CompleteMatch(ctx, c); err != nil {
			if ledger.KindOf(err) == ledger.KindConflict {
				conflicts++
				continue
			}
			return inserted, conflicts, fmt.Errorf("failed to insert seeded match %d: %w", i, err)
		}
		ratings[host] = c.PostRatingHost
		ratings[guest] = c.PostRatingGuest
		inserted++

		if inserted%100 == 0 {
			log.Info("Inserted matches", "count", inserted)
		}
	}
	return inserted, conflicts, nil
}
