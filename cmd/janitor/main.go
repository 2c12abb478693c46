package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/db"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	DatabaseURI string
}

// loadConfig loads configuration settings from the environment. We're using koanf directly here so
// that the configuration files don't have to be present to run the janitor.
func loadConfig() (*Config, error) {
	k := koanf.New(".")

	// Load the configuration settings from the environment.
	err := k.Load(
		env.Provider("SAC_", ".",
			func(s string) string {
				return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SAC_")), "_", ".", -1)
			},
		),
		nil,
	)
	if err != nil {
		return nil, err
	}

	// Verify that the database URI is specified.
	databaseURI := k.String("database.uri")
	if databaseURI == "" {
		return nil, fmt.Errorf("SAC_DATABASE_URI must be defined")
	}

	return &Config{DatabaseURI: databaseURI}, nil
}

// The janitor runs the periodic maintenance that the service itself only performs opportunistically:
// it releases processing locks past the absolute ceiling and refreshes the period time once the
// submitted pool of metered work has drained. It's intended to run from cron.
func main() {
	ctx := context.Background()

	config, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	_, gormdb, err := db.Init("postgres", config.DatabaseURI)
	if err != nil {
		log.Fatal(err)
	}

	// Release the processing locks that have been held too long.
	released, err := db.ReleaseExpiredLocks(ctx, gormdb, time.Now())
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("released %d expired processing locks", released)

	// Refresh the period time if the submitted pool has drained.
	needed, err := db.PeriodNeedsRefresh(ctx, gormdb)
	if err != nil {
		log.Fatal(err)
	}
	if !needed {
		log.Print("the period time does not need to be refreshed")
		return
	}

	if err = db.RefreshPeriodTime(ctx, gormdb); err != nil {
		log.Fatal(err)
	}
	log.Print("refreshed the period time of the periodic quota groups")
}
