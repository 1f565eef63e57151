// Command enqueue is an operator tool for submitting theme scouting jobs.
//
// It can also seed quota grants and theme templates for local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/lueurxax/theme-scout/internal/config"
	db "github.com/lueurxax/theme-scout/internal/storage"
)

func main() {
	assetID := flag.String("asset", "", "asset ID to scout")
	userID := flag.String("user", "", "user ID the job is charged to")
	keywords := flag.String("keywords", "", "comma-separated focus keywords")
	grant := flag.Int64("grant", 0, "grant the user this many quota tokens before enqueueing")
	template := flag.String("template", "", "upsert a theme template instead: <asset-kind>:<name>:<kw1|kw2|...>")
	balance := flag.Bool("balance", false, "print the user's quota balance and exit")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.PostgresDSN, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if *template != "" {
		if err := upsertTemplate(ctx, database, *template); err != nil {
			logger.Fatal().Err(err).Msg("failed to upsert template")
		}

		return
	}

	if *userID == "" {
		logger.Fatal().Msg("-user is required")
	}

	if *balance {
		tokens, err := database.GetQuotaBalance(ctx, *userID)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read quota balance")
		}

		fmt.Printf("balance: %d tokens\n", tokens)

		return
	}

	if *grant > 0 {
		if err := database.GrantQuota(ctx, *userID, *grant); err != nil {
			logger.Fatal().Err(err).Msg("failed to grant quota")
		}

		logger.Info().Int64("tokens", *grant).Str("user_id", *userID).Msg("quota granted")
	}

	if *assetID == "" {
		logger.Fatal().Msg("-asset is required")
	}

	jobID, err := database.EnqueueScoutJob(ctx, *assetID, *userID, splitKeywords(*keywords))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to enqueue job")
	}

	fmt.Printf("enqueued job %s\n", jobID)
}

func upsertTemplate(ctx context.Context, database *db.DB, spec string) error {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return fmt.Errorf("invalid template %q, want <asset-kind>:<name>:<kw1|kw2|...>", spec)
	}

	var keywords []string
	if len(parts) == 3 && parts[2] != "" {
		keywords = strings.Split(parts[2], "|")
	}

	return database.UpsertTemplate(ctx, parts[0], parts[1], keywords)
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}

	var out []string

	for _, kw := range strings.Split(s, ",") {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}

	return out
}
