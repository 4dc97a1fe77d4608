// Command bankctl validates a YAML/JSON question bank against a policy
// profile and loads it into the questions table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mind-engage/mocktest/internal/bank"
	"github.com/mind-engage/mocktest/internal/config"
	"github.com/mind-engage/mocktest/internal/db"
	"github.com/mind-engage/mocktest/internal/formats"
	_ "github.com/mind-engage/mocktest/internal/formats/hp"
)

func main() {
	cfg := config.Load()
	path := flag.String("bank", cfg.BankPath, "question file or directory")
	profile := flag.String("profile", cfg.PolicyProfile, "policy profile key")
	dryRun := flag.Bool("dry-run", false, "validate only")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(cfg, *path, *profile, *dryRun, logger); err != nil {
		logger.Error("bankctl failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, path, profile string, dryRun bool, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	prof, ok := formats.Lookup(profile)
	if !ok {
		return fmt.Errorf("unknown policy profile %q", profile)
	}
	pol := prof.Policy()
	if cfg.PolicyPath != "" {
		var err error
		if pol, err = formats.LoadPolicy(cfg.PolicyPath); err != nil {
			return err
		}
	}

	src, err := bank.LoadFile(path)
	if err != nil {
		return err
	}
	if err := bank.Validate(ctx, src, pol, prof); err != nil {
		return err
	}
	qs, err := src.All(ctx)
	if err != nil {
		return err
	}
	counts := map[string]int{}
	for _, q := range qs {
		counts[q.SectionCode]++
	}
	for _, code := range pol.SectionOrder() {
		logger.Info("section", "code", code, "questions", counts[code])
	}
	if dryRun {
		logger.Info("bank is valid", "questions", len(qs))
		return nil
	}

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db open failed: %w", err)
	}
	defer dbh.Close()
	if err := bank.NewSQLSource(dbh).Put(ctx, qs); err != nil {
		return err
	}
	logger.Info("bank loaded", "questions", len(qs), "driver", cfg.DBDriver)
	return nil
}
