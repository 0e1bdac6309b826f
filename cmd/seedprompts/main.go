// Command seedprompts stores the built-in prompt of every provider as version
// 1 and optionally imports prompt revisions from an Excel workbook.
//
// The workbook's first sheet holds one revision per row after a header row:
// Provider | Prompt | Schema (v1/v2, optional). Rows are saved in order, each
// becoming the next version of its provider.
//
// Usage: go run ./cmd/seedprompts [-xlsx prompts.xlsx] [-dry-run]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"fisbench/internal/accounting"
	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/export"
	"fisbench/internal/logger"
	"fisbench/internal/port"
	"fisbench/internal/repository/postgres"
	"fisbench/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := flag.String("xlsx", "", "workbook of prompt revisions to import")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appLog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer appLog.Sync()

	var revisions []service.SavePromptInput
	if *xlsxPath != "" {
		f, err := os.Open(*xlsxPath)
		if err != nil {
			return fmt.Errorf("open workbook: %w", err)
		}
		rows, err := export.ReadXLSXRows(f, "")
		_ = f.Close()
		if err != nil {
			return err
		}
		if revisions, err = readRevisions(rows); err != nil {
			return err
		}
		appLog.Info("workbook parsed", "path", *xlsxPath, "revisions", len(revisions))
	}
	if *dryRun {
		for _, r := range revisions {
			appLog.Info("would save", "provider", r.Provider, "schema_version", r.SchemaVersion,
				"tokens", service.EstimateTokens(r.Text))
		}
		return nil
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := postgres.NewPromptRepo(db)

	seeded, err := seedDefaults(ctx, repo, appLog)
	if err != nil {
		return err
	}
	appLog.Info("default prompts seeded", "count", seeded)

	prompts := service.NewPromptService(repo, accounting.NewRegistry(cfg.Accounting.SchemaCutoff, appLog), appLog)
	for i, r := range revisions {
		if _, err := prompts.Save(ctx, r); err != nil {
			return fmt.Errorf("revision %d (%s): %w", i+1, r.Provider, err)
		}
	}
	return nil
}

// seedDefaults stores the built-in prompt for every provider without stored
// history. It is safe to run repeatedly.
func seedDefaults(ctx context.Context, repo port.PromptRepository, log *logger.Logger) (int, error) {
	seeded := 0
	for _, provider := range domain.KnownProviders {
		_, err := repo.Latest(ctx, provider)
		if err == nil {
			log.Debug("prompt history exists, skipping", "provider", provider)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return seeded, fmt.Errorf("checking %s: %w", provider, err)
		}
		if err := repo.Create(ctx, service.DefaultPrompt(provider)); err != nil {
			return seeded, fmt.Errorf("seeding %s: %w", provider, err)
		}
		seeded++
	}
	return seeded, nil
}

// readRevisions parses workbook rows after the header. Blank rows are skipped.
func readRevisions(rows [][]string) ([]service.SavePromptInput, error) {
	var out []service.SavePromptInput
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		provider := domain.ParseProviderID(row[0])
		text := strings.TrimSpace(row[1])
		if provider == "" && text == "" {
			continue
		}
		if !provider.IsKnown() {
			return nil, fmt.Errorf("row %d: provider %q: %w", i+1, row[0], domain.ErrUnsupportedProvider)
		}
		if text == "" {
			return nil, fmt.Errorf("row %d: empty prompt", i+1)
		}
		in := service.SavePromptInput{Provider: provider, Text: text}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			in.SchemaVersion = domain.SchemaVersion(strings.ToLower(strings.TrimSpace(row[2])))
			if !in.SchemaVersion.Valid() {
				return nil, fmt.Errorf("row %d: schema version %q: %w", i+1, row[2], domain.ErrInvalidInput)
			}
		}
		out = append(out, in)
	}
	return out, nil
}
