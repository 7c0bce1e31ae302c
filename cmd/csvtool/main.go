// Command csvtool exports submissions to the legacy CSV layout and imports
// legacy files into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"anoa.com/plantspeak/internal/bootstrap"
	"anoa.com/plantspeak/internal/config"
	"anoa.com/plantspeak/internal/modules/export"
	submissionRepo "anoa.com/plantspeak/internal/modules/submission/repository"
	userRepo "anoa.com/plantspeak/internal/modules/user/repository"
	"anoa.com/plantspeak/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	exportPath := flag.String("export", "", "write visible submissions to this CSV file")
	asUser := flag.Uint("as", 0, "user id whose view to export (0 exports the public view)")
	importPath := flag.String("import", "", "import submissions from this legacy CSV file")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		fmt.Fprintln(os.Stderr, "usage: csvtool -export out.csv [-as <user id>] | -import legacy.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stderr"})
	defer func() { _ = appLogger.Sync() }()

	db, err := bootstrap.OpenDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to open database", zap.Error(err))
	}

	ctx := context.Background()
	submissions := submissionRepo.NewSubmissionRepository(db, cfg.DB.LockTimeout)

	if *exportPath != "" {
		var viewer *uint
		if *asUser != 0 {
			id := *asUser
			viewer = &id
		}
		if err := runExport(ctx, submissions, viewer, *exportPath); err != nil {
			appLogger.Fatal("export failed", zap.Error(err))
		}
		appLogger.Info("export written", zap.String("path", *exportPath))
		return
	}

	f, err := os.Open(*importPath)
	if err != nil {
		appLogger.Fatal("failed to open import file", zap.Error(err))
	}
	defer f.Close()

	importer := export.NewImporter(submissions, userRepo.NewUserRepository(db, cfg.DB.LockTimeout), appLogger)
	result, err := importer.Import(ctx, f)
	if err != nil {
		appLogger.Fatal("import failed", zap.Error(err), zap.Int("imported", result.Imported))
	}
	fmt.Printf("imported %d, skipped %d\n", result.Imported, result.Skipped)
}

func runExport(ctx context.Context, repo submissionRepo.SubmissionRepository, viewer *uint, path string) error {
	subs, err := repo.ListVisible(ctx, viewer)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, subs, viewer); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
