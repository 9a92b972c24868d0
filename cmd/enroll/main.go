package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"

	appRepos "github.com/fasbit/thesisvault/internal/app/repositories"
	appServices "github.com/fasbit/thesisvault/internal/app/services"
	"github.com/fasbit/thesisvault/internal/bootstrap"
	"github.com/fasbit/thesisvault/internal/db"
	"github.com/fasbit/thesisvault/internal/pkg/logger"
)

// Bulk student enrollment from an XLSX roster. Expected columns, in order:
// matricula, CURP, email. The first row is treated as a header and skipped.
func main() {
	rosterPath := flag.String("file", "", "path to the XLSX enrollment roster")
	sheetName := flag.String("sheet", "", "sheet to read (defaults to the first sheet)")
	flag.Parse()

	if *rosterPath == "" {
		logger.Error().Msg("Usage: enroll -file roster.xlsx [-sheet Sheet1]")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	roster, err := readRoster(*rosterPath, *sheetName)
	if err != nil {
		lgr.Error().Err(err).Str("file", *rosterPath).Msg("Failed to read enrollment roster")
		os.Exit(1)
	}
	if len(roster) == 0 {
		lgr.Warn().Str("file", *rosterPath).Msg("Roster contains no data rows, nothing to do")
		return
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer database.Close()

	repos := appRepos.NewRepositories(database.Pool)
	accountService := appServices.NewAccountService(repos.UserRepository, repos.ThesisRepository, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	processed, err := accountService.EnrollStudents(ctx, roster)
	if err != nil {
		lgr.Error().Err(err).Int("processed", processed).Msg("Enrollment stopped on error")
		os.Exit(1)
	}

	lgr.Info().Int("processed", processed).Int("rows", len(roster)).Msg("Enrollment finished")
}

// readRoster parses the XLSX roster into enrollment records.
func readRoster(path, sheet string) ([]appServices.EnrollmentRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	var roster []appServices.EnrollmentRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rec := appServices.EnrollmentRecord{}
		if len(row) > 0 {
			rec.Matricula = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			rec.CURP = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			rec.Email = strings.TrimSpace(row[2])
		}
		if rec.Matricula == "" && rec.CURP == "" && rec.Email == "" {
			continue // blank row
		}
		roster = append(roster, rec)
	}
	return roster, nil
}
