package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/openregulations/docketflow/config"
	"github.com/openregulations/docketflow/internal/db"
	"github.com/openregulations/docketflow/internal/logging"
	"github.com/openregulations/docketflow/internal/reports"
)

func main() {
	hours := flag.Int("hours", 24, "reporting window in hours")
	output := flag.String("output", "", "write the report JSON to this file")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	db.InitDynamoDB()

	ctx := context.Background()
	now := time.Now().UTC()

	analyses, err := db.GetRecentAnalyses(ctx, now.Add(-time.Duration(*hours)*time.Hour))
	if err != nil {
		slog.Error("[Report] Failed to load recent analyses", slog.String("error", err.Error()))
		os.Exit(1)
	}

	report := reports.BuildDailyReport(analyses, now)

	if *output != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			slog.Error("[Report] Failed to encode report", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			slog.Error("[Report] Failed to write output file",
				slog.String("path", *output),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("[Report] Wrote report", slog.String("path", *output))
	}

	fmt.Print(reports.Format(report))
}
