package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"visit-planner-service/internal/adapters/export"
	"visit-planner-service/internal/adapters/repositories"
	"visit-planner-service/internal/app"
	"visit-planner-service/internal/config"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/platform/db"
	"visit-planner-service/internal/ports"
	"visit-planner-service/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type planOptions struct {
	depotLat     float64
	depotLon     float64
	depotAddress string
	maxPerGroup  int
	minPerGroup  int
	strategy     string
	geocode      bool
	out          string
}

var planOpts planOptions

var planCmd = &cobra.Command{
	Use:   "plan FILE",
	Short: "Plan visits for a CSV or JSON file of clients",
	Long: `Plan visits for the clients listed in FILE (.csv or .json).

CSV headers are matched case-insensitively: name ("nom client", "client",
"nom", "name"), street ("adresse 2", "adresse", "address"), postal code
("code postal", "postal", "zip"), city ("ville", "city") and optional
"latitude"/"longitude". Rows without coordinates are geocoded when
--geocode is set and skipped otherwise.

Examples:
  planner plan clients.csv --depot-lat 48.11 --depot-lon -1.68 --max 6
  planner plan clients.csv --depot "Rennes" --geocode --out planning.csv
`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.Float64Var(&planOpts.depotLat, "depot-lat", 0, "Depot latitude")
	f.Float64Var(&planOpts.depotLon, "depot-lon", 0, "Depot longitude")
	f.StringVar(&planOpts.depotAddress, "depot", "", "Depot address (geocoded, requires --geocode)")
	f.IntVar(&planOpts.maxPerGroup, "max", 6, "Maximum visits per day")
	f.IntVar(&planOpts.minPerGroup, "min", 4, "Advisory minimum visits per day")
	f.StringVar(&planOpts.strategy, "strategy", services.StrategyBalanced, "Clustering strategy (balanced|geographic)")
	f.BoolVar(&planOpts.geocode, "geocode", false, "Geocode clients without coordinates using the configured provider")
	f.StringVarP(&planOpts.out, "out", "o", "-", "CSV output path, - for stdout")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	depotSet := cmd.Flags().Changed("depot-lat") || cmd.Flags().Changed("depot-lon")
	if !depotSet && planOpts.depotAddress == "" {
		return errors.New("either --depot-lat/--depot-lon or --depot is required")
	}
	if !depotSet && !planOpts.geocode {
		return errors.New("--depot needs --geocode")
	}

	strategy, err := services.StrategyByName(planOpts.strategy)
	if err != nil {
		return err
	}

	targets, err := readTargets(args[0])
	if err != nil {
		return err
	}

	var (
		geocoder ports.Geocoder
		country  string
		limit    int
	)
	if planOpts.geocode {
		g, cleanup, cfg, err := openGeocoder(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		geocoder, country, limit = g, cfg.GeocodeCountry, cfg.GeocodeLimit
	}

	var depotPtr *domain.Coordinates
	if depotSet {
		depotPtr = &domain.Coordinates{Lat: planOpts.depotLat, Lon: planOpts.depotLon}
	}
	depot, err := services.ResolveDepot(ctx, depotPtr, planOpts.depotAddress, country, geocoder)
	if err != nil {
		return err
	}

	resolved, unresolved, err := services.ResolveTargets(ctx, targets, geocoder, services.ResolveOptions{
		Country: country,
		Limit:   limit,
	}, nil)
	if err != nil {
		return err
	}
	for _, t := range unresolved {
		log.Warn().Str("target_id", t.TargetID).Str("name", t.Name).Msg("client could not be located, skipped")
	}

	schedule, err := services.Plan(ctx, services.PlanRequest{
		Targets:     resolved,
		Depot:       depot,
		MaxPerGroup: planOpts.maxPerGroup,
		MinPerGroup: planOpts.minPerGroup,
		Strategy:    strategy,
	})
	if err != nil {
		return err
	}

	if err := writeSchedule(cmd.OutOrStdout(), planOpts.out, schedule); err != nil {
		return err
	}

	sum := schedule.Summary()
	fmt.Fprintf(cmd.ErrOrStderr(), "%d clients over %d days (%d weeks), %.2f km, %d skipped\n",
		sum.TotalClients, sum.Days, sum.Weeks, sum.TotalDistanceKm, len(unresolved))
	return nil
}

func readTargets(path string) ([]domain.VisitTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.ReadTargetsCSV(f)
	case ".json":
		return export.ReadTargetsJSON(f)
	}
	return nil, fmt.Errorf("unsupported file type %q (want .csv or .json)", filepath.Ext(path))
}

// openGeocoder builds the configured geocoder. The SQLite cache lives in
// the server database so both binaries share lookups.
func openGeocoder(ctx context.Context) (ports.Geocoder, func(), *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	closeLocal := func() {}
	var local *sql.DB
	if cfg.GeocodeCache == config.CacheSqlite {
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repositories.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		local = conn
		closeLocal = func() { conn.Close() }
	}

	g, closeGeocoder, err := app.NewGeocoder(ctx, cfg, local)
	if err != nil {
		closeLocal()
		return nil, nil, nil, err
	}
	return g, func() { closeGeocoder(); closeLocal() }, cfg, nil
}

func writeSchedule(stdout io.Writer, path string, s *domain.Schedule) error {
	if path == "-" || path == "" {
		return export.WriteScheduleCSV(stdout, s)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := export.WriteScheduleCSV(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
