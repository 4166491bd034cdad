// Command fvicalc computes the Flood Vulnerability Index for one place and
// prints a summary followed by the input snapshot.
//
// Usage:
//
//	go run ./cmd/fvicalc -place Dehradun
//	go run ./cmd/fvicalc -coords 29.9457,78.1642
//	go run ./cmd/fvicalc -place Haridwar -json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/couchcryptid/flood-vulnerability-service/internal/app"
	"github.com/couchcryptid/flood-vulnerability-service/internal/config"
	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

func main() {
	place := flag.String("place", "", "district name from the lookup table")
	coords := flag.String("coords", "", "coordinates as lat,lon")
	asJSON := flag.Bool("json", false, "print the full result as JSON")
	flag.Parse()

	if err := run(*place, *coords, *asJSON, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "fvicalc:", err)
		os.Exit(1)
	}
}

func run(place, coords string, asJSON bool, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The calculator prints its own report; keep service logs out of the way.
	cfg.LogLevel = "error"
	cfg.LogFormat = "text"
	cfg.KafkaEnabled = false
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, observability.NewMetricsForTesting(), logger)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // best-effort on exit

	var result domain.Result
	switch {
	case place != "":
		d, err := a.Districts.Resolve(place)
		if err != nil {
			return fmt.Errorf("%w; known districts: %s", err, districtNames(a.Districts))
		}
		result = a.Calculator.CalculateDistrict(ctx, d)
	case coords != "":
		lat, lon, err := parseCoords(coords)
		if err != nil {
			return err
		}
		result = a.Calculator.Calculate(ctx, lat, lon, nil)
	default:
		return errors.New("one of -place or -coords is required")
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printSummary(out, result)
}

func parseCoords(s string) (float64, float64, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid coordinates %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonStr)
	}
	return lat, lon, nil
}

func districtNames(t *domain.DistrictTable) string {
	var names []string
	for _, d := range t.All() {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}

func printSummary(out io.Writer, r domain.Result) error {
	name := r.District
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", r.Location.Latitude, r.Location.Longitude)
	}

	fmt.Fprintf(out, "Flood Vulnerability Index: %s\n", name)
	fmt.Fprintf(out, "  FVI score:   %.2f / 100\n", r.FVIScore)
	fmt.Fprintf(out, "  Risk level:  %s\n", r.RiskLevel)
	fmt.Fprintf(out, "  Inference:   %s\n", r.Inference)
	if len(r.Fallbacks) > 0 {
		fmt.Fprintf(out, "  Defaults:    %s\n", strings.Join(r.Fallbacks, ", "))
	}
	fmt.Fprintln(out, "  Key factors:")
	for _, f := range r.KeyFactors {
		fmt.Fprintf(out, "    - %s\n", f)
	}

	fmt.Fprintln(out, "\nInputs:")
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Inputs)
}
