// risk-report runs a single risk assessment from the command line and prints
// a summary or writes the sample rows to a file.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/chrissnell/outdoorrisk/internal/analysis"
	"github.com/chrissnell/outdoorrisk/internal/constants"
	"github.com/chrissnell/outdoorrisk/internal/export"
	"github.com/chrissnell/outdoorrisk/internal/log"
	"github.com/chrissnell/outdoorrisk/internal/precipitation"
	"github.com/chrissnell/outdoorrisk/internal/reanalysis"
	"github.com/chrissnell/outdoorrisk/internal/samples"
	"github.com/chrissnell/outdoorrisk/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file (omit to configure from environment)")
	lat := flag.Float64("lat", 0, "Latitude in decimal degrees")
	lon := flag.Float64("lon", 0, "Longitude in decimal degrees")
	date := flag.String("date", "", "Target date (YYYY-MM-DD)")
	hour := flag.Int("hour", 12, "Target local hour (0-23)")
	window := flag.Int("window", 0, "Window in days either side of the target day-of-year")
	format := flag.String("format", "", "Write sample rows instead of a summary: csv or json")
	out := flag.String("out", "", "Output file for -format (default stdout)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("risk-report %s\n", constants.Version)
		os.Exit(0)
	}
	if *date == "" {
		fmt.Fprintln(os.Stderr, "the -date flag is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var provider config.Provider
	if *cfgFile != "" {
		filename, _ := filepath.Abs(*cfgFile)
		provider = config.NewYAMLProvider(filename)
	} else {
		provider = config.NewEnvProvider()
	}
	settings, err := provider.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	httpClient := &http.Client{Timeout: settings.ConnectTimeout() + settings.ReadTimeout()}
	daily := reanalysis.NewClient(settings, httpClient)

	var precipClient *precipitation.Client
	if settings.EnableHalfHourly || settings.EnablePrecipFallback {
		precipClient = precipitation.NewClient(settings, precipitation.NewSimulatedSource(), daily)
	}
	collector := samples.NewCollector(settings, daily, precipClient)

	col, err := collector.Collect(context.Background(), samples.Request{
		Latitude:   *lat,
		Longitude:  *lon,
		TargetDate: *date,
		TargetHour: *hour,
		WindowDays: *window,
	})
	if err != nil {
		log.Fatalf("Sample collection failed: %v", err)
	}

	if *format != "" {
		if err := writeRows(col, settings, *format, *out); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	printSummary(col, settings)
}

func writeRows(col *samples.Collection, settings config.Settings, format, out string) error {
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported format %q: use csv or json", format)
	}

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	rows := export.Rows(col, settings)
	if format == "json" {
		return export.WriteJSON(w, rows)
	}
	return export.WriteCSV(w, rows)
}

func printSummary(col *samples.Collection, settings config.Settings) {
	results, err := analysis.Probabilities(col, settings)
	if err != nil {
		log.Fatalf("Probability computation failed: %v", err)
	}

	fmt.Printf("Location:  (%.4f, %.4f)  timezone %s\n", col.TargetLatitude, col.TargetLongitude, col.Timezone)
	fmt.Printf("Target:    %s at %02d:00 local, ±%d days\n", col.TargetDate.Format("2006-01-02"), col.TargetHour, col.WindowDays)
	fmt.Printf("Samples:   %d across %d/%d years (coverage adequate: %v)\n\n",
		col.TotalSamples, col.YearsWithData, col.TotalYearsRequested, col.CoverageAdequate)

	for _, kind := range analysis.Kinds {
		r := results[kind]
		fmt.Printf("%-10s %6.1f%%   95%% CI [%5.1f%%, %5.1f%%]   (%d/%d samples)\n",
			kind, r.Probability*100, r.CILower*100, r.CIUpper*100, r.PositiveSamples, r.TotalSamples)
	}

	trends := analysis.Trends(col, settings)
	significant := trends[:0:0]
	for _, tr := range trends {
		if tr.Significant {
			significant = append(significant, tr)
		}
	}
	if len(significant) > 0 {
		sort.Slice(significant, func(i, j int) bool { return significant[i].Kind < significant[j].Kind })
		fmt.Println("\nSignificant trends:")
		for _, tr := range significant {
			fmt.Printf("  %-8s slope %+.4f/year (p=%.2f)\n", tr.Kind, tr.Slope, tr.PValue)
		}
	}
}
