// Command tsanomaly-cli loads one or two CSV series and runs the detector
// or correlator pipeline over them from the command line, for local
// experimentation without standing up the HTTP server.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"tsanomaly/internal/correlator"
	"tsanomaly/internal/detector"
	"tsanomaly/internal/ingest"
	"tsanomaly/internal/timeseries"
)

func main() {
	var (
		seriesPath = flag.String("series", "", "path to the primary series CSV (required)")
		otherPath  = flag.String("other", "", "path to a second series CSV; when set, runs correlation instead of detection")
		algorithm  = flag.String("algorithm", detector.DefaultAlgorithmName, "detection algorithm name")
		useScore   = flag.Bool("use-anomaly-score", true, "project both series through the anomaly detector before correlating")
		smooth     = flag.Float64("smooth", 0, "forward/backward EMA smoothing factor applied before running (0 disables)")
		add        = flag.Float64("add", 0, "add this constant to every value before running (0 disables)")
		subtract   = flag.Float64("subtract", 0, "subtract this constant from every value before running (0 disables)")
		multiply   = flag.Float64("multiply", 0, "multiply every value by this constant before running (0 disables)")
		divide     = flag.Float64("divide", 0, "divide every value by this constant before running (0 disables)")
		offset     = flag.Int64("offset", 0, "shift the primary series' timestamps by this amount before running, e.g. to manually test shift recovery against -other")
		stats      = flag.Bool("stats", false, "print summary statistics for the primary series and exit, instead of detecting or correlating")
	)
	flag.Parse()

	if *seriesPath == "" {
		log.Fatal("missing -series")
	}

	series, err := loadSeries(*seriesPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *seriesPath, err)
	}
	series, err = preprocess(series, *smooth, *add, *subtract, *multiply, *divide)
	if err != nil {
		log.Fatalf("preprocessing failed: %v", err)
	}
	if *offset != 0 {
		series.AddOffset(*offset)
	}

	if *stats {
		printJSON(summarize(series))
		return
	}

	if *otherPath == "" {
		runDetect(series, *algorithm)
		return
	}

	other, err := loadSeries(*otherPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *otherPath, err)
	}
	other, err = preprocess(other, *smooth, *add, *subtract, *multiply, *divide)
	if err != nil {
		log.Fatalf("preprocessing failed: %v", err)
	}
	runCorrelate(series, other, *useScore)
}

func loadSeries(path string) (*timeseries.TimeSeries, error) {
	points, err := ingest.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return timeseries.New(points), nil
}

// preprocess applies the optional value-transform flags in a fixed,
// documented order (add, subtract, multiply, divide, smooth) so a user
// combining several of them gets predictable results, e.g. a Fahrenheit
// to Celsius conversion via -subtract 32 -multiply 0.5556.
func preprocess(series *timeseries.TimeSeries, smoothAlpha, add, subtract, multiply, divide float64) (*timeseries.TimeSeries, error) {
	var err error
	if add != 0 {
		if series, err = series.AddScalar(add); err != nil {
			return nil, err
		}
	}
	if subtract != 0 {
		if series, err = series.SubScalar(subtract); err != nil {
			return nil, err
		}
	}
	if multiply != 0 {
		if series, err = series.MulScalar(multiply); err != nil {
			return nil, err
		}
	}
	if divide != 0 {
		if series, err = series.DivScalar(divide); err != nil {
			return nil, err
		}
	}
	if smoothAlpha != 0 {
		series = series.Smooth(smoothAlpha)
	}
	return series, nil
}

type seriesStats struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	P95     float64 `json:"p95"`
	Stdev   float64 `json:"stdev"`
	Sum     float64 `json:"sum"`
}

func summarize(series *timeseries.TimeSeries) seriesStats {
	return seriesStats{
		Count:   series.Len(),
		Min:     series.Min(0),
		Max:     series.Max(0),
		Average: series.Average(0),
		Median:  series.Median(0),
		P95:     series.Percentile(95, 0),
		Stdev:   series.Stdev(0),
		Sum:     series.Sum(0),
	}
}

func runDetect(series *timeseries.TimeSeries, algorithm string) {
	ad := detector.NewAnomalyDetector(series, algorithm, detector.Params{})
	anomalies, err := ad.GetAnomalies()
	if err != nil {
		log.Fatalf("detect failed: %v", err)
	}
	printJSON(anomalies)
}

func runCorrelate(a, b *timeseries.TimeSeries, useAnomalyScore bool) {
	c := correlator.NewCorrelator(a, b, useAnomalyScore, "")
	result, err := c.Correlate(nil)
	if err != nil {
		log.Fatalf("correlate failed: %v", err)
	}
	printJSON(result)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("failed to encode output: %v", err)
	}
}
