// Package rootcause implements the "first correlation is the cause"
// heuristic: for each anomaly found in a target series, widen the window
// around it until enough data is present, then correlate against every
// related series in that window.
package rootcause

import (
	"errors"
	"sync"
	"time"

	"tsanomaly/internal/correlator"
	"tsanomaly/internal/detector"
	"tsanomaly/internal/errs"
	"tsanomaly/internal/timeseries"
)

// minWindowRoom is the fallback half-window width used when an anomaly's
// own interval collapses to a single point (room would otherwise be 0).
const minWindowRoom = 30

// Related names one candidate cause series to correlate the target
// against.
type Related struct {
	Name   string
	Series *timeseries.TimeSeries
}

// Finding is one anomaly on the target series together with the
// correlation result against every related series that had enough
// overlapping data in the anomaly's window.
type Finding struct {
	Anomaly        detector.Anomaly
	WindowStart    int64
	WindowEnd      int64
	Correlations   map[string]*correlator.Result
}

// Analyzer runs the RCA pipeline for one target series and caches results
// per target name for a TTL, so repeated requests for the same target
// within a poll interval don't re-run detection from scratch.
type Analyzer struct {
	AlgorithmName string

	mu       sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
}

type cacheEntry struct {
	findings []Finding
	expires  time.Time
}

// NewAnalyzer builds an Analyzer with the given result cache TTL. A zero
// ttl disables caching.
func NewAnalyzer(algorithmName string, ttl time.Duration) *Analyzer {
	a := &Analyzer{
		AlgorithmName: algorithmName,
		cache:         make(map[string]cacheEntry),
		cacheTTL:      ttl,
	}
	if ttl > 0 {
		go a.cleanupRoutine()
	}
	return a
}

// Analyze finds anomalies in target and, for each, correlates against
// every entry in related within a window widened around the anomaly until
// it has at least two points. Series that end up with too little data to
// correlate are skipped rather than failing the whole analysis.
func (a *Analyzer) Analyze(targetName string, target *timeseries.TimeSeries, related []Related) ([]Finding, error) {
	if cached, ok := a.fromCache(targetName); ok {
		return cached, nil
	}

	ad := detector.NewAnomalyDetector(target, a.AlgorithmName, detector.Params{})
	anomalies, err := ad.GetAnomalies()
	if err != nil {
		return nil, err
	}

	findings := make([]Finding, 0, len(anomalies))
	for _, anomaly := range anomalies {
		start, end := widenWindow(target, anomaly.StartTimestamp, anomaly.EndTimestamp)

		correlations := make(map[string]*correlator.Result)
		for _, rel := range related {
			c := correlator.NewCorrelator(target, rel.Series, true, "")
			result, err := c.Correlate(&correlator.Window{Start: start, End: end})
			if err != nil {
				if errors.Is(err, errs.ErrNotEnoughDataPoints) {
					continue
				}
				continue
			}
			correlations[rel.Name] = result
		}

		findings = append(findings, Finding{
			Anomaly:      anomaly,
			WindowStart:  start,
			WindowEnd:    end,
			Correlations: correlations,
		})
	}

	a.store(targetName, findings)
	return findings, nil
}

// widenWindow grows [start, end] by half its own width (or minWindowRoom
// when that width is zero) until the target series has at least two
// points inside it.
func widenWindow(target *timeseries.TimeSeries, start, end int64) (int64, int64) {
	room := (end - start) / 2
	if room == 0 {
		room = minWindowRoom
	}
	extStart, extEnd := start-room, end+room
	for {
		cropped, err := target.Crop(extStart, extEnd)
		if err == nil && cropped.Len() >= 2 {
			return extStart, extEnd
		}
		extStart -= room
		extEnd += room
	}
}

func (a *Analyzer) fromCache(name string) ([]Finding, bool) {
	if a.cacheTTL == 0 {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.cache[name]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.findings, true
}

func (a *Analyzer) store(name string, findings []Finding) {
	if a.cacheTTL == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache[name] = cacheEntry{findings: findings, expires: time.Now().Add(a.cacheTTL)}
}

func (a *Analyzer) cleanupRoutine() {
	ticker := time.NewTicker(a.cacheTTL)
	defer ticker.Stop()
	for range ticker.C {
		a.cleanup()
	}
}

func (a *Analyzer) cleanup() {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now()
	for name, entry := range a.cache {
		if now.After(entry.expires) {
			delete(a.cache, name)
		}
	}
}
