package api

import (
	"context"
	"log"

	"tsanomaly/internal/detector"
	"tsanomaly/internal/notify"

	"github.com/robfig/cron/v3"
)

// Rescorer periodically re-runs detection over every series currently held
// in the store, the way the teacher's monitoring engine re-checks every
// registered target on its own cron schedule, pushing anything it finds
// through the configured notification channels.
type Rescorer struct {
	store     *Store
	algorithm string
	threshold float64
	cron      *cron.Cron
	notifier  *notify.Notifier
	channels  []string
}

// NewRescorer builds a Rescorer against store, using algorithm and
// scorePercentThreshold for every run. A nil notifier or empty channels
// list disables alert delivery; anomalies are still logged either way.
func NewRescorer(store *Store, algorithm string, scorePercentThreshold float64, notifier *notify.Notifier, channels []string) *Rescorer {
	return &Rescorer{
		store:     store,
		algorithm: algorithm,
		threshold: scorePercentThreshold,
		cron:      cron.New(),
		notifier:  notifier,
		channels:  channels,
	}
}

// Start schedules rescoreAll on spec (a standard cron expression, e.g.
// "@every 1m") and starts the cron's own goroutine.
func (r *Rescorer) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.rescoreAll); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight run to finish.
func (r *Rescorer) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Rescorer) rescoreAll() {
	for _, name := range r.store.Names() {
		series, err := r.store.Get(name)
		if err != nil {
			continue
		}

		ad := detector.NewAnomalyDetector(series, r.algorithm, detector.Params{})
		ad.ScorePercentThreshold = r.threshold

		anomalies, err := ad.GetAnomalies()
		if err != nil {
			log.Printf("rescore %s: %v", name, err)
			continue
		}
		if len(anomalies) == 0 {
			continue
		}
		log.Printf("rescore %s: %d anomalies", name, len(anomalies))
		r.notify(name, anomalies)
	}
}

// notify sends the series' worst anomaly of this run through the
// configured channels; a missing notifier or channel list is a no-op.
func (r *Rescorer) notify(series string, anomalies []detector.Anomaly) {
	if r.notifier == nil || len(r.channels) == 0 {
		return
	}
	worst := anomalies[0]
	for _, a := range anomalies[1:] {
		if a.AnomalyScore > worst.AnomalyScore {
			worst = a
		}
	}
	alert := notify.FromAnomaly(series, r.algorithm, worst)
	if err := r.notifier.Send(context.Background(), alert, r.channels); err != nil {
		log.Printf("rescore %s: notify failed: %v", series, err)
	}
}
