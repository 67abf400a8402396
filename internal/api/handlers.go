package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tsanomaly/internal/correlator"
	"tsanomaly/internal/detector"
	"tsanomaly/internal/errs"
	"tsanomaly/internal/rootcause"
	"tsanomaly/internal/timeseries"

	"github.com/gin-gonic/gin"
)

// putSeriesRequest is the JSON body PUT /series/:name accepts: a raw
// timestamp->value mapping, the same shape the CSV loader produces.
type putSeriesRequest struct {
	Points map[int64]float64 `json:"points" binding:"required"`
}

func (s *Server) listSeries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"series": s.store.Names()})
}

func (s *Server) putSeries(c *gin.Context) {
	name := c.Param("name")

	var req putSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.store.Put(name, timeseries.New(req.Points))
	c.JSON(http.StatusOK, gin.H{"name": name, "points": len(req.Points)})
}

// detectRequest carries the optional algorithm override for POST .../detect;
// an empty Algorithm uses the server's configured DefaultAlgorithm.
type detectRequest struct {
	Algorithm string `json:"algorithm"`
}

func (s *Server) detect(c *gin.Context) {
	name := c.Param("name")
	series, err := s.store.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req detectRequest
	_ = c.ShouldBindJSON(&req)
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = s.cfg.DefaultAlgorithm
	}

	start := time.Now()
	ad := detector.NewAnomalyDetector(series, algorithm, detector.Params{})
	ad.ScorePercentThreshold = s.cfg.ScorePercentThreshold

	anomalies, err := ad.GetAnomalies()
	detectDuration.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
	if err != nil {
		detectRequests.WithLabelValues(algorithm, "error").Inc()
		s.writeDetectorError(c, err)
		return
	}

	detectRequests.WithLabelValues(algorithm, "ok").Inc()
	anomaliesFound.WithLabelValues(name).Add(float64(len(anomalies)))

	c.JSON(http.StatusOK, gin.H{
		"series":    name,
		"algorithm": algorithm,
		"anomalies": anomalies,
	})
}

func (s *Server) correlate(c *gin.Context) {
	name, other := c.Param("name"), c.Param("other")

	series, err := s.store.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	relatedSeries, err := s.store.Get(other)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var window *correlator.Window
	if startStr, endStr := c.Query("start"), c.Query("end"); startStr != "" && endStr != "" {
		start, end, err := parseWindow(startStr, endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		window = &correlator.Window{Start: start, End: end}
	}

	cr := correlator.NewCorrelator(series, relatedSeries, true, "")
	result, err := cr.Correlate(window)
	if err != nil {
		s.writeDetectorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"series":  name,
		"other":   other,
		"result":  result,
	})
}

func (s *Server) rootcauseHandler(c *gin.Context) {
	name := c.Param("name")
	target, err := s.store.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var related []rootcause.Related
	for _, other := range s.store.Names() {
		if other == name {
			continue
		}
		ts, err := s.store.Get(other)
		if err != nil {
			continue
		}
		related = append(related, rootcause.Related{Name: other, Series: ts})
	}

	findings, err := s.rca.Analyze(name, target, related)
	if err != nil {
		s.writeDetectorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"series":   name,
		"findings": findings,
	})
}

// writeDetectorError maps the shared errs sentinel kinds to HTTP status
// codes; anything else surfaces as a 500.
func (s *Server) writeDetectorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotEnoughDataPoints):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrAlgorithmNotFound), errors.Is(err, errs.ErrRequiredParametersNotPassed), errors.Is(err, errs.ErrInvalidDataFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseWindow(startStr, endStr string) (int64, int64, error) {
	start, err := parseEpoch(startStr)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseEpoch(endStr)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseEpoch(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
