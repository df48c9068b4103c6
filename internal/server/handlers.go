package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TomTonic/abcalc"
)

const (
	kindSignificance = "significance"
	kindSampleSize   = "samplesize"

	maxBodyBytes = 1 << 20
)

// SignificanceRequest is the body of POST /api/v1/significance. Samples and Seed fall back to
// the server configuration when zero.
type SignificanceRequest struct {
	abcalc.Input
	Tail           abcalc.Tail `json:"tail"`
	Samples        uint64      `json:"samples,omitempty"`
	Seed           uint64      `json:"seed,omitempty"`
	LiftThresholds []float64   `json:"lift_thresholds,omitempty"`
	BootstrapReps  uint64      `json:"bootstrap_reps,omitempty"`
}

type SignificanceResponse struct {
	CalculationID string `json:"calculation_id"`
	*abcalc.Report
}

type SampleSizeResponse struct {
	CalculationID string `json:"calculation_id"`
	abcalc.SizingResult
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignificance(w http.ResponseWriter, r *http.Request) {
	var req SignificanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, kindSignificance, err)
		return
	}

	samples := req.Samples
	if samples == 0 {
		samples = s.cfg.Bayes.Samples
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.cfg.Bayes.Seed
	}
	if err := s.checkBudget("samples", samples); err != nil {
		s.fail(w, kindSignificance, err)
		return
	}
	reps := req.BootstrapReps
	if reps == 0 && len(req.LiftThresholds) > 0 {
		reps = abcalc.DefaultBootstrapReps
	}
	if err := s.checkBudget("bootstrap_reps", reps); err != nil {
		s.fail(w, kindSignificance, err)
		return
	}

	start := time.Now()
	report, err := abcalc.Analyze(req.Input, abcalc.Options{
		Tail:           req.Tail,
		Bayes:          abcalc.BayesOptions{Samples: samples, Seed: seed},
		LiftThresholds: req.LiftThresholds,
		BootstrapReps:  reps,
	})
	s.metrics.calculationDuration.WithLabelValues(kindSignificance).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(w, kindSignificance, err)
		return
	}

	id := uuid.NewString()
	s.metrics.calculationsTotal.WithLabelValues(kindSignificance, "ok").Inc()
	s.metrics.monteCarloSamples.Add(float64(report.Bayesian.Samples))
	s.metrics.significantResults.WithLabelValues(report.Frequentist.Tail.String(), strconv.FormatBool(report.Frequentist.Significant)).Inc()
	s.logger.Info("significance calculated",
		zap.String("calculation_id", id),
		zap.Float64("p_value", report.Frequentist.PValue),
		zap.Bool("significant", report.Frequentist.Significant),
		zap.Float64("p_variant_wins", report.Bayesian.ProbabilityVariantWins),
		zap.Uint64("seed", report.Bayesian.Seed),
		zap.Duration("elapsed", report.Elapsed),
	)
	respondJSON(w, http.StatusOK, SignificanceResponse{CalculationID: id, Report: report})
}

func (s *Server) handleSampleSize(w http.ResponseWriter, r *http.Request) {
	var params abcalc.SizingParams
	if err := decodeJSON(w, r, &params); err != nil {
		s.fail(w, kindSampleSize, err)
		return
	}
	if params.ZMethod == "" {
		params.ZMethod = s.cfg.Sizing.ZMethod
	}

	start := time.Now()
	res, err := abcalc.SampleSize(params)
	s.metrics.calculationDuration.WithLabelValues(kindSampleSize).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(w, kindSampleSize, err)
		return
	}

	id := uuid.NewString()
	s.metrics.calculationsTotal.WithLabelValues(kindSampleSize, "ok").Inc()
	s.logger.Info("sample size calculated",
		zap.String("calculation_id", id),
		zap.Int64("per_arm", res.SampleSizePerArm),
		zap.Int64("weeks", res.EstimatedWeeks),
	)
	respondJSON(w, http.StatusOK, SampleSizeResponse{CalculationID: id, SizingResult: res})
}

func (s *Server) checkBudget(field string, n uint64) error {
	if limit := s.cfg.Server.MaxSamples; limit > 0 && n > limit {
		return fmt.Errorf("%w: %s %d exceeds the limit of %d", abcalc.ErrInvalidInput, field, n, limit)
	}
	return nil
}

// fail maps invalid input to 400 and everything else to 500.
func (s *Server) fail(w http.ResponseWriter, kind string, err error) {
	if errors.Is(err, abcalc.ErrInvalidInput) {
		s.metrics.calculationsTotal.WithLabelValues(kind, "invalid").Inc()
		s.logger.Debug("rejected request", zap.String("kind", kind), zap.Error(err))
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.calculationsTotal.WithLabelValues(kind, "error").Inc()
	s.logger.Error("calculation failed", zap.String("kind", kind), zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads a single JSON object. Malformed bodies and unknown fields are reported as
// invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, abcalc.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: malformed request body: %v", abcalc.ErrInvalidInput, err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
