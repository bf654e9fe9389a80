package calibration

import "github.com/coherentnotebook/entropy/internal/notebook"

// NotebookConfig selects the effective orphan threshold for a notebook:
// an explicit OrphanThreshold overrides everything; otherwise, if
// AutoCalibrate is set, the calibrator's computed threshold is used;
// otherwise FallbackThreshold applies directly.
//
// This mirrors the external configuration surface in full, rather than
// folding MinObservations/FallbackThreshold only into the calibrator as
// the source implementation does; see DESIGN.md.
type NotebookConfig struct {
	OrphanThreshold   *float64
	AutoCalibrate     bool
	MinObservations   uint64
	FallbackThreshold float64
}

// DefaultNotebookConfig returns the spec's documented defaults:
// auto_calibrate=true, min_observations=10, fallback_threshold=0.7.
func DefaultNotebookConfig() NotebookConfig {
	return NotebookConfig{
		AutoCalibrate:     true,
		MinObservations:   DefaultMinObservations,
		FallbackThreshold: DefaultFallbackThreshold,
	}
}

// NewCalibrator builds a Calibrator honoring this config's
// MinObservations/FallbackThreshold.
func (cfg NotebookConfig) NewCalibrator() *Calibrator {
	return NewWithSettings(cfg.MinObservations, cfg.FallbackThreshold)
}

// EffectiveThreshold resolves the threshold to classify orphans against,
// given the calibrator tracking this notebook's catalog_shift history.
func (cfg NotebookConfig) EffectiveThreshold(c *Calibrator) float64 {
	if cfg.OrphanThreshold != nil {
		return *cfg.OrphanThreshold
	}
	if cfg.AutoCalibrate {
		return c.ComputeThreshold()
	}
	return cfg.FallbackThreshold
}

// IsOrphan returns true if cost.Orphan is already set (honoring the
// engine's semantic classification of a reference-less fresh singleton)
// or if cost.CatalogShift exceeds the effective threshold.
func IsOrphan(cost notebook.IntegrationCost, threshold float64) bool {
	return cost.Orphan || cost.CatalogShift > threshold
}
