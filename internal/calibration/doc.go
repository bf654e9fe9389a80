// Package calibration implements the adaptive orphan calibrator: a
// Welford running mean/variance over observed catalog_shift values, and
// the NotebookConfig policy that resolves an effective orphan threshold
// from it.
package calibration
