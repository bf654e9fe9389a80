// Package entropy implements the integration-cost engine: for each
// prospective write it diffs a notebook's coherence snapshot before and
// after a tentative admission and emits a four-component IntegrationCost.
package entropy
