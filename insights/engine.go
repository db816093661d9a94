/*
engine.go - Detection engine

PURPOSE:
  Owns the fixed detector registry and the run loop: pre-aggregate the
  daily rollup, run every detector inside an isolated error boundary,
  and return findings ordered by severity (stable within a severity).

DESIGN:
  The registry is an explicit sequence built at construction - no
  reflection, no directory scanning. Rules are injected, not loaded ad
  hoc, so tests can exercise any threshold without touching disk. A
  panicking detector is logged and skipped; its peers still run, and the
  caller can always distinguish "no findings" from "could not run".
*/
package insights

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/fieldpulse/finance-engine/dataset"
)

// Engine runs the detector registry over a dataset.
type Engine struct {
	rules     Rules
	detectors []Detector
	logger    *logrus.Logger
}

// NewEngine builds an engine with the given rules and registry. Passing
// no detectors installs the default catalog.
func NewEngine(rules Rules, logger *logrus.Logger, detectors ...Detector) *Engine {
	if len(detectors) == 0 {
		detectors = DefaultDetectors()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{rules: rules.normalized(), detectors: detectors, logger: logger}
}

// Rules returns the normalized rules the engine runs with.
func (e *Engine) Rules() Rules { return e.rules }

// Generate runs every detector and returns findings sorted by severity
// descending. Equal severities keep detector-emission order.
func (e *Engine) Generate(ds *dataset.Dataset) []Insight {
	ctx := &Context{Daily: BuildDailyRollup(ds)}

	var all []Insight
	for _, det := range e.detectors {
		all = append(all, e.runDetector(det, ds, ctx)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Severity.rank() > all[j].Severity.rank()
	})
	return all
}

// runDetector contains one detector's failure to itself.
func (e *Engine) runDetector(det Detector, ds *dataset.Dataset, ctx *Context) (out []Insight) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"detector": det.Code(),
				"panic":    r,
			}).Error("detector aborted; continuing with peers")
			out = nil
		}
	}()
	return det.Detect(ds, e.rules, ctx)
}
