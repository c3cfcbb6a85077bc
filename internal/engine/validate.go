package engine

import (
	"context"

	"github.com/Mschirtzinger/tcsync/internal/scan"
)

// Report is the outcome of Validate.
type Report struct {
	Dir     string
	Cases   int
	Skipped []scan.Skipped
}

// Validate scans dir, or the root when dir is empty, and checks the graph
// formed by the cases found. Files that fail to parse are listed in the
// report and do not fail validation. The report is returned alongside any
// structural error.
func (s *Session) Validate(ctx context.Context, dir string) (*Report, error) {
	if dir == "" {
		dir = s.Root
	}
	if err := canceled(ctx); err != nil {
		return nil, err
	}

	res, err := s.scan(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{Dir: dir, Cases: len(res.Entries), Skipped: res.Skipped}
	if err := checkCases(res.Cases()); err != nil {
		return report, err
	}

	s.logger().Info("validated test cases", "dir", dir, "cases", report.Cases, "skipped", len(report.Skipped))
	return report, nil
}
