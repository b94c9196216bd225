package report

// Stats counts the leaves of a report tree by outcome.
type Stats struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	TimedOut int `json:"timed_out"`
}

// Stats walks r and counts its leaves.
func (r *Report) Stats() Stats {
	var s Stats

	for _, leaf := range r.Leaves() {
		s.Total++

		switch leaf.Kind {
		case KindSuccess:
			s.Passed++
		case KindFailure:
			s.Failed++

			if leaf.Failure == FailureTimeout {
				s.TimedOut++
			}
		case KindSkipped:
			s.Skipped++
		}
	}

	return s
}
