package schedule

// FindConflict checks a candidate window against a doctor's existing rules.
//
// Only non-recurring rules on the candidate's date take part; recurring candidates are
// never checked. A rule with the candidate's ID is the row being edited and is skipped.
// A conflict is an overlapping window or an identical start time.
func FindConflict(candidate Rule, existing []Rule) (Rule, bool) {
	if candidate.Recurring {
		return Rule{}, false
	}

	for _, r := range existing {
		if r.Recurring || r.ID == candidate.ID {
			continue
		}
		if !SameDay(r.Validity.From, candidate.Validity.From) {
			continue
		}
		if r.Window.Start == candidate.Window.Start || r.Window.Overlaps(candidate.Window) {
			return r, true
		}
	}
	return Rule{}, false
}
