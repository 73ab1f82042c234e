package ledger

// Summary aggregates a user's votes.
type Summary struct {
	Total    int `json:"total"`
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`

	// Satisfaction is likes / total * 100, or 0 without votes.
	Satisfaction float64 `json:"satisfaction"`
}

// Summary computes vote counts for user.
func (l *Ledger) Summary(user string) (Summary, error) {
	entries, err := l.ListForUser(user)
	if err != nil {
		return Summary{}, err
	}
	return summarize(entries), nil
}

func summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.Vote {
		case Like:
			s.Likes++
		case Dislike:
			s.Dislikes++
		default:
			continue
		}
		s.Total++
	}
	if s.Total > 0 {
		s.Satisfaction = float64(s.Likes) / float64(s.Total) * 100
	}
	return s
}
