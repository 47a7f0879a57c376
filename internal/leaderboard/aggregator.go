package leaderboard

import (
	"sort"

	"github.com/binhtph/quiz-app/internal/models"
)

// Entry is one ranked row: a learner's best attempt on an exam.
type Entry struct {
	UserName   string `json:"user_name"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	TimeTaken  int    `json:"time_taken"`
	Attempts   int    `json:"attempts"`
	Percentage int    `json:"percentage"`
}

// Record is the best (score, time) pair for an exam.
type Record struct {
	UserName  string `json:"user_name"`
	Score     int    `json:"score"`
	TimeTaken int    `json:"time_taken"`
}

// Candidate is a freshly graded submission awaiting record comparison.
type Candidate struct {
	UserName  string
	Score     int
	TimeTaken int
}

// Beats reports whether (score, time) outranks the record: higher score, or
// equal score in less time.
func (r Record) Beats(score, timeTaken int) bool {
	return score > r.Score || (score == r.Score && timeTaken < r.TimeTaken)
}

// BestPerUser collapses results to one row per named learner, ranked by score
// descending then time ascending. Anonymous results are skipped. limit <= 0
// returns every row.
func BestPerUser(results []models.Result, limit int) []Entry {
	byUser := make(map[string]*Entry)
	order := make([]string, 0)

	for i := range results {
		r := &results[i]
		name := r.Name()
		if name == "" {
			continue
		}

		entry, ok := byUser[name]
		if !ok {
			entry = &Entry{UserName: name, Score: r.Score, Total: r.Total, TimeTaken: r.TimeTaken}
			byUser[name] = entry
			order = append(order, name)
		} else if better(r.Score, r.TimeTaken, entry.Score, entry.TimeTaken) {
			entry.Score, entry.Total, entry.TimeTaken = r.Score, r.Total, r.TimeTaken
		}
		entry.Attempts++
	}

	entries := make([]Entry, 0, len(order))
	for _, name := range order {
		entry := byUser[name]
		entry.Percentage = models.Percentage(entry.Score, entry.Total)
		entries = append(entries, *entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TimeTaken != b.TimeTaken {
			return a.TimeTaken < b.TimeTaken
		}
		return a.UserName < b.UserName
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// CurrentRecord returns the best named result, if any.
func CurrentRecord(results []models.Result) (Record, bool) {
	var (
		best  Record
		found bool
	)
	for i := range results {
		r := &results[i]
		if r.Name() == "" {
			continue
		}
		if !found || better(r.Score, r.TimeTaken, best.Score, best.TimeTaken) {
			best = Record{UserName: r.Name(), Score: r.Score, TimeTaken: r.TimeTaken}
			found = true
		}
	}
	return best, found
}

// IsNewRecord decides whether c sets a new all-time record over prior.
// Anonymous and zero-score submissions never qualify.
func IsNewRecord(prior []models.Result, c Candidate) bool {
	if c.UserName == "" || c.Score <= 0 {
		return false
	}
	record, ok := CurrentRecord(prior)
	if !ok {
		return true
	}
	return record.Beats(c.Score, c.TimeTaken)
}

func better(score, timeTaken, bestScore, bestTime int) bool {
	return Record{Score: bestScore, TimeTaken: bestTime}.Beats(score, timeTaken)
}
