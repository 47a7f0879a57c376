package leaderboard

import (
	"testing"

	"github.com/binhtph/quiz-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(name string, score, total, timeTaken int) models.Result {
	r := models.Result{Score: score, Total: total, TimeTaken: timeTaken}
	if name != "" {
		r.UserName = &name
	}
	return r
}

func TestIsNewRecord(t *testing.T) {
	prior := []models.Result{result("alice", 5, 10, 100)}

	tests := []struct {
		name      string
		candidate Candidate
		want      bool
	}{
		{"same score faster", Candidate{UserName: "bob", Score: 5, TimeTaken: 90}, true},
		{"same score slower", Candidate{UserName: "bob", Score: 5, TimeTaken: 110}, false},
		{"same score same time", Candidate{UserName: "bob", Score: 5, TimeTaken: 100}, false},
		{"higher score slower", Candidate{UserName: "bob", Score: 6, TimeTaken: 200}, true},
		{"lower score faster", Candidate{UserName: "bob", Score: 4, TimeTaken: 1}, false},
		{"anonymous never counts", Candidate{Score: 9, TimeTaken: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNewRecord(prior, tt.candidate))
		})
	}
}

func TestIsNewRecord_NoPriorResults(t *testing.T) {
	assert.True(t, IsNewRecord(nil, Candidate{UserName: "alice", Score: 1, TimeTaken: 30}))
	assert.False(t, IsNewRecord(nil, Candidate{UserName: "alice", Score: 0, TimeTaken: 30}))
}

func TestIsNewRecord_IgnoresAnonymousPriors(t *testing.T) {
	prior := []models.Result{result("", 10, 10, 5)}
	assert.True(t, IsNewRecord(prior, Candidate{UserName: "carol", Score: 3, TimeTaken: 60}))
}

func TestCurrentRecord_TieBreaksOnTime(t *testing.T) {
	results := []models.Result{
		result("alice", 8, 10, 120),
		result("bob", 8, 10, 95),
		result("carol", 7, 10, 30),
	}

	record, ok := CurrentRecord(results)
	require.True(t, ok)
	assert.Equal(t, Record{UserName: "bob", Score: 8, TimeTaken: 95}, record)

	_, ok = CurrentRecord([]models.Result{result("", 3, 3, 1)})
	assert.False(t, ok)
}

func TestBestPerUser(t *testing.T) {
	results := []models.Result{
		result("alice", 6, 10, 200),
		result("bob", 8, 10, 150),
		result("alice", 8, 10, 120),
		result("alice", 8, 10, 140),
		result("", 10, 10, 10),
		result("carol", 8, 10, 120),
	}

	entries := BestPerUser(results, 0)

	require.Len(t, entries, 3)
	assert.Equal(t, Entry{UserName: "alice", Score: 8, Total: 10, TimeTaken: 120, Attempts: 3, Percentage: 80}, entries[0])
	assert.Equal(t, "carol", entries[1].UserName)
	assert.Equal(t, "bob", entries[2].UserName)
	assert.Equal(t, 1, entries[2].Attempts)
}

func TestBestPerUser_Limit(t *testing.T) {
	results := []models.Result{
		result("a", 1, 3, 10),
		result("b", 2, 3, 10),
		result("c", 3, 3, 10),
	}

	entries := BestPerUser(results, 2)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].UserName)
	assert.Equal(t, "b", entries[1].UserName)

	assert.Empty(t, BestPerUser(nil, 10))
}
