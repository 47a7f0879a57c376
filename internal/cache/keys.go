package cache

import "fmt"

const keyPrefix = "quiz"

// LeaderboardKey is the cache key of one leaderboard page.
func LeaderboardKey(examID uint, limit int) string {
	return fmt.Sprintf("%s:leaderboard:%d:%d", keyPrefix, examID, limit)
}

// LeaderboardPattern matches every cached page of an exam's leaderboard.
func LeaderboardPattern(examID uint) string {
	return fmt.Sprintf("%s:leaderboard:%d:*", keyPrefix, examID)
}

// AllLeaderboardsPattern matches every cached leaderboard.
func AllLeaderboardsPattern() string {
	return keyPrefix + ":leaderboard:*"
}
