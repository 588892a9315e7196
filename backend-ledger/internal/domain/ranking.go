package domain

// RankingEntry is one line of a leaderboard
type RankingEntry struct {
	Rank          int64   `json:"rank"`
	ParticipantID string  `json:"userId"`
	Pseudo        string  `json:"pseudo"`
	Score         float64 `json:"score"`
}

// SeasonStanding is a participant's position on the season board
type SeasonStanding struct {
	RankingEntry
	TotalPlayers int64 `json:"totalPlayers"`
}
