package domain

// RankingEntry is one row of the contest ranking listing: a participant's
// total points over a day range. Daily score storage is owned by the contest
// admins; the service only aggregates and lists.
type RankingEntry struct {
	ParticipantID string `json:"participantId"`
	Nick          string `json:"nick"`
	Points        int    `json:"points"`
	Days          int    `json:"days"`
}
