package services

// ScoringSide is which goal counter a player's club feeds in a match.
type ScoringSide string

const (
	SideHome ScoringSide = "home"
	SideAway ScoringSide = "away"
	SideNone ScoringSide = ""
)

// ResolveScoringSide maps a player's club onto a match side. SideNone means
// the club plays in neither slot (or a slot is still unassigned), which the
// caller must treat as absent, not as a default.
func ResolveScoringSide(playerClubID string, matchClubHomeID, matchClubAwayID *string) ScoringSide {
	if matchClubHomeID == nil || matchClubAwayID == nil {
		return SideNone
	}
	if playerClubID == *matchClubHomeID {
		return SideHome
	}
	if playerClubID == *matchClubAwayID {
		return SideAway
	}
	return SideNone
}
