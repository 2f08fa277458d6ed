package draft

// CalculateDraftPosition maps an overall 1-based pick number to the 1-based
// draft slot due to pick in a snake draft of totalTeams teams
func CalculateDraftPosition(pick, totalTeams int) int {
	if totalTeams <= 0 || pick <= 0 {
		return 0
	}
	inRound := (pick-1)%totalTeams + 1
	if RoundFor(pick, totalTeams)%2 == 0 {
		return totalTeams + 1 - inRound
	}
	return inRound
}

// RoundFor returns the 1-based round of an overall pick number
func RoundFor(pick, totalTeams int) int {
	if totalTeams <= 0 || pick <= 0 {
		return 0
	}
	return (pick-1)/totalTeams + 1
}

// PickInRound returns the 1-based position of the pick within its round
func PickInRound(pick, totalTeams int) int {
	if totalTeams <= 0 || pick <= 0 {
		return 0
	}
	return (pick-1)%totalTeams + 1
}
