package strategy

import (
	"math"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/fixtures"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/minutes"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

const (
	fullPenalty    = -200.0
	luxuryPenalty  = -40.0
	gkDeferred     = -500.0
	gkBackup       = -300.0
	gkWindow       = 30.0
	gkUrgent       = 50.0
	gkWindowOpens  = 10
	gkWindowCloses = 13
)

var scarcityMultipliers = map[models.Position]float64{
	models.PositionForward:    1.2,
	models.PositionGoalkeeper: 1.1,
	models.PositionMidfield:   0.9,
	models.PositionDefense:    0.85,
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// CalculatePositionNeedScore rewards filling open slots and penalises full
// or luxury positions, scaled by how far into the draft we are
func CalculatePositionNeedScore(pos models.Position, a RosterAnalysis, totalRounds int) float64 {
	need, ok := a.Needs[pos]
	if !ok {
		return 0
	}
	if a.Round <= 2 {
		switch {
		case need.IsFull:
			return fullPenalty
		case need.Urgency >= 0.8 && need.Count == 0:
			return 10
		}
		return 0
	}

	score := need.Urgency * 60
	if need.Count == 0 && need.Needed > 0 {
		if pos == models.PositionGoalkeeper {
			score += 10
		} else {
			score += 25
		}
	}
	if a.TotalNeeded >= a.RoundsRemaining && need.Needed > 0 {
		score *= 1.5
	}
	switch {
	case need.IsFull:
		score += fullPenalty
	case need.IsLuxury:
		score += luxuryPenalty
	}
	return score * NeedWeight(a.Round, totalRounds)
}

// CalculateScarcityBonus is higher when few same-position players are
// within 90% of the candidate's points
func CalculateScarcityBonus(p *models.Player, available []models.Player, round int) float64 {
	if p.HistoricalPoints <= 0 {
		return 0
	}
	threshold := p.HistoricalPoints * 0.9
	total, near := 0, 0
	for i := range available {
		o := &available[i]
		if o.Position != p.Position || o.ID == p.ID {
			continue
		}
		total++
		if o.HistoricalPoints >= threshold {
			near++
		}
	}
	fraction := 0.0
	if total > 0 {
		fraction = float64(near) / float64(total)
	}

	roundMult := 1.0
	switch {
	case round <= 2:
		roundMult = 0.3
	case round <= 4:
		roundMult = 0.7
	}
	return (1 - fraction) * 20 * scarcityMultipliers[p.Position] * roundMult
}

// CalculateRoundSpecificBonus encodes round-by-round drafting heuristics
func CalculateRoundSpecificBonus(p *models.Player, round int) float64 {
	attacker := p.Position == models.PositionForward || p.Position == models.PositionMidfield
	var bonus float64

	switch {
	case round == 1:
		switch {
		case p.Position == models.PositionGoalkeeper:
			bonus -= 100
		case p.Position == models.PositionDefense && p.Tier == models.TierElite:
			bonus -= 30
		case p.Position == models.PositionDefense:
			bonus -= 50
		case attacker && p.Tier == models.TierElite:
			bonus += 50
		case attacker && p.Tier == models.TierHigh:
			bonus += 20
		}
	case round <= 3:
		switch {
		case attacker && p.Tier == models.TierElite:
			bonus += 30
		case attacker && p.Tier == models.TierHigh:
			bonus += 15
		case attacker && p.Tier == models.TierLow:
			bonus -= 10
		case p.Position == models.PositionDefense && p.Tier == models.TierElite:
			bonus += 10
		case p.Position == models.PositionDefense && (p.Tier == models.TierMedium || p.Tier == models.TierLow):
			bonus -= 20
		}
	case round <= 8:
		switch p.Tier {
		case models.TierElite:
			bonus += 20
		case models.TierHigh:
			bonus += 15
		}
		if p.Minutes >= 2000 {
			bonus += 10
		}
	default:
		if p.Age > 0 && p.Age <= 24 {
			switch p.Tier {
			case models.TierMedium:
				bonus += 15
			case models.TierHigh:
				bonus += 10
			}
		}
	}

	if p.Position == models.PositionGoalkeeper && round > 1 {
		switch {
		case round >= 8 && round <= 12:
			bonus += 20
		case round < 6:
			bonus -= 60
		}
	}
	return bonus
}

var statusWeights = map[minutes.Status]float64{
	minutes.StatusStarter:  30,
	minutes.StatusRegular:  10,
	minutes.StatusRotation: -15,
	minutes.StatusFringe:   -35,
}

// CalculateMinutesBonus rewards secure playing time. Suppressed through
// round 3, capped to [-40, 35].
func CalculateMinutesBonus(p *models.Player, pred minutes.Prediction, round, totalRounds int) float64 {
	if round <= 3 {
		return 0
	}
	weight := 0.05 + 0.10*progress(round, totalRounds)
	raw := statusWeights[pred.PlayingStatus]*10 + (minutes.AdjustPlayerForPredictedMinutes(p, pred) - p.HistoricalPoints)
	return clamp(raw*weight*pred.Confidence, -40, 35)
}

// CalculateFixtureBonus rewards an easy upcoming run. Suppressed through
// round 2, capped to [-20, 25].
func CalculateFixtureBonus(o fixtures.Outlook, round, totalRounds int) float64 {
	if round <= 2 {
		return 0
	}
	weight := 0.04 + 0.08*progress(round, totalRounds)
	return clamp(o.FixtureScore*25*weight*o.Confidence, -20, 25)
}

// TalentWeight falls from 0.80 in round 1 to 0.65 in the last round
func TalentWeight(round, totalRounds int) float64 {
	return 0.80 - 0.15*progress(round, totalRounds)
}

// Breakdown is the per-component score of one candidate
type Breakdown struct {
	Talent       float64 `json:"talent"`
	Minutes      float64 `json:"minutes"`
	PositionNeed float64 `json:"positionNeed"`
	Scarcity     float64 `json:"scarcity"`
	Round        float64 `json:"round"`
	Fixture      float64 `json:"fixture"`
	Override     float64 `json:"override"`
}

// Total sums every component
func (b Breakdown) Total() float64 {
	return b.Talent + b.Minutes + b.PositionNeed + b.Scarcity + b.Round + b.Fixture + b.Override
}

// Mode names which scorer produced a candidate's score
type Mode string

const (
	ModeGeneral    Mode = "general"
	ModeGoalkeeper Mode = "goalkeeper"
	ModeFirstPick  Mode = "first_pick"
)

// Inputs are the pre-resolved per-player values the scorer needs
type Inputs struct {
	Prediction minutes.Prediction
	Outlook    fixtures.Outlook
	VORP       float64
}

// CalculateAdvancedPlayerScore scores p for the analysed roster. The very
// first pick and goalkeepers bypass the general scorer.
func CalculateAdvancedPlayerScore(p *models.Player, in Inputs, a RosterAnalysis, available []models.Player, totalRounds int) (Breakdown, Mode) {
	round := a.Round

	if round == 1 && a.TotalPlayers == 0 {
		b := Breakdown{Talent: in.VORP}
		switch p.Position {
		case models.PositionGoalkeeper:
			b.Override = -100
		case models.PositionDefense:
			b.Override = -50
		default:
			if p.Tier == models.TierElite {
				b.Override = 30
			}
		}
		return b, ModeFirstPick
	}

	b := Breakdown{
		Minutes: CalculateMinutesBonus(p, in.Prediction, round, totalRounds),
		Fixture: CalculateFixtureBonus(in.Outlook, round, totalRounds),
	}

	if p.Position == models.PositionGoalkeeper {
		b.Talent = in.VORP
		need := a.Needs[models.PositionGoalkeeper]
		switch {
		case round < gkWindowOpens:
			b.Override = gkDeferred
		case need.Count >= 1:
			b.Override = gkBackup
		case round <= gkWindowCloses:
			b.Override = gkWindow
		default:
			b.Override = gkUrgent
		}
		return b, ModeGoalkeeper
	}

	talent := in.VORP
	if in.Prediction.Confidence > 0.6 {
		talent = in.VORP + (minutes.AdjustPlayerForPredictedMinutes(p, in.Prediction) - p.HistoricalPoints)
	}
	b.Talent = talent * TalentWeight(round, totalRounds)
	b.PositionNeed = CalculatePositionNeedScore(p.Position, a, totalRounds)
	b.Scarcity = CalculateScarcityBonus(p, available, round)
	b.Round = CalculateRoundSpecificBonus(p, round)
	return b, ModeGeneral
}
