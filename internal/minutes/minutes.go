// Package minutes projects season playing time from age, club depth,
// player quality, rotation style and injury risk.
package minutes

import (
	"math"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/fixtures"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

const (
	defaultGameweeks   = 38
	historyBaseline    = 2500.0
	fallbackConfidence = 0.3
	fallbackMinutes    = 60.0
)

// Status is the categorical playing role
type Status string

const (
	StatusStarter  Status = "starter"
	StatusRegular  Status = "regular"
	StatusRotation Status = "rotation"
	StatusFringe   Status = "fringe"
)

// RotationStyle describes how heavily a club rotates its squad
type RotationStyle string

const (
	StyleSettled  RotationStyle = "settled"
	StyleBalanced RotationStyle = "balanced"
	StyleHeavy    RotationStyle = "heavy"
)

var styleFactors = map[RotationStyle]float64{
	StyleSettled:  1.03,
	StyleBalanced: 1.0,
	StyleHeavy:    0.92,
}

type ageCurve struct {
	peakStart, peakEnd int
	build, decline     float64
	floor              float64
}

var ageCurves = map[models.Position]ageCurve{
	models.PositionForward:    {peakStart: 24, peakEnd: 28, build: 0.04, decline: 0.06, floor: 0.55},
	models.PositionMidfield:   {peakStart: 25, peakEnd: 29, build: 0.035, decline: 0.05, floor: 0.6},
	models.PositionDefense:    {peakStart: 26, peakEnd: 30, build: 0.03, decline: 0.045, floor: 0.6},
	models.PositionGoalkeeper: {peakStart: 27, peakEnd: 33, build: 0.025, decline: 0.035, floor: 0.65},
}

// DepthCategory groups clubs by squad depth
type DepthCategory string

const (
	DepthElite    DepthCategory = "elite"
	DepthStrong   DepthCategory = "strong"
	DepthMidUpper DepthCategory = "mid_upper"
	DepthMid      DepthCategory = "mid"
	DepthWeak     DepthCategory = "weak"
)

type depthFactor struct {
	depth, competition float64
}

var depthFactors = map[DepthCategory]depthFactor{
	DepthElite:    {depth: 0.88, competition: 0.9},
	DepthStrong:   {depth: 0.93, competition: 0.95},
	DepthMidUpper: {depth: 0.97, competition: 0.98},
	DepthMid:      {depth: 1.0, competition: 1.0},
	DepthWeak:     {depth: 1.05, competition: 1.05},
}

var clubDepth = map[string]DepthCategory{
	"MCI": DepthElite, "ARS": DepthElite, "LIV": DepthElite, "CHE": DepthElite,
	"NEW": DepthStrong, "TOT": DepthStrong, "AVL": DepthStrong, "MUN": DepthStrong,
	"BHA": DepthMidUpper, "NFO": DepthMidUpper, "CRY": DepthMidUpper, "BOU": DepthMidUpper,
	"FUL": DepthMid, "BRE": DepthMid, "WHU": DepthMid, "EVE": DepthMid,
	"WOL": DepthWeak, "LEE": DepthWeak, "BUR": DepthWeak, "SUN": DepthWeak,
	"LEI": DepthWeak, "IPS": DepthWeak, "SOU": DepthWeak,
}

var injuryFactors = map[models.Position]float64{
	models.PositionGoalkeeper: 0.98,
	models.PositionDefense:    0.94,
	models.PositionMidfield:   0.93,
	models.PositionForward:    0.92,
}

// Options tunes a prediction
type Options struct {
	Gameweeks int
	Style     RotationStyle
}

// Factors exposes each multiplier that went into a prediction
type Factors struct {
	Age         float64 `json:"age"`
	Depth       float64 `json:"depth"`
	Competition float64 `json:"competition"`
	Style       float64 `json:"style"`
	Injury      float64 `json:"injury"`
	History     float64 `json:"history"`
}

func (f Factors) values() []float64 {
	return []float64{f.Age, f.Depth, f.Competition, f.Style, f.Injury, f.History}
}

// Prediction is the projected season playing time for one player
type Prediction struct {
	PredictedMinutes float64 `json:"predictedMinutes"`
	MinutesPerGame   float64 `json:"minutesPerGame"`
	Confidence       float64 `json:"confidence"`
	PlayingStatus    Status  `json:"playingStatus"`
	Factors          Factors `json:"factors"`
	Fallback         bool    `json:"fallback,omitempty"`
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// AgeFactor applies the position's age curve
func AgeFactor(pos models.Position, age int) float64 {
	c, ok := ageCurves[pos]
	if !ok {
		c = ageCurves[models.PositionMidfield]
	}
	switch {
	case age < c.peakStart:
		return clamp(1-float64(c.peakStart-age)*c.build, c.floor, 1)
	case age > c.peakEnd:
		return clamp(1-float64(age-c.peakEnd)*c.decline, c.floor, 1)
	}
	return 1
}

// DepthFor returns the club's depth category, mid for unknown clubs
func DepthFor(team string) DepthCategory {
	code, ok := fixtures.TeamCode(team)
	if !ok {
		return DepthMid
	}
	if d, ok := clubDepth[code]; ok {
		return d
	}
	return DepthMid
}

// competitionFactor bands a player's quality against the club baseline
func competitionFactor(fp90 float64, team string) float64 {
	overall := 3.0
	if code, ok := fixtures.TeamCode(team); ok {
		if s, ok := fixtures.TeamStrength(code); ok {
			overall = s.Overall
		}
	}
	baseline := 1.2 + overall*0.5
	ratio := 0.0
	if baseline > 0 {
		ratio = fp90 / baseline
	}
	var band float64
	switch {
	case ratio >= 1.5:
		band = 1.10
	case ratio >= 1.15:
		band = 1.04
	case ratio >= 0.85:
		band = 1.0
	case ratio >= 0.6:
		band = 0.9
	default:
		band = 0.78
	}
	return band * depthFactors[DepthFor(team)].competition
}

func injuryFactor(pos models.Position, age int) float64 {
	f, ok := injuryFactors[pos]
	if !ok {
		f = 0.93
	}
	if age > 31 {
		f -= 0.03
	}
	return f
}

// StatusFor bands minutes per game into a playing status
func StatusFor(mpg float64) Status {
	switch {
	case mpg >= 70:
		return StatusStarter
	case mpg >= 50:
		return StatusRegular
	case mpg >= 30:
		return StatusRotation
	}
	return StatusFringe
}

func stddev(xs []float64) float64 {
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// PredictPlayerMinutes projects the season's minutes. A player missing
// position, team or age gets a conservative fallback with confidence 0.3.
func PredictPlayerMinutes(p *models.Player, opts Options) Prediction {
	gw := opts.Gameweeks
	if gw <= 0 {
		gw = defaultGameweeks
	}
	if !p.Position.Valid() || p.Team == "" || p.Age <= 0 {
		return Prediction{
			PredictedMinutes: fallbackMinutes * float64(gw),
			MinutesPerGame:   fallbackMinutes,
			Confidence:       fallbackConfidence,
			PlayingStatus:    StatusFor(fallbackMinutes),
			Factors:          Factors{Age: 1, Depth: 1, Competition: 1, Style: 1, Injury: 1, History: 1},
			Fallback:         true,
		}
	}

	style, ok := styleFactors[opts.Style]
	if !ok {
		style = styleFactors[StyleBalanced]
	}

	f := Factors{
		Age:         AgeFactor(p.Position, p.Age),
		Depth:       depthFactors[DepthFor(p.Team)].depth,
		Competition: competitionFactor(p.FP90, p.Team),
		Style:       style,
		Injury:      injuryFactor(p.Position, p.Age),
		History:     clamp(p.Minutes/historyBaseline, 0.6, 1.2),
	}

	base := float64(gw * 90)
	predicted := base
	for _, v := range f.values() {
		predicted *= v
	}
	predicted = clamp(predicted, 0, base)
	mpg := predicted / float64(gw)

	return Prediction{
		PredictedMinutes: predicted,
		MinutesPerGame:   mpg,
		Confidence:       clamp(0.9-stddev(f.values())*1.5, 0.3, 0.95),
		PlayingStatus:    StatusFor(mpg),
		Factors:          f,
	}
}

// AdjustPlayerForPredictedMinutes rescales points to the predicted minutes
// at constant points per 90, then discounts speculative projections
func AdjustPlayerForPredictedMinutes(p *models.Player, pred Prediction) float64 {
	if p.Minutes <= 0 {
		return p.HistoricalPoints
	}
	fp90 := p.HistoricalPoints / p.Minutes * 90
	adjusted := fp90 * pred.PredictedMinutes / 90
	switch {
	case pred.MinutesPerGame < 30:
		adjusted *= 0.85
	case pred.MinutesPerGame < 50:
		adjusted *= 0.93
	}
	return adjusted
}
