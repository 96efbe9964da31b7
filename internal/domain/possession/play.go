// Package possession splits a game's annotated play-by-play into offensive
// possessions and summarizes each one.
package possession

import (
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/roster"
)

// Category is the fixed role a play has in segmentation and attribution.
type Category int

// Play categories. The order of the checks in terminates and offenseTeam
// follows this list and must not be rearranged.
const (
	// CatOther covers fouls, violations, timeouts, jump balls, ejections and
	// replays: they belong to a possession but never end one.
	CatOther Category = iota
	CatMadeShot
	CatMissedShot
	// CatFreeThrowLast is the final attempt of a regular trip (1 of 1, 2 of 2,
	// 3 of 3).
	CatFreeThrowLast
	// CatFreeThrowNotLast is an earlier attempt of a regular trip.
	CatFreeThrowNotLast
	// CatFreeThrowRetained covers technical, flagrant and clear-path free
	// throws, after which the fouled team keeps the ball.
	CatFreeThrowRetained
	// CatFreeThrowUnknown is a free throw whose action type is not mapped.
	CatFreeThrowUnknown
	CatRebound
	CatTurnover
	CatSubstitution
	CatPeriodStart
	CatPeriodEnd
	// CatUnclassified is a message type the feed is not known to publish.
	CatUnclassified
)

var categoryNames = map[Category]string{
	CatOther:             "other",
	CatMadeShot:          "made_shot",
	CatMissedShot:        "missed_shot",
	CatFreeThrowLast:     "free_throw_last",
	CatFreeThrowNotLast:  "free_throw_not_last",
	CatFreeThrowRetained: "free_throw_retained",
	CatFreeThrowUnknown:  "free_throw_unknown",
	CatRebound:           "rebound",
	CatTurnover:          "turnover",
	CatSubstitution:      "substitution",
	CatPeriodStart:       "period_start",
	CatPeriodEnd:         "period_end",
	CatUnclassified:      "unclassified",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Free throw action types.
const (
	ftOneOfOne        = 10
	ftOneOfTwo        = 11
	ftTwoOfTwo        = 12
	ftOneOfThree      = 13
	ftTwoOfThree      = 14
	ftThreeOfThree    = 15
	ftTechnical       = 16
	ftFlagrantOneOf2  = 18
	ftFlagrantTwoOf2  = 19
	ftFlagrantOneOf1  = 20
	ftTechnicalOneOf2 = 21
	ftTechnicalTwoOf2 = 22
	ftClearPathOneOf2 = 25
	ftClearPathTwoOf2 = 26
	ftFlagrantOneOf3  = 27
	ftFlagrantTwoOf3  = 28
	ftFlagrantThreeOf = 29
)

// Foul action types the segmenter looks at.
const (
	foulShooting     = 2
	foulAwayFromPlay = 6
)

func classifyFreeThrow(actionType int) Category {
	switch actionType {
	case ftOneOfOne, ftTwoOfTwo, ftThreeOfThree:
		return CatFreeThrowLast
	case ftOneOfTwo, ftOneOfThree, ftTwoOfThree:
		return CatFreeThrowNotLast
	case ftTechnical, ftTechnicalOneOf2, ftTechnicalTwoOf2,
		ftFlagrantOneOf2, ftFlagrantTwoOf2, ftFlagrantOneOf1,
		ftFlagrantOneOf3, ftFlagrantTwoOf3, ftFlagrantThreeOf,
		ftClearPathOneOf2, ftClearPathTwoOf2:
		return CatFreeThrowRetained
	}
	return CatFreeThrowUnknown
}

// Classify maps an event to its category.
func Classify(e *model.Event) Category {
	switch e.MsgType {
	case model.MsgFieldGoalMade:
		return CatMadeShot
	case model.MsgFieldGoalMissed:
		return CatMissedShot
	case model.MsgFreeThrow:
		return classifyFreeThrow(e.ActionType)
	case model.MsgRebound:
		return CatRebound
	case model.MsgTurnover:
		return CatTurnover
	case model.MsgSubstitution:
		return CatSubstitution
	case model.MsgPeriodStart:
		return CatPeriodStart
	case model.MsgPeriodEnd:
		return CatPeriodEnd
	case model.MsgFoul, model.MsgViolation, model.MsgTimeout, model.MsgJumpBall,
		model.MsgEjection, model.MsgInstantReplay:
		return CatOther
	}
	return CatUnclassified
}

// Play is an event annotated with the rosters on the court when it happened,
// its elapsed game time and its category.
type Play struct {
	model.Event
	Lineup   roster.Snapshot
	Elapsed  int
	Category Category
}

// NewPlay annotates e.
func NewPlay(e model.Event, lineup roster.Snapshot) (Play, error) {
	elapsed, err := e.Elapsed()
	if err != nil {
		return Play{}, err
	}
	return Play{Event: e, Lineup: lineup, Elapsed: elapsed, Category: Classify(&e)}, nil
}

// Unresolved reports whether the play's type is outside the decision table.
func (p *Play) Unresolved() bool {
	return p.Category == CatUnclassified || p.Category == CatFreeThrowUnknown
}

// isBoundary reports plays that never count as possession content.
func (p *Play) isBoundary() bool {
	return p.Category == CatSubstitution || p.Category == CatPeriodStart || p.Category == CatPeriodEnd
}

// actorTeam returns the team of the primary actor. Team slots carry the team
// id in the player id field.
func (p *Play) actorTeam() int64 {
	if p.Actor1.IsTeam() {
		return p.Actor1.PlayerID
	}
	return p.Actor1.TeamID
}
