package possession

import "github.com/okian/possessions/internal/domain/model"

// Run is one segmented possession: the indexes of its member plays in the
// game's play list, in feed order. Runs are never empty.
type Run []int

// Segment groups plays into possession runs. Substitutions and period
// markers are never members. A period end closes whatever is buffered, and
// any plays left after the last terminator are flushed as a final run.
func Segment(plays []Play) []Run {
	var runs []Run
	var buf Run

	flush := func() {
		if len(buf) > 0 {
			runs = append(runs, buf)
			buf = nil
		}
	}

	for i := range plays {
		p := &plays[i]
		if !p.isBoundary() {
			buf = append(buf, i)
		}
		if terminates(plays, i) {
			flush()
		}
	}
	flush()
	return runs
}

// terminates reports whether plays[i] ends the current possession.
func terminates(plays []Play, i int) bool {
	switch plays[i].Category {
	case CatTurnover:
		return true
	case CatFreeThrowLast:
		return lastFreeThrowEnds(plays, i)
	case CatRebound:
		return isDefensiveRebound(plays, i)
	case CatMadeShot:
		return !isAndOne(plays, i)
	case CatPeriodEnd:
		return true
	}
	return false
}

// lastFreeThrowEnds reports whether the last attempt of a trip hands the
// ball over. A miss leaves it to the rebound. A 1 of 1 awarded for an
// away-from-play foul does not, unless the trip also has a made field goal.
func lastFreeThrowEnds(plays []Play, i int) bool {
	ft := &plays[i]
	if ft.IsMiss() {
		return false
	}
	if ft.ActionType != ftOneOfOne {
		return true
	}

	lo, hi := tripBounds(plays, i)
	awayFromPlay := false
	for j := i - 1; j >= lo; j-- {
		if plays[j].MsgType == model.MsgFoul {
			awayFromPlay = plays[j].ActionType == foulAwayFromPlay
			break
		}
	}
	if !awayFromPlay {
		return true
	}
	for j := lo; j <= hi; j++ {
		if plays[j].Category == CatMadeShot {
			return true
		}
	}
	return false
}

// tripBounds returns the first and last index of the plays that share the
// period and game clock of plays[i].
func tripBounds(plays []Play, i int) (lo, hi int) {
	lo, hi = i, i
	for lo > 0 && plays[lo-1].SameMoment(&plays[i].Event) {
		lo--
	}
	for hi < len(plays)-1 && plays[hi+1].SameMoment(&plays[i].Event) {
		hi++
	}
	return lo, hi
}

// isDefensiveRebound compares the rebounding team with the shooter of the
// most recent earlier miss in the same period. A rebound with no earlier
// miss in the period is not defensive.
func isDefensiveRebound(plays []Play, i int) bool {
	reb := &plays[i]
	rebTeam := reb.actorTeam()
	for j := i - 1; j >= 0 && plays[j].Period == reb.Period; j-- {
		shot := &plays[j]
		if !shot.IsShotAttempt() || !shot.IsMiss() {
			continue
		}
		shooterTeam := shot.Actor1.TeamID
		return rebTeam != 0 && shooterTeam != 0 && rebTeam != shooterTeam
	}
	return false
}

// isAndOne reports whether a made field goal is followed on the same play by
// a shooting foul on the defense. Substitutions, timeouts and replay reviews
// logged at the same moment are skipped.
func isAndOne(plays []Play, i int) bool {
	shot := &plays[i]
	for j := i + 1; j < len(plays) && plays[j].SameMoment(&shot.Event); j++ {
		next := &plays[j]
		switch next.MsgType {
		case model.MsgSubstitution, model.MsgTimeout, model.MsgInstantReplay:
			continue
		case model.MsgFoul:
			// A foul with no team cannot be placed on the defense.
			return next.ActionType == foulShooting &&
				next.Actor1.TeamID != 0 && shot.Actor1.TeamID != 0 &&
				next.Actor1.TeamID != shot.Actor1.TeamID
		}
		return false
	}
	return false
}
