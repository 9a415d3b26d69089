package series

import (
	"fmt"

	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// IssueKind classifies a series problem.
type IssueKind string

const (
	IssueEmpty          IssueKind = "empty"
	IssueHighBelowBody  IssueKind = "high_below_body"
	IssueLowAboveBody   IssueKind = "low_above_body"
	IssueNotIncreasing  IssueKind = "not_increasing"
	IssueNonPositiveLow IssueKind = "non_positive_price"
)

// Issue is a single problem found in a series.
type Issue struct {
	Index int // -1 for whole-series issues
	Time  model.Date
	Kind  IssueKind
	Msg   string
}

func (i Issue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Kind, i.Msg)
	}
	return fmt.Sprintf("#%d %s %s: %s", i.Index, i.Time, i.Kind, i.Msg)
}

// Validate reports every point that breaks the OHLC invariant
// (high >= max(open, close), low <= min(open, close)), every date that does
// not strictly increase, and an empty series. Nothing at display time calls
// this; it backs the validate command and tests.
func Validate(points []model.Point) []Issue {
	if len(points) == 0 {
		return []Issue{{Index: -1, Kind: IssueEmpty, Msg: "series has no points"}}
	}

	var issues []Issue
	for i, p := range points {
		if p.High < p.BodyTop() {
			issues = append(issues, Issue{
				Index: i, Time: p.Time, Kind: IssueHighBelowBody,
				Msg: fmt.Sprintf("high %.2f below body top %.2f", p.High, p.BodyTop()),
			})
		}
		if p.Low > p.BodyBottom() {
			issues = append(issues, Issue{
				Index: i, Time: p.Time, Kind: IssueLowAboveBody,
				Msg: fmt.Sprintf("low %.2f above body bottom %.2f", p.Low, p.BodyBottom()),
			})
		}
		if p.Low <= 0 {
			issues = append(issues, Issue{
				Index: i, Time: p.Time, Kind: IssueNonPositiveLow,
				Msg: fmt.Sprintf("low %.2f is not a positive price", p.Low),
			})
		}
		if i > 0 && !points[i-1].Time.Before(p.Time) {
			issues = append(issues, Issue{
				Index: i, Time: p.Time, Kind: IssueNotIncreasing,
				Msg: fmt.Sprintf("date does not follow %s", points[i-1].Time),
			})
		}
	}
	return issues
}
