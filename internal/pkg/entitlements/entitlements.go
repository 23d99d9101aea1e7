// Package entitlements describes what a plan lets a customer stream.
package entitlements

import (
	"fmt"
	"strings"

	"github.com/vidora/vidora-web/app/models"
)

type Quality string

const (
	QualitySD  Quality = "sd"
	QualityHD  Quality = "hd"
	QualityFHD Quality = "fhd"
	QualityUHD Quality = "uhd"
)

func (q Quality) rank() int {
	switch q {
	case QualityUHD:
		return 4
	case QualityFHD:
		return 3
	case QualityHD:
		return 2
	default:
		return 1
	}
}

func (q Quality) Label() string {
	switch q {
	case QualityUHD:
		return "4K Ultra HD"
	case QualityFHD:
		return "Full HD"
	case QualityHD:
		return "HD"
	default:
		return "SD"
	}
}

// Entitlements of one plan. A plan without a quality streams in SD.
type Entitlements struct {
	Streams   int
	Quality   Quality
	TrialDays int
}

// For returns the allowances of plan.
func For(plan models.Plan) Entitlements {
	streams := plan.MaxStreams
	if streams < 1 {
		streams = 1
	}
	q := Quality(strings.ToLower(strings.TrimSpace(plan.MaxQuality)))
	if q.rank() == 1 {
		q = QualitySD
	}
	return Entitlements{Streams: streams, Quality: q, TrialDays: plan.TrialDays}
}

// Gains lists what moving from current to target adds, in display order.
// It is empty when target is not better in any way.
func Gains(current, target Entitlements) []string {
	var out []string
	if d := target.Streams - current.Streams; d > 0 {
		if d == 1 {
			out = append(out, "1 more simultaneous stream")
		} else {
			out = append(out, fmt.Sprintf("%d more simultaneous streams", d))
		}
	}
	if target.Quality.rank() > current.Quality.rank() {
		out = append(out, target.Quality.Label()+" instead of "+current.Quality.Label())
	}
	return out
}
