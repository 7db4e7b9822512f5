// Package dashboard computes the figures shown on the weekly report: metric
// values with week-over-week change, reference weeks, rankings and job status
// counts. Rendering is left to the caller.
package dashboard

import (
	"fmt"
	"math"
)

// Band is the color bucket of a week-over-week change.
type Band int

const (
	BandNeutral Band = iota
	BandDarkGreen
	BandStrongGreen
	BandMediumGreen
	BandLightGreen
	BandLightRed
	BandMediumRed
	BandStrongRed
	BandDarkRed
	BandAmber
)

var bandHex = map[Band]string{
	BandNeutral:     "#999",
	BandDarkGreen:   "#1b5e20",
	BandStrongGreen: "#388e3c",
	BandMediumGreen: "#66bb6a",
	BandLightGreen:  "#81c784",
	BandLightRed:    "#e57373",
	BandMediumRed:   "#ef5350",
	BandStrongRed:   "#c62828",
	BandDarkRed:     "#b71c1c",
	BandAmber:       "#665c00",
}

// Hex returns the CSS color of the band.
func (b Band) Hex() string { return bandHex[b] }

// Positive reports whether the band is one of the green shades.
func (b Band) Positive() bool { return b >= BandDarkGreen && b <= BandLightGreen }

// Negative reports whether the band is one of the red shades.
func (b Band) Negative() bool { return b >= BandLightRed && b <= BandDarkRed }

// DeltaPercent is the change from previous to current in percent. It is
// undefined when there is no previous value or the previous value is zero.
func DeltaPercent(current float64, previous *float64) (float64, bool) {
	if previous == nil || *previous == 0 {
		return 0, false
	}
	return (current - *previous) / *previous * 100, true
}

// ChangeText renders a change as "↑12.5%" or "↓8.1%", or "–" when undefined.
func ChangeText(current float64, previous *float64) string {
	delta, ok := DeltaPercent(current, previous)
	if !ok {
		return "–"
	}
	arrow := "↓"
	if delta > 0 {
		arrow = "↑"
	}
	return fmt.Sprintf("%s%.1f%%", arrow, math.Abs(delta))
}

// BandFor buckets a change percentage. Undefined changes are neutral.
func BandFor(delta float64, ok bool) Band {
	switch {
	case !ok:
		return BandNeutral
	case delta >= 50:
		return BandDarkGreen
	case delta >= 25:
		return BandStrongGreen
	case delta >= 10:
		return BandMediumGreen
	case delta >= 0:
		return BandLightGreen
	case delta > -10:
		return BandLightRed
	case delta > -25:
		return BandMediumRed
	case delta > -50:
		return BandStrongRed
	default:
		return BandDarkRed
	}
}

// ProxyBand grades the weekly outbound touch count against fixed targets.
func ProxyBand(touches int) Band {
	switch {
	case touches >= 700:
		return BandDarkGreen
	case touches >= 650:
		return BandStrongGreen
	case touches >= 550:
		return BandAmber
	case touches >= 450:
		return BandStrongRed
	default:
		return BandDarkRed
	}
}
