package analysis

import (
	"strings"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
)

// Tick is one labelled x-axis position.
type Tick struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// AxisTickSet marks the start and middle of every month in a sequence of
// segment labels, plus the years those labels cover.
type AxisTickSet struct {
	Ticks []Tick   `json:"ticks"`
	Years []string `json:"years"`
}

// Positions returns the tick positions in order.
func (a AxisTickSet) Positions() []float64 {
	out := make([]float64, len(a.Ticks))
	for i, t := range a.Ticks {
		out[i] = t.Position
	}
	return out
}

// Labels returns the tick labels in order.
func (a AxisTickSet) Labels() []string {
	out := make([]string, len(a.Ticks))
	for i, t := range a.Ticks {
		out[i] = t.Label
	}
	return out
}

// Caption is the x-axis title: "Months", "Months in 2022" or
// "Months in (2021, 2022)".
func (a AxisTickSet) Caption() string {
	switch len(a.Years) {
	case 0:
		return "Months"
	case 1:
		return "Months in " + a.Years[0]
	default:
		return "Months in (" + strings.Join(a.Years, ", ") + ")"
	}
}

// BuildAxis walks segment labels (dd:mm:yyyy followed by a suffix) and
// emits a (start, middle) tick pair for every month run, positioned by
// index. The middle position is p+(c-p)/2 where p is the 1-based count at
// the previous boundary and c the count at the current one.
func BuildAxis(labels []string) AxisTickSet {
	var axis AxisTickSet
	n := len(labels)
	if n == 0 {
		return axis
	}

	seenYears := make(map[string]bool)
	emit := func(month, prev, count int) {
		mid := prev + (count-prev)/2
		axis.Ticks = append(axis.Ticks,
			Tick{Position: float64(prev - 1), Label: tickLabel(month, labels, prev-1)},
			Tick{Position: float64(prev) + float64(count-prev)/2, Label: tickLabel(month, labels, mid)},
		)
	}

	count, prev := 0, 1
	current := labelDate(labels[0]).Month()
	for i, l := range labels {
		count++
		date := labelDate(l)
		if m := date.Month(); m != current {
			emit(current, prev, count)
			current = m
			prev = count
		}
		if i == n-1 {
			emit(current, prev, count)
		}
		if y := date.YearString(); y != "" && !seenYears[y] {
			seenYears[y] = true
			axis.Years = append(axis.Years, y)
		}
	}
	return axis
}

func labelDate(label string) aeronet.DateToken {
	if len(label) < len(aeronet.DateMarker) {
		return aeronet.DateToken(label)
	}
	return aeronet.DateToken(label[:len(aeronet.DateMarker)])
}

// tickLabel renders "Mon.dd" using the day of labels[i], clamped to the
// last label.
func tickLabel(month int, labels []string, i int) string {
	if i >= len(labels) {
		i = len(labels) - 1
	}
	return aeronet.MonthAbbrev(month) + labelDate(labels[i]).DayString()
}
