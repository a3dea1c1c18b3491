package analysis

import (
	"fmt"
	"time"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
	"github.com/chrissnell/aeronetwx/pkg/solar"
	"gonum.org/v1/gonum/floats"
)

// Phase is the day/night classification of one observation.
type Phase int

const (
	PhaseUnclassified Phase = iota
	PhaseDay
	PhaseNight
)

func (p Phase) String() string {
	switch p {
	case PhaseDay:
		return "day"
	case PhaseNight:
		return "night"
	default:
		return "unclassified"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Suffix is appended to the segment date to form its label.
func (p Phase) Suffix() string { return "_" + p.String() }

func (p Phase) flip() Phase {
	if p == PhaseNight {
		return PhaseDay
	}
	return PhaseNight
}

// Observation is one filtered measurement.
type Observation struct {
	Value   float64
	Date    aeronet.DateToken
	Time    aeronet.TimeToken
	Instant time.Time
}

// Classifier assigns a phase to an observation.
type Classifier interface {
	Classify(o Observation) Phase
}

// LegacyClockClassifier reproduces the historical boundary table, which
// inspects the two hour characters of the time token separately. Hours
// 00-05, 18 and 19 are night, 06-17 are day, and 20-23 are neither, which
// forces a segment change in either state.
type LegacyClockClassifier struct{}

func (LegacyClockClassifier) Classify(o Observation) Phase {
	tens, units := o.Time.HourDigits()
	switch {
	case tens == 0 && units <= 5, tens >= 1 && units >= 8:
		return PhaseNight
	case tens == 0 && units >= 6, tens == 1 && units <= 7:
		return PhaseDay
	default:
		return PhaseUnclassified
	}
}

// ClockClassifier splits the day at fixed hours: [DayStart, NightStart) is
// day, everything else night.
type ClockClassifier struct {
	DayStart   int
	NightStart int
}

// DefaultClockClassifier uses 06:00 and 18:00.
func DefaultClockClassifier() ClockClassifier {
	return ClockClassifier{DayStart: 6, NightStart: 18}
}

func (c ClockClassifier) Classify(o Observation) Phase {
	h := o.Time.Hour()
	if h >= c.DayStart && h < c.NightStart {
		return PhaseDay
	}
	return PhaseNight
}

// SolarClassifier calls an observation day when the sun is above the
// horizon at the site at the observation's UTC instant.
type SolarClassifier struct {
	Latitude  float64
	Longitude float64
}

func (s SolarClassifier) Classify(o Observation) Phase {
	if solar.IsDaylight(s.Latitude, s.Longitude, o.Instant) {
		return PhaseDay
	}
	return PhaseNight
}

// Compatibility selects between the historical aggregation behavior and the
// corrected one. Each quirk is its own switch so both can be tested.
type Compatibility struct {
	// LegacyBoundaries selects LegacyClockClassifier over the 06:00/18:00 split
	// when no classifier is supplied.
	LegacyBoundaries bool `yaml:"legacy_boundaries" json:"legacy_boundaries"`
	// DropTransitionEntry discards the observation that ends a segment
	// instead of opening the next segment with it.
	DropTransitionEntry bool `yaml:"drop_transition_entry" json:"drop_transition_entry"`
	// DropZeroSumSegments discards segments whose values sum to exactly zero.
	DropZeroSumSegments bool `yaml:"drop_zero_sum_segments" json:"drop_zero_sum_segments"`
	// DropFinalSegment discards the segment still open at the end of input.
	DropFinalSegment bool `yaml:"drop_final_segment" json:"drop_final_segment"`
	// LabelWithClosingDate labels a segment with the date of the observation
	// that closed it rather than the segment's first date.
	LabelWithClosingDate bool `yaml:"label_with_closing_date" json:"label_with_closing_date"`
}

// LegacyCompatibility reproduces the historical output exactly.
func LegacyCompatibility() Compatibility {
	return Compatibility{
		LegacyBoundaries:     true,
		DropTransitionEntry:  true,
		DropZeroSumSegments:  true,
		DropFinalSegment:     true,
		LabelWithClosingDate: true,
	}
}

// CorrectedCompatibility keeps every observation and segment.
func CorrectedCompatibility() Compatibility {
	return Compatibility{}
}

// DefaultClassifier returns the clock classifier matching c.
func (c Compatibility) DefaultClassifier() Classifier {
	if c.LegacyBoundaries {
		return LegacyClockClassifier{}
	}
	return DefaultClockClassifier()
}

// Range restricts aggregation to a month span and/or a single year. Zero
// fields are unset. Input is assumed sorted by date: entries before the
// range are skipped and the scan stops at the first entry past it.
type Range struct {
	MonthStart int `json:"month_start,omitempty"`
	MonthEnd   int `json:"month_end,omitempty"`
	Year       int `json:"year,omitempty"`
}

// ParseRange builds a Range from month numbers or names ("3", "March",
// "Mar."). Empty bounds and a zero year stay unset.
func ParseRange(start, end string, year int) (Range, error) {
	r := Range{Year: year}
	for _, b := range []struct {
		raw string
		dst *int
	}{{start, &r.MonthStart}, {end, &r.MonthEnd}} {
		if b.raw == "" {
			continue
		}
		m, ok := aeronet.ParseMonth(b.raw)
		if !ok {
			return Range{}, fmt.Errorf("invalid month %q", b.raw)
		}
		*b.dst = m
	}
	if r.MonthStart != 0 && r.MonthEnd != 0 && r.MonthStart > r.MonthEnd {
		return Range{}, fmt.Errorf("month range %s..%s is reversed", start, end)
	}
	if year < 0 {
		return Range{}, fmt.Errorf("invalid year %d", year)
	}
	return r, nil
}

// CurrentMonthRange restricts aggregation to the month and year of now.
func CurrentMonthRange(now time.Time) Range {
	m := int(now.Month())
	return Range{MonthStart: m, MonthEnd: m, Year: now.Year()}
}

type rangeAction int

const (
	rangeKeep rangeAction = iota
	rangeSkip
	rangeStop
)

func (r Range) check(d aeronet.DateToken) rangeAction {
	if r.Year != 0 {
		switch y := d.Year(); {
		case y < r.Year:
			return rangeSkip
		case y > r.Year:
			return rangeStop
		}
	}
	m := d.Month()
	if r.MonthStart != 0 && m < r.MonthStart {
		return rangeSkip
	}
	if r.MonthEnd != 0 && m > r.MonthEnd {
		return rangeStop
	}
	return rangeKeep
}

// Point is the aggregate of one day or night segment.
type Point struct {
	Label string            `json:"label"`
	Date  aeronet.DateToken `json:"date"`
	Phase Phase             `json:"phase"`
	Mean  float64           `json:"mean"`
	Sigma float64           `json:"sigma"`
	Count int               `json:"count"`
}

// segmentFold is the aggregator state threaded through the observations.
type segmentFold struct {
	started    bool
	phase      Phase
	values     []float64
	firstDate  aeronet.DateToken
	lastDate   aeronet.DateToken
	points     []Point
	compat     Compatibility
	classifier Classifier
}

func (f *segmentFold) add(o Observation) {
	if len(f.values) == 0 {
		f.firstDate = o.Date
	}
	f.values = append(f.values, o.Value)
	f.lastDate = o.Date
}

// close emits the open segment, labelled with closingDate when the
// compatibility flags ask for it.
func (f *segmentFold) close(closingDate aeronet.DateToken) {
	defer func() { f.values = f.values[:0] }()

	if len(f.values) == 0 {
		return
	}
	sum := floats.Sum(f.values)
	if sum == 0 && f.compat.DropZeroSumSegments {
		return
	}

	date := f.firstDate
	if f.compat.LabelWithClosingDate {
		date = closingDate
	}
	f.points = append(f.points, Point{
		Label: string(date) + f.phase.Suffix(),
		Date:  date,
		Phase: f.phase,
		Mean:  sum / float64(len(f.values)),
		Sigma: MeasurementSigma(f.values),
		Count: len(f.values),
	})
}

func (f segmentFold) step(o Observation) segmentFold {
	phase := f.classifier.Classify(o)
	if !f.started {
		// The first kept entry picks the starting state: night when it
		// classifies as night, day otherwise.
		f.started = true
		f.phase = PhaseDay
		if phase == PhaseNight {
			f.phase = PhaseNight
		}
	}
	if phase == f.phase {
		f.add(o)
		return f
	}
	f.close(o.Date)
	f.phase = f.phase.flip()
	if !f.compat.DropTransitionEntry {
		f.add(o)
	}
	return f
}

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	Compat     Compatibility
	Classifier Classifier
	Range      Range
}

// Aggregate walks a time-ordered series and emits one point per contiguous
// day or night segment. The starting phase is night when the first
// observation inside the range classifies as night, day otherwise.
func Aggregate(obs []Observation, opts AggregateOptions) []Point {
	if len(obs) == 0 {
		return nil
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = opts.Compat.DefaultClassifier()
	}

	f := segmentFold{
		compat:     opts.Compat,
		classifier: classifier,
	}

scan:
	for _, o := range obs {
		switch opts.Range.check(o.Date) {
		case rangeSkip:
			continue
		case rangeStop:
			break scan
		}
		f = f.step(o)
	}

	if !opts.Compat.DropFinalSegment {
		f.close(f.lastDate)
	}
	return f.points
}
