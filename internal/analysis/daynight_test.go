package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
)

func obs(date, tod string, v float64) Observation {
	return Observation{Value: v, Date: aeronet.DateToken(date), Time: aeronet.TimeToken(tod)}
}

func TestLegacyClockClassifier(t *testing.T) {
	want := map[int]Phase{}
	for h := 0; h <= 5; h++ {
		want[h] = PhaseNight
	}
	for h := 6; h <= 17; h++ {
		want[h] = PhaseDay
	}
	want[18], want[19] = PhaseNight, PhaseNight
	for h := 20; h <= 23; h++ {
		want[h] = PhaseUnclassified
	}

	var c LegacyClockClassifier
	for h := 0; h < 24; h++ {
		o := Observation{Time: aeronet.NewTimeToken(h, 30, 0)}
		if got := c.Classify(o); got != want[h] {
			t.Errorf("hour %02d: got %v, want %v", h, got, want[h])
		}
	}
}

func TestClockClassifier(t *testing.T) {
	c := DefaultClockClassifier()
	tests := []struct {
		tod  string
		want Phase
	}{
		{"05:59:59", PhaseNight},
		{"06:00:00", PhaseDay},
		{"17:59:00", PhaseDay},
		{"18:00:00", PhaseNight},
		{"23:10:00", PhaseNight},
	}
	for _, tt := range tests {
		if got := c.Classify(obs("01:06:2023", tt.tod, 1)); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.tod, got, tt.want)
		}
	}
}

func TestSolarClassifier(t *testing.T) {
	c := SolarClassifier{Latitude: 51.48, Longitude: 0}
	noon := Observation{Instant: time.Date(2023, 3, 20, 12, 0, 0, 0, time.UTC)}
	midnight := Observation{Instant: time.Date(2023, 3, 20, 0, 0, 0, 0, time.UTC)}
	if got := c.Classify(noon); got != PhaseDay {
		t.Errorf("noon: got %v", got)
	}
	if got := c.Classify(midnight); got != PhaseNight {
		t.Errorf("midnight: got %v", got)
	}
}

func labelsAndMeans(points []Point) ([]string, []float64) {
	var labels []string
	var means []float64
	for _, p := range points {
		labels = append(labels, p.Label)
		means = append(means, p.Mean)
	}
	return labels, means
}

func TestAggregateSingleDay(t *testing.T) {
	in := []Observation{
		obs("01:06:2023", "03:00:00", 1),
		obs("01:06:2023", "04:00:00", 3),
		obs("01:06:2023", "19:00:00", 5),
		obs("01:06:2023", "20:00:00", 7),
	}

	tests := []struct {
		name       string
		compat     Compatibility
		wantLabels []string
		wantMeans  []float64
	}{
		{
			// 19:00 is night under the legacy table and 20:00 closes the
			// segment without joining it; the transition entry is dropped.
			name:       "legacy",
			compat:     LegacyCompatibility(),
			wantLabels: []string{"01:06:2023_night"},
			wantMeans:  []float64{3},
		},
		{
			name:       "corrected",
			compat:     CorrectedCompatibility(),
			wantLabels: []string{"01:06:2023_night"},
			wantMeans:  []float64{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, means := labelsAndMeans(Aggregate(in, AggregateOptions{Compat: tt.compat}))
			if !reflect.DeepEqual(labels, tt.wantLabels) {
				t.Errorf("labels = %v, want %v", labels, tt.wantLabels)
			}
			if !reflect.DeepEqual(means, tt.wantMeans) {
				t.Errorf("means = %v, want %v", means, tt.wantMeans)
			}
		})
	}
}

func TestAggregateCompatibilityFlags(t *testing.T) {
	in := []Observation{
		obs("01:06:2023", "03:00:00", 1),
		obs("01:06:2023", "04:00:00", 2),
		obs("02:06:2023", "08:00:00", 3),
		obs("02:06:2023", "09:00:00", 5),
		obs("02:06:2023", "18:00:00", 7),
	}

	tests := []struct {
		name       string
		compat     Compatibility
		wantLabels []string
		wantMeans  []float64
	}{
		{
			name:       "legacy",
			compat:     LegacyCompatibility(),
			wantLabels: []string{"02:06:2023_night", "02:06:2023_day"},
			wantMeans:  []float64{1.5, 5},
		},
		{
			name:       "corrected",
			compat:     CorrectedCompatibility(),
			wantLabels: []string{"01:06:2023_night", "02:06:2023_day", "02:06:2023_night"},
			wantMeans:  []float64{1.5, 4, 7},
		},
		{
			name:       "drop transition entry only",
			compat:     Compatibility{DropTransitionEntry: true},
			wantLabels: []string{"01:06:2023_night", "02:06:2023_day"},
			wantMeans:  []float64{1.5, 5},
		},
		{
			name:       "drop final segment only",
			compat:     Compatibility{DropFinalSegment: true},
			wantLabels: []string{"01:06:2023_night", "02:06:2023_day"},
			wantMeans:  []float64{1.5, 4},
		},
		{
			name:       "closing date labels only",
			compat:     Compatibility{LabelWithClosingDate: true},
			wantLabels: []string{"02:06:2023_night", "02:06:2023_day", "02:06:2023_night"},
			wantMeans:  []float64{1.5, 4, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, means := labelsAndMeans(Aggregate(in, AggregateOptions{Compat: tt.compat}))
			if !reflect.DeepEqual(labels, tt.wantLabels) {
				t.Errorf("labels = %v, want %v", labels, tt.wantLabels)
			}
			if !reflect.DeepEqual(means, tt.wantMeans) {
				t.Errorf("means = %v, want %v", means, tt.wantMeans)
			}
		})
	}
}

func TestAggregateZeroSumSegments(t *testing.T) {
	in := []Observation{
		obs("01:06:2023", "03:00:00", 1),
		obs("01:06:2023", "04:00:00", -1),
		obs("01:06:2023", "08:00:00", 2),
	}

	tests := []struct {
		name   string
		compat Compatibility
		want   int
	}{
		{"kept", CorrectedCompatibility(), 2},
		{"dropped", Compatibility{DropZeroSumSegments: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(in, AggregateOptions{Compat: tt.compat}); len(got) != tt.want {
				t.Errorf("got %d points, want %d", len(got), tt.want)
			}
		})
	}
}

func TestAggregatePointStatistics(t *testing.T) {
	in := []Observation{
		obs("01:06:2023", "08:00:00", 1),
		obs("01:06:2023", "09:00:00", 3),
	}
	points := Aggregate(in, AggregateOptions{Compat: CorrectedCompatibility()})
	if len(points) != 1 {
		t.Fatalf("got %d points", len(points))
	}
	p := points[0]
	if p.Phase != PhaseDay || p.Count != 2 || p.Mean != 2 || p.Sigma != MeasurementSigma([]float64{1, 3}) {
		t.Errorf("got %+v", p)
	}
}

func TestAggregateRange(t *testing.T) {
	in := []Observation{
		obs("30:05:2023", "08:00:00", 100),
		obs("01:06:2023", "08:00:00", 1),
		obs("01:06:2023", "20:00:00", 2),
		obs("02:07:2023", "08:00:00", 100),
		obs("15:06:2023", "08:00:00", 100),
	}

	tests := []struct {
		name       string
		r          Range
		wantLabels []string
	}{
		{
			// entries after the first one past the range are never seen
			name:       "june",
			r:          Range{MonthStart: 6, MonthEnd: 6},
			wantLabels: []string{"01:06:2023_day", "01:06:2023_night"},
		},
		{
			name:       "year before data",
			r:          Range{Year: 2022},
			wantLabels: nil,
		},
		{
			name:       "year of data",
			r:          Range{Year: 2023, MonthStart: 7},
			wantLabels: []string{"02:07:2023_day"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, _ := labelsAndMeans(Aggregate(in, AggregateOptions{Compat: CorrectedCompatibility(), Range: tt.r}))
			if !reflect.DeepEqual(labels, tt.wantLabels) {
				t.Errorf("labels = %v, want %v", labels, tt.wantLabels)
			}
		})
	}
}

func TestAggregateRangeIgnoresSkippedPhase(t *testing.T) {
	june := []Observation{
		obs("01:06:2023", "03:00:00", 1),
		obs("01:06:2023", "04:00:00", 3),
		obs("01:06:2023", "12:00:00", 9),
	}
	withMay := append([]Observation{obs("31:05:2023", "12:00:00", 50)}, june...)

	for _, compat := range []struct {
		name string
		c    Compatibility
	}{
		{"legacy", LegacyCompatibility()},
		{"corrected", CorrectedCompatibility()},
	} {
		t.Run(compat.name, func(t *testing.T) {
			opts := AggregateOptions{Compat: compat.c, Range: Range{MonthStart: 6, MonthEnd: 6}}
			want := Aggregate(june, opts)
			got := Aggregate(withMay, opts)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %+v, want %+v", got, want)
			}
			if len(got) == 0 || got[0].Phase != PhaseNight || got[0].Count != 2 || got[0].Mean != 2 {
				t.Errorf("first point = %+v, want night mean 2 over 2 values", got)
			}
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil, AggregateOptions{}); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestCurrentMonthRange(t *testing.T) {
	got := CurrentMonthRange(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC))
	want := Range{MonthStart: 2, MonthEnd: 2, Year: 2024}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		start, end string
		year       int
		want       Range
		wantErr    bool
	}{
		{"", "", 0, Range{}, false},
		{"Mar.", "june", 2023, Range{MonthStart: 3, MonthEnd: 6, Year: 2023}, false},
		{"3", "", 0, Range{MonthStart: 3}, false},
		{"", "dec", 0, Range{MonthEnd: 12}, false},
		{"13", "", 0, Range{}, true},
		{"july", "march", 0, Range{}, true},
		{"", "", -1, Range{}, true},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.start, tt.end, tt.year)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRange(%q, %q, %d) err = %v", tt.start, tt.end, tt.year, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRange(%q, %q, %d) = %+v, want %+v", tt.start, tt.end, tt.year, got, tt.want)
		}
	}
}
