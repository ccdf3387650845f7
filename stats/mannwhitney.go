package stats

import (
	"fmt"
	"math"
	"sort"
)

// UTestResult is a two-sided Mann-Whitney U test outcome. P is nil
// when the tie-corrected variance degenerates (for example, all
// observations identical), in which case no p-value is defensible.
type UTestResult struct {
	U float64
	P *float64
}

// MannWhitneyU runs the two-sided Mann-Whitney U test on two
// independent samples. The U statistic reported is that of the first
// sample (U1 = R1 - n1(n1+1)/2). The p-value uses the normal
// approximation with tie correction and a 0.5 continuity correction.
func MannWhitneyU(x, y []float64) (*UTestResult, error) {
	n1 := len(x)
	n2 := len(y)
	if n1 == 0 || n2 == 0 {
		return nil, fmt.Errorf("mann-whitney requires two non-empty samples (got %d and %d)", n1, n2)
	}

	type obs struct {
		value float64
		first bool
	}
	combined := make([]obs, 0, n1+n2)
	for _, v := range x {
		combined = append(combined, obs{v, true})
	}
	for _, v := range y {
		combined = append(combined, obs{v, false})
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].value < combined[j].value
	})

	// average ranks over tie groups, collecting tie sizes for the
	// variance correction
	n := n1 + n2
	r1 := 0.0
	tieTerm := 0.0
	for i := 0; i < n; {
		j := i
		for j < n && combined[j].value == combined[i].value {
			j++
		}
		groupSize := float64(j - i)
		avgRank := (float64(i+1) + float64(j)) / 2
		for k := i; k < j; k++ {
			if combined[k].first {
				r1 += avgRank
			}
		}
		tieTerm += groupSize*groupSize*groupSize - groupSize
		i = j
	}

	u1 := r1 - float64(n1)*float64(n1+1)/2
	res := &UTestResult{U: u1}

	mu := float64(n1) * float64(n2) / 2
	nf := float64(n)
	variance := float64(n1) * float64(n2) / 12 * ((nf + 1) - tieTerm/(nf*(nf-1)))
	if variance <= 0 {
		return res, nil
	}
	sigma := math.Sqrt(variance)

	z := (math.Abs(u1-mu) - 0.5) / sigma
	if z < 0 {
		z = 0
	}
	p := math.Erfc(z / math.Sqrt2)
	if p > 1 {
		p = 1
	}
	res.P = &p
	return res, nil
}
