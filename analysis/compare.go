package analysis

import (
	"github.com/misinfo-watch/cascadia/models"
	"github.com/misinfo-watch/cascadia/stats"
	"github.com/misinfo-watch/cascadia/temporal"
)

// cohortSamples collects the per-cascade size and velocity
// distributions for one cohort, in cascade order.
func cohortSamples(cohort []*models.Cascade) (sizes, velocities []float64) {
	sizes = make([]float64, 0, len(cohort))
	velocities = make([]float64, 0, len(cohort))
	for _, c := range cohort {
		sizes = append(sizes, float64(c.Size()))
		velocities = append(velocities, temporal.Velocity(c))
	}
	return sizes, velocities
}

// ratio is a/b with 0 standing in for an undefined ratio.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Compare derives cohort-level point estimates and runs the two-sided
// Mann-Whitney U test on the size and velocity distributions. The
// rank-sum test is chosen over a parametric one because both
// distributions are heavy-tailed. Cohorts with fewer than two cascades
// skip the tests; the estimates are still produced.
func Compare(bot, human []*models.Cascade) ComparisonResult {
	botSizes, botVels := cohortSamples(bot)
	humanSizes, humanVels := cohortSamples(human)

	res := ComparisonResult{
		BotAvgSize:       stats.Mean(botSizes),
		HumanAvgSize:     stats.Mean(humanSizes),
		BotAvgVelocity:   stats.Mean(botVels),
		HumanAvgVelocity: stats.Mean(humanVels),
	}
	res.SizeDifference = res.BotAvgSize - res.HumanAvgSize
	res.VelocityDifference = res.BotAvgVelocity - res.HumanAvgVelocity
	res.SizeRatio = ratio(res.BotAvgSize, res.HumanAvgSize)
	res.VelocityRatio = ratio(res.BotAvgVelocity, res.HumanAvgVelocity)

	if len(bot) < 2 || len(human) < 2 {
		return res
	}

	if ut, err := stats.MannWhitneyU(botSizes, humanSizes); err == nil {
		u := ut.U
		res.SizeU = &u
		res.SizePValue = ut.P
	}
	if ut, err := stats.MannWhitneyU(botVels, humanVels); err == nil {
		u := ut.U
		res.VelocityU = &u
		res.VelocityPValue = ut.P
	}
	return res
}

// speedMetrics summarizes the velocity distributions per cohort.
func speedMetrics(bot, human []*models.Cascade) SpeedMetrics {
	_, botVels := cohortSamples(bot)
	_, humanVels := cohortSamples(human)
	return SpeedMetrics{
		BotAvgVelocity:      stats.Mean(botVels),
		BotMedianVelocity:   stats.Median(botVels),
		HumanAvgVelocity:    stats.Mean(humanVels),
		HumanMedianVelocity: stats.Median(humanVels),
		VelocityRatio:       ratio(stats.Mean(botVels), stats.Mean(humanVels)),
	}
}

// reachMetrics summarizes the size distributions per cohort.
func reachMetrics(bot, human []*models.Cascade) ReachMetrics {
	botSizes, _ := cohortSamples(bot)
	humanSizes, _ := cohortSamples(human)
	return ReachMetrics{
		BotAvgSize:      stats.Mean(botSizes),
		BotMedianSize:   stats.Median(botSizes),
		BotMaxSize:      stats.Max(botSizes),
		HumanAvgSize:    stats.Mean(humanSizes),
		HumanMedianSize: stats.Median(humanSizes),
		HumanMaxSize:    stats.Max(humanSizes),
		SizeRatio:       ratio(stats.Mean(botSizes), stats.Mean(humanSizes)),
	}
}
