package analysis

import (
	"github.com/misinfo-watch/cascadia/cascades"
	"github.com/misinfo-watch/cascadia/models"
)

// ComputeAttribution aggregates global bot involvement: post-level
// counts over the whole table, and initiation counts over the already
// extracted cohorts. Cascades with an unknown initiator are excluded
// from the initiation denominator.
//
// Returns a SchemaError if the table lacks the bot_label column.
func ComputeAttribution(table *models.EventTable, cohorts *cascades.Cohorts) (Attribution, error) {
	if err := table.Require(models.ColBotLabel); err != nil {
		return Attribution{}, err
	}

	attr := Attribution{
		TotalPosts:             len(table.Events),
		BotInitiatedCascades:   len(cohorts.Bot),
		HumanInitiatedCascades: len(cohorts.Human),
	}
	for _, ev := range table.Events {
		switch ev.BotLabel {
		case models.LabelBot:
			attr.BotPosts++
		case models.LabelHuman:
			attr.HumanPosts++
		}
	}
	if attr.TotalPosts > 0 {
		attr.BotPostPercentage = float64(attr.BotPosts) / float64(attr.TotalPosts) * 100
	}
	if labeled := attr.BotInitiatedCascades + attr.HumanInitiatedCascades; labeled > 0 {
		attr.BotInitiationPercentage = float64(attr.BotInitiatedCascades) / float64(labeled) * 100
	}
	return attr, nil
}
