package integration

import "unicode/utf8"

// slowRetrievalMS is the combined source latency above which confidence drops.
const slowRetrievalMS = 5000

// CompletenessScore rates how many sources contributed: 0.3 for GitHub,
// 0.4 for Jira, 0.2 for Confluence and 0.1 for a description longer than
// 50 characters.
func CompletenessScore(c *IntegrationContext) float64 {
	if c == nil || c.GitHub == nil {
		return 0
	}

	score := 0.3
	if c.Jira != nil {
		score += 0.4
	}
	if len(c.ConfluencePages) > 0 {
		score += 0.2
	}
	if utf8.RuneCountInString(c.GitHub.Description) > 50 {
		score += 0.1
	}
	return clamp(score)
}

// ConfidenceScore combines retrieval success with data richness. Sources
// present in the context are the ones that were retrieved successfully.
func ConfidenceScore(c *IntegrationContext) float64 {
	if c == nil {
		return 0
	}

	score := 0.5
	var totalMS int64

	if gh := c.GitHub; gh != nil {
		score += 0.3
		if utf8.RuneCountInString(gh.Description) > 100 {
			score += 0.1
		}
		if gh.ReviewComments > 0 {
			score += 0.1
		}
		totalMS += gh.Metadata.ResponseTimeMS
	}

	if c.Jira != nil {
		score += 0.2
		totalMS += c.Jira.Metadata.ResponseTimeMS
	}

	if totalMS > slowRetrievalMS {
		score -= 0.1
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
