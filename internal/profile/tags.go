package profile

import "sort"

// TopTags ranks all tags across the answers by frequency and returns at most
// limit of them. Ties keep first-occurrence order.
func TopTags(answers []SurveyAnswer, limit int) []string {
	counts := make(map[string]int)
	var order []string

	for _, answer := range answers {
		for _, tag := range answer.Tags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}
