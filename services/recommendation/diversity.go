package recommendation

import "nutrimatch-go-worker/structs"

// SelectDiverse returns at most n records from a score-descending list. The
// best record of each category comes first, then the remaining slots are
// filled in score order. Lists no longer than n are returned unchanged.
func SelectDiverse(records []structs.ScoreRecord, n int) []structs.ScoreRecord {
	if n < 0 {
		n = 0
	}
	if len(records) <= n {
		return records
	}

	selected := make([]structs.ScoreRecord, 0, n)
	taken := make([]bool, len(records))
	usedCategories := make(map[int64]bool)
	for i, record := range records {
		if len(selected) >= n {
			break
		}
		categoryID := record.Food.CategoryID
		if categoryID == nil || usedCategories[*categoryID] {
			continue
		}
		usedCategories[*categoryID] = true
		taken[i] = true
		selected = append(selected, record)
	}

	for i, record := range records {
		if len(selected) >= n {
			break
		}
		if !taken[i] {
			selected = append(selected, record)
		}
	}
	return selected
}
