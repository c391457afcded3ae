package surveys

import "strings"

// TempIDPrefix marks client-side placeholder row identifiers.
const TempIDPrefix = "tmp-"

// RecomputeItems derives area and volume from length, width and coefficient,
// discarding whatever the client sent for the derived fields, and strips
// placeholder identifiers.
func RecomputeItems(items []SurveyItem) []SurveyItem {
	for i := range items {
		if strings.HasPrefix(items[i].ID, TempIDPrefix) {
			items[i].ID = ""
		}
		items[i].Area = items[i].Length * items[i].Width
		items[i].Volume = items[i].Length * items[i].Width * items[i].Coefficient
	}
	return items
}
