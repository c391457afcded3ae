package quotations

import "strings"

// TempIDPrefix marks identifiers generated by the client as placeholders while
// rows are added interactively in a form. They must never reach storage.
const TempIDPrefix = "tmp-"

// SanitizeLineItems strips placeholder identifiers from line items and their
// package options so the persistence layer assigns real identifiers on insert.
func SanitizeLineItems(lines []LineItem) []LineItem {
	for i := range lines {
		if strings.HasPrefix(lines[i].ID, TempIDPrefix) {
			lines[i].ID = ""
		}
		for j := range lines[i].Packages {
			if strings.HasPrefix(lines[i].Packages[j].ID, TempIDPrefix) {
				lines[i].Packages[j].ID = ""
			}
		}
	}
	return lines
}
