package site

import "makersite/internal/model"

// FormatEventDate renders the display date for an event card, localized
// by event origin: domestic events use 年月日 form, international ones
// English month names.
//
//	domestic single    2025年08月02日
//	domestic range     2025年08月02日〜03日 / 2025年08月31日〜09月01日
//	intl single        August 2, 2025
//	intl range         August 2-3, 2025 / August 31 - September 1, 2025
func FormatEventDate(ev model.Event) string {
	if ev.DateFrom == nil {
		return ""
	}
	start := *ev.DateFrom

	if !ev.MultiDay() {
		if ev.IsDomestic {
			return start.Format("2006年01月02日")
		}
		return start.Format("January 2, 2006")
	}

	end := *ev.DateTo

	if ev.IsDomestic {
		if start.Month() == end.Month() {
			return start.Format("2006年01月02日") + "〜" + end.Format("02日")
		}
		return start.Format("2006年01月02日") + "〜" + end.Format("01月02日")
	}

	if start.Month() == end.Month() {
		return start.Format("January 2") + "-" + end.Format("2, 2006")
	}
	return start.Format("January 2") + " - " + end.Format("January 2, 2006")
}

// TruncateDescription caps card descriptions at limit runes, appending
// an ellipsis marker when cut.
func TruncateDescription(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
