package complaint

import "strings"

// Keyword tiers, checked in order against the lower-cased description.
var (
	veryUrgentKeywords = []string{
		"kebakaran", "kecelakaan", "darurat", "mendesak", "bahaya",
		"tewas", "luka", "kritis", "bencana", "roboh", "ambruk",
		"evakuasi", "longsor", "ledakan", "ancaman", "bom", "jebol",
		"runtuh", "wabah", "keracunan", "segera",
	}
	highKeywords = []string{
		"rusak parah", "mengganggu", "penting", "mogok",
		"macet parah", "banjir", "putus", "bocor besar", "mati",
		"menumpuk", "tidak tertahankan", "sangat", "parah",
	}
	mediumKeywords = []string{
		"perlu perbaikan", "gangguan", "kurang", "lubang", "kotor",
		"sampah", "lambat", "lama", "rusak", "tersumbat", "bocor",
		"tidak pernah", "belum",
	}
)

var priorityTiers = []struct {
	priority Priority
	keywords []string
}{
	{PriorityVeryUrgent, veryUrgentKeywords},
	{PriorityHigh, highKeywords},
	{PriorityMedium, mediumKeywords},
}

// DeterminePriority maps a sentiment label and the raw description to a
// priority tier. Keyword matches win over sentiment; without a match negative
// sentiment is Medium and everything else is Low.
func DeterminePriority(sentiment, description string) Priority {
	if p, _, ok := MatchedKeyword(description); ok {
		return p
	}

	switch strings.ToLower(strings.TrimSpace(sentiment)) {
	case "negatif", "negative":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// MatchedKeyword returns the keyword that decided the tier, if any.
func MatchedKeyword(description string) (Priority, string, bool) {
	text := strings.ToLower(description)
	for _, tier := range priorityTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(text, kw) {
				return tier.priority, kw, true
			}
		}
	}
	return "", "", false
}
