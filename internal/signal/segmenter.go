package signal

import "strings"

// Speaker is the heuristically tagged source of an utterance.
type Speaker string

// Speaker tags. The keyword heuristic is approximate; ambiguous utterances
// stay "unknown" and downstream consumers must not treat tags as ground truth.
const (
	SpeakerCustomer Speaker = "customer"
	SpeakerOwner    Speaker = "owner"
	SpeakerUnknown  Speaker = "unknown"
)

// Utterance is one segment of a transcript with its tagged speaker.
type Utterance struct {
	Text    string
	Speaker Speaker
}

// Price-inquiry and greeting phrasing marks the customer side; availability
// and price-offer phrasing marks the owner side.
var (
	customerCues = []string{
		"magkano", "how much", "pabili", "pahingi", "penge",
		"bili", "may stock", "good morning", "good evening",
	}
	ownerCues = []string{
		"meron", "wala na", "out of stock", "available",
		"pesos", "piso", "each", "sukli", "heto",
	}
)

// Segment splits raw transcript text into utterances on sentence-terminal
// punctuation (pipe and semicolon are treated as boundaries too), trims
// whitespace, discards empties, and tags each utterance's speaker.
func Segment(text string) []Utterance {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '?', '!', '|', ';':
			return true
		}
		return false
	})

	utterances := make([]Utterance, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		utterances = append(utterances, Utterance{
			Text:    trimmed,
			Speaker: tagSpeaker(trimmed),
		})
	}
	return utterances
}

// tagSpeaker counts cue hits per side and tags the stronger one; ties and
// cue-free utterances stay unknown.
func tagSpeaker(utterance string) Speaker {
	lower := strings.ToLower(utterance)

	customerHits := 0
	for _, cue := range customerCues {
		if strings.Contains(lower, cue) {
			customerHits++
		}
	}

	ownerHits := 0
	for _, cue := range ownerCues {
		if strings.Contains(lower, cue) {
			ownerHits++
		}
	}

	switch {
	case customerHits > ownerHits:
		return SpeakerCustomer
	case ownerHits > customerHits:
		return SpeakerOwner
	default:
		return SpeakerUnknown
	}
}
