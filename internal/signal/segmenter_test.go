package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Utterance
	}{
		{
			name: "sentence punctuation splits",
			text: "Magkano po ang load? Heto, 50 pesos each.",
			want: []Utterance{
				{Text: "Magkano po ang load", Speaker: SpeakerCustomer},
				{Text: "Heto, 50 pesos each", Speaker: SpeakerOwner},
			},
		},
		{
			name: "pipe and semicolon are boundaries",
			text: "pabili ng sardinas|wala na; salamat",
			want: []Utterance{
				{Text: "pabili ng sardinas", Speaker: SpeakerCustomer},
				{Text: "wala na", Speaker: SpeakerOwner},
				{Text: "salamat", Speaker: SpeakerUnknown},
			},
		},
		{
			name: "empty segments discarded",
			text: "magkano?? ...  !",
			want: []Utterance{
				{Text: "magkano", Speaker: SpeakerCustomer},
			},
		},
		{
			name: "whitespace trimmed",
			text: "  good morning po  .",
			want: []Utterance{
				{Text: "good morning po", Speaker: SpeakerCustomer},
			},
		},
		{
			name: "empty transcript",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.text))
		})
	}
}

func TestTagSpeaker_AmbiguousStaysUnknown(t *testing.T) {
	// One cue on each side cancels out.
	assert.Equal(t, SpeakerUnknown, tagSpeaker("magkano ang meron"))
	assert.Equal(t, SpeakerUnknown, tagSpeaker("dalawang piraso lang"))
}
