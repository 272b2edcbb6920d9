package model

import "github.com/google/uuid"

// CognitiveDistortion is one of the fixed thinking-error categories a
// CBTEntry can reference. The set is reference data and is never persisted.
type CognitiveDistortion struct {
	ID          string `json:"id"`
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var allDistortions = []CognitiveDistortion{
	{
		ID:          "00000000-0000-0000-0000-000000000001",
		Emoji:       "⚫️",
		Title:       "All-or-Nothing Thinking",
		Description: "Seeing things in black and white categories. If your performance falls short of perfect, you see yourself as a total failure.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000002",
		Emoji:       "🔮",
		Title:       "Overgeneralization",
		Description: "Seeing a single negative event as a never-ending pattern of defeat.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000003",
		Emoji:       "🔍",
		Title:       "Mental Filter",
		Description: "Picking out a single negative detail and dwelling on it exclusively so your vision of reality becomes darkened.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000004",
		Emoji:       "❌",
		Title:       "Disqualifying the Positive",
		Description: "Rejecting positive experiences by insisting they 'don't count' for some reason.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000005",
		Emoji:       "🧠",
		Title:       "Jumping to Conclusions",
		Description: "Making negative interpretations without actual evidence. Mind reading or fortune telling.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000006",
		Emoji:       "🔬",
		Title:       "Magnification or Minimization",
		Description: "Exaggerating the importance of things (like mistakes) or inappropriately shrinking things until they appear tiny.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000007",
		Emoji:       "💭",
		Title:       "Emotional Reasoning",
		Description: "Assuming that your negative emotions reflect the way things really are: 'I feel it, therefore it must be true.'",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000008",
		Emoji:       "📋",
		Title:       "Should Statements",
		Description: "Trying to motivate yourself with 'shoulds' and 'shouldn'ts', as if you need to be whipped and punished before you can do anything.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000009",
		Emoji:       "🏷️",
		Title:       "Labeling",
		Description: "An extreme form of overgeneralization. Instead of describing an error, you attach a negative label to yourself.",
	},
	{
		ID:          "00000000-0000-0000-0000-000000000010",
		Emoji:       "👈",
		Title:       "Personalization",
		Description: "Seeing yourself as the cause of some negative external event for which you were not primarily responsible.",
	},
}

// AllDistortions returns a copy of the built-in distortion categories.
func AllDistortions() []CognitiveDistortion {
	out := make([]CognitiveDistortion, len(allDistortions))
	copy(out, allDistortions)
	return out
}

// LookupDistortion finds a category by id. Ids compare as UUIDs, so case
// differences between exporters do not matter.
func LookupDistortion(id string) (CognitiveDistortion, bool) {
	want, err := uuid.Parse(id)
	if err != nil {
		return CognitiveDistortion{}, false
	}
	for _, d := range allDistortions {
		if uuid.MustParse(d.ID) == want {
			return d, true
		}
	}
	return CognitiveDistortion{}, false
}

// Distortions resolves an entry's distortion ids, skipping unknown ones.
func Distortions(e CBTEntry) []CognitiveDistortion {
	var out []CognitiveDistortion
	for _, id := range e.DistortionIDs {
		if d, ok := LookupDistortion(id); ok {
			out = append(out, d)
		}
	}
	return out
}
