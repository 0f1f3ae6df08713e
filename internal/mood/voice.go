package mood

// VoiceFeatures are heuristic features derived from a voice sample by the
// capture layer. Each value is expected in [0,1]; the classifier does not
// clamp or validate them.
type VoiceFeatures struct {
	Pitch  float64 `json:"pitch"  yaml:"pitch"`
	Energy float64 `json:"energy" yaml:"energy"`
	Tempo  float64 `json:"tempo"  yaml:"tempo"`
}

type voiceRule struct {
	name  string
	match func(VoiceFeatures) bool
	label Label
}

// voiceRules are evaluated top to bottom and the first match wins. The rules
// overlap, so their order is part of the behavior.
var voiceRules = []voiceRule{
	{
		name:  "loud, high and fast",
		match: func(f VoiceFeatures) bool { return f.Energy > 0.7 && f.Pitch > 0.6 && f.Tempo > 0.7 },
		label: Energetic,
	},
	{
		name:  "loud and high",
		match: func(f VoiceFeatures) bool { return f.Energy > 0.7 && f.Pitch > 0.6 },
		label: Happy,
	},
	{
		name:  "quiet, low and slow",
		match: func(f VoiceFeatures) bool { return f.Energy < 0.4 && f.Pitch < 0.4 && f.Tempo < 0.3 },
		label: Calm,
	},
	{
		name:  "quiet and low",
		match: func(f VoiceFeatures) bool { return f.Energy < 0.4 && f.Pitch < 0.4 },
		label: Sad,
	},
	{
		name:  "loud and low",
		match: func(f VoiceFeatures) bool { return f.Energy > 0.7 && f.Pitch < 0.5 },
		label: Angry,
	},
	{
		name:  "moderate and high",
		match: func(f VoiceFeatures) bool { return f.Energy > 0.4 && f.Energy < 0.7 && f.Pitch > 0.5 },
		label: Romantic,
	},
	{
		name:  "moderate",
		match: func(f VoiceFeatures) bool { return f.Energy > 0.4 && f.Energy < 0.7 },
		label: Relaxed,
	},
}

// ClassifyVoice maps voice features to a label using the ordered voice rules.
// Features that match no rule yield DefaultLabel.
func ClassifyVoice(f VoiceFeatures) Label {
	label, _ := ExplainVoice(f)
	return label
}

// ExplainVoice returns the label for f together with a short description of
// the rule that produced it. The description is empty when no rule matched.
func ExplainVoice(f VoiceFeatures) (Label, string) {
	for _, r := range voiceRules {
		if r.match(f) {
			return r.label, r.name
		}
	}
	return DefaultLabel, ""
}
