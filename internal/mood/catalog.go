package mood

import "slices"

// FeatureTarget is a single provider audio-feature bound or target,
// e.g. min_energy=0.7. Names use the provider's query parameter spelling.
type FeatureTarget struct {
	Name  string
	Value float64
}

// DisplayMeta is presentation metadata for a label.
type DisplayMeta struct {
	Name          string
	Emoji         string
	ColorGradient string
	Description   string
}

// Profile is the static catalog entry for a label.
type Profile struct {
	Label         Label
	Keywords      []string
	Genres        []string // provider seed genres, in order
	RelatedGenres []string // broader genre tags shown alongside the label
	Features      []FeatureTarget
	Display       DisplayMeta
}

// catalog holds one profile per label, in the same order as `order`.
var catalog = []Profile{
	{
		Label:         Happy,
		Keywords:      []string{"happy", "joy", "excited", "great", "wonderful", "amazing", "love", "cheerful", "delighted", "pleased"},
		Genres:        []string{"pop", "dance", "happy"},
		RelatedGenres: []string{"pop", "dance", "party", "summer"},
		Features: []FeatureTarget{
			{"min_valence", 0.6},
			{"min_energy", 0.6},
			{"target_valence", 0.8},
			{"target_energy", 0.7},
		},
		Display: DisplayMeta{Name: "Happy", Emoji: "😊", ColorGradient: "from-yellow-400 to-orange-500", Description: "Upbeat and joyful"},
	},
	{
		Label:         Sad,
		Keywords:      []string{"sad", "depressed", "down", "unhappy", "miserable", "lonely", "heartbroken", "crying", "tears"},
		Genres:        []string{"acoustic", "piano", "sad"},
		RelatedGenres: []string{"acoustic", "piano", "sad", "blues"},
		Features: []FeatureTarget{
			{"max_valence", 0.4},
			{"max_energy", 0.5},
			{"target_valence", 0.2},
			{"target_energy", 0.3},
		},
		Display: DisplayMeta{Name: "Sad", Emoji: "😢", ColorGradient: "from-blue-400 to-blue-600", Description: "Melancholic and emotional"},
	},
	{
		Label:         Angry,
		Keywords:      []string{"angry", "mad", "furious", "rage", "annoyed", "frustrated", "irritated", "hate"},
		Genres:        []string{"metal", "rock", "hard-rock"},
		RelatedGenres: []string{"metal", "rock", "hard-rock", "punk"},
		Features: []FeatureTarget{
			{"min_energy", 0.7},
			{"min_loudness", -10},
			{"target_energy", 0.9},
		},
		Display: DisplayMeta{Name: "Angry", Emoji: "😠", ColorGradient: "from-red-500 to-red-700", Description: "Intense and aggressive"},
	},
	{
		Label:         Relaxed,
		Keywords:      []string{"relaxed", "chill", "calm", "peaceful", "tranquil", "serene", "mellow"},
		Genres:        []string{"ambient", "chill", "sleep"},
		RelatedGenres: []string{"ambient", "chill", "study", "sleep"},
		Features: []FeatureTarget{
			{"max_energy", 0.4},
			{"max_tempo", 100},
			{"target_valence", 0.5},
			{"target_energy", 0.3},
		},
		Display: DisplayMeta{Name: "Relaxed", Emoji: "😌", ColorGradient: "from-green-400 to-teal-500", Description: "Calm and peaceful"},
	},
	{
		Label:         Calm,
		Keywords:      []string{"calm", "quiet", "still", "peaceful", "zen", "meditation", "breathe"},
		Genres:        []string{"ambient", "classical", "chill"},
		RelatedGenres: []string{"ambient", "lo-fi", "meditation", "classical"},
		Features: []FeatureTarget{
			{"max_energy", 0.5},
			{"max_tempo", 110},
			{"target_valence", 0.6},
			{"target_energy", 0.4},
		},
		Display: DisplayMeta{Name: "Calm", Emoji: "🧘", ColorGradient: "from-cyan-400 to-blue-500", Description: "Tranquil and meditative"},
	},
	{
		Label:         Energetic,
		Keywords:      []string{"energetic", "pumped", "hyped", "excited", "active", "workout", "motivated"},
		Genres:        []string{"edm", "workout", "dance"},
		RelatedGenres: []string{"edm", "workout", "electronic", "dance"},
		Features: []FeatureTarget{
			{"min_energy", 0.7},
			{"min_tempo", 120},
			{"target_energy", 0.9},
			{"target_valence", 0.7},
		},
		Display: DisplayMeta{Name: "Energetic", Emoji: "⚡", ColorGradient: "from-purple-500 to-pink-600", Description: "High-energy and pumped"},
	},
	{
		Label:         Romantic,
		Keywords:      []string{"romantic", "love", "loving", "affection", "passion", "intimate", "tender"},
		Genres:        []string{"soul", "r-n-b", "romance"},
		RelatedGenres: []string{"romance", "soul", "r-n-b", "love"},
		Features: []FeatureTarget{
			{"min_valence", 0.5},
			{"target_valence", 0.7},
			{"target_energy", 0.5},
		},
		Display: DisplayMeta{Name: "Romantic", Emoji: "❤️", ColorGradient: "from-pink-400 to-red-500", Description: "Loving and passionate"},
	},
}

// Lookup returns the profile for l, or false if l is not a supported label.
func Lookup(l Label) (Profile, bool) {
	i := slices.Index(order, l)
	if i < 0 {
		return Profile{}, false
	}
	return catalog[i].clone(), true
}

// ProfileFor returns the profile for l. Unknown labels resolve to the happy
// profile.
func ProfileFor(l Label) Profile {
	if p, ok := Lookup(l); ok {
		return p
	}
	return catalog[0].clone()
}

// Profiles returns every profile in catalog order.
func Profiles() []Profile {
	out := make([]Profile, len(catalog))
	for i, p := range catalog {
		out[i] = p.clone()
	}
	return out
}

func (p Profile) clone() Profile {
	p.Keywords = slices.Clone(p.Keywords)
	p.Genres = slices.Clone(p.Genres)
	p.RelatedGenres = slices.Clone(p.RelatedGenres)
	p.Features = slices.Clone(p.Features)
	return p
}
