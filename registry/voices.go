package registry

// Voice is a text-to-speech voice of the speech endpoint.
type Voice struct {
	ID          string
	Name        string
	Description string
	Gender      string // "male" or "female"
}

var voices = []Voice{
	// Female
	{ID: "alloy", Name: "Alloy", Description: "Balanced neutral", Gender: "female"},
	{ID: "nova", Name: "Nova", Description: "Friendly and professional", Gender: "female"},
	{ID: "shimmer", Name: "Shimmer", Description: "Light and bright", Gender: "female"},
	{ID: "coral", Name: "Coral", Description: "Gentle and calm", Gender: "female"},
	{ID: "verse", Name: "Verse", Description: "Vivid poetry", Gender: "female"},
	{ID: "ballad", Name: "Ballad", Description: "Lyrical and soft", Gender: "female"},
	{ID: "aster", Name: "Aster", Description: "Clear and direct", Gender: "female"},
	{ID: "brook", Name: "Brook", Description: "Smooth and comfortable", Gender: "female"},
	{ID: "clover", Name: "Clover", Description: "Lively and youthful", Gender: "female"},
	{ID: "elan", Name: "Elan", Description: "Elegant and fluent", Gender: "female"},
	// Male
	{ID: "echo", Name: "Echo", Description: "Deep and powerful", Gender: "male"},
	{ID: "fable", Name: "Fable", Description: "Warm narration", Gender: "male"},
	{ID: "onyx", Name: "Onyx", Description: "Majestic and solemn", Gender: "male"},
	{ID: "ash", Name: "Ash", Description: "Thinking calmly", Gender: "male"},
	{ID: "sage", Name: "Sage", Description: "Wisdom and sophistication", Gender: "male"},
	{ID: "dan", Name: "Dan", Description: "Steady male voice", Gender: "male"},
	{ID: "amuch", Name: "Amuch", Description: "Full and natural", Gender: "male"},
}

// DefaultVoiceID is used when no voice is requested.
const DefaultVoiceID = "alloy"

// Voices returns the voice catalogue.
func Voices() []Voice {
	return voices
}

// FindVoice looks a voice up by id.
func FindVoice(id string) (Voice, bool) {
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}
