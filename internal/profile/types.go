package profile

// SurveyAnswer is one answered survey question with its personality tags.
type SurveyAnswer struct {
	QuestionID string   `json:"questionId"`
	ChoiceID   string   `json:"choiceId"`
	ChoiceText string   `json:"choiceText"`
	Tags       []string `json:"tags"`
}

// PersonalityProfile is the inferred style profile for a user.
type PersonalityProfile struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Palette     []string `json:"palette"`
	Vibe        string   `json:"vibe"`
	Materials   []string `json:"materials"`
	Budget      string   `json:"budget"`
}

// ProductIdea is one purchasable product suggestion tied to the profile.
type ProductIdea struct {
	Name        string   `json:"name"`
	SearchQuery string   `json:"searchQuery"`
	Category    string   `json:"category"`
	StyleHints  []string `json:"styleHints"`
	ColorHints  []string `json:"colorHints"`
	Rationale   string   `json:"rationale"`
}

// Inference bundles the profile with its curated product list.
type Inference struct {
	Personality PersonalityProfile `json:"personality"`
	Products    []ProductIdea      `json:"products"`
}

// ProductCount is the fixed number of product ideas per inference.
const ProductCount = 6

// defaultProduct pads short product lists so the contract of exactly six
// entries always holds.
func defaultProduct() ProductIdea {
	return ProductIdea{
		Name:        "nightstand lamp",
		SearchQuery: "nightstand lamp",
		Category:    "LAMP",
		StyleHints:  []string{},
		ColorHints:  []string{},
	}
}
