package instructor

const (
	MIMETypeJSON = "application/json"
	MIMETypeText = "text/plain"
)

type ThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type GenerationConfig struct {
	Temperature      float64        `json:"temperature"`
	TopK             int            `json:"topK"`
	TopP             float64        `json:"topP"`
	MaxOutputTokens  *int           `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   *Schema        `json:"responseSchema,omitempty"`
	ThinkingConfig   ThinkingConfig `json:"thinkingConfig"`
}

func NewGenerationConfig(o PromptOptions, mimeType string, schema *Schema) GenerationConfig {
	if mimeType == "" {
		mimeType = MIMETypeText
		if schema != nil {
			mimeType = MIMETypeJSON
		}
	}
	return GenerationConfig{
		Temperature:      o.Temperature,
		TopK:             o.TopK,
		TopP:             o.TopP,
		MaxOutputTokens:  o.MaxOutputTokens,
		ResponseMimeType: mimeType,
		ResponseSchema:   schema,
		ThinkingConfig:   ThinkingConfig{ThinkingBudget: o.ThinkingBudget},
	}
}

// GenerateContentRequest is the body of one round trip.
type GenerateContentRequest struct {
	Contents         []*Content       `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	Tools            []Tool           `json:"tools,omitempty"`
}
