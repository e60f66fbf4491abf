package ai

import "github.com/google/generative-ai-go/genai"

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// candidateOutput is one element of the extraction response array.
type candidateOutput struct {
	Name    string  `json:"name"`
	Region  *string `json:"region,omitempty"`
	Country *string `json:"country,omitempty"`
}

// notesOutput is the refinement response.
type notesOutput struct {
	Notes string `json:"notes"`
}

// candidateSchema forces an array of {name, region?, country?}.
var candidateSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":    {Type: genai.TypeString, Description: "City-level place name"},
			"region":  {Type: genai.TypeString, Description: "State or province, omitted when unknown", Nullable: true},
			"country": {Type: genai.TypeString, Description: "Country name, omitted when unknown", Nullable: true},
		},
		Required: []string{"name"},
	},
}

var notesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"notes": {Type: genai.TypeString},
	},
	Required: []string{"notes"},
}
