package config

import (
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
)

// Business holds static metadata about the business the agent answers for.
type Business struct {
	Name        string `json:"name"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
}

// FAQEntry is one configured question/answer pair.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Question is one lead-qualification question. Order in the config file is
// the order the agent asks them in.
type Question struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// ContactField describes one contact detail the agent tries to collect.
type ContactField struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Prompt   string `json:"prompt,omitempty"` // how the agent asks for it
}

// BusinessConfig is the full conversational configuration, loaded once at
// startup and immutable afterwards.
type BusinessConfig struct {
	Business          Business       `json:"business"`
	FAQs              []FAQEntry     `json:"faqs"`
	Questions         []Question     `json:"questions"`
	ContactFields     []ContactField `json:"contactFields"`
	CloseIntents      []string       `json:"closeIntents"`
	CorrectionMarkers []string       `json:"correctionMarkers"`
	CallbackMarkers   []string       `json:"callbackMarkers"`
	FAQMinScore       float64        `json:"faqMinScore"`
	Greeting          string         `json:"greeting"`
	Closing           string         `json:"closing"`
}

// LoadBusiness reads the business configuration from path. A missing file is
// not fatal: the agent falls back to a minimal default configuration.
func LoadBusiness(path string) (*BusinessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️ Business config %s not found, using defaults", path)
			return DefaultBusinessConfig(), nil
		}
		return nil, fmt.Errorf("read business config: %w", err)
	}

	cfg := DefaultBusinessConfig()
	if err := sonic.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse business config: %w", err)
	}
	if cfg.FAQMinScore <= 0 || cfg.FAQMinScore > 1 {
		return nil, fmt.Errorf("faqMinScore must be in (0, 1], got %v", cfg.FAQMinScore)
	}
	for _, q := range cfg.Questions {
		if q.Key == "" || q.Text == "" {
			return nil, fmt.Errorf("qualification questions need both key and text")
		}
	}
	for _, f := range cfg.ContactFields {
		if f.Name == "" {
			return nil, fmt.Errorf("contact fields need a name")
		}
	}
	return cfg, nil
}

// DefaultBusinessConfig returns the configuration used when no business file
// is present.
func DefaultBusinessConfig() *BusinessConfig {
	return &BusinessConfig{
		Business: Business{
			Name:  "Small Business Solutions",
			Hours: "Monday-Friday 9:00 AM - 5:00 PM",
		},
		ContactFields: []ContactField{
			{Name: "name", Required: true},
			{Name: "company"},
			{Name: "phone", Required: true},
			{Name: "email", Required: true},
		},
		CloseIntents: []string{
			"goodbye", "bye", "that's all", "that is all", "i'm done",
			"nothing else", "hang up", "thanks, that's it",
		},
		CorrectionMarkers: []string{
			"actually", "i meant", "sorry, it's", "no, it's", "correction",
			"let me correct",
		},
		CallbackMarkers: []string{
			"call me back", "call back", "callback", "give me a call",
		},
		FAQMinScore: 0.5,
		Greeting:    "Hello! Thank you for calling. I'm your virtual assistant. How can I help you today?",
		Closing:     "Thank you for calling. Have a great day!",
	}
}

// RequiredContactFields returns the names of contact fields marked required.
func (c *BusinessConfig) RequiredContactFields() []string {
	var out []string
	for _, f := range c.ContactFields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// ContactFieldNames returns all configured contact field names in order.
func (c *BusinessConfig) ContactFieldNames() []string {
	out := make([]string, 0, len(c.ContactFields))
	for _, f := range c.ContactFields {
		out = append(out, f.Name)
	}
	return out
}

// FieldPrompt returns the configured prompt for a contact field, or a generic
// one when the config leaves it blank.
func (c *BusinessConfig) FieldPrompt(name string) string {
	for _, f := range c.ContactFields {
		if f.Name == name && f.Prompt != "" {
			return f.Prompt
		}
	}
	return fmt.Sprintf("Could I get your %s, please?", name)
}
