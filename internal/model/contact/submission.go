package contact

import "time"

// Field limits checked before any side effect is attempted.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 255
	MaxMessageLength = 5000
	MaxServices      = 10
	MaxTokenLength   = 4096
)

// StatusPending is the initial status of every persisted submission.
const StatusPending = "pending"

// Submission is the raw contact form payload as received from the site.
type Submission struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Company        string   `json:"company,omitempty"`
	Services       []string `json:"services"`
	Budget         string   `json:"budget,omitempty"`
	Message        string   `json:"message"`
	RecaptchaToken string   `json:"recaptchaToken"`
}

// Record is the row persisted for an accepted submission.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Services  []string  `json:"services"`
	Budget    string    `json:"budget,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

var serviceLabels = map[string]string{
	"ai-agents": "AI Agents & Automations",
	"chatbots":  "Custom AI Chatbots",
	"3d-ar":     "3D & AR Modelling",
}

var budgetLabels = map[string]string{
	"15k-30k":  "$15,000 - $30,000",
	"30k-50k":  "$30,000 - $50,000",
	"50k-100k": "$50,000 - $100,000",
	"100k+":    "$100,000+",
	"not-sure": "Not sure yet",
}

// ServiceLabel maps a service tag to its display label, falling back to
// the raw tag for unknown values.
func ServiceLabel(tag string) string {
	if label, ok := serviceLabels[tag]; ok {
		return label
	}
	return tag
}

// BudgetLabel maps a budget tag to its display label.
func BudgetLabel(tag string) string {
	if label, ok := budgetLabels[tag]; ok {
		return label
	}
	if tag == "" {
		return "Not specified"
	}
	return tag
}
