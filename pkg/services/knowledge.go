package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"Zelvix/models"
)

const (
	promptUserPrefix = "User: "
	promptAISuffix   = "\nAI:"
)

// KnowledgeBase holds the static FAQ and widget documents. Both are read
// once at startup and shared read-only between requests.
type KnowledgeBase struct {
	faq    []models.FAQEntry
	widget *models.WidgetConfig
}

func NewKnowledgeBase(faqPath, widgetConfigPath string) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{}
	if err := readJSONFile(faqPath, &kb.faq); err != nil {
		return nil, fmt.Errorf("failed to load FAQ: %w", err)
	}
	kb.widget = &models.WidgetConfig{}
	if err := readJSONFile(widgetConfigPath, kb.widget); err != nil {
		return nil, fmt.Errorf("failed to load widget config: %w", err)
	}
	if strings.TrimSpace(kb.widget.APIEndpoints.Chat) == "" || strings.TrimSpace(kb.widget.APIEndpoints.Upload) == "" {
		return nil, errors.New("widget config must define apiEndpoints.chat and apiEndpoints.upload")
	}
	log.Printf("[knowledge] loaded %d FAQ entries, bot=%q", len(kb.faq), kb.widget.BotName)
	return kb, nil
}

// NewKnowledgeBaseFrom wraps already decoded documents.
func NewKnowledgeBaseFrom(faq []models.FAQEntry, widget *models.WidgetConfig) *KnowledgeBase {
	if widget == nil {
		widget = &models.WidgetConfig{}
	}
	return &KnowledgeBase{faq: faq, widget: widget}
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error parsing %s: %w", path, err)
	}
	return nil
}

// FAQ returns a copy so callers cannot mutate the shared slice.
func (kb *KnowledgeBase) FAQ() []models.FAQEntry {
	return append([]models.FAQEntry(nil), kb.faq...)
}

func (kb *KnowledgeBase) Widget() *models.WidgetConfig { return kb.widget }

// BuildPrompt renders every FAQ pair in document order followed by the
// user's message:
//
//	Q: <question>
//	A: <answer>
//
//	User: <message>
//	AI:
func (kb *KnowledgeBase) BuildPrompt(message string) string {
	return BuildPrompt(kb.faq, message)
}

func BuildPrompt(faq []models.FAQEntry, message string) string {
	pairs := make([]string, 0, len(faq))
	for _, f := range faq {
		pairs = append(pairs, "Q: "+f.Question+"\nA: "+f.Answer)
	}
	var b strings.Builder
	b.WriteString(strings.Join(pairs, "\n\n"))
	b.WriteString("\n\n")
	b.WriteString(promptUserPrefix)
	b.WriteString(message)
	b.WriteString(promptAISuffix)
	return b.String()
}

// UserMessageFromPrompt recovers the message embedded by BuildPrompt.
func UserMessageFromPrompt(prompt string) string {
	i := strings.LastIndex(prompt, "\n\n"+promptUserPrefix)
	if i < 0 {
		return strings.TrimSpace(prompt)
	}
	msg := prompt[i+2+len(promptUserPrefix):]
	return strings.TrimSuffix(msg, promptAISuffix)
}

// Match looks the query up against the FAQ questions. An exact match
// (case-insensitive) wins; otherwise the first question contained in the
// query, or containing it, is used.
func (kb *KnowledgeBase) Match(query string) (models.FAQEntry, bool) {
	q := normalizeQuestion(query)
	if q == "" {
		return models.FAQEntry{}, false
	}
	for _, f := range kb.faq {
		if normalizeQuestion(f.Question) == q {
			return f, true
		}
	}
	for _, f := range kb.faq {
		fq := normalizeQuestion(f.Question)
		if fq == "" {
			continue
		}
		if strings.Contains(q, fq) || strings.Contains(fq, q) {
			return f, true
		}
	}
	return models.FAQEntry{}, false
}

func normalizeQuestion(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, "?!. ")
	return strings.Join(strings.Fields(s), " ")
}
