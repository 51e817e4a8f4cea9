package jobs

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/applypilot/applypilot/internal/forms"
)

// Posting is the job context a single application run operates on.
type Posting struct {
	Title       string
	Company     string
	Description string
}

// DescriptionFromHTML converts a scraped job description into markdown text
// suitable for prompts and keyword derivation.
func DescriptionFromHTML(html string) (string, error) {
	html = strings.TrimSpace(html)
	if html == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert job description: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Keywords derives the stemmed keyword list for the posting, used by the
// matcher's job-overlap bonus.
func (p Posting) Keywords() []string {
	return forms.ExtractKeywords(p.Description).Stemmed
}

// PromptContext renders the posting as a compact text block for prompts.
func (p Posting) PromptContext() string {
	var b strings.Builder
	if title := strings.TrimSpace(p.Title); title != "" {
		b.WriteString("Position: " + title + "\n")
	}
	if company := strings.TrimSpace(p.Company); company != "" {
		b.WriteString("Company: " + company + "\n")
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(desc)
	}
	return strings.TrimSpace(b.String())
}
