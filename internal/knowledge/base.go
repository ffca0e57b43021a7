// Package knowledge holds the static RCM product catalog and renders it into
// searchable entries and chat-ready markdown.
package knowledge

import (
	"fmt"
	"strings"

	"supportbot/internal/domain"
)

const (
	keyBenefitsShown = 4

	companyOverviewQuery = "Tell me about Thoughtful AI"
	companyBenefitsQuery = "What are the benefits of using Thoughtful AI?"
)

var (
	benefitTriggers = []string{"benefit", "advantage", "why", "help"}
	useCaseTriggers = []string{"use", "case", "scenario", "when", "example"}
)

// Entries builds the searchable knowledge base. Order is stable: for every
// agent its description entry then its benefits entry, followed by the
// company overview and the company benefits.
func Entries() []domain.KnowledgeEntry {
	out := make([]domain.KnowledgeEntry, 0, len(Agents)*2+2)
	for _, a := range Agents {
		out = append(out, domain.KnowledgeEntry{
			ID:        strings.ToLower(a.ID) + "-description",
			Query:     fmt.Sprintf("What does %s do?", a.Name),
			Response:  a.Description,
			Category:  domain.CategoryAgentDescription,
			RelatedID: a.ID,
		})

		benefits := fmt.Sprintf("Benefits of %s: %s", a.Name, strings.Join(a.Benefits, ", "))
		out = append(out, domain.KnowledgeEntry{
			ID:        strings.ToLower(a.ID) + "-benefits",
			Query:     benefits,
			Response:  benefits,
			Category:  domain.CategoryAgentBenefits,
			RelatedID: a.ID,
		})
	}

	out = append(out,
		domain.KnowledgeEntry{
			ID:       "company-overview",
			Query:    companyOverviewQuery,
			Response: CompanyInfo.Description,
			Category: domain.CategoryCompany,
		},
		domain.KnowledgeEntry{
			ID:       "company-benefits",
			Query:    companyBenefitsQuery,
			Response: FormatBenefits(),
			Category: domain.CategoryBenefits,
		},
	)
	return out
}

// Overview lists every agent with its full name and description.
func Overview() string {
	var b strings.Builder
	b.WriteString("**Thoughtful AI's Complete Agent Suite:**\n\n")
	for _, a := range Agents {
		fmt.Fprintf(&b, "**%s**\n%s\n\n", a.FullName, a.Description)
	}
	return b.String()
}

// FormatBenefits renders the company-level benefits.
func FormatBenefits() string {
	cb := CompanyInfo.Benefits
	items := []struct{ title, text string }{
		{"Cost Savings", cb.CostSavings},
		{"Denial Reduction", cb.DenialReduction},
		{"Efficiency", cb.Efficiency},
		{"Accuracy", cb.Accuracy},
		{"Speed", cb.Speed},
		{"Scalability", cb.Scalability},
	}

	var b strings.Builder
	b.WriteString("Using Thoughtful AI's platform delivers transformational results:\n\n")
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• **%s**: %s", it.title, it.text)
	}
	b.WriteString("\n\nOur AI agents handle the entire revenue cycle, freeing your team to focus on patient care.")
	return b.String()
}

// FormatAgent describes an agent, adding key benefits or use cases when the
// query asks about them.
func FormatAgent(a Agent, query string) string {
	q := strings.ToLower(query)

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n%s\n\n", a.FullName, a.Description)

	if containsAny(q, benefitTriggers) {
		b.WriteString("**Key Benefits:**\n")
		for i, benefit := range a.Benefits {
			if i == keyBenefitsShown {
				break
			}
			fmt.Fprintf(&b, "• %s\n", benefit)
		}
		b.WriteString("\n")
	}

	if containsAny(q, useCaseTriggers) {
		b.WriteString("**Common Use Cases:**\n")
		for _, uc := range a.UseCases {
			fmt.Fprintf(&b, "• %s\n", uc)
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
