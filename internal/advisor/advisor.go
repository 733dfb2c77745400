package advisor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	MsgNoKey   = "I'm sorry, my brain (API Key) is missing! Please configure the API Key to chat with me."
	MsgTrouble = "I'm having trouble connecting to the server right now. Please try again later."
	MsgEmpty   = "I couldn't find a good recommendation for that. Try asking differently!"
)

var ErrNoAPIKey = errors.New("advisor: api key not configured")

// Generator produces a free-text answer for prompt under the given system instruction.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type Advisor struct {
	Gen Generator
}

func New(gen Generator) *Advisor {
	return &Advisor{Gen: gen}
}

// Advise never fails: every failure mode maps onto one of the fixed messages.
func (a *Advisor) Advise(ctx context.Context, query string, products []models.Product) string {
	l := logging.FromContext(ctx).With("svc", "advisor")

	if a == nil || a.Gen == nil {
		return MsgNoKey
	}

	answer, err := a.Gen.Generate(ctx, SystemPrompt(products), query)
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return MsgNoKey
	case err != nil:
		l.Error("generate_failed", "error", err)
		return MsgTrouble
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return MsgEmpty
	}
	if unknown := unknownIDs(answer, products); len(unknown) > 0 {
		l.Warn("answer_rejected", "reason", "cites products not in inventory", "ids", unknown)
		return MsgEmpty
	}
	return answer
}

func inventory(products []models.Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("- %s (ID: %s): $%v. %s Category: %s", p.Name, p.ID, p.Price, p.Description, p.Category))
	}
	return strings.Join(lines, "\n")
}

func SystemPrompt(products []models.Product) string {
	return `You are 'ShopGenie', a helpful AI assistant for Lumina Commerce.
Your goal is to help customers find the best products from our inventory based on their needs.

Here is our current product inventory:
` + inventory(products) + `

Rules:
1. Only recommend products from the list above.
2. Be enthusiastic and concise.
3. If the user asks for something we don't have, politely suggest a similar item from our inventory or say we don't carry it.
4. Format your response with clear bullet points if recommending multiple items.
`
}

var citedID = regexp.MustCompile(`ID:\s*([^\s),;]+)`)

func unknownIDs(answer string, products []models.Product) []string {
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}

	var out []string
	for _, m := range citedID.FindAllStringSubmatch(answer, -1) {
		id := strings.TrimRight(m[1], ".")
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
