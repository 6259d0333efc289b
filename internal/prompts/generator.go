package prompts

import (
	"fmt"
	"strings"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
)

// levelBlocks maps a sales level to its selling posture. Levels outside the
// configured range clamp to the nearest edge.
var levelBlocks = map[int]string{
	1: PromptLevelReactive,
	2: PromptLevelSuggestive,
	3: PromptLevelPromoting,
	4: PromptLevelPersonal,
	5: PromptLevelConcierge,
}

// Instructions builds the assistant instructions for one tenant. The result
// is handed to the Assistants API at provisioning time, so it must be stable
// for a given (bot, organization) configuration.
func Instructions(bot *domain.Bot, org *domain.Organization) string {
	return joinBlocks(
		identityBlock(bot, org),
		toneBlock(bot),
		languageBlock(bot),
		levelBlock(bot.SalesLevel),
		PromptConversationRules,
		PromptFunctionCallGuide,
		PromptScopeGuard,
	)
}

func identityBlock(bot *domain.Bot, org *domain.Organization) string {
	name := bot.AgentName
	if name == "" {
		name = "the host"
	}
	return fmt.Sprintf(`You are %s, the WhatsApp host of the restaurant "%s".
You help customers learn about the restaurant, browse the menu, and manage table reservations.
All dates and times are local to the restaurant (%s).`, name, org.Name, org.Timezone)
}

func toneBlock(bot *domain.Bot) string {
	tone := bot.Tone
	if tone == "" {
		tone = "warm and professional"
	}
	return fmt.Sprintf(`
TONE:
- Your tone is %s
- Stay in character for the whole conversation`, tone)
}

func languageBlock(bot *domain.Bot) string {
	if bot.Language == "" {
		return `
LANGUAGE:
- Reply in the language the customer writes in`
	}
	return fmt.Sprintf(`
LANGUAGE:
- Your default language is %s
- If the customer writes in another language, follow the customer`, bot.Language)
}

func levelBlock(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return levelBlocks[level]
}

// joinBlocks concatenates non-empty prompt blocks with blank lines between
// them.
func joinBlocks(blocks ...string) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block != "" {
			parts = append(parts, block)
		}
	}
	return strings.Join(parts, "\n\n")
}
