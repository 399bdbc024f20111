package provider

import (
	"fmt"
	"strings"
)

const summarizePersona = "You are AstroBio Buddy, assisting with NASA bioscience literature. " +
	"Return a concise abstract (~2-3 sentences), 3-5 bullet key takeaways, and 3-6 topical tags. " +
	"If a non-English language is requested, translate outputs to that language. Target language code: %s"

func summarizeSystem(language string) string {
	return fmt.Sprintf(summarizePersona, language)
}

func summarizePrompt(text string, takeaways int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following text. Respond with a JSON object with the fields "+
		"\"abstract\" (string), \"key_takeaways\" (array of %d strings) and "+
		"\"ai_tags\" (array of 3-6 short strings). Do not add any other text.\n\n", takeaways)
	b.WriteString(text)
	return b.String()
}
