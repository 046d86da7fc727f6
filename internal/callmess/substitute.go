package callmess

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/valyala/fasttemplate"
)

// BotUsernameKey is always available to templates and resolves to the bot identity name.
const BotUsernameKey = "bot_username"

// Substitute expands {key} placeholders in template using values plus the implicit
// bot_username key. When a placeholder has no value or a brace is unbalanced, it falls
// back to replacing known {key} occurrences literally and leaves everything else as is.
// values is never modified.
func Substitute(template string, values map[string]string, botUsername string) string {
	if !strings.ContainsAny(template, "{}") {
		return template
	}
	merged := withBotUsername(values, botUsername)

	out, err := fasttemplate.ExecuteFuncStringWithErr(template, "{", "}", func(w io.Writer, tag string) (int, error) {
		value, ok := merged[tag]
		if !ok {
			return 0, fmt.Errorf("placeholder %q has no value", tag)
		}
		return w.Write([]byte(value))
	})
	if err != nil {
		return replaceLiteral(template, merged)
	}
	return out
}

func withBotUsername(values map[string]string, botUsername string) map[string]string {
	merged := make(map[string]string, len(values)+1)
	for k, v := range values {
		merged[k] = v
	}
	merged[BotUsernameKey] = botUsername
	return merged
}

func replaceLiteral(template string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		template = strings.ReplaceAll(template, "{"+k+"}", values[k])
	}
	return template
}
