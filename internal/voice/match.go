package voice

import (
	"strings"
	"unicode"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
)

// Match finds the control whose label was spoken. Labels are compared without
// case, emoji and punctuation; an exact match beats a label contained in the transcript.
func Match(k *callmess.Keyboard, transcript string) (callmess.Control, bool) {
	spoken := fold(transcript)
	if spoken == "" {
		return callmess.Control{}, false
	}
	if c, ok := k.Find(func(label string) bool { return fold(label) == spoken }); ok {
		return c, true
	}
	return k.Find(func(label string) bool {
		folded := fold(label)
		return folded != "" && strings.Contains(" "+spoken+" ", " "+folded+" ")
	})
}

func fold(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}
