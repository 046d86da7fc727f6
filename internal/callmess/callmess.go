// Package callmess renders a status into localized text and a grid of controls.
//
// Texts and actions live in two independent trees. Controls are matched
// positionally: row i, column j of the text entry takes the action at row i,
// column j of the action entry. Anything missing on either side degrades to
// the tree's error text and a single control bound to the home callback.
package callmess

import (
	"github.com/codex-k8s/telegram-navigator/internal/lang"
)

// Request describes one resolution.
type Request struct {
	Status string
	// Lang is the requested language; empty selects DefaultLang.
	Lang        string
	DefaultLang string
	// BotUsername fills the implicit bot_username placeholder.
	BotUsername string
	// Values fill placeholders in the message text.
	Values map[string]string
	// Labels fill placeholders in button captions.
	Labels map[string]string
	// Data fill placeholders in callback payloads and URLs.
	Data map[string]string
	// Ranks maps a rank list name to a 1-based level. The level's full name
	// fills the placeholder of the same name in the text and in captions.
	Ranks map[string]int
	// Escape, when set, is applied to Values and BotUsername before they enter
	// the message text. Captions and payloads stay raw.
	Escape func(string) string
	// Accept, when set, rejects controls the transport cannot carry.
	Accept func(Control) bool
	// Base is an existing surface that new rows are appended to.
	Base      *Keyboard
	Placement RowPlacement
}

// Result is a rendered status.
type Result struct {
	Lang     string    `json:"lang"`
	Text     string    `json:"text"`
	Notify   string    `json:"notify,omitempty"`
	Outcome  Outcome   `json:"outcome"`
	Keyboard *Keyboard `json:"keyboard,omitempty"`
	// FellBack reports whether the default language was used instead of the requested one.
	FellBack bool `json:"fell_back,omitempty"`
}

// Resolve loads the trees for the request language and renders req.Status.
// Only a missing tree source is returned as an error.
func Resolve(src lang.Source, req Request) (Result, error) {
	trees, err := lang.LoadTrees(src, req.Lang, req.DefaultLang)
	if err != nil {
		return Result{}, err
	}
	return Render(trees, req), nil
}

// Render resolves req.Status against already loaded trees.
func Render(trees lang.Trees, req Request) Result {
	text := ResolveText(trees.Text, req.Status)
	values := withRanks(trees.Text, req.Ranks, req.Values)
	labels := withRanks(trees.Text, req.Ranks, req.Labels)
	botUsername := req.BotUsername
	if req.Escape != nil {
		values = escapeValues(values, req.Escape)
		botUsername = req.Escape(botUsername)
	}
	res := Result{
		Lang:     trees.Lang,
		Text:     Substitute(text.Text, values, botUsername),
		Notify:   text.Notify,
		FellBack: trees.FellBack,
	}

	var actions ActionResult
	if text.Outcome == TextFound {
		actions = ResolveActions(trees.Actions, req.Status)
	}

	res.Keyboard, res.Outcome = Compose(ComposeInput{
		Text:        text,
		Actions:     actions,
		Labels:      labels,
		Data:        req.Data,
		BotUsername: req.BotUsername,
		ErrorButton: errorButton(trees.Text),
		Accept:      req.Accept,
		Base:        req.Base,
		Placement:   req.Placement,
	})
	return res
}

// withRanks returns values extended with the full names of the requested rank levels.
// Explicit values win over rank names. Unknown lists and levels are skipped.
func withRanks(tree *lang.TextTree, ranks map[string]int, values map[string]string) map[string]string {
	if len(ranks) == 0 {
		return values
	}
	out := make(map[string]string, len(values)+len(ranks))
	for list, level := range ranks {
		rank, ok := tree.Rank(list, level)
		if !ok {
			continue
		}
		if full, ok := rank.Full(false); ok {
			out[list] = full
		}
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}

func escapeValues(values map[string]string, escape func(string) string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = escape(v)
	}
	return out
}
