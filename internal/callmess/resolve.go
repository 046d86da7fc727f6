package callmess

import (
	"strings"

	"github.com/codex-k8s/telegram-navigator/internal/lang"
)

const (
	// DefaultErrorText is used when neither the entry nor the tree provides a text.
	DefaultErrorText = "An error occurred."
	// DefaultErrorButton labels the fallback control when the tree has no error_button.
	DefaultErrorButton = "Home"
)

// TextOutcome classifies a text lookup.
type TextOutcome int

const (
	// TextNotFound means the category or the status is missing.
	TextNotFound TextOutcome = iota
	// TextFound means the entry exists; Labels may still be empty.
	TextFound
	// TextNoButtons means the entry exists and disables buttons explicitly.
	TextNoButtons
)

// TextResult is the outcome of ResolveText.
type TextResult struct {
	Outcome TextOutcome
	// Text is the unsubstituted template, or the error text when the entry has none.
	Text string
	// Labels are unsubstituted button captions.
	Labels [][]string
	// Notify is the short notification, empty when absent.
	Notify string
}

// ActionOutcome classifies an action lookup.
type ActionOutcome int

const (
	// ActionsNotFound means the entry is missing or does not say anything about buttons.
	ActionsNotFound ActionOutcome = iota
	// ActionsNone means the entry disables buttons explicitly.
	ActionsNone
	// ActionsFound means the entry carries a grid.
	ActionsFound
)

// ActionResult is the outcome of ResolveActions.
type ActionResult struct {
	Outcome ActionOutcome
	Grid    [][]lang.Action
}

// Category returns the part of status before the first "@".
func Category(status string) string {
	category, _, _ := strings.Cut(status, "@")
	return category
}

// ResolveText finds the text entry for status.
func ResolveText(tree *lang.TextTree, status string) TextResult {
	entry, ok := tree.FindText(Category(status), status)
	if !ok {
		return TextResult{Outcome: TextNotFound, Text: errorText(tree)}
	}

	res := TextResult{Outcome: TextFound, Text: errorText(tree)}
	if entry.Text != nil {
		res.Text = *entry.Text
	}
	if entry.Notify != nil {
		res.Notify = *entry.Notify
	}
	switch entry.Mode {
	case lang.ButtonsNull:
		res.Outcome = TextNoButtons
	case lang.ButtonsGrid:
		res.Labels = make([][]string, 0, len(entry.Buttons))
		for _, row := range entry.Buttons {
			labels := make([]string, 0, len(row))
			for _, label := range row {
				labels = append(labels, label.Text)
			}
			res.Labels = append(res.Labels, labels)
		}
	}
	return res
}

// ResolveActions finds the action entry for status.
func ResolveActions(tree *lang.ActionTree, status string) ActionResult {
	entry, ok := tree.FindActions(Category(status), status)
	if !ok {
		return ActionResult{Outcome: ActionsNotFound}
	}
	switch entry.Mode {
	case lang.ButtonsNull:
		return ActionResult{Outcome: ActionsNone}
	case lang.ButtonsGrid:
		return ActionResult{Outcome: ActionsFound, Grid: entry.Buttons}
	default:
		return ActionResult{Outcome: ActionsNotFound}
	}
}

func errorText(tree *lang.TextTree) string {
	if tree != nil && tree.ErrorMsg != "" {
		return tree.ErrorMsg
	}
	return DefaultErrorText
}

func errorButton(tree *lang.TextTree) string {
	if tree != nil && tree.ErrorButton != "" {
		return tree.ErrorButton
	}
	return DefaultErrorButton
}
