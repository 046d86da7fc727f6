package callmess

import (
	"github.com/codex-k8s/telegram-navigator/internal/lang"
)

// HomeCallback is the callback bound to the fallback control.
const HomeCallback = "home"

// RowPlacement decides where composed rows start on a surface that already has rows.
type RowPlacement int

const (
	// RowGapAfterExisting leaves one free position after existing rows.
	RowGapAfterExisting RowPlacement = iota
	// RowContiguous places new rows right after existing ones.
	RowContiguous
)

// MaxExistingRows bounds the rows an existing surface may carry, matching
// the number of rows Telegram accepts on an inline keyboard.
const MaxExistingRows = 100

// StartIndex returns the first position for new rows given the number of existing rows.
func StartIndex(existingRows int, placement RowPlacement) int {
	if existingRows != 0 && placement == RowGapAfterExisting {
		return existingRows + 1
	}
	return existingRows
}

// Outcome describes what a resolution produced.
type Outcome int

const (
	// OutcomeRendered means text plus a fully resolved grid.
	OutcomeRendered Outcome = iota
	// OutcomeTextOnly means the entry has no controls.
	OutcomeTextOnly
	// OutcomeFallback means the single "home" control replaced the grid.
	OutcomeFallback
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeRendered:
		return "rendered"
	case OutcomeTextOnly:
		return "text_only"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Control is a fully resolved interactive element.
type Control struct {
	Label    string          `json:"label"`
	Kind     lang.ActionKind `json:"kind"`
	Callback string          `json:"callback,omitempty"`
	Payload  string          `json:"payload,omitempty"`
	URL      string          `json:"url,omitempty"`
}

// Row is a line of controls placed at Position on the surface.
type Row struct {
	Position int       `json:"position"`
	Controls []Control `json:"controls"`
}

// Keyboard is an ordered surface of rows.
type Keyboard struct {
	Rows []Row `json:"rows"`
}

// Len returns the number of rows.
func (k *Keyboard) Len() int {
	if k == nil {
		return 0
	}
	return len(k.Rows)
}

// Grid returns the controls row by row, dropping positions.
func (k *Keyboard) Grid() [][]Control {
	if k == nil {
		return nil
	}
	out := make([][]Control, 0, len(k.Rows))
	for _, row := range k.Rows {
		out = append(out, row.Controls)
	}
	return out
}

// Find returns the first control whose label satisfies match.
func (k *Keyboard) Find(match func(label string) bool) (Control, bool) {
	if k == nil {
		return Control{}, false
	}
	for _, row := range k.Rows {
		for _, c := range row.Controls {
			if match(c.Label) {
				return c, true
			}
		}
	}
	return Control{}, false
}

func (k *Keyboard) clone() *Keyboard {
	if k == nil {
		return nil
	}
	out := &Keyboard{Rows: make([]Row, 0, len(k.Rows))}
	for _, row := range k.Rows {
		out.Rows = append(out.Rows, Row{Position: row.Position, Controls: append([]Control(nil), row.Controls...)})
	}
	return out
}

// ComposeInput carries everything Compose needs.
type ComposeInput struct {
	Text    TextResult
	Actions ActionResult
	// Labels fill placeholders in button captions.
	Labels map[string]string
	// Data fill placeholders in callback payloads and URLs.
	Data        map[string]string
	BotUsername string
	// ErrorButton labels the fallback control.
	ErrorButton string
	// Accept rejects controls the transport cannot carry; rejected controls count as unresolved.
	Accept func(Control) bool
	// Base is an existing surface to extend; it is copied, never modified.
	Base      *Keyboard
	Placement RowPlacement
}

// Compose merges labels and actions positionally. A nil keyboard with OutcomeTextOnly
// means the message carries no controls beyond Base.
func Compose(in ComposeInput) (*Keyboard, Outcome) {
	switch {
	case in.Text.Outcome == TextNoButtons:
		return in.Base.clone(), OutcomeTextOnly
	case in.Text.Outcome == TextNotFound:
		return fallback(in), OutcomeFallback
	case len(in.Text.Labels) == 0:
		return in.Base.clone(), OutcomeTextOnly
	case in.Actions.Outcome == ActionsNone:
		return in.Base.clone(), OutcomeTextOnly
	case in.Actions.Outcome == ActionsNotFound:
		return fallback(in), OutcomeFallback
	}

	out := in.Base.clone()
	if out == nil {
		out = &Keyboard{}
	}
	position := StartIndex(in.Base.Len(), in.Placement)
	for i, labels := range in.Text.Labels {
		if i >= len(in.Actions.Grid) {
			return fallback(in), OutcomeFallback
		}
		actions := in.Actions.Grid[i]
		row := Row{Position: position, Controls: make([]Control, 0, len(labels))}
		for j, label := range labels {
			if j >= len(actions) {
				return fallback(in), OutcomeFallback
			}
			control, ok := resolveControl(Substitute(label, in.Labels, in.BotUsername), actions[j], in)
			if !ok {
				return fallback(in), OutcomeFallback
			}
			row.Controls = append(row.Controls, control)
		}
		out.Rows = append(out.Rows, row)
		position++
	}
	return out, OutcomeRendered
}

func resolveControl(label string, action lang.Action, in ComposeInput) (Control, bool) {
	var control Control
	switch action.Kind {
	case lang.KindCallback:
		control = Control{
			Label:    label,
			Kind:     lang.KindCallback,
			Callback: action.Callback,
			Payload:  Substitute(action.Data, in.Data, in.BotUsername),
		}
	case lang.KindURL:
		control = Control{
			Label: label,
			Kind:  lang.KindURL,
			URL:   Substitute(action.Callback, in.Data, in.BotUsername),
		}
	default:
		return Control{}, false
	}
	if in.Accept != nil && !in.Accept(control) {
		return Control{}, false
	}
	return control, true
}

func fallback(in ComposeInput) *Keyboard {
	out := in.Base.clone()
	if out == nil {
		out = &Keyboard{}
	}
	label := in.ErrorButton
	if label == "" {
		label = DefaultErrorButton
	}
	out.Rows = append(out.Rows, Row{
		Position: StartIndex(in.Base.Len(), in.Placement),
		Controls: []Control{{Label: label, Kind: lang.KindCallback, Callback: HomeCallback}},
	})
	return out
}
