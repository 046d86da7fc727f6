package lang

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ButtonsMode tells whether an entry lists buttons, disables them, or says nothing.
type ButtonsMode int

const (
	// ButtonsUnset means the entry has no "buttons" key.
	ButtonsUnset ButtonsMode = iota
	// ButtonsNull means the entry sets "buttons: null".
	ButtonsNull
	// ButtonsGrid means the entry carries a grid of buttons.
	ButtonsGrid
)

// ActionKind discriminates what a control does when pressed.
type ActionKind string

const (
	// KindCallback sends callback data back to the bot.
	KindCallback ActionKind = "callback"
	// KindURL opens a link.
	KindURL ActionKind = "url"
)

// RoleRanks is the rank list holding user roles.
const RoleRanks = "role"

// TextTree holds localized texts for one language.
type TextTree struct {
	// ErrorMsg is shown when a status cannot be resolved.
	ErrorMsg string
	// ErrorButton labels the synthetic "back home" control.
	ErrorButton string
	Categories  []TextCategory
	// Ranks holds every other top-level list of {name, emoji} items, keyed by list name.
	Ranks map[string][]Rank
}

type textTreeFields struct {
	ErrorMsg    string         `yaml:"error_msg"`
	ErrorButton string         `yaml:"error_button"`
	Categories  []TextCategory `yaml:"category"`
}

var textTreeKeys = map[string]bool{"error_msg": true, "error_button": true, "category": true}

// UnmarshalYAML decodes the known keys and collects rank lists from the rest.
func (t *TextTree) UnmarshalYAML(node *yaml.Node) error {
	var raw textTreeFields
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*t = TextTree{ErrorMsg: raw.ErrorMsg, ErrorButton: raw.ErrorButton, Categories: raw.Categories}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if textTreeKeys[key] || value.Kind != yaml.SequenceNode {
			continue
		}
		var ranks []Rank
		if err := value.Decode(&ranks); err != nil {
			continue
		}
		if t.Ranks == nil {
			t.Ranks = make(map[string][]Rank)
		}
		t.Ranks[strings.ToLower(key)] = ranks
	}
	return nil
}

// Rank is one level of a rank list such as user roles.
type Rank struct {
	Name  string `yaml:"name"`
	Emoji string `yaml:"emoji"`
}

// Full joins emoji and name, emoji first unless nameFirst is set.
// When only one of them is present it is returned alone.
func (r Rank) Full(nameFirst bool) (string, bool) {
	switch {
	case r.Name != "" && r.Emoji != "":
		if nameFirst {
			return r.Name + " " + r.Emoji, true
		}
		return r.Emoji + " " + r.Name, true
	case r.Name != "":
		return r.Name, true
	case r.Emoji != "":
		return r.Emoji, true
	}
	return "", false
}

// Rank returns the 1-based level of the named rank list.
func (t *TextTree) Rank(list string, level int) (Rank, bool) {
	if t == nil {
		return Rank{}, false
	}
	ranks := t.Ranks[strings.ToLower(list)]
	if level < 1 || level > len(ranks) {
		return Rank{}, false
	}
	return ranks[level-1], true
}

// TextCategory groups text entries sharing a category prefix.
type TextCategory struct {
	Name    string      `yaml:"category_name"`
	Entries []TextEntry `yaml:"status"`
}

// Label is a button caption template.
type Label struct {
	Text string `yaml:"text"`
}

// TextEntry is the localized content of one status.
type TextEntry struct {
	Status string
	// Text is nil when the entry has no literal text.
	Text    *string
	Mode    ButtonsMode
	Buttons [][]Label
	Notify  *string
}

type textEntryFields struct {
	Status  string    `yaml:"status_name"`
	Text    *string   `yaml:"text"`
	Buttons [][]Label `yaml:"buttons"`
	Notify  *string   `yaml:"notify"`
}

// UnmarshalYAML decodes a text entry keeping "buttons: null" apart from a missing key.
func (e *TextEntry) UnmarshalYAML(node *yaml.Node) error {
	var raw textEntryFields
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*e = TextEntry{
		Status:  raw.Status,
		Text:    raw.Text,
		Buttons: raw.Buttons,
		Notify:  raw.Notify,
		Mode:    buttonsMode(node),
	}
	return nil
}

// ActionTree holds the language-independent control bindings.
type ActionTree struct {
	Categories []ActionCategory `yaml:"category"`
}

// ActionCategory groups action entries sharing a category prefix.
type ActionCategory struct {
	Name    string
	Entries []ActionEntry
}

type actionCategoryFields struct {
	Name    string        `yaml:"category_name"`
	Entries []ActionEntry `yaml:"status"`
	Legacy  []ActionEntry `yaml:"status_name"`
}

// UnmarshalYAML accepts entries under either "status" or the older "status_name" key.
func (c *ActionCategory) UnmarshalYAML(node *yaml.Node) error {
	var raw actionCategoryFields
	if err := node.Decode(&raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Entries = raw.Entries
	if c.Entries == nil {
		c.Entries = raw.Legacy
	}
	return nil
}

// Action binds a control to a callback or a URL.
type Action struct {
	Kind ActionKind `yaml:"type"`
	// Callback is the callback identifier, or the URL template for KindURL.
	Callback string `yaml:"callback"`
	// Data is the callback payload template.
	Data string `yaml:"data"`
}

// ActionEntry lists the controls of one status.
type ActionEntry struct {
	Status  string
	Mode    ButtonsMode
	Buttons [][]Action
}

type actionEntryFields struct {
	Status  string     `yaml:"status_name"`
	Buttons [][]Action `yaml:"buttons"`
}

// UnmarshalYAML decodes an action entry keeping "buttons: null" apart from a missing key.
func (e *ActionEntry) UnmarshalYAML(node *yaml.Node) error {
	var raw actionEntryFields
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*e = ActionEntry{
		Status:  raw.Status,
		Buttons: raw.Buttons,
		Mode:    buttonsMode(node),
	}
	return nil
}

func buttonsMode(node *yaml.Node) ButtonsMode {
	if node.Kind != yaml.MappingNode {
		return ButtonsUnset
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "buttons" {
			continue
		}
		value := node.Content[i+1]
		if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
			return ButtonsNull
		}
		return ButtonsGrid
	}
	return ButtonsUnset
}

// FindText returns the first entry matching category and status.
func (t *TextTree) FindText(category, status string) (TextEntry, bool) {
	if t == nil {
		return TextEntry{}, false
	}
	for _, c := range t.Categories {
		if c.Name != category {
			continue
		}
		for _, e := range c.Entries {
			if e.Status == status {
				return e, true
			}
		}
		return TextEntry{}, false
	}
	return TextEntry{}, false
}

// FindActions returns the first entry matching category and status.
func (t *ActionTree) FindActions(category, status string) (ActionEntry, bool) {
	if t == nil {
		return ActionEntry{}, false
	}
	for _, c := range t.Categories {
		if c.Name != category {
			continue
		}
		for _, e := range c.Entries {
			if e.Status == status {
				return e, true
			}
		}
		return ActionEntry{}, false
	}
	return ActionEntry{}, false
}
