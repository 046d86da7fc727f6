package lang

import (
	"errors"
	"fmt"
)

// Trees is a consistent snapshot of both lookup trees for one effective language.
type Trees struct {
	// Lang is the language the text tree was loaded for.
	Lang    string
	Text    *TextTree
	Actions *ActionTree
	// FellBack reports whether the default language replaced the requested one.
	FellBack bool
}

// LoadTrees loads the text tree for requested, retrying with fallback when it is absent.
// An empty requested language selects fallback directly. Missing both text trees,
// or a missing action tree, is returned as an error wrapping ErrSourceAbsent.
func LoadTrees(src Source, requested, fallback string) (Trees, error) {
	effective := requested
	if effective == "" {
		effective = fallback
	}

	text, err := src.TextTree(effective)
	fellBack := false
	if errors.Is(err, ErrSourceAbsent) && effective != fallback {
		text, err = src.TextTree(fallback)
		effective = fallback
		fellBack = true
	}
	if err != nil {
		return Trees{}, fmt.Errorf("load text tree (requested %q, default %q): %w", requested, fallback, err)
	}

	actions, err := src.ActionTree()
	if err != nil {
		return Trees{}, fmt.Errorf("load action tree: %w", err)
	}

	return Trees{Lang: effective, Text: text, Actions: actions, FellBack: fellBack}, nil
}
