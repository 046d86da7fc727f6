package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const defaultLang = "en"

// Messages contains localized system strings that are not part of the status trees.
type Messages struct {
	InvalidAction       string
	LanguageChanged     string
	VoiceDisabled       string
	TranscriptionFailed string
	VoiceNotRecognized  string
	ErrorNote           string
}

// Bundle combines language code and messages.
type Bundle struct {
	// Lang is the selected language.
	Lang string
	// Messages are localized strings.
	Messages Messages
}

//go:embed active.*.toml
var files embed.FS

var (
	bundleOnce sync.Once
	bundle     *goi18n.Bundle
	bundleErr  error
)

func loadBundle() (*goi18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := goi18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		names, err := fs.Glob(files, "active.*.toml")
		if err != nil {
			bundleErr = err
			return
		}
		for _, name := range names {
			if _, err := b.LoadMessageFileFS(files, name); err != nil {
				bundleErr = fmt.Errorf("load %s: %w", name, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Load loads i18n messages for the requested language, falling back to English.
func Load(lang string) (Bundle, error) {
	b, err := loadBundle()
	if err != nil {
		return Bundle{}, err
	}
	lang = supported(b, lang)

	localizer := goi18n.NewLocalizer(b, lang, defaultLang)
	localize := func(id string) string {
		// A message missing in lang is served from English together with an error.
		msg, _ := localizer.Localize(&goi18n.LocalizeConfig{MessageID: id})
		return msg
	}

	return Bundle{Lang: lang, Messages: Messages{
		InvalidAction:       localize("invalid_action"),
		LanguageChanged:     localize("language_changed"),
		VoiceDisabled:       localize("voice_disabled"),
		TranscriptionFailed: localize("transcription_failed"),
		VoiceNotRecognized:  localize("voice_not_recognized"),
		ErrorNote:           localize("error_note"),
	}}, nil
}

// supported returns the base of lang when the bundle has it, English otherwise.
func supported(b *goi18n.Bundle, lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return defaultLang
	}
	base, _ := tag.Base()
	for _, known := range b.LanguageTags() {
		if knownBase, _ := known.Base(); knownBase == base {
			return base.String()
		}
	}
	return defaultLang
}

// LoadAll loads every requested language that exists, always including English.
func LoadAll(langs ...string) (map[string]Messages, error) {
	out := make(map[string]Messages)
	for _, lang := range append([]string{defaultLang}, langs...) {
		loaded, err := Load(lang)
		if err != nil {
			return nil, err
		}
		out[loaded.Lang] = loaded.Messages
	}
	return out, nil
}

// For picks messages for lang, then fallbackLang, then English.
func For(messages map[string]Messages, lang, fallbackLang string) Messages {
	for _, candidate := range []string{lang, fallbackLang, defaultLang} {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if msg, ok := messages[candidate]; ok {
			return msg
		}
	}
	return Messages{}
}
