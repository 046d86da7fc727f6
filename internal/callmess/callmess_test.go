package callmess

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/telegram-navigator/internal/lang"
)

func ptr(s string) *string { return &s }

func labels(rows ...[]string) [][]lang.Label {
	out := make([][]lang.Label, 0, len(rows))
	for _, row := range rows {
		line := make([]lang.Label, 0, len(row))
		for _, text := range row {
			line = append(line, lang.Label{Text: text})
		}
		out = append(out, line)
	}
	return out
}

func callback(id, data string) lang.Action {
	return lang.Action{Kind: lang.KindCallback, Callback: id, Data: data}
}

func testTrees() (*lang.TextTree, *lang.ActionTree) {
	text := &lang.TextTree{
		ErrorMsg:    "Oops",
		ErrorButton: "Back home",
		Categories: []lang.TextCategory{
			{Name: "home", Entries: []lang.TextEntry{
				{Status: "home@main", Text: ptr("Hello {name}"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"Go {name}"})},
				{Status: "home@main", Text: ptr("shadowed"), Mode: lang.ButtonsNull},
				{Status: "home@quiet", Text: ptr("Quiet"), Mode: lang.ButtonsNull, Notify: ptr("shh")},
				{Status: "home@notext", Mode: lang.ButtonsNull},
				{Status: "home@wide", Text: ptr("Wide"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"a", "b"}, []string{"c"})},
				{Status: "home@tall", Text: ptr("Tall"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"a"}, []string{"b"})},
				{Status: "home@link", Text: ptr("Link"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"Open"})},
				{Status: "home@noactions", Text: ptr("No actions"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"x"})},
				{Status: "home@disabled", Text: ptr("Disabled"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"x"})},
				{Status: "home@unset", Text: ptr("Unset")},
				{Status: "home@whoami", Text: ptr("I am @{bot_username}, hi {name}"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"{name}"})},
				{Status: "home@role", Text: ptr("You are {role}"), Mode: lang.ButtonsGrid, Buttons: labels([]string{"{role}"})},
			}},
		},
		Ranks: map[string][]lang.Rank{"role": {{Name: "User", Emoji: "👤"}, {Name: "Admin"}}},
	}
	actions := &lang.ActionTree{
		Categories: []lang.ActionCategory{
			{Name: "home", Entries: []lang.ActionEntry{
				{Status: "home@main", Mode: lang.ButtonsGrid, Buttons: [][]lang.Action{{callback("go", "{name}")}}},
				{Status: "home@wide", Mode: lang.ButtonsGrid, Buttons: [][]lang.Action{{callback("a", ""), callback("b", "")}, {callback("c", "")}}},
				{Status: "home@tall", Mode: lang.ButtonsGrid, Buttons: [][]lang.Action{{callback("a", "")}}},
				{Status: "home@link", Mode: lang.ButtonsGrid, Buttons: [][]lang.Action{{{Kind: lang.KindURL, Callback: "https://t.me/{bot_username}?start={id}"}}}},
				{Status: "home@disabled", Mode: lang.ButtonsNull},
				{Status: "home@whoami", Mode: lang.ButtonsGrid, Buttons: [][]lang.Action{{callback("go", "{name}")}}},
				{Status: "home@role", Mode: lang.ButtonsGrid, Buttons: [][]lang.Action{{callback("go", "")}}},
			}},
		},
	}
	return text, actions
}

func testSource() *lang.Catalog {
	text, actions := testTrees()
	return lang.NewCatalog(map[string]*lang.TextTree{"en": text}, actions)
}

func TestResolveText(t *testing.T) {
	text, _ := testTrees()

	res := ResolveText(text, "home@main")
	assert.Equal(t, TextFound, res.Outcome)
	assert.Equal(t, "Hello {name}", res.Text, "first match wins and text is not substituted")
	assert.Equal(t, [][]string{{"Go {name}"}}, res.Labels)

	res = ResolveText(text, "home@quiet")
	assert.Equal(t, TextNoButtons, res.Outcome)
	assert.Equal(t, "shh", res.Notify)

	res = ResolveText(text, "home@notext")
	assert.Equal(t, "Oops", res.Text)

	res = ResolveText(text, "ghost@none")
	assert.Equal(t, TextNotFound, res.Outcome)
	assert.Equal(t, "Oops", res.Text)

	res = ResolveText(&lang.TextTree{Categories: []lang.TextCategory{{Name: "home"}}}, "home@main")
	assert.Equal(t, TextNotFound, res.Outcome)
	assert.Equal(t, DefaultErrorText, res.Text)
}

func TestResolveActions(t *testing.T) {
	_, actions := testTrees()

	assert.Equal(t, ActionsFound, ResolveActions(actions, "home@main").Outcome)
	assert.Equal(t, ActionsNone, ResolveActions(actions, "home@disabled").Outcome)
	assert.Equal(t, ActionsNotFound, ResolveActions(actions, "home@noactions").Outcome)
	assert.Equal(t, ActionsNotFound, ResolveActions(actions, "ghost@none").Outcome)
	assert.Equal(t, ActionsNotFound, ResolveActions(nil, "home@main").Outcome)
}

func TestStartIndex(t *testing.T) {
	assert.Equal(t, 0, StartIndex(0, RowGapAfterExisting))
	assert.Equal(t, 3, StartIndex(2, RowGapAfterExisting))
	assert.Equal(t, 0, StartIndex(0, RowContiguous))
	assert.Equal(t, 2, StartIndex(2, RowContiguous))
}

func TestResolveEndToEnd(t *testing.T) {
	values := map[string]string{"name": "Bot"}
	res, err := Resolve(testSource(), Request{
		Status:      "home@main",
		Lang:        "en",
		DefaultLang: "en",
		BotUsername: "navbot",
		Values:      values,
		Labels:      values,
		Data:        values,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello Bot", res.Text)
	assert.Equal(t, OutcomeRendered, res.Outcome)
	assert.Equal(t, [][]Control{{{Label: "Go Bot", Kind: lang.KindCallback, Callback: "go", Payload: "Bot"}}}, res.Keyboard.Grid())
	assert.Equal(t, map[string]string{"name": "Bot"}, values)
}

func TestResolveMissingStatus(t *testing.T) {
	res, err := Resolve(testSource(), Request{Status: "ghost@none", DefaultLang: "en"})
	require.NoError(t, err)

	assert.Equal(t, "Oops", res.Text)
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Equal(t, [][]Control{{{Label: "Back home", Kind: lang.KindCallback, Callback: HomeCallback}}}, res.Keyboard.Grid())
	assert.Equal(t, 0, res.Keyboard.Rows[0].Position)
}

func TestResolveTextOnly(t *testing.T) {
	res, err := Resolve(testSource(), Request{Status: "home@quiet", DefaultLang: "en"})
	require.NoError(t, err)

	assert.Equal(t, "Quiet", res.Text)
	assert.Equal(t, OutcomeTextOnly, res.Outcome)
	assert.Nil(t, res.Keyboard)
	assert.Equal(t, "shh", res.Notify)
}

func TestResolveGridMatchesLabelShape(t *testing.T) {
	res, err := Resolve(testSource(), Request{Status: "home@wide", DefaultLang: "en"})
	require.NoError(t, err)

	grid := res.Keyboard.Grid()
	require.Len(t, grid, 2)
	assert.Len(t, grid[0], 2)
	assert.Len(t, grid[1], 1)
	assert.Equal(t, []int{0, 1}, []int{res.Keyboard.Rows[0].Position, res.Keyboard.Rows[1].Position})
}

func TestResolveShapeMismatchFallsBack(t *testing.T) {
	res, err := Resolve(testSource(), Request{Status: "home@tall", DefaultLang: "en"})
	require.NoError(t, err)

	assert.Equal(t, "Tall", res.Text)
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Equal(t, [][]Control{{{Label: "Back home", Kind: lang.KindCallback, Callback: HomeCallback}}}, res.Keyboard.Grid())
}

func TestResolveActionEntryStates(t *testing.T) {
	res, err := Resolve(testSource(), Request{Status: "home@noactions", DefaultLang: "en"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, res.Outcome)

	res, err = Resolve(testSource(), Request{Status: "home@disabled", DefaultLang: "en"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTextOnly, res.Outcome)
	assert.Nil(t, res.Keyboard)

	res, err = Resolve(testSource(), Request{Status: "home@unset", DefaultLang: "en"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTextOnly, res.Outcome)
}

func TestResolveURLControl(t *testing.T) {
	res, err := Resolve(testSource(), Request{
		Status:      "home@link",
		DefaultLang: "en",
		BotUsername: "navbot",
		Data:        map[string]string{"id": "42"},
	})
	require.NoError(t, err)

	assert.Equal(t, [][]Control{{{Label: "Open", Kind: lang.KindURL, URL: "https://t.me/navbot?start=42"}}}, res.Keyboard.Grid())
}

func TestResolveEscapesTextValuesOnly(t *testing.T) {
	values := map[string]string{"name": "a_b"}
	escape := func(v string) string { return strings.ReplaceAll(v, "_", `\_`) }
	res, err := Resolve(testSource(), Request{
		Status:      "home@whoami",
		DefaultLang: "en",
		BotUsername: "nav_test_bot",
		Values:      values,
		Labels:      values,
		Data:        values,
		Escape:      escape,
	})
	require.NoError(t, err)

	assert.Equal(t, `I am @nav\_test\_bot, hi a\_b`, res.Text)
	assert.Equal(t, [][]Control{{{Label: "a_b", Kind: lang.KindCallback, Callback: "go", Payload: "a_b"}}}, res.Keyboard.Grid())
	assert.Equal(t, "a_b", values["name"])
}

func TestResolveRankPlaceholders(t *testing.T) {
	res, err := Resolve(testSource(), Request{Status: "home@role", DefaultLang: "en", Ranks: map[string]int{"role": 1}})
	require.NoError(t, err)
	assert.Equal(t, "You are 👤 User", res.Text)
	assert.Equal(t, "👤 User", res.Keyboard.Grid()[0][0].Label)

	res, err = Resolve(testSource(), Request{
		Status:      "home@role",
		DefaultLang: "en",
		Ranks:       map[string]int{"role": 2},
		Values:      map[string]string{"role": "override"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are override", res.Text)
	assert.Equal(t, "Admin", res.Keyboard.Grid()[0][0].Label)

	res, err = Resolve(testSource(), Request{Status: "home@role", DefaultLang: "en", Ranks: map[string]int{"role": 9}})
	require.NoError(t, err)
	assert.Equal(t, "You are {role}", res.Text)
}

func TestResolveRejectedControlFallsBack(t *testing.T) {
	accept := func(c Control) bool { return len(c.Payload) <= 3 }
	res, err := Resolve(testSource(), Request{
		Status:      "home@main",
		DefaultLang: "en",
		Values:      map[string]string{"name": "Bot"},
		Data:        map[string]string{"name": "Bot"},
		Accept:      accept,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRendered, res.Outcome)

	res, err = Resolve(testSource(), Request{
		Status:      "home@main",
		DefaultLang: "en",
		Values:      map[string]string{"name": "Bot"},
		Data:        map[string]string{"name": "Robot"},
		Accept:      accept,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Bot", res.Text)
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Equal(t, [][]Control{{{Label: "Back home", Kind: lang.KindCallback, Callback: HomeCallback}}}, res.Keyboard.Grid())
}

func TestResolveExtendsBaseSurface(t *testing.T) {
	base := &Keyboard{Rows: []Row{
		{Position: 0, Controls: []Control{{Label: "first"}}},
		{Position: 1, Controls: []Control{{Label: "second"}}},
	}}

	res, err := Resolve(testSource(), Request{Status: "home@wide", DefaultLang: "en", Base: base})
	require.NoError(t, err)
	require.Len(t, res.Keyboard.Rows, 4)
	assert.Equal(t, 3, res.Keyboard.Rows[2].Position)
	assert.Equal(t, 4, res.Keyboard.Rows[3].Position)
	assert.Len(t, base.Rows, 2, "base surface must not be modified")

	res, err = Resolve(testSource(), Request{Status: "ghost@none", DefaultLang: "en", Base: base, Placement: RowContiguous})
	require.NoError(t, err)
	require.Len(t, res.Keyboard.Rows, 3)
	assert.Equal(t, 2, res.Keyboard.Rows[2].Position)

	res, err = Resolve(testSource(), Request{Status: "home@quiet", DefaultLang: "en", Base: base})
	require.NoError(t, err)
	assert.Equal(t, base.Grid(), res.Keyboard.Grid())
}

func TestResolveLanguageFallback(t *testing.T) {
	res, err := Resolve(testSource(), Request{Status: "home@quiet", Lang: "de", DefaultLang: "en"})
	require.NoError(t, err)
	assert.Equal(t, "en", res.Lang)
	assert.True(t, res.FellBack)

	_, err = Resolve(testSource(), Request{Status: "home@quiet", Lang: "de", DefaultLang: "fr"})
	assert.True(t, errors.Is(err, lang.ErrSourceAbsent))
}

func TestResolveConcurrent(t *testing.T) {
	src := testSource()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			values := map[string]string{"name": "Bot"}
			res, err := Resolve(src, Request{Status: "home@main", DefaultLang: "en", Values: values, Labels: values, Data: values})
			assert.NoError(t, err)
			assert.Equal(t, "Hello Bot", res.Text)
		}()
	}
	wg.Wait()
}
