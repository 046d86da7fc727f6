package lang

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textJSON = `{
  "error_msg": "Oops",
  "error_button": "Home",
  "category": [
    {"category_name": "home", "status": [
      {"status_name": "home@main", "text": "Hi", "buttons": [[{"text": "A"}, {"text": "B"}]], "notify": "n"},
      {"status_name": "home@null", "text": "Null", "buttons": null},
      {"status_name": "home@unset", "text": "Unset"}
    ]}
  ]
}`

const actionYAML = `
category:
  - category_name: home
    status_name:
      - status_name: home@main
        buttons:
          - - {type: callback, callback: go, data: "{x}"}
            - {type: url, callback: "https://example.org"}
      - status_name: home@null
        buttons: ~
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"language/langen.json":  {Data: []byte(textJSON)},
		"language/langIT.yaml":  {Data: []byte("error_msg: Ops\ncategory: []\n")},
		"language/readme.md":    {Data: []byte("ignored")},
		"callback/callback.yml": {Data: []byte(actionYAML)},
	}
}

func TestLoadCatalogDecodesButtonModes(t *testing.T) {
	catalog, err := LoadCatalog(testFS())
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "it"}, catalog.Languages())

	text, err := catalog.TextTree("en")
	require.NoError(t, err)
	main, ok := text.FindText("home", "home@main")
	require.True(t, ok)
	assert.Equal(t, ButtonsGrid, main.Mode)
	assert.Equal(t, [][]Label{{{Text: "A"}, {Text: "B"}}}, main.Buttons)
	require.NotNil(t, main.Notify)
	assert.Equal(t, "n", *main.Notify)

	null, _ := text.FindText("home", "home@null")
	assert.Equal(t, ButtonsNull, null.Mode)
	unset, _ := text.FindText("home", "home@unset")
	assert.Equal(t, ButtonsUnset, unset.Mode)

	actions, err := catalog.ActionTree()
	require.NoError(t, err)
	entry, ok := actions.FindActions("home", "home@main")
	require.True(t, ok)
	assert.Equal(t, ButtonsGrid, entry.Mode)
	assert.Equal(t, [][]Action{{
		{Kind: KindCallback, Callback: "go", Data: "{x}"},
		{Kind: KindURL, Callback: "https://example.org"},
	}}, entry.Buttons)
	nullActions, _ := actions.FindActions("home", "home@null")
	assert.Equal(t, ButtonsNull, nullActions.Mode)
}

func TestLoadCatalogMissingActionTree(t *testing.T) {
	catalog, err := LoadCatalog(fstest.MapFS{"language/langen.json": {Data: []byte(textJSON)}})
	require.NoError(t, err)

	_, err = catalog.ActionTree()
	assert.True(t, errors.Is(err, ErrSourceAbsent))
}

func TestLoadCatalogDecodeError(t *testing.T) {
	_, err := LoadCatalog(fstest.MapFS{"language/langen.json": {Data: []byte("{not: [valid")}})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSourceAbsent))
}

func TestLoadTrees(t *testing.T) {
	catalog, err := LoadCatalog(testFS())
	require.NoError(t, err)

	trees, err := LoadTrees(catalog, "it", "en")
	require.NoError(t, err)
	assert.Equal(t, "it", trees.Lang)
	assert.False(t, trees.FellBack)
	assert.Equal(t, "Ops", trees.Text.ErrorMsg)

	trees, err = LoadTrees(catalog, "de", "en")
	require.NoError(t, err)
	assert.Equal(t, "en", trees.Lang)
	assert.True(t, trees.FellBack)

	trees, err = LoadTrees(catalog, "", "en")
	require.NoError(t, err)
	assert.Equal(t, "en", trees.Lang)
	assert.False(t, trees.FellBack)

	_, err = LoadTrees(catalog, "de", "fr")
	assert.True(t, errors.Is(err, ErrSourceAbsent))

	noActions := NewCatalog(map[string]*TextTree{"en": {}}, nil)
	_, err = LoadTrees(noActions, "en", "en")
	assert.True(t, errors.Is(err, ErrSourceAbsent))
}

func TestFindFirstCategoryWins(t *testing.T) {
	first, second := "first", "second"
	tree := &TextTree{Categories: []TextCategory{
		{Name: "a", Entries: []TextEntry{{Status: "a@x", Text: &first}}},
		{Name: "a", Entries: []TextEntry{{Status: "a@x", Text: &second}, {Status: "a@y", Text: &second}}},
	}}

	entry, ok := tree.FindText("a", "a@x")
	require.True(t, ok)
	assert.Equal(t, "first", *entry.Text)

	_, ok = tree.FindText("a", "a@y")
	assert.False(t, ok)

	var nilTree *TextTree
	_, ok = nilTree.FindText("a", "a@x")
	assert.False(t, ok)
}

func TestBundledTrees(t *testing.T) {
	catalog, err := LoadCatalog(Bundled())
	require.NoError(t, err)
	assert.Contains(t, catalog.Languages(), "en")
	assert.Contains(t, catalog.Languages(), "it")

	actions, err := catalog.ActionTree()
	require.NoError(t, err)
	_, ok := actions.FindActions("home", "home@main")
	assert.True(t, ok)

	it, err := catalog.TextTree("it")
	require.NoError(t, err)
	admin, ok := it.Rank(RoleRanks, 3)
	require.True(t, ok)
	assert.Equal(t, "Amministratore", admin.Name)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "en", Normalize("en-US"))
	assert.Equal(t, "it", Normalize(" IT "))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "not a tag", Normalize("Not A Tag"))
}

func TestLoadCatalogJSONSurrogateEscapes(t *testing.T) {
	doc := `{
  "error_msg": "Oops \ud83d\ude00",
  "category": [
    {"category_name": "home", "status": [
      {"status_name": "home@main", "text": "Hi \u00e8", "buttons": [[{"text": "\ud83c\udfe0"}]]},
      {"status_name": "home@null", "text": "Null", "buttons": null}
    ]}
  ]
}`
	catalog, err := LoadCatalog(fstest.MapFS{"language/langen.json": {Data: []byte(doc)}})
	require.NoError(t, err)

	text, err := catalog.TextTree("en")
	require.NoError(t, err)
	assert.Equal(t, "Oops 😀", text.ErrorMsg)

	main, ok := text.FindText("home", "home@main")
	require.True(t, ok)
	assert.Equal(t, "Hi è", *main.Text)
	assert.Equal(t, [][]Label{{{Text: "🏠"}}}, main.Buttons)
	assert.Equal(t, ButtonsGrid, main.Mode)

	null, ok := text.FindText("home", "home@null")
	require.True(t, ok)
	assert.Equal(t, ButtonsNull, null.Mode)
}

func TestTextTreeRanks(t *testing.T) {
	doc := `
error_msg: Oops
Role:
  - {name: User, emoji: "👤"}
  - {name: Admin}
  - {emoji: "👑"}
  - {}
extra: plain
category: []
`
	catalog, err := LoadCatalog(fstest.MapFS{"language/langen.yaml": {Data: []byte(doc)}})
	require.NoError(t, err)
	text, err := catalog.TextTree("en")
	require.NoError(t, err)
	assert.Equal(t, "Oops", text.ErrorMsg)
	assert.NotContains(t, text.Ranks, "extra")

	user, ok := text.Rank(RoleRanks, 1)
	require.True(t, ok)
	assert.Equal(t, "User", user.Name)
	full, ok := user.Full(false)
	assert.True(t, ok)
	assert.Equal(t, "👤 User", full)
	full, _ = user.Full(true)
	assert.Equal(t, "User 👤", full)

	admin, ok := text.Rank("role", 2)
	require.True(t, ok)
	full, _ = admin.Full(false)
	assert.Equal(t, "Admin", full)

	crown, _ := text.Rank("role", 3)
	full, _ = crown.Full(true)
	assert.Equal(t, "👑", full)

	empty, ok := text.Rank("role", 4)
	require.True(t, ok)
	_, ok = empty.Full(false)
	assert.False(t, ok)

	_, ok = text.Rank("role", 0)
	assert.False(t, ok)
	_, ok = text.Rank("role", 5)
	assert.False(t, ok)
	_, ok = text.Rank("badge", 1)
	assert.False(t, ok)

	var nilTree *TextTree
	_, ok = nilTree.Rank("role", 1)
	assert.False(t, ok)
}
