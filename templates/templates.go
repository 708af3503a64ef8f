package templates

import (
	_ "embed"
	"html/template"
	"log"
)

var (
	//go:embed editor.html
	editorSource string
	//go:embed notfound.html
	notFoundSource string
	//go:embed error.html
	errorSource string
)

var (
	Editor   *template.Template
	NotFound *template.Template
	Error    *template.Template
)

// Tab is one slice picker on the editor page.
type Tab struct {
	Name   string
	Active bool
}

// Item is one selectable catalog entry of the active tab.
type Item struct {
	Index    int
	Empty    bool
	Selected bool
	Thumb    string
}

// EditorPage is the data rendered by the Editor template.
type EditorPage struct {
	Tabs    []Tab
	Active  string
	Items   []Item
	Code    string
	Size    int
	Version uint64
	Changed bool
}

func init() {
	Editor = parse("editor", editorSource)
	NotFound = parse("notfound", notFoundSource)
	Error = parse("error", errorSource)
}

func parse(name, text string) *template.Template {
	tmpl, err := template.New(name).Parse(text)

	if err != nil {
		log.Fatal(err)
	}

	return tmpl
}
