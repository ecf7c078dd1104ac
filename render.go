package qubesite

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"golang.org/x/net/html"
)

//go:embed templates
var templateFS embed.FS

// Page fragments are written verbatim, titles and page IDs are not escaped.
// Data read from elsewhere, like release tags and commit messages, must go
// through "escape".
var templates = template.Must(
	template.New("fragments").
		Funcs(template.FuncMap{
			"indent": indent,
			"escape": html.EscapeString,
		}).
		ParseFS(templateFS, "templates/*.htm"),
)

type fragment struct {
	PageID  string
	Title   string
	Entries []MenuEntry
}

func indent(level int) string {
	var b strings.Builder

	for i := 1; i < level; i++ {
		b.WriteString("&nbsp;&nbsp;")
	}

	return b.String()
}

// WriteHeader writes everything that goes before the page contents: the
// document head, the side bar with logo and menu, and the opening of the main
// content container.
func WriteHeader(w io.Writer, pageID string, title string) error {
	return execute(w, "header", fragment{
		PageID:  pageID,
		Title:   title,
		Entries: Menu,
	})
}

// WriteMenu writes the navigation menu, the entry for the current page is
// rendered without a link.
func WriteMenu(w io.Writer, pageID string) error {
	return execute(w, "menu", fragment{
		PageID:  pageID,
		Entries: Menu,
	})
}

func WriteLogo(w io.Writer) error {
	return execute(w, "logo", nil)
}

// WriteFooter writes the contact credits and closes all containers opened by
// WriteHeader.
func WriteFooter(w io.Writer) error {
	return execute(w, "footer", nil)
}

// WritePage writes a complete document with contents placed between the
// header and the footer.
func WritePage(w io.Writer, page PageContext, contents string) error {
	err := WriteHeader(w, page.PageID, page.Title)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, contents)
	if err != nil {
		return fmt.Errorf("write contents: %w", err)
	}

	return WriteFooter(w)
}

func RenderHeader(pageID string, title string) string {
	return render(func(w io.Writer) error {
		return WriteHeader(w, pageID, title)
	})
}

func RenderMenu(pageID string) string {
	return render(func(w io.Writer) error {
		return WriteMenu(w, pageID)
	})
}

func RenderLogo() string {
	return render(WriteLogo)
}

func RenderFooter() string {
	return render(WriteFooter)
}

func RenderPage(page PageContext, contents string) string {
	return render(func(w io.Writer) error {
		return WritePage(w, page, contents)
	})
}

func render(write func(w io.Writer) error) string {
	var b strings.Builder

	// The templates are fixed at build time and a strings.Builder never
	// fails, so an error here is a bug.
	err := write(&b)
	if err != nil {
		panic(err)
	}

	return b.String()
}

func execute(w io.Writer, name string, data any) error {
	err := templates.ExecuteTemplate(w, name, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	return nil
}
