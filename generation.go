package qubesite

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/ttab/qube-site/internal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

//go:embed assets
var assetFS embed.FS

var (
	ErrDuplicatePage = errors.New("duplicate page")
	ErrUnknownSource = errors.New("unknown source type")
	ErrInvalidPageID = errors.New("invalid page id")
)

// pageWorkers is the number of pages rendered concurrently.
const pageWorkers = 4

// ManifestEntry describes a generated page in pages.json.
type ManifestEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	File  string `json:"file"`
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// Generate renders all pages in the configuration to outDir. Page sources are
// resolved relative to configDir.
func Generate(
	ctx context.Context, outDir string, configDir string, conf Config,
	uiPrintln func(format string, a ...any),
) error {
	manifest, err := buildManifest(conf)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	assets, err := fs.Sub(assetFS, "assets")
	if err != nil {
		return fmt.Errorf("open assets: %w", err)
	}

	jobs := make(chan PageConfig)

	grp, gCtx := errgroup.WithContext(ctx)

	// Copy the stylesheet.
	grp.Go(func() error {
		err := os.CopyFS(outDir, assets)
		if err != nil {
			return fmt.Errorf("write assets: %w", err)
		}

		return nil
	})

	// Queue the configured pages.
	grp.Go(func() error {
		defer close(jobs)

		for _, page := range conf.Pages {
			select {
			case jobs <- page:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}

		return nil
	})

	for range pageWorkers {
		grp.Go(func() error {
			for page := range jobs {
				uiPrintln("Rendering %s", page.ID)

				err := renderSitePage(outDir, configDir, page)
				if err != nil {
					return fmt.Errorf("render page %q: %w", page.ID, err)
				}
			}

			return nil
		})
	}

	if conf.Releases != nil {
		grp.Go(func() error {
			uiPrintln("Cloning %s", conf.Releases.Clone)

			err := renderReleasesPage(gCtx, outDir, *conf.Releases)
			if err != nil {
				return fmt.Errorf("render releases page: %w", err)
			}

			return nil
		})
	}

	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("render site: %w", err)
	}

	err = internal.MarshalFile(
		filepath.Join(outDir, "pages.json"), manifest)
	if err != nil {
		return fmt.Errorf("write page manifest: %w", err)
	}

	return nil
}

func buildManifest(conf Config) ([]ManifestEntry, error) {
	var manifest []ManifestEntry

	seen := make(map[string]bool)

	add := func(id string, title string) error {
		if id == "" {
			return fmt.Errorf("page %q has no id", title)
		}

		if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
			return fmt.Errorf("%w: %q", ErrInvalidPageID, id)
		}

		if seen[id] {
			return fmt.Errorf("%w: %q", ErrDuplicatePage, id)
		}

		seen[id] = true

		manifest = append(manifest, ManifestEntry{
			ID:    id,
			Title: title,
			File:  pageFile(id),
		})

		return nil
	}

	for _, p := range conf.Pages {
		err := add(p.ID, p.Title)
		if err != nil {
			return nil, err
		}
	}

	if conf.Releases != nil {
		err := add(conf.Releases.ID, conf.Releases.Title)
		if err != nil {
			return nil, err
		}
	}

	return manifest, nil
}

func pageFile(id string) string {
	return id + ".htm"
}

func renderSitePage(outDir string, configDir string, page PageConfig) error {
	contents, err := loadContents(filepath.Join(configDir, page.Source))
	if err != nil {
		return err
	}

	return writeSitePage(outDir, PageContext{
		PageID: page.ID,
		Title:  page.Title,
	}, contents)
}

func renderReleasesPage(
	ctx context.Context, outDir string, conf ReleasesConfig,
) error {
	releases, err := CollectReleases(ctx, conf)
	if err != nil {
		return err
	}

	var contents strings.Builder

	err = WriteReleases(&contents, *releases)
	if err != nil {
		return err
	}

	return writeSitePage(outDir, PageContext{
		PageID: conf.ID,
		Title:  conf.Title,
	}, contents.String())
}

func writeSitePage(outDir string, page PageContext, contents string) error {
	var buf bytes.Buffer

	err := WritePage(&buf, page, contents)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(
		filepath.Join(outDir, pageFile(page.PageID)), &buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", pageFile(page.PageID), err)
	}

	return nil
}

func loadContents(path string) (_ string, outErr error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".md", ".markdown", ".htm", ".html":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}

	defer internal.Close(path, f, &outErr)

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}

	if ext == ".htm" || ext == ".html" {
		return string(data), nil
	}

	var htmlBuf bytes.Buffer

	err = markdown.Convert(data, &htmlBuf)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	styled, err := styleContents(&htmlBuf)
	if err != nil {
		return "", fmt.Errorf("add style classes: %w", err)
	}

	return styled, nil
}

var contentClasses = map[string]string{
	"h1":    "title",
	"h2":    "section",
	"h3":    "subsection",
	"table": "data",
	"pre":   "code",
	"img":   "figure",
}

// styleContents adds the stylesheet classes to rendered markdown. Links that
// leave the site get the "external" class.
func styleContents(r io.Reader) (string, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}

	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var out bytes.Buffer

	for _, n := range nodes {
		addClass(n)

		for d := range n.Descendants() {
			addClass(d)
		}

		err := html.Render(&out, n)
		if err != nil {
			return "", fmt.Errorf("render modified HTML: %w", err)
		}
	}

	return out.String(), nil
}

func addClass(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}

	class, ok := contentClasses[n.Data]

	if n.DataAtom == atom.A && isExternal(n) {
		class, ok = "external", true
	}

	if !ok {
		return
	}

	n.Attr = append(n.Attr, html.Attribute{
		Key: "class",
		Val: class,
	})
}

func isExternal(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "href" {
			continue
		}

		return strings.HasPrefix(a.Val, "http://") ||
			strings.HasPrefix(a.Val, "https://")
	}

	return false
}
