package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	qubesite "github.com/ttab/qube-site"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:      "qube-site",
		Usage:     "Generate the QuBE project website",
		Action:    generateAction,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "config",
				Value: "qube-site.json",
				Usage: "site configuration, page sources are relative to it",
			},
			&cli.PathFlag{
				Name:     "out",
				Usage:    "output directory, emptied before generation",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "serve",
				Usage: "address to preview the generated site on, e.g. :8080",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		printer(os.Stderr)("qube-site: %v", err)
		os.Exit(1)
	}
}

func generateAction(c *cli.Context) error {
	configPath := c.Path("config")
	outDir := c.Path("out")
	uiPrintln := printer(c.App.ErrWriter)

	conf, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if err := resetDir(outDir); err != nil {
		return err
	}

	start := time.Now()

	err = qubesite.Generate(c.Context, outDir,
		filepath.Dir(configPath), conf, uiPrintln)
	if err != nil {
		return fmt.Errorf("generate website: %w", err)
	}

	uiPrintln("Wrote %s in %s", outDir, time.Since(start).Round(time.Millisecond))

	addr := c.String("serve")
	if addr == "" {
		return nil
	}

	uiPrintln("Previewing on %s", addr)

	err = http.ListenAndServe(addr, http.FileServerFS(os.DirFS(outDir)))
	if err != nil {
		return fmt.Errorf("preview server: %w", err)
	}

	return nil
}

func loadConfig(path string) (qubesite.Config, error) {
	var conf qubesite.Config

	data, err := os.ReadFile(path)
	if err != nil {
		return conf, fmt.Errorf("read config: %w", err)
	}

	err = json.Unmarshal(data, &conf)
	if err != nil {
		return conf, fmt.Errorf("parse config %q: %w", path, err)
	}

	return conf, nil
}

func resetDir(dir string) error {
	err := os.RemoveAll(dir)
	if err != nil {
		return fmt.Errorf("clear output directory: %w", err)
	}

	err = os.MkdirAll(dir, 0o770)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	return nil
}

// printer returns a progress printer that writes one line per call to w.
func printer(w io.Writer) func(format string, a ...any) {
	return func(format string, a ...any) {
		_, _ = fmt.Fprintf(w, format+"\n", a...)
	}
}
