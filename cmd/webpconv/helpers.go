package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"webpconv/internal/convert"
	"webpconv/internal/selection"
	"webpconv/internal/units"
)

// scanPaths читает пути построчно, пустые строки и комментарии пропускаются.
func scanPaths(input io.Reader) ([]string, error) {
	sc := bufio.NewScanner(input)
	var paths []string

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		paths = append(paths, line)
	}

	return paths, sc.Err()
}

// printSelection печатает таблицу выборки, но только в терминале:
// в пайплайне она никому не нужна.
func printSelection(out io.Writer, store *selection.Store) {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "NAME", "TYPE", "SIZE"})

	for i, file := range store.Files() {
		tw.AppendRow(table.Row{i + 1, file.Name, file.MediaType, units.FormatBytes(file.Size)})
	}
	tw.AppendFooter(table.Row{"", "", "", units.FormatBytes(store.TotalSize())})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	fmt.Fprintln(out, tw.Render())
}

// saveArtifact переносит артефакт из временной ссылки в место назначения.
// Пустой outPath - предложенное сервисом имя в текущем каталоге; если
// outPath указывает на каталог, предложенное имя кладется в него.
func saveArtifact(res convert.Result, outPath string) (string, error) {
	dest := outPath
	switch {
	case dest == "":
		dest = safeName(res.SuggestedName)
	default:
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			dest = filepath.Join(dest, safeName(res.SuggestedName))
		}
	}

	content, err := os.ReadFile(res.Artifact.Path)
	if err != nil {
		return "", fmt.Errorf("read artifact failed: %w", err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s failed: %w", dest, err)
	}
	return dest, nil
}

// safeName обезвреживает предложенное сервисом имя перед записью на диск:
// обрезает путь, выкидывает управляющие символы, пустой остаток заменяется
// запасным именем.
func safeName(name string) string {
	if p := strings.LastIndexAny(name, `/\`); p != -1 {
		name = name[p+1:]
	}

	var sb strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7F {
			continue
		}
		sb.WriteRune(r)
	}
	name = sb.String()

	if name == "" || name == "." || name == ".." {
		return "converted.bin"
	}
	return name
}
