package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"gopkg.in/yaml.v3"

	"quickstart/internal/sections"
)

// Header styles.
const (
	StyleASCII   = "ascii"
	StyleDivider = "divider"
	StyleNone    = "none"
)

const (
	defaultTitle = "Kometa"
	dividerWidth = 72
)

// Options controls banner output.
type Options struct {
	// HeaderStyle is StyleASCII, StyleDivider or StyleNone. Empty means ASCII.
	HeaderStyle string
	// Title is the text of the header banner. Empty means "Kometa".
	Title string
	// RunID is noted in the header when set.
	RunID string
}

// Render writes doc as YAML. Key order inside every mapping is the
// document's insertion order.
func Render(doc *sections.Map, opts Options) (string, error) {
	style := strings.ToLower(strings.TrimSpace(opts.HeaderStyle))
	switch style {
	case "":
		style = StyleASCII
	case StyleASCII, StyleDivider, StyleNone:
	default:
		return "", fmt.Errorf("render: unknown header style %q", opts.HeaderStyle)
	}
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}

	var out strings.Builder
	if header := headerBanner(style, title, opts.RunID); header != "" {
		out.WriteString(header)
		out.WriteString("\n")
	}

	if doc == nil {
		return out.String(), nil
	}
	for key, value := range doc.All() {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		if banner := sectionBanner(style, sectionTitle(key)); banner != "" {
			out.WriteString(banner)
			out.WriteString("\n")
		}
		block, err := encodeSection(key, value)
		if err != nil {
			return "", fmt.Errorf("render section %s: %w", key, err)
		}
		out.WriteString(block)
	}
	return out.String(), nil
}

func encodeSection(key string, value sections.Value) (string, error) {
	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value.YAMLNode(),
		},
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sectionTitle(key string) string {
	if key == sections.LibrariesKey {
		return "Libraries"
	}
	if def, ok := sections.Lookup(key); ok {
		return def.DisplayName()
	}
	return key
}

func headerBanner(style, title, runID string) string {
	var lines []string
	switch style {
	case StyleASCII:
		lines = figureLines(title)
		lines = append(lines, "")
	case StyleDivider:
		lines = []string{title + " configuration"}
	default:
		return ""
	}
	lines = append(lines, "Generated by Quickstart")
	if runID != "" {
		lines = append(lines, "Run: "+runID)
	}
	return strings.Join(frame(lines), "\n")
}

func sectionBanner(style, title string) string {
	switch style {
	case StyleASCII:
		return strings.Join(frame(figureLines(title)), "\n")
	case StyleDivider:
		label := "#===== " + title + " "
		if pad := dividerWidth - len(label); pad > 0 {
			label += strings.Repeat("=", pad)
		}
		return label
	}
	return ""
}

func figureLines(text string) []string {
	rows := figure.NewFigure(text, "", false).Slicify()
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.TrimRight(row, " "))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// frame surrounds lines with a box of '#' so every line is a YAML comment.
func frame(lines []string) []string {
	width := 0
	for _, line := range lines {
		width = max(width, len(line))
	}
	border := strings.Repeat("#", width+4)
	out := make([]string, 0, len(lines)+2)
	out = append(out, border)
	for _, line := range lines {
		out = append(out, "# "+line+strings.Repeat(" ", width-len(line))+" #")
	}
	return append(out, border)
}
