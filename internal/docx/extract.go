// Package docx extracts plain text from Word documents. Headings keep
// their level as markdown prefixes and tables are flattened into
// pipe-separated rows.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotDocx indicates the input is not a DOCX archive.
var ErrNotDocx = errors.New("not a docx file")

// ExtractFile reads a DOCX file from disk and returns its text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return ExtractBytes(data)
}

// ExtractBytes returns the text content of a DOCX document held in
// memory.
func ExtractBytes(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: word/document.xml missing", ErrNotDocx)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("opening document.xml: %w", err)
	}
	defer rc.Close()

	xmlData, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading document.xml: %w", err)
	}

	var body document
	if err := xml.Unmarshal(xmlData, &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	var out []string
	for _, block := range body.Body.Blocks {
		switch {
		case block.XMLName.Local == "p":
			text := block.paragraphText()
			if text == "" {
				continue
			}
			out = append(out, headingPrefix(block.style())+text)
		case block.XMLName.Local == "tbl":
			out = append(out, block.tableText()...)
		}
	}
	return strings.Join(out, "\n"), nil
}

func headingPrefix(style string) string {
	switch style {
	case "Heading1", "1":
		return "# "
	case "Heading2", "2":
		return "## "
	case "Heading3", "3":
		return "### "
	}
	return ""
}

type document struct {
	XMLName xml.Name `xml:"document"`
	Body    struct {
		Blocks []block `xml:",any"`
	} `xml:"body"`
}

// block is either a paragraph (w:p) or a table (w:tbl); other body
// elements are carried but ignored.
type block struct {
	XMLName xml.Name
	Props   struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []run `xml:"r"`
	Rows []row `xml:"tr"`
}

type run struct {
	Texts []string `xml:"t"`
}

type row struct {
	Cells []cell `xml:"tc"`
}

type cell struct {
	Paragraphs []struct {
		Runs []run `xml:"r"`
	} `xml:"p"`
}

func (b block) style() string {
	return b.Props.Style.Val
}

func (b block) paragraphText() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		for _, t := range r.Texts {
			sb.WriteString(t)
		}
	}
	return strings.TrimSpace(sb.String())
}

func (b block) tableText() []string {
	lines := []string{"[ТАБЛИЦА]"}
	for _, tr := range b.Rows {
		cells := make([]string, 0, len(tr.Cells))
		for _, tc := range tr.Cells {
			var sb strings.Builder
			for _, p := range tc.Paragraphs {
				for _, r := range p.Runs {
					for _, t := range r.Texts {
						sb.WriteString(t)
					}
				}
			}
			cells = append(cells, strings.TrimSpace(sb.String()))
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return lines
}
