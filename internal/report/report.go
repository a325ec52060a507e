// Package report renders export rows as downloadable documents.
package report

import (
	"fmt"
	"strings"
	"time"

	"graficaos.service/internal/core/model"
)

// Meta describes the report a document belongs to.
type Meta struct {
	Title       string
	Subject     string
	Range       model.DateRange
	GeneratedAt time.Time
}

// Period renders the range as dd/MM/yyyy a dd/MM/yyyy.
func (m Meta) Period() string {
	return m.Range.Start.Format("02/01/2006") + " a " + m.Range.End.Format("02/01/2006")
}

// Document is a rendered report ready to be served or attached.
type Document struct {
	Meta        Meta
	Filename    string
	ContentType string
	Body        []byte
}

// Renderer turns rows into one document format.
type Renderer interface {
	Extension() string
	ContentType() string
	Render(rows []model.ExportRow, meta Meta) ([]byte, error)
}

var renderers = map[string]Renderer{
	"csv":  CSVRenderer{},
	"xlsx": XLSXRenderer{},
	"pdf":  PDFRenderer{},
}

// ForFormat looks up a renderer by extension, case-insensitively.
func ForFormat(format string) (Renderer, bool) {
	r, ok := renderers[strings.ToLower(format)]
	return r, ok
}

// Build renders rows and names the resulting file after the range.
func Build(r Renderer, rows []model.ExportRow, meta Meta) (Document, error) {
	body, err := r.Render(rows, meta)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Meta:        meta,
		Filename:    Filename(meta.Range, r.Extension()),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

// Filename is pontos-<start>-<end>.<ext>.
func Filename(rng model.DateRange, ext string) string {
	return fmt.Sprintf("pontos-%s-%s.%s", rng.Start.Format(model.DateLayout), rng.End.Format(model.DateLayout), ext)
}
