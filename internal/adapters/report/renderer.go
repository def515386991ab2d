package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth   = 210.0
	margin      = 15.0
	contentW    = pageWidth - 2*margin
	lineHeight  = 7.0
	refIDLength = 9
)

type rgb struct{ r, g, b int }

var ( //nolint:gochecknoglobals // palette
	colInk     = rgb{15, 23, 42}
	colMuted   = rgb{100, 116, 139}
	colPanel   = rgb{241, 245, 249}
	colAccent  = rgb{59, 130, 246}
	colDanger  = rgb{220, 38, 38}
	colSuccess = rgb{22, 163, 74}
	colWhite   = rgb{255, 255, 255}
)

// Renderer draws assessment reports. It keeps no state between calls and is
// safe for concurrent use.
type Renderer struct {
	now      func() time.Time
	newID    func() string
	currency string
	lang     language.Tag
	compress bool
}

// NewRenderer creates a renderer with configuration options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		now:      time.Now,
		newID:    NewReferenceID,
		currency: "$",
		lang:     language.English,
		compress: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewReferenceID returns a 9 character upper-case reference.
func NewReferenceID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return id[:refIDLength]
}

// Render writes the report for in to w as a single-page PDF.
func (r *Renderer) Render(w io.Writer, in Input) error {
	ts := r.now()
	doc := r.compose(in, ts)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(ts)
	pdf.SetModificationDate(ts)
	pdf.SetTitle(Title, false)
	pdf.SetAuthor(Brand, false)
	pdf.SetCreator(Brand, false)
	pdf.SetSubject(doc.ReferenceID, false)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	d := drawer{pdf: pdf, tr: tr}
	d.header(doc)
	d.banner(doc)
	d.drivers(doc)
	d.sections(doc)
	d.footer(doc)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

type drawer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d drawer) fill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d drawer) text(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }
func (d drawer) draw(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }

func (d drawer) header(doc Document) {
	pdf := d.pdf
	d.fill(colInk)
	pdf.Rect(0, 0, pageWidth, 38, "F")

	d.text(colWhite)
	pdf.SetXY(margin, 10)
	pdf.SetFont("Courier", "B", 18)
	pdf.CellFormat(contentW/2, 8, Brand, "", 0, "L", false, 0, "")
	pdf.SetFont("Courier", "", 9)
	pdf.CellFormat(contentW/2, 8, "REF: "+doc.ReferenceID, "", 1, "R", false, 0, "")

	pdf.SetX(margin)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW/2, 7, Title, "", 0, "L", false, 0, "")
	pdf.SetFont("Courier", "", 9)
	pdf.CellFormat(contentW/2, 7, "DATE: "+doc.Date, "", 1, "R", false, 0, "")

	d.text(colMuted)
	pdf.SetX(margin)
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(contentW, 6, Subtitle, "", 1, "L", false, 0, "")
}

func (d drawer) banner(doc Document) {
	pdf := d.pdf
	tone := colSuccess
	if doc.HighRisk {
		tone = colDanger
	}

	top := 46.0
	d.fill(tone)
	pdf.Rect(margin, top, contentW, 34, "F")

	d.text(colWhite)
	pdf.SetXY(margin+6, top+5)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW*0.6, 10, doc.Verdict, "", 0, "L", false, 0, "")

	pdf.SetFont("Courier", "B", 20)
	pdf.CellFormat(contentW*0.4-12, 10, doc.Probability, "", 1, "R", false, 0, "")

	pdf.SetX(margin + 6)
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(contentW*0.6, 5, "APPLICANT: "+d.tr(doc.Applicant), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4-12, 5, "DEFAULT PROBABILITY", "", 1, "R", false, 0, "")

	pdf.SetXY(margin+6, top+22)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(contentW-12, 4.5, ">> SYSTEM_ADVISORY: "+doc.Advisory, "", "L", false)
}

func (d drawer) drivers(doc Document) {
	pdf := d.pdf
	top := 88.0
	gap := 4.0
	n := float64(len(doc.Drivers))
	w := (contentW - gap*(n-1)) / n

	for i, row := range doc.Drivers {
		x := margin + float64(i)*(w+gap)
		d.fill(colPanel)
		pdf.Rect(x, top, w, 22, "F")
		d.fill(colAccent)
		pdf.Rect(x, top, 1.2, 22, "F")

		d.text(colMuted)
		pdf.SetXY(x+4, top+3)
		pdf.SetFont("Courier", "", 7)
		pdf.CellFormat(w-6, 5, row.Label, "", 2, "L", false, 0, "")

		d.text(colInk)
		pdf.SetX(x + 4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(w-6, 9, d.tr(row.Value), "", 0, "L", false, 0, "")
	}
}

func (d drawer) sections(doc Document) {
	pdf := d.pdf
	top := 120.0
	gap := 8.0
	colW := (contentW - gap) / float64(len(doc.Sections))
	labelW := colW * 0.5

	for i, sec := range doc.Sections {
		x := margin + float64(i)*(colW+gap)
		pdf.SetXY(x, top)

		d.text(colAccent)
		pdf.SetFont("Courier", "B", 9)
		pdf.CellFormat(colW, lineHeight, sec.Title, "", 2, "L", false, 0, "")
		d.draw(colAccent)
		pdf.SetLineWidth(0.4)
		pdf.Line(x, pdf.GetY(), x+colW, pdf.GetY())
		pdf.Ln(1.5)

		d.draw(colPanel)
		pdf.SetLineWidth(0.2)
		for j, row := range sec.Rows {
			fill := j%2 == 0
			d.fill(colPanel)
			pdf.SetX(x)
			d.text(colMuted)
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(labelW, lineHeight, d.tr(row.Label), "", 0, "L", fill, 0, "")
			d.text(colInk)
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(colW-labelW, lineHeight, d.tr(row.Value), "", 1, "R", fill, 0, "")
		}
	}
}

func (d drawer) footer(doc Document) {
	pdf := d.pdf
	d.draw(colMuted)
	pdf.SetLineWidth(0.2)
	pdf.Line(margin, 280, pageWidth-margin, 280)

	d.text(colMuted)
	pdf.SetXY(margin, 282)
	pdf.SetFont("Courier", "", 7)
	pdf.CellFormat(contentW/2, 5, "Model output is advisory and does not constitute a credit decision.", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, fmt.Sprintf("%s // %s", Brand, doc.ReferenceID), "", 0, "R", false, 0, "")
}
