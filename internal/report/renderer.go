// Package report writes debit notes and vocabulary sheets as PDF.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"tutornotes/internal/core"
	applog "tutornotes/internal/log"
	"tutornotes/internal/vocab"
)

const (
	margin   = 18.0
	lineHt   = 5.5
	cellPad  = 1.5
	cjkAlias = "cjk"
)

// Options configures a Renderer.
type Options struct {
	OutputDir      string
	VocabOutputDir string
	FontPath       string // TrueType font with CJK glyphs; empty means FindCJKFont
	// ASCIIOnly renders with core Helvetica and drops Chinese text.
	// It must be asked for; a missing font is otherwise an error.
	ASCIIOnly bool
	Layout    Layout
	Logger    *applog.Logger
}

type Renderer struct {
	opts   Options
	logger *applog.Logger
}

// Rendered describes a written debit note.
type Rendered struct {
	Path   string
	Pages  []Page
	Totals []core.PageTotal
}

// NewRenderer resolves the CJK font up front so a missing font fails at startup.
func NewRenderer(opts Options) (*Renderer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard(applog.ComponentReport)
	}
	if opts.ASCIIOnly {
		opts.FontPath = ""
		logger.Warn("PDF output is ASCII only, Chinese text will be dropped")
		return &Renderer{opts: opts, logger: logger}, nil
	}
	if opts.FontPath == "" {
		found, err := FindCJKFont()
		if err != nil {
			return nil, err
		}
		opts.FontPath = found
	}
	if err := checkFont(opts.FontPath); err != nil {
		return nil, err
	}
	logger.Debug("Using CJK font", applog.FieldPath, opts.FontPath)
	return &Renderer{opts: opts, logger: logger}, nil
}

func (r *Renderer) cjk() bool { return !r.opts.ASCIIOnly }

// document wraps fpdf with the text filter matching the loaded font.
type document struct {
	pdf    *fpdf.Fpdf
	family string
	text   func(string) string
}

func (r *Renderer) newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator(r.opts.Layout.Business, true)

	d := &document{pdf: pdf, family: "Helvetica", text: asciiOnly}
	if r.cjk() {
		pdf.AddUTF8Font(cjkAlias, "", r.opts.FontPath)
		pdf.AddUTF8Font(cjkAlias, "B", r.opts.FontPath)
		d.family = cjkAlias
		d.text = func(s string) string { return s }
	}
	return d
}

// asciiOnly drops what the core fonts cannot show.
func asciiOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || (r >= 0x20 && r < 0x7f) {
			b.WriteRune(r)
		}
	}
	lines := strings.Split(b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n")
}

func (d *document) font(style string, size float64) {
	d.pdf.SetFont(d.family, style, size)
}

func (d *document) usableWidth() float64 {
	w, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return w - left - right
}

// row draws one bordered table row whose cells wrap independently.
func (d *document) row(widths []float64, cells []string, fill bool) {
	pdf := d.pdf
	wrapped := make([][]string, len(cells))
	maxLines := 1
	for i, c := range cells {
		var lines []string
		for _, part := range strings.Split(d.text(c), "\n") {
			if part == "" {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, pdf.SplitText(part, widths[i]-2*cellPad)...)
		}
		wrapped[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	h := float64(maxLines)*lineHt + 2*cellPad

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+h > pageH-bottom {
		pdf.AddPage()
	}

	left, _, _, _ := pdf.GetMargins()
	x, y := left, pdf.GetY()
	style := "D"
	if fill {
		style = "FD"
	}
	for i := range cells {
		pdf.Rect(x, y, widths[i], h, style)
		for j, line := range wrapped[i] {
			pdf.SetXY(x+cellPad, y+cellPad+float64(j)*lineHt)
			pdf.CellFormat(widths[i]-2*cellPad, lineHt, line, "", 0, "L", false, 0, "")
		}
		x += widths[i]
	}
	pdf.SetXY(left, y+h)
}

func (d *document) labelValue(label, value string) {
	d.font("", 11)
	d.pdf.Write(6, d.text(label+": "))
	d.font("B", 11)
	d.pdf.Write(6, d.text(value))
	d.pdf.Ln(7)
}

func (d *document) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := d.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// BuildPages lays out note with this renderer's layout and font mode.
func (r *Renderer) BuildPages(note DebitNote) ([]Page, []core.PageTotal, error) {
	return BuildPages(r.opts.Layout, note, r.cjk())
}

// WriteDebitNote renders one page per batch page and overwrites any existing file.
func (r *Renderer) WriteDebitNote(ctx context.Context, note DebitNote) (*Rendered, error) {
	pages, totals, err := r.BuildPages(note)
	if err != nil {
		return nil, err
	}
	layout := r.opts.Layout
	d := r.newDocument(layout.Title.EN)
	pdf := d.pdf

	for _, p := range pages {
		pdf.AddPage()
		full := d.usableWidth()
		widths := []float64{full * 3.8 / 6.4, full * 1.3 / 6.4, full * 1.3 / 6.4}

		d.font("B", 11)
		pdf.CellFormat(0, 6, d.text(layout.Business), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		d.font("B", 18)
		pdf.MultiCell(0, 8, d.text(layout.Title.join("\n", r.cjk())), "", "C", false)
		pdf.Ln(4)

		d.labelValue(layout.StudentLabel.join(" ", r.cjk()), note.Batch.Student)
		d.labelValue(layout.TutorLabel.join(" ", r.cjk()), layout.TutorName)
		pdf.Ln(2)

		d.font("B", 12)
		pdf.CellFormat(0, 7, d.text(p.MonthLabel), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFillColor(220, 220, 220)
		d.font("B", 10)
		d.row(widths, []string{
			layout.Columns[0].join("\n", r.cjk()),
			layout.Columns[1].join("\n", r.cjk()),
			layout.Columns[2].join("\n", r.cjk()),
		}, true)

		d.font("", 10)
		for _, cells := range p.Rows {
			d.row(widths, cells[:], false)
		}

		d.font("B", 10)
		d.row([]float64{widths[0] + widths[1], widths[2]}, p.TotalRow[:], true)

		if p.Note != "" {
			pdf.Ln(6)
			d.font("B", 11)
			pdf.CellFormat(0, 6, d.text(layout.NotesLabel.join(" ", r.cjk())), "", 1, "L", false, 0, "")
			d.font("", 10)
			pdf.MultiCell(0, lineHt, d.text(p.Note), "", "L", false)
		}
	}

	name := DebitNoteFilename(note.Batch.Student, note.Batch.LatestMonthName, note.Year)
	path := filepath.Join(r.opts.OutputDir, name)
	if err := d.save(path); err != nil {
		r.logger.ErrorContext(ctx, "Debit note rendering failed",
			applog.FieldPath, path, applog.FieldOperation, applog.OpRender, applog.FieldError, err)
		return nil, err
	}

	r.logger.InfoContext(ctx, "Debit note written",
		applog.FieldPath, path,
		applog.FieldStudent, note.Batch.Student,
		applog.FieldPages, len(pages))
	return &Rendered{Path: path, Pages: pages, Totals: totals}, nil
}

// VocabularyFilename is review_notes_<student>.pdf.
func VocabularyFilename(student string) string {
	return fmt.Sprintf("review_notes_%s.pdf", safeName(student))
}

// WriteVocabulary renders a review sheet dated at.
func (r *Renderer) WriteVocabulary(ctx context.Context, student string, entries []vocab.Entry, at time.Time) (string, error) {
	if len(entries) == 0 {
		return "", vocab.ErrInvalidList
	}
	layout := r.opts.Layout
	title := vocab.Title(at)
	d := r.newDocument(title)
	pdf := d.pdf
	pdf.AddPage()

	d.font("B", 16)
	pdf.CellFormat(0, 10, d.text(title), "", 1, "C", false, 0, "")
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	y := pdf.GetY() + 2
	pdf.Line(left, y, pageW-right, y)
	pdf.SetY(y + 6)

	full := d.usableWidth()
	widths := []float64{full * 0.55, full * 0.45}

	pdf.SetFillColor(220, 220, 220)
	d.font("B", 11)
	d.row(widths, layout.VocabColumns[:], true)
	d.font("", 11)
	for _, e := range entries {
		d.row(widths, []string{e.Label(), e.Meaning}, false)
	}

	path := filepath.Join(r.opts.VocabOutputDir, VocabularyFilename(student))
	if err := d.save(path); err != nil {
		r.logger.ErrorContext(ctx, "Vocabulary sheet rendering failed",
			applog.FieldPath, path, applog.FieldOperation, applog.OpRender, applog.FieldError, err)
		return "", err
	}
	r.logger.InfoContext(ctx, "Vocabulary sheet written",
		applog.FieldPath, path, applog.FieldStudent, student, "words", len(entries))
	return path, nil
}
