// =============================================================================
// Candidate Surveys - PDF Writer Module
// =============================================================================
//
// This module renders an assembled document to a Letter-size PDF using the
// fpdf core fonts.
//
// RENDERING RULES:
//   - Paragraphs: left-aligned runs flow with Write so bold and plain text
//     can share a line; centered and justified paragraphs use MultiCell.
//   - Spacers advance the cursor; a spacer at the page bottom is dropped.
//   - Rule: a 10pt band with a 1pt line from 1in to 5.15in.
//   - Image grid: centered in the text column, each image centered in its
//     cell.
//   - Group: moved to a new page when it does not fit in what is left of
//     the current one.
//
// Text is translated to cp1252 for the core fonts unless a UTF-8 TrueType
// font is configured. Characters cp1252 cannot hold are logged once per
// document.
//
// =============================================================================

package pdfwriter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/candidate-surveys/internal/document"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// =============================================================================
// PAGE OPTIONS
// =============================================================================

// PageOptions contains the page geometry.
type PageOptions struct {
	// Size is an fpdf page size name.
	// Default: "Letter"
	Size string

	// Margin is the margin on every side, in points.
	// Default: 72 (one inch)
	Margin float64

	// LineSpacing multiplies the font size to get the line height.
	// Default: 1.2
	LineSpacing float64

	// UnicodeFont is the path of a UTF-8 TrueType font used for all text in
	// place of the core fonts. The same file serves the bold and italic
	// styles.
	// Default: "" (core fonts, cp1252 text)
	UnicodeFont string
}

// DefaultPageOptions returns Letter pages with one-inch margins.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		Size:        "Letter",
		Margin:      72,
		LineSpacing: 1.2,
	}
}

// unicodeFamily is the family name the UnicodeFont is registered under.
const unicodeFamily = "SurveyUnicode"

const (
	ruleHeight = 10.0
	ruleStart  = 72.0
	ruleEnd    = 5.15 * 72
	ruleOffset = 6.0
)

// =============================================================================
// WRITER
// =============================================================================

// Writer renders documents to PDF files. A Writer holds no per-document
// state and can be reused; the Unicode font is read on first use.
type Writer struct {
	options PageOptions
	logger  *zap.Logger

	fontOnce sync.Once
	font     []byte
	fontErr  error
}

// New creates a Writer with the given page options. A nil logger disables
// logging.
func New(options PageOptions, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{options: options, logger: logger}
}

// Write renders doc to the file at path. The parent directory must exist.
//
// RETURNS:
//   - A *types.WriteError if rendering fails or the file cannot be written.
func (w *Writer) Write(doc *document.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &types.WriteError{Path: path, Err: err}
	}

	renderErr := w.Render(doc, f)
	closeErr := f.Close()
	if renderErr != nil {
		os.Remove(path)
		return &types.WriteError{Path: path, Err: renderErr}
	}
	if closeErr != nil {
		return &types.WriteError{Path: path, Err: closeErr}
	}
	return nil
}

// Render renders doc as PDF to out.
func (w *Writer) Render(doc *document.Document, out io.Writer) error {
	pdf := fpdf.New("P", "pt", w.options.Size, "")
	pdf.SetMargins(w.options.Margin, w.options.Margin, w.options.Margin)
	pdf.SetAutoPageBreak(true, w.options.Margin)

	r := &renderer{
		pdf:     pdf,
		options: w.options,
	}
	r.pageWidth, r.pageHeight = pdf.GetPageSize()

	if w.options.UnicodeFont != "" {
		w.fontOnce.Do(func() {
			w.font, w.fontErr = os.ReadFile(w.options.UnicodeFont)
		})
		if w.fontErr != nil {
			return fmt.Errorf("failed to read font: %w", w.fontErr)
		}
		for _, style := range []string{"", "B", "I", "BI"} {
			pdf.AddUTF8FontFromBytes(unicodeFamily, style, w.font)
		}
		r.family = unicodeFamily
		r.tr = func(s string) string { return s }
	} else {
		r.tr = r.cp1252(pdf.UnicodeTranslatorFromDescriptor(""))
	}

	setMetadata(pdf, doc.Metadata)
	pdf.AddPage()

	for _, block := range doc.Blocks {
		r.block(block)
		if pdf.Err() {
			break
		}
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}

	if len(r.lost) > 0 {
		w.logger.Warn("Characters outside cp1252 replaced in PDF; configure a Unicode font to keep them",
			zap.String("title", doc.Metadata.Title),
			zap.String("characters", lostString(r.lost)))
	}
	return nil
}

// cp1252 wraps the core-font translator and records every rune that cp1252
// cannot encode.
func (r *renderer) cp1252(tr func(string) string) func(string) string {
	return func(s string) string {
		for _, c := range s {
			if _, ok := charmap.Windows1252.EncodeRune(c); !ok {
				if r.lost == nil {
					r.lost = make(map[rune]bool)
				}
				r.lost[c] = true
			}
		}
		return tr(s)
	}
}

func lostString(lost map[rune]bool) string {
	runes := make([]rune, 0, len(lost))
	for c := range lost {
		runes = append(runes, c)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}

func setMetadata(pdf *fpdf.Fpdf, m document.Metadata) {
	pdf.SetAuthor(m.Author, true)
	pdf.SetSubject(m.Subject, true)
	pdf.SetKeywords(m.Keywords, true)
	pdf.SetCreator(m.Creator, true)
	pdf.SetTitle(m.Title, true)
}

// =============================================================================
// BLOCK RENDERING
// =============================================================================

type renderer struct {
	pdf        *fpdf.Fpdf
	tr         func(string) string
	family     string
	lost       map[rune]bool
	options    PageOptions
	pageWidth  float64
	pageHeight float64
}

func (r *renderer) textWidth() float64 {
	return r.pageWidth - 2*r.options.Margin
}

func (r *renderer) bottom() float64 {
	return r.pageHeight - r.options.Margin
}

func (r *renderer) lineHeight(size float64) float64 {
	return size * r.options.LineSpacing
}

func (r *renderer) block(b document.Block) {
	switch b := b.(type) {
	case document.Paragraph:
		r.paragraph(b)
	case document.Spacer:
		r.spacer(b.Size.Points())
	case document.Rule:
		r.rule()
	case document.ImageGrid:
		r.grid(b)
	case document.Group:
		r.group(b)
	}
}

func (r *renderer) spacer(h float64) {
	if r.pdf.GetY()+h > r.bottom() {
		return
	}
	r.pdf.Ln(h)
}

func (r *renderer) rule() {
	if r.pdf.GetY()+ruleHeight > r.bottom() {
		r.pdf.AddPage()
	}
	y := r.pdf.GetY() + ruleOffset
	r.pdf.SetLineWidth(1)
	r.pdf.Line(r.options.Margin+ruleStart, y, r.options.Margin+ruleEnd, y)
	r.pdf.Ln(ruleHeight)
}

func (r *renderer) paragraph(p document.Paragraph) {
	if p.Text() == "" {
		return
	}

	style := p.Style
	size := style.Size
	if size == 0 {
		size = document.SizeBody
	}
	h := r.lineHeight(size)

	indent := r.indent(p)
	r.pdf.SetLeftMargin(r.options.Margin + indent)
	r.pdf.SetX(r.options.Margin + indent)
	defer r.pdf.SetLeftMargin(r.options.Margin)

	if style.Align == document.AlignLeft || len(p.Runs) > 1 {
		for _, run := range p.Runs {
			r.setFont(style, run)
			r.pdf.Write(h, r.tr(run.Text))
		}
		r.pdf.Ln(h)
		return
	}

	r.setFont(style, p.Runs[0])
	r.pdf.MultiCell(r.textWidth()-indent, h, r.tr(p.Runs[0].Text), "", alignString(style.Align), false)
}

func (r *renderer) indent(p document.Paragraph) float64 {
	indent := p.Style.LeftIndent
	if p.Style.IndentLike != "" && len(p.Runs) > 0 {
		r.setFont(p.Style, p.Runs[0])
		indent += r.pdf.GetStringWidth(r.tr(p.Style.IndentLike))
	}
	return indent
}

func (r *renderer) setFont(style document.Style, run document.Run) {
	family := style.Font
	if r.family != "" {
		family = r.family
	} else if family == "" {
		family = document.FontBody
	}
	size := style.Size
	if size == 0 {
		size = document.SizeBody
	}

	fontStyle := ""
	if run.Bold {
		fontStyle += "B"
	}
	if run.Italic {
		fontStyle += "I"
	}
	r.pdf.SetFont(family, fontStyle, size)
}

func alignString(a document.Align) string {
	switch a {
	case document.AlignCenter:
		return "C"
	case document.AlignJustify:
		return "J"
	default:
		return "L"
	}
}

func (r *renderer) grid(g document.ImageGrid) {
	layout := g.Layout
	if layout.Empty() {
		return
	}

	x0 := r.options.Margin + (r.textWidth()-layout.Width())/2
	cell := layout.CellSize

	for _, row := range layout.Rows {
		if r.pdf.GetY()+cell > r.bottom() {
			r.pdf.AddPage()
		}
		y := r.pdf.GetY()

		for c, img := range row {
			x := x0 + float64(c)*cell + (cell-img.Width)/2
			r.pdf.ImageOptions(img.Path, x, y+(cell-img.Height)/2, img.Width, img.Height, false,
				fpdf.ImageOptions{ImageType: img.Format}, 0, "")
		}
		r.pdf.SetY(y + cell)
	}
}

// group renders blocks on one page when they fit on a fresh page.
func (r *renderer) group(g document.Group) {
	h := r.measure(g.Blocks)
	top := r.options.Margin
	if r.pdf.GetY()+h > r.bottom() && h <= r.bottom()-top && r.pdf.GetY() > top {
		r.pdf.AddPage()
	}
	for _, b := range g.Blocks {
		r.block(b)
	}
}

// =============================================================================
// MEASUREMENT
// =============================================================================

// measure estimates the height of blocks, in points.
func (r *renderer) measure(blocks []document.Block) float64 {
	total := 0.0
	for _, b := range blocks {
		switch b := b.(type) {
		case document.Paragraph:
			total += r.paragraphHeight(b)
		case document.Spacer:
			total += b.Size.Points()
		case document.Rule:
			total += ruleHeight
		case document.ImageGrid:
			total += b.Layout.Height()
		case document.Group:
			total += r.measure(b.Blocks)
		}
	}
	return total
}

func (r *renderer) paragraphHeight(p document.Paragraph) float64 {
	text := p.Text()
	if text == "" {
		return 0
	}

	size := p.Style.Size
	if size == 0 {
		size = document.SizeBody
	}

	width := r.textWidth() - r.indent(p)

	// Bold is the widest style, so measuring in it never underestimates.
	r.setFont(p.Style, document.Run{Bold: true})
	lines := r.pdf.SplitLines([]byte(r.tr(text)), width)
	return float64(len(lines)) * r.lineHeight(size)
}
