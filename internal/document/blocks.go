// =============================================================================
// Candidate Surveys - Document Content Blocks
// =============================================================================
//
// A document is an ordered list of content blocks. The assembler produces
// them from a response record; a writer (see internal/pdfwriter) renders them
// in order. Blocks are plain data so that tests can compare whole documents.
//
// BLOCK TYPES:
//   - Paragraph : text runs with bold/italic, one alignment, optional indent
//   - Spacer    : vertical gap of a fixed size
//   - Rule      : horizontal line
//   - ImageGrid : the logo grid
//   - Group     : blocks kept together on one page
//
// =============================================================================

package document

import (
	"github.com/ginjaninja78/candidate-surveys/internal/logogrid"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// Block is one renderable unit of a document.
type Block interface {
	block()
}

// =============================================================================
// PARAGRAPHS
// =============================================================================

// Align is the horizontal alignment of a paragraph.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignJustify
)

// Font families understood by the writer.
const (
	FontBody  = "Helvetica"
	FontTitle = "Times"
)

// Font sizes in points.
const (
	SizeBody     = 10.0
	SizeTitle    = 18.0
	SizeSubtitle = 14.0
)

// AnswerIndent is the left indent of answer paragraphs, in points.
const AnswerIndent = 12.0

// Run is a span of text sharing one font style.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Style controls how a paragraph is laid out.
type Style struct {
	Align Align
	Font  string
	Size  float64

	// LeftIndent shifts every line right, in points.
	LeftIndent float64

	// IndentLike additionally shifts every line right by the rendered width
	// of this text in the paragraph's font. Continuation lines of a numbered
	// prompt use it to line up with the text after "N. ".
	IndentLike string
}

// Paragraph is a block of wrapped text.
type Paragraph struct {
	Runs  []Run
	Style Style
}

// Text returns the concatenated text of all runs.
func (p Paragraph) Text() string {
	s := ""
	for _, r := range p.Runs {
		s += r.Text
	}
	return s
}

// =============================================================================
// OTHER BLOCKS
// =============================================================================

// SpacerSize names one of the fixed vertical gaps.
type SpacerSize int

const (
	SpacerSmall SpacerSize = iota
	SpacerMedium
	SpacerLarge
)

// Points returns the height of the gap: 0.05in, 0.1in or 0.25in.
func (s SpacerSize) Points() float64 {
	switch s {
	case SpacerSmall:
		return 0.05 * 72
	case SpacerMedium:
		return 0.1 * 72
	default:
		return 0.25 * 72
	}
}

func (s SpacerSize) String() string {
	switch s {
	case SpacerSmall:
		return "small"
	case SpacerMedium:
		return "medium"
	default:
		return "large"
	}
}

// Spacer is a vertical gap.
type Spacer struct {
	Size SpacerSize
}

// Rule is a horizontal line across the text column.
type Rule struct{}

// ImageGrid renders a logo grid layout.
type ImageGrid struct {
	Layout logogrid.Layout
}

// Group holds blocks that must not be split across pages.
type Group struct {
	Blocks []Block
}

func (Paragraph) block() {}
func (Spacer) block()    {}
func (Rule) block()      {}
func (ImageGrid) block() {}
func (Group) block()     {}

// =============================================================================
// DOCUMENT
// =============================================================================

// Metadata is the document information dictionary.
type Metadata struct {
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Title    string
}

// Document is the assembled content for one candidate.
type Document struct {
	Blocks    []Block
	Metadata  Metadata
	Candidate types.Candidate
}
