// =============================================================================
// Candidate Surveys - Document Assembler
// =============================================================================
//
// This module turns one response record into the content blocks of one
// candidate document.
//
// DOCUMENT ORDER:
//   1. Header: title, subtitle
//   2. Candidate details, one "Label: value" paragraph each
//   3. Rule
//   4. Numbered questions, each followed by its answer
//   5. Footer kept together: rule, footer text, logo grid
//
// =============================================================================

package document

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/candidate-surveys/internal/config"
	"github.com/ginjaninja78/candidate-surveys/internal/logogrid"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// NotAnswered replaces an empty answer when print_not_answered is set.
const NotAnswered = "Not answered."

var (
	bodyStyle   = Style{Align: AlignLeft, Font: FontBody, Size: SizeBody}
	answerStyle = Style{Align: AlignLeft, Font: FontBody, Size: SizeBody, LeftIndent: AnswerIndent}
)

// Assembler builds documents for one batch. It is safe to reuse for every
// record; it holds no per-record state.
type Assembler struct {
	cfg  *config.Resolved
	grid logogrid.Layout
}

// NewAssembler creates an assembler for a resolved configuration and the
// batch's logo grid.
func NewAssembler(cfg *config.Resolved, grid logogrid.Layout) *Assembler {
	return &Assembler{cfg: cfg, grid: grid}
}

// Assemble builds the document for one record.
//
// RETURNS:
//   - The document blocks, metadata and candidate.
//   - A *types.MissingFieldError if the record lacks a candidate detail or a
//     controlling field.
func (a *Assembler) Assemble(rec types.Record) (*Document, error) {
	candidate, err := CandidateFor(rec, a.cfg)
	if err != nil {
		return nil, err
	}

	questions, err := VisibleQuestions(rec, a.cfg)
	if err != nil {
		return nil, err
	}

	var blocks []Block
	blocks = a.header(blocks)
	blocks = a.details(blocks, candidate)
	blocks = append(blocks, Rule{}, Spacer{SpacerSmall})
	blocks = a.answers(blocks, questions)
	blocks = append(blocks, Spacer{SpacerLarge})
	blocks = append(blocks, a.footer())

	return &Document{
		Blocks:    blocks,
		Metadata:  a.metadata(rec, candidate),
		Candidate: candidate,
	}, nil
}

// =============================================================================
// SECTIONS
// =============================================================================

func (a *Assembler) header(blocks []Block) []Block {
	return append(blocks,
		Paragraph{
			Runs:  []Run{{Text: a.cfg.Name, Bold: true}},
			Style: Style{Align: AlignCenter, Font: FontTitle, Size: SizeTitle},
		},
		Spacer{SpacerLarge},
		Paragraph{
			Runs:  []Run{{Text: a.cfg.Subname}},
			Style: Style{Align: AlignCenter, Font: FontTitle, Size: SizeSubtitle},
		},
		Spacer{SpacerLarge},
		Spacer{SpacerLarge},
	)
}

func (a *Assembler) details(blocks []Block, c types.Candidate) []Block {
	for _, field := range c.Order {
		blocks = append(blocks,
			Paragraph{
				Runs: []Run{
					{Text: a.cfg.Prompt(field), Bold: true},
					{Text: ": " + c.Fields[field]},
				},
				Style: bodyStyle,
			},
			Spacer{SpacerMedium},
		)
	}
	return blocks
}

func (a *Assembler) answers(blocks []Block, questions []Question) []Block {
	blocks = append(blocks, Spacer{SpacerMedium})

	for _, q := range questions {
		blocks = prompt(blocks, q)
		blocks = append(blocks, Spacer{SpacerMedium})
		blocks = a.answer(blocks, q.Answer)
		blocks = append(blocks, Spacer{SpacerMedium})
	}
	return blocks
}

// prompt prints the question lines, numbering the first and indenting the
// rest to line up with it.
func prompt(blocks []Block, q Question) []Block {
	prefix := fmt.Sprintf("%d. ", q.Number)
	continuation := bodyStyle
	continuation.IndentLike = prefix

	for i, line := range splitLines(q.Prompt) {
		line = strings.TrimSpace(line)
		if i == 0 {
			blocks = append(blocks, Paragraph{Runs: []Run{{Text: prefix + line, Bold: true}}, Style: bodyStyle})
		} else {
			if line == "" {
				continue
			}
			blocks = append(blocks, Paragraph{Runs: []Run{{Text: line, Bold: true}}, Style: continuation})
		}
		blocks = append(blocks, Spacer{SpacerSmall})
	}
	return blocks
}

func (a *Assembler) answer(blocks []Block, answer string) []Block {
	if strings.TrimSpace(answer) == "" {
		if a.cfg.PrintNotAnswered {
			blocks = append(blocks,
				Paragraph{Runs: []Run{{Text: NotAnswered, Italic: true}}, Style: answerStyle},
				Spacer{SpacerSmall},
			)
		}
		return blocks
	}

	for _, line := range splitLines(answer) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks,
			Paragraph{Runs: []Run{{Text: line}}, Style: answerStyle},
			Spacer{SpacerSmall},
		)
	}
	return blocks
}

func (a *Assembler) footer() Group {
	return Group{Blocks: []Block{
		Rule{},
		Spacer{SpacerLarge},
		Paragraph{Runs: []Run{{Text: a.cfg.Footer, Italic: true}}, Style: bodyStyle},
		ImageGrid{Layout: a.grid},
	}}
}

// =============================================================================
// METADATA
// =============================================================================

// metadata fills the information dictionary. A keyphrase naming a record
// field is replaced by that field's value.
func (a *Assembler) metadata(rec types.Record, c types.Candidate) Metadata {
	phrases := make([]string, 0, len(a.cfg.PDFKeyphrases))
	for _, phrase := range a.cfg.PDFKeyphrases {
		if value, ok := rec.Get(phrase); ok {
			phrase = value
		}
		phrases = append(phrases, phrase)
	}

	return Metadata{
		Author:   a.cfg.PDFAuthor,
		Subject:  a.cfg.Name + " " + a.cfg.Subname,
		Keywords: strings.Join(phrases, ", "),
		Creator:  a.cfg.PDFCreator,
		Title:    a.cfg.Name + " - " + CandidateName(c),
	}
}

// splitLines splits on line breaks, accepting CRLF and CR.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
