// =============================================================================
// Candidate Surveys - HTML Writer Module
// =============================================================================
//
// This module renders the summary table as a standalone HTML page.
//
// HTML STRUCTURE:
//
//   <!DOCTYPE html>
//   <html>
//     <head>
//       <style>                              <!-- tooltip CSS + color classes -->
//         td.C094a_Gre { background-color: #00ff00; }
//       </style>
//     </head>
//     <body>
//       <table>
//         <tr>                               <!-- header row -->
//           <td class="header">Party</td>
//         </tr>
//         <tr>                               <!-- one row per record -->
//           <td class="C094a_Gre">Gre</td>
//         </tr>
//         <tr>
//           <td class="tooltip">other<span class="tooltiptext">Red</span></td>
//         </tr>
//       </table>
//     </body>
//   </html>
//
// =============================================================================

package htmlwriter

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/candidate-surveys/internal/summary"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
	"github.com/ginjaninja78/candidate-surveys/pkg/utils"
)

// tooltipCSS styles the header row and the hover tooltips of unmatched
// cells.
const tooltipCSS = `td.header { font-weight: bold; }

.tooltip {
  border-bottom: 1px dotted black;
}

.tooltip .tooltiptext {
  visibility: hidden;
  width: 240px;
  background-color: white;
  color: black;
  text-align: center;
  padding: 5px 0;
  border-radius: 6px;
  position: absolute;
  z-index: 1;
}

.tooltip:hover .tooltiptext {
  visibility: visible;
}
`

// indent is written once per nesting level.
const indent = "  "

// =============================================================================
// HTML GENERATION FUNCTIONS
// =============================================================================

// Render creates the HTML page of a summary table.
func Render(table summary.Table) []byte {
	w := &pageWriter{indent: indent}

	w.buffer.WriteString("<!DOCTYPE html>\n")

	w.open("html", "")
	w.open("head", "")
	w.writeStyle(table.Styles)
	w.close("head")

	w.open("body", "")
	w.open("table", "")

	w.open("tr", "")
	for _, title := range table.Headers {
		w.line(fmt.Sprintf(`<td class="header">%s</td>`, escapeHTML(title)))
	}
	w.close("tr")

	for _, row := range table.Rows {
		w.open("tr", "")
		for _, cell := range row.Cells {
			w.line(renderCell(cell))
		}
		w.close("tr")
	}

	w.close("table")
	w.close("body")
	w.close("html")

	return w.buffer.Bytes()
}

// Write renders a summary table and writes it to path, creating parent
// directories as needed.
//
// RETURNS:
//   - A *types.WriteError if the file cannot be written.
func Write(table summary.Table, path string) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, Render(table), 0644); err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	return nil
}

// =============================================================================
// PAGE WRITER
// =============================================================================

// pageWriter writes indented elements to a buffer.
type pageWriter struct {
	buffer bytes.Buffer
	indent string
	level  int
}

func (w *pageWriter) line(s string) {
	w.buffer.WriteString(strings.Repeat(w.indent, w.level))
	w.buffer.WriteString(s)
	w.buffer.WriteString("\n")
}

func (w *pageWriter) open(tag, class string) {
	if class != "" {
		w.line(fmt.Sprintf(`<%s class="%s">`, tag, escapeHTML(class)))
	} else {
		w.line("<" + tag + ">")
	}
	w.level++
}

func (w *pageWriter) close(tag string) {
	w.level--
	w.line("</" + tag + ">")
}

// writeStyle writes the tooltip CSS followed by one rule per color class.
func (w *pageWriter) writeStyle(styles []summary.ColorStyle) {
	w.open("style", "")
	for _, cssLine := range strings.Split(strings.TrimSuffix(tooltipCSS, "\n"), "\n") {
		if cssLine == "" {
			w.buffer.WriteString("\n")
			continue
		}
		w.line(cssLine)
	}
	if len(styles) > 0 {
		w.buffer.WriteString("\n")
	}
	for _, style := range styles {
		w.line(fmt.Sprintf("td.%s { background-color: %s; }", style.Class, escapeCSS(style.Color)))
	}
	w.close("style")
}

// renderCell renders one <td> on a single line.
func renderCell(cell summary.Cell) string {
	var b strings.Builder

	b.WriteString("<td")
	if cell.Class != "" {
		fmt.Fprintf(&b, ` class="%s"`, escapeHTML(cell.Class))
	}
	b.WriteString(">")
	b.WriteString(escapeHTML(cell.Text))
	if cell.Class == summary.TooltipClass {
		fmt.Fprintf(&b, `<span class="tooltiptext">%s</span>`, escapeHTML(cell.Tooltip))
	}
	b.WriteString("</td>")

	return b.String()
}

// escapeHTML escapes special characters for HTML text and attributes.
func escapeHTML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&#34;")
		case '\'':
			buffer.WriteString("&#39;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// escapeCSS drops characters that would end a CSS declaration or the style
// element.
func escapeCSS(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>':
			return -1
		}
		return r
	}, s)
}
