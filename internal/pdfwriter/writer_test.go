package pdfwriter

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/candidate-surveys/internal/document"
	"github.com/ginjaninja78/candidate-surveys/internal/logogrid"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

func sampleDocument(t *testing.T) *document.Document {
	t.Helper()

	dir := t.TempDir()
	var images []logogrid.LogoImage
	for i, size := range [][2]int{{40, 20}, {20, 40}, {30, 30}} {
		path := filepath.Join(dir, string(rune('a'+i))+".png")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, size[0], size[1]))))
		require.NoError(t, f.Close())
		images = append(images, logogrid.LogoImage{Path: path, Width: size[0], Height: size[1], Format: "png"})
	}
	grid, err := logogrid.Compute(images, 2)
	require.NoError(t, err)

	body := document.Style{Font: document.FontBody, Size: document.SizeBody}
	return &document.Document{
		Blocks: []document.Block{
			document.Paragraph{
				Runs:  []document.Run{{Text: "Voter Guide", Bold: true}},
				Style: document.Style{Align: document.AlignCenter, Font: document.FontTitle, Size: document.SizeTitle},
			},
			document.Spacer{Size: document.SpacerLarge},
			document.Paragraph{
				Runs:  []document.Run{{Text: "Name", Bold: true}, {Text: ": Zoë Ångström"}},
				Style: body,
			},
			document.Rule{},
			document.Paragraph{
				Runs:  []document.Run{{Text: "Continuation", Bold: true}},
				Style: document.Style{Font: document.FontBody, Size: document.SizeBody, IndentLike: "1. "},
			},
			document.Paragraph{
				Runs:  []document.Run{{Text: strings.Repeat("A long answer that wraps. ", 400)}},
				Style: document.Style{Font: document.FontBody, Size: document.SizeBody, LeftIndent: document.AnswerIndent},
			},
			document.Group{Blocks: []document.Block{
				document.Rule{},
				document.Paragraph{Runs: []document.Run{{Text: "Footer", Italic: true}}, Style: body},
				document.ImageGrid{Layout: grid},
			}},
		},
		Metadata: document.Metadata{Author: "League", Title: "Guide - Zoë"},
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(DefaultPageOptions(), nil).Render(sampleDocument(t), &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestRender_EmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(DefaultPageOptions(), nil).Render(&document.Document{}, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWrite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Ada.pdf")
	require.NoError(t, New(DefaultPageOptions(), nil).Write(sampleDocument(t), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "Ada.pdf")

	err := New(DefaultPageOptions(), nil).Write(&document.Document{}, path)
	var writeErr *types.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, path, writeErr.Path)
}

func TestWrite_UnreadableImage(t *testing.T) {
	doc := &document.Document{Blocks: []document.Block{
		document.ImageGrid{Layout: logogrid.Layout{
			Columns:  1,
			CellSize: 410,
			Rows:     [][]logogrid.ScaledImage{{{Path: filepath.Join(t.TempDir(), "gone.png"), Format: "png", Width: 10, Height: 10}}},
		}},
	}}

	err := New(DefaultPageOptions(), nil).Write(doc, filepath.Join(t.TempDir(), "out.pdf"))
	var writeErr *types.WriteError
	assert.True(t, errors.As(err, &writeErr))
}

func TestAlignString(t *testing.T) {
	assert.Equal(t, "L", alignString(document.AlignLeft))
	assert.Equal(t, "C", alignString(document.AlignCenter))
	assert.Equal(t, "J", alignString(document.AlignJustify))
}

func textDocument(text string) *document.Document {
	return &document.Document{
		Blocks: []document.Block{
			document.Paragraph{
				Runs:  []document.Run{{Text: "Name", Bold: true}, {Text: ": " + text}},
				Style: document.Style{Font: document.FontBody, Size: document.SizeBody},
			},
		},
		Metadata: document.Metadata{Title: "Guide - " + text},
	}
}

func TestRender_LogsCharactersOutsideCP1252(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "latin-1 only", text: "Zoë Ångström", want: ""},
		{name: "vietnamese", text: "Nguyễn", want: "ễ"},
		{name: "cjk", text: "李 李 明", want: "明李"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			var buf bytes.Buffer
			require.NoError(t, New(DefaultPageOptions(), zap.New(core)).Render(textDocument(tt.text), &buf))

			if tt.want == "" {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			fields := logs.All()[0].ContextMap()
			assert.Equal(t, tt.want, fields["characters"])
			assert.Equal(t, "Guide - "+tt.text, fields["title"])
		})
	}
}

func TestWrite_MissingUnicodeFont(t *testing.T) {
	options := DefaultPageOptions()
	options.UnicodeFont = filepath.Join(t.TempDir(), "missing.ttf")
	path := filepath.Join(t.TempDir(), "Ada.pdf")

	err := New(options, nil).Write(textDocument("Nguyễn"), path)
	var writeErr *types.WriteError
	require.True(t, errors.As(err, &writeErr), "got %v", err)
	assert.NoFileExists(t, path)
}
