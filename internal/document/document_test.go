package document_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/candidate-surveys/internal/config"
	"github.com/ginjaninja78/candidate-surveys/internal/document"
	"github.com/ginjaninja78/candidate-surveys/internal/logogrid"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

var header = []string{"Timestamp", "Name", "County", "Office", "Party", "GreenQ", "Q1"}

func resolve(t *testing.T, doc string) *config.Resolved {
	t.Helper()
	raw, err := config.Parse([]byte(doc), config.FormatJSON)
	require.NoError(t, err)
	cfg, err := config.Resolve(raw, header)
	require.NoError(t, err)
	return cfg
}

const baseConfig = `{
  "file_structure": ["County", "Office"],
  "candidate_details": ["Name", "County", "Office"],
  "question_overrides": {"Q1": "Why run?\nBe brief."},
  "ignored_fields": ["Timestamp"],
  "conditional_sections": {"Party": [{"value": "Green", "fields": ["GreenQ"]}]},
  "name": "Guide",
  "subname": "2026",
  "footer": "Paid for by us",
  "pdf_author": "League",
  "pdf_creator": "surveys",
  "pdf_keyphrases": ["County", "election"]
}`

func record(party, greenQ, q1 string) types.Record {
	return types.RecordFromPairs(
		"Timestamp", "3/1/2026",
		"Name", " Ada ",
		"County", "Polk",
		"Office", "City/Council",
		"Party", party,
		"GreenQ", greenQ,
		"Q1", q1,
	)
}

// ---------------------------------------------------------------------------
// Candidate / path
// ---------------------------------------------------------------------------

func TestCandidateFor_TrimsInOrder(t *testing.T) {
	cfg := resolve(t, baseConfig)

	c, err := document.CandidateFor(record("Green", "", ""), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "County", "Office"}, c.Order)
	assert.Equal(t, "Ada", c.Fields["Name"])
	assert.Equal(t, "Ada", document.CandidateName(c))
}

func TestCandidateFor_MissingField(t *testing.T) {
	cfg := resolve(t, baseConfig)

	_, err := document.CandidateFor(types.RecordFromPairs("Name", "Ada"), cfg)
	var missing *types.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "County", missing.Field)
	assert.Equal(t, "candidate_details", missing.Role)
}

func TestBuildPath(t *testing.T) {
	cfg := resolve(t, baseConfig)

	tests := []struct {
		name   string
		county string
		office string
		want   string
	}{
		{name: "separators replaced", county: "Polk", office: "City/Council", want: filepath.Join("output", "Polk", "City-Council.pdf")},
		{name: "parent office", county: "Polk", office: "..", want: filepath.Join("output", "Polk", "--.pdf")},
		{name: "parent county and office", county: "..", office: "..", want: filepath.Join("output", "--", "--.pdf")},
		{name: "empty office", county: "Polk", office: "", want: filepath.Join("output", "Polk", "-.pdf")},
		{name: "current dir county", county: ".", office: "Mayor", want: filepath.Join("output", "-", "Mayor.pdf")},
		{name: "traversal in value", county: "../../etc", office: "Mayor", want: filepath.Join("output", "..-..-etc", "Mayor.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.Candidate{
				Fields: map[string]string{"County": tt.county, "Office": tt.office},
				Order:  []string{"County", "Office"},
			}

			path, err := document.BuildPath(c, cfg, "output")
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)

			rel, err := filepath.Rel("output", path)
			require.NoError(t, err)
			assert.False(t, strings.HasPrefix(rel, ".."+string(filepath.Separator)), rel)
		})
	}
}

func TestBuildPath_MissingField(t *testing.T) {
	cfg := resolve(t, baseConfig)
	c := types.Candidate{Fields: map[string]string{"County": "Polk"}, Order: []string{"County"}}

	_, err := document.BuildPath(c, cfg, "output")
	var missing *types.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Office", missing.Field)
	assert.Equal(t, "file_structure", missing.Role)
}

func TestCandidateName_FallsBackToFirstDetail(t *testing.T) {
	c := types.Candidate{Fields: map[string]string{"Full Name": "Ada"}, Order: []string{"Full Name"}}
	assert.Equal(t, "Ada", document.CandidateName(c))
	assert.Equal(t, "", document.CandidateName(types.Candidate{}))
}

// ---------------------------------------------------------------------------
// Visibility
// ---------------------------------------------------------------------------

func keys(qs []document.Question) []string {
	var out []string
	for _, q := range qs {
		out = append(out, q.Key)
	}
	return out
}

func TestVisibleQuestions_Gating(t *testing.T) {
	cfg := resolve(t, baseConfig)

	tests := []struct {
		party string
		want  []string
	}{
		{party: "Green", want: []string{"Party", "GreenQ", "Q1"}},
		{party: "Blue", want: []string{"Party", "Q1"}},
		{party: "green", want: []string{"Party", "Q1"}},
		{party: "Green ", want: []string{"Party", "Q1"}},
	}

	for _, tt := range tests {
		t.Run(tt.party, func(t *testing.T) {
			qs, err := document.VisibleQuestions(record(tt.party, "yes", "because"), cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(qs))
		})
	}
}

func TestVisibleQuestions_ContiguousNumbering(t *testing.T) {
	cfg := resolve(t, baseConfig)

	qs, err := document.VisibleQuestions(record("Blue", "hidden", "because"), cfg)
	require.NoError(t, err)
	for i, q := range qs {
		assert.Equal(t, i+1, q.Number)
	}
	assert.Equal(t, "Why run?\nBe brief.", qs[1].Prompt)
	assert.Equal(t, "Party", qs[0].Prompt)
}

func TestVisibleQuestions_IgnoreBeatsGate(t *testing.T) {
	cfg := resolve(t, `{
	  "file_structure": ["County"],
	  "candidate_details": ["Name", "County"],
	  "question_overrides": {},
	  "ignored_fields": ["GreenQ"],
	  "conditional_sections": {"Party": [{"value": "Green", "fields": ["GreenQ"]}]}
	}`)

	qs, err := document.VisibleQuestions(record("Green", "x", "y"), cfg)
	require.NoError(t, err)
	assert.NotContains(t, keys(qs), "GreenQ")
}

func TestVisibleQuestions_LastRuleWins(t *testing.T) {
	cfg := resolve(t, `{
	  "file_structure": ["County"],
	  "candidate_details": ["Name", "County"],
	  "question_overrides": {},
	  "ignored_fields": [],
	  "conditional_sections": {
	    "Party": [{"value": "Green", "fields": ["GreenQ"]}, {"value": "Blue", "fields": ["GreenQ"]}]
	  }
	}`)

	tests := []struct {
		party   string
		visible bool
	}{
		{party: "Green", visible: false},
		{party: "Blue", visible: true},
		{party: "Red", visible: false},
	}

	for _, tt := range tests {
		t.Run(tt.party, func(t *testing.T) {
			qs, err := document.VisibleQuestions(record(tt.party, "x", "y"), cfg)
			require.NoError(t, err)
			if tt.visible {
				assert.Contains(t, keys(qs), "GreenQ")
			} else {
				assert.NotContains(t, keys(qs), "GreenQ")
			}
		})
	}
}

func TestVisibleQuestions_MissingControllingField(t *testing.T) {
	cfg := resolve(t, baseConfig)
	rec := types.RecordFromPairs("Name", "Ada", "County", "Polk", "Office", "Mayor", "GreenQ", "x")

	_, err := document.VisibleQuestions(rec, cfg)
	var missing *types.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Party", missing.Field)
}

// ---------------------------------------------------------------------------
// Assembly
// ---------------------------------------------------------------------------

func bodyText(text string, bold bool) document.Paragraph {
	return document.Paragraph{
		Runs:  []document.Run{{Text: text, Bold: bold}},
		Style: document.Style{Font: document.FontBody, Size: document.SizeBody},
	}
}

func answerText(text string, italic bool) document.Paragraph {
	return document.Paragraph{
		Runs:  []document.Run{{Text: text, Italic: italic}},
		Style: document.Style{Font: document.FontBody, Size: document.SizeBody, LeftIndent: document.AnswerIndent},
	}
}

var (
	small  = document.Spacer{Size: document.SpacerSmall}
	medium = document.Spacer{Size: document.SpacerMedium}
	large  = document.Spacer{Size: document.SpacerLarge}
)

func TestAssemble_BlockOrder(t *testing.T) {
	cfg := resolve(t, baseConfig)
	grid, err := logogrid.Compute([]logogrid.LogoImage{{Path: "a.png", Width: 10, Height: 10}}, 4)
	require.NoError(t, err)

	doc, err := document.NewAssembler(cfg, grid).Assemble(record("Blue", "hidden", "First.\n\nSecond."))
	require.NoError(t, err)

	continuation := bodyText("Be brief.", true)
	continuation.Style.IndentLike = "2. "

	detail := func(label, value string) document.Paragraph {
		return document.Paragraph{
			Runs:  []document.Run{{Text: label, Bold: true}, {Text: ": " + value}},
			Style: document.Style{Font: document.FontBody, Size: document.SizeBody},
		}
	}

	want := []document.Block{
		document.Paragraph{
			Runs:  []document.Run{{Text: "Guide", Bold: true}},
			Style: document.Style{Align: document.AlignCenter, Font: document.FontTitle, Size: document.SizeTitle},
		},
		large,
		document.Paragraph{
			Runs:  []document.Run{{Text: "2026"}},
			Style: document.Style{Align: document.AlignCenter, Font: document.FontTitle, Size: document.SizeSubtitle},
		},
		large, large,

		detail("Name", "Ada"), medium,
		detail("County", "Polk"), medium,
		detail("Office", "City/Council"), medium,

		document.Rule{}, small,

		medium,
		bodyText("1. Party", true), small,
		medium,
		answerText("Blue", false), small,
		medium,
		bodyText("2. Why run?", true), small,
		continuation, small,
		medium,
		answerText("First.", false), small,
		answerText("Second.", false), small,
		medium,

		large,
		document.Group{Blocks: []document.Block{
			document.Rule{},
			large,
			document.Paragraph{
				Runs:  []document.Run{{Text: "Paid for by us", Italic: true}},
				Style: document.Style{Font: document.FontBody, Size: document.SizeBody},
			},
			document.ImageGrid{Layout: grid},
		}},
	}

	if diff := cmp.Diff(want, doc.Blocks); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_NotAnswered(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		count int
	}{
		{name: "off", doc: baseConfig, count: 0},
		{name: "on", doc: baseConfig[:len(baseConfig)-1] + `, "print_not_answered": true}`, count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := resolve(t, tt.doc)
			doc, err := document.NewAssembler(cfg, logogrid.Layout{}).Assemble(record("Blue", "", "  "))
			require.NoError(t, err)

			got := 0
			for _, b := range doc.Blocks {
				if p, ok := b.(document.Paragraph); ok && p.Text() == document.NotAnswered {
					assert.True(t, p.Runs[0].Italic)
					got++
				}
			}
			assert.Equal(t, tt.count, got)
		})
	}
}

func TestAssemble_Metadata(t *testing.T) {
	cfg := resolve(t, baseConfig)

	doc, err := document.NewAssembler(cfg, logogrid.Layout{}).Assemble(record("Green", "", ""))
	require.NoError(t, err)

	assert.Equal(t, document.Metadata{
		Author:   "League",
		Subject:  "Guide 2026",
		Keywords: "Polk, election",
		Creator:  "surveys",
		Title:    "Guide - Ada",
	}, doc.Metadata)
}

func TestAssemble_TwoRecordsTwoPaths(t *testing.T) {
	cfg := resolve(t, baseConfig)
	assembler := document.NewAssembler(cfg, logogrid.Layout{})

	second := types.RecordFromPairs(
		"Timestamp", "", "Name", "Grace", "County", "Story", "Office", "Mayor",
		"Party", "Green", "GreenQ", "Yes", "Q1", "To serve.",
	)

	paths := map[string]bool{}
	for _, rec := range []types.Record{record("Blue", "", "x"), second} {
		doc, err := assembler.Assemble(rec)
		require.NoError(t, err)
		assert.NotEmpty(t, doc.Blocks)

		path, err := document.BuildPath(doc.Candidate, cfg, "output")
		require.NoError(t, err)
		paths[path] = true
	}
	assert.Len(t, paths, 2)
}

func TestAssemble_Deterministic(t *testing.T) {
	cfg := resolve(t, baseConfig)
	assembler := document.NewAssembler(cfg, logogrid.Layout{})

	first, err := assembler.Assemble(record("Green", "yes", "a\nb"))
	require.NoError(t, err)
	second, err := assembler.Assemble(record("Green", "yes", "a\nb"))
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}
