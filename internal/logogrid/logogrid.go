// =============================================================================
// Candidate Surveys - Logo Grid Layout
// =============================================================================
//
// This module arranges the sponsor logos printed in every document footer into
// a uniform grid.
//
// SIZING RULES:
//   - The grid is GridWidth points wide; with N columns every image is bound
//     to a square of GridWidth/N points, and every cell adds CellPadding.
//   - Each image is first scaled so its larger side equals the bound.
//   - The smallest bounded area across all images becomes the target. Larger
//     images are shrunk on both axes by (1 + target/area) / 2, which pulls
//     them halfway towards the target without flattening their differences.
//
// =============================================================================

package logogrid

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	// Decoders for the formats the PDF writer can embed.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"

	"github.com/ginjaninja78/candidate-surveys/internal/types"
	"github.com/ginjaninja78/candidate-surveys/pkg/utils"
)

const (
	// GridWidth is the width in points shared by all columns.
	GridWidth = 400.0

	// CellPadding is added to the bound to get the cell size.
	CellPadding = 10.0
)

// =============================================================================
// LAYOUT STRUCTURES
// =============================================================================

// LogoImage is one image file queued for layout, with its natural size in
// pixels.
type LogoImage struct {
	Path   string
	Width  int
	Height int

	// Format is the decoder name ("png", "jpeg", "gif"), or "" if unknown.
	Format string
}

// ScaledImage is an image with its display size in points.
type ScaledImage struct {
	Path   string
	Format string
	Width  float64
	Height float64
}

// Layout is the arrangement of images into rows. Every row except possibly
// the last has exactly Columns entries; the last row is never padded.
type Layout struct {
	Columns  int
	CellSize float64
	Rows     [][]ScaledImage
}

// Empty reports whether the layout holds no images.
func (l Layout) Empty() bool {
	return len(l.Rows) == 0
}

// Width returns the width of the full grid in points.
func (l Layout) Width() float64 {
	return float64(l.Columns) * l.CellSize
}

// Height returns the height of the grid in points.
func (l Layout) Height() float64 {
	return float64(len(l.Rows)) * l.CellSize
}

// =============================================================================
// LAYOUT FUNCTIONS
// =============================================================================

// Bound returns the largest dimension an image may have in a grid of the
// given number of columns.
func Bound(columns int) float64 {
	return GridWidth / float64(columns)
}

// Compute lays images out in rows of columns images each, in input order.
//
// PARAMETERS:
//   - images: The images to place, each with positive width and height.
//   - columns: The number of images per row. Must be positive.
//
// RETURNS:
//   - The layout. Zero images give a layout with no rows.
//   - An error if columns is not positive or an image has no size.
func Compute(images []LogoImage, columns int) (Layout, error) {
	if columns <= 0 {
		return Layout{}, fmt.Errorf("logo grid needs a positive column count, got %d", columns)
	}

	bound := Bound(columns)
	layout := Layout{Columns: columns, CellSize: bound + CellPadding}

	bounded := make([]ScaledImage, len(images))
	target := bound * bound
	for i, img := range images {
		if img.Width <= 0 || img.Height <= 0 {
			return Layout{}, &types.ImageReadError{
				Path: img.Path,
				Err:  fmt.Errorf("image has no size (%dx%d)", img.Width, img.Height),
			}
		}
		bounded[i] = fit(img, bound)
		if area := bounded[i].Width * bounded[i].Height; area < target {
			target = area
		}
	}

	var row []ScaledImage
	for _, img := range bounded {
		row = append(row, shrink(img, target))
		if len(row) == columns {
			layout.Rows = append(layout.Rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		layout.Rows = append(layout.Rows, row)
	}

	return layout, nil
}

// fit scales img so its larger side equals bound, keeping the aspect ratio.
func fit(img LogoImage, bound float64) ScaledImage {
	w, h := float64(img.Width), float64(img.Height)
	if w >= h {
		return ScaledImage{Path: img.Path, Format: img.Format, Width: bound, Height: h * (bound / w)}
	}
	return ScaledImage{Path: img.Path, Format: img.Format, Width: w * (bound / h), Height: bound}
}

// shrink pulls an image whose area exceeds target halfway towards it.
func shrink(img ScaledImage, target float64) ScaledImage {
	area := img.Width * img.Height
	if area <= target {
		return img
	}
	reduction := (1 + target/area) / 2
	img.Width *= reduction
	img.Height *= reduction
	return img
}

// =============================================================================
// IMAGE LOADING
// =============================================================================

// LoadImages reads the pixel size of every file in paths and checks that the
// PDF writer can embed each one, so a truncated or unsupported image fails
// here rather than while the first document is written.
//
// RETURNS:
//   - The images in input order.
//   - An *types.ImageReadError for the first file that cannot be opened or
//     decoded.
func LoadImages(paths []string) ([]LogoImage, error) {
	images := make([]LogoImage, 0, len(paths))
	for _, path := range paths {
		img, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func loadImage(path string) (LogoImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return LogoImage{}, &types.ImageReadError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return LogoImage{}, &types.ImageReadError{Path: path, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return LogoImage{}, &types.ImageReadError{Path: path, Err: errors.New("image has no size")}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return LogoImage{}, &types.ImageReadError{Path: path, Err: err}
	}
	if err := checkEmbeddable(path, format, f); err != nil {
		return LogoImage{}, &types.ImageReadError{Path: path, Err: err}
	}

	return LogoImage{Path: path, Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// checkEmbeddable parses the whole image the way the PDF writer will.
func checkEmbeddable(name, format string, r io.Reader) error {
	trial := fpdf.New("P", "pt", "Letter", "")
	trial.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: format}, r)
	if trial.Err() {
		return fmt.Errorf("image cannot be embedded in a PDF: %w", trial.Error())
	}
	return nil
}

// FromDirectory lists the regular files of dir, reads their sizes and lays
// them out. It is called once per batch.
func FromDirectory(dir string, columns int) (Layout, error) {
	paths, err := utils.ListRegularFiles(dir)
	if err != nil {
		return Layout{}, &types.ImageReadError{Path: dir, Err: err}
	}

	images, err := LoadImages(paths)
	if err != nil {
		return Layout{}, err
	}

	return Compute(images, columns)
}
