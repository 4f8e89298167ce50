package domain

import (
	"fmt"
	"math"

	apperrors "github.com/sergio-nezhigay/images-creator/pkg/errors"
)

// CellSize is the fixed width and height in pixels of one grid cell.
const CellSize = 1024

// Position is the pixel offset of one image on the composite canvas.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GridLayout is the deterministic tiling geometry for a given image count.
// Positions are row-major: row 0 left to right, then row 1, and so on.
type GridLayout struct {
	Rows         int        `json:"rows"`
	Cols         int        `json:"cols"`
	CellWidth    int        `json:"cellWidth"`
	CellHeight   int        `json:"cellHeight"`
	CanvasWidth  int        `json:"canvasWidth"`
	CanvasHeight int        `json:"canvasHeight"`
	Positions    []Position `json:"positions"`
}

// Grid returns the layout descriptor in "<cols>x<rows>" form.
func (l *GridLayout) Grid() string {
	return fmt.Sprintf("%dx%d", l.Cols, l.Rows)
}

// gridShape returns (cols, rows) for the given image count. Three images use
// a 2x2 grid with one empty cell; the alternative 3x1 strip was rejected as a
// fixed policy decision.
func gridShape(imageCount int) (cols, rows int) {
	switch {
	case imageCount == 1:
		return 1, 1
	case imageCount == 2:
		return 2, 1
	case imageCount <= 4:
		return 2, 2
	case imageCount <= 6:
		return 3, 2
	case imageCount <= 9:
		return 3, 3
	default:
		cols = int(math.Ceil(math.Sqrt(float64(imageCount))))
		rows = (imageCount + cols - 1) / cols
		return cols, rows
	}
}

// ComputeLayout computes the grid layout for the given image count. It is a
// pure function: the same count always yields identical geometry.
func ComputeLayout(imageCount int) (*GridLayout, error) {
	if imageCount <= 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("image count must be positive, got %d", imageCount))
	}

	cols, rows := gridShape(imageCount)

	positions := make([]Position, imageCount)
	for i := 0; i < imageCount; i++ {
		positions[i] = Position{
			X: (i % cols) * CellSize,
			Y: (i / cols) * CellSize,
		}
	}

	return &GridLayout{
		Rows:         rows,
		Cols:         cols,
		CellWidth:    CellSize,
		CellHeight:   CellSize,
		CanvasWidth:  cols * CellSize,
		CanvasHeight: rows * CellSize,
		Positions:    positions,
	}, nil
}
