package gplot

import (
	"fmt"
	"image"
)

// cell is one grid slot: a borrowed renderable and its title.
type cell struct {
	r     Renderable
	title string
}

// resetGrid replaces the arrangement with an empty rows x cols grid.
func (w *Window) resetGrid(rows, cols int) {
	w.rows, w.cols = rows, cols
	w.cells = make([]cell, rows*cols)
}

// Grid arranges the window as rows x cols equal cells and empties them.
// Primitives previously drawn keep their state for this window until it
// closes.
func (w *Window) Grid(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
	}
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	if w.closed {
		return ErrWindowClosed
	}
	w.resetGrid(rows, cols)
	return nil
}

// GridSize returns the current number of rows and columns.
func (w *Window) GridSize() (rows, cols int) {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	return w.rows, w.cols
}

// Draw places r in cell (row, col) with an optional title. Row 0 is the
// top row. The window keeps a reference to r until the cell is replaced or
// the grid reset; r must outlive that use.
func (w *Window) Draw(row, col int, r Renderable, title string) error {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	return w.drawLocked(row, col, r, title)
}

// DrawImage places img in cell (row, col) and sets its aspect policy. The
// policy is left untouched when the image cannot be placed.
func (w *Window) DrawImage(row, col int, img *Image, title string, keepAspect bool) error {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	if err := w.drawLocked(row, col, img, title); err != nil {
		return err
	}
	img.keepAspect = keepAspect
	return nil
}

// DrawSingle resets the window to a single cell holding r.
func (w *Window) DrawSingle(r Renderable) error {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	if w.closed {
		return ErrWindowClosed
	}
	w.resetGrid(1, 1)
	return w.drawLocked(0, 0, r, "")
}

func (w *Window) drawLocked(row, col int, r Renderable, title string) error {
	if w.closed {
		return ErrWindowClosed
	}
	if row < 0 || row >= w.rows || col < 0 || col >= w.cols {
		return fmt.Errorf("%w: (%d, %d) in %dx%d grid", ErrCellOutOfRange, row, col, w.rows, w.cols)
	}
	if cb, ok := r.(contextBound); ok && cb.context() != w.ctx {
		return ErrForeignContext
	}
	w.cells[row*w.cols+col] = cell{r: r, title: normalizeTitle(title)}
	switch r.(type) {
	case windowState, Forgetter:
		w.seen[r] = struct{}{}
	}
	return nil
}

// Cell returns the renderable and title in cell (row, col), or nil if the
// cell is empty or outside the grid.
func (w *Window) Cell(row, col int) (Renderable, string) {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	if row < 0 || row >= w.rows || col < 0 || col >= w.cols || w.cells == nil {
		return nil, ""
	}
	c := w.cells[row*w.cols+col]
	return c.r, c.title
}

// CellRect returns the pixel rectangle of cell (row, col) for the current
// target size, title band included.
func (w *Window) CellRect(row, col int) image.Rectangle {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	return cellRect(w.Bounds(), w.rows, w.cols, row, col)
}

// cellRect splits bounds into rows x cols cells that tile it exactly;
// uneven divisions make neighboring cells differ by at most one pixel.
func cellRect(bounds image.Rectangle, rows, cols, row, col int) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	return image.Rect(
		bounds.Min.X+col*w/cols,
		bounds.Min.Y+row*h/rows,
		bounds.Min.X+(col+1)*w/cols,
		bounds.Min.Y+(row+1)*h/rows,
	)
}
