package gplot

import (
	"bytes"
	"image"
	"image/color"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// labelSize is the pixel size labels are set in.
const labelSize = 12

// labelFont lays out and rasterizes label text. Runs are shaped with
// HarfBuzz and the resulting glyph IDs are filled from the outlines of the
// same TrueType data, so measured and drawn widths agree.
//
// When the font data cannot be parsed the bitmap fallback face serves both
// metrics and drawing.
type labelFont struct {
	mu sync.Mutex

	face    *gotext.Face
	outline *sfnt.Font
	ppem    fixed.Int26_6
	metrics font.Metrics
	shaper  shaping.HarfbuzzShaper
	buf     sfnt.Buffer
	rast    vector.Rasterizer

	fallback font.Face
}

// defaultLabelFont is Go Regular at labelSize, shared by every context.
var defaultLabelFont = sync.OnceValue(func() *labelFont {
	return loadLabelFont(goregular.TTF, labelSize)
})

// loadLabelFont parses ttf for labels set at size pixels.
func loadLabelFont(ttf []byte, size int) *labelFont {
	lf := &labelFont{ppem: fixed.I(size)}
	err := lf.parse(ttf)
	if err != nil {
		Logger().Warn("gplot: label font unavailable, using bitmap font", "err", err)
		lf.face, lf.outline = nil, nil
		lf.fallback = basicfont.Face7x13
		lf.metrics = lf.fallback.Metrics()
	}
	return lf
}

func (lf *labelFont) parse(ttf []byte) error {
	face, err := gotext.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return err
	}
	outline, err := sfnt.Parse(ttf)
	if err != nil {
		return err
	}
	m, err := outline.Metrics(&lf.buf, lf.ppem, font.HintingNone)
	if err != nil {
		return err
	}
	lf.face, lf.outline, lf.metrics = face, outline, m
	return nil
}

// shape runs HarfBuzz over s. lf.mu must be held.
func (lf *labelFont) shape(s string) shaping.Output {
	runes := []rune(s)
	return lf.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      lf.face,
		Size:      lf.ppem,
		Script:    runScript(runes),
		Language:  language.NewLanguage("en"),
	})
}

// runScript returns the script of the first letter in runes, Latin when
// there is none.
func runScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return language.LookupScript(r)
		}
	}
	return language.Latin
}

// width returns the advance of s in pixels.
func (lf *labelFont) width(s string) int {
	if s == "" {
		return 0
	}
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.fallback != nil {
		return font.MeasureString(lf.fallback, s).Ceil()
	}
	return lf.shape(s).Advance.Ceil()
}

func (lf *labelFont) ascent() int { return lf.metrics.Ascent.Ceil() }
func (lf *labelFont) height() int { return lf.metrics.Height.Ceil() }

// covers reports whether the font has a glyph for every rune of s.
func (lf *labelFont) covers(s string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	for _, r := range s {
		if lf.fallback != nil {
			if _, _, ok := lf.fallback.GlyphBounds(r); !ok {
				return false
			}
			continue
		}
		gid, err := lf.outline.GlyphIndex(&lf.buf, r)
		if err != nil || gid == 0 {
			return false
		}
	}
	return true
}

// draw composites s onto dst with its baseline starting at (x, y). Ink is
// confined to the line box of s: [x, x+width) by [y-ascent, y-ascent+height).
func (lf *labelFont) draw(dst draw.Image, s string, x, y int, c color.Color) {
	if s == "" {
		return
	}
	lf.mu.Lock()
	defer lf.mu.Unlock()

	src := image.NewUniform(c)
	if lf.fallback != nil {
		d := font.Drawer{Dst: dst, Src: src, Face: lf.fallback, Dot: fixed.P(x, y)}
		d.DrawString(s)
		return
	}

	out := lf.shape(s)
	ascent := lf.ascent()
	w, h := out.Advance.Ceil(), lf.height()
	if w <= 0 || h <= 0 {
		return
	}
	lf.rast.Reset(w, h)
	pen := fixed.Int26_6(0)
	baseline := fixed.I(ascent)
	for _, g := range out.Glyphs {
		segs, err := lf.outline.LoadGlyph(&lf.buf, sfnt.GlyphIndex(g.GlyphID), lf.ppem, nil)
		if err == nil {
			// sfnt outlines are y down; go-text offsets are y up.
			lf.trace(segs, pen+g.XOffset, baseline-g.YOffset)
		}
		pen += g.Advance
	}
	lf.rast.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	lf.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	r := image.Rect(x, y-ascent, x+w, y-ascent+h)
	draw.DrawMask(dst, r, src, image.Point{}, mask, image.Point{}, draw.Over)
}

// trace feeds one glyph outline, offset by (dx, dy), to the rasterizer.
// The rasterizer does not close contours on MoveTo, so trace does.
func (lf *labelFont) trace(segs sfnt.Segments, dx, dy fixed.Int26_6) {
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X+dx) / 64, float32(p.Y+dy) / 64
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			lf.rast.ClosePath()
			lf.rast.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			lf.rast.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			lf.rast.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ex, ey := pt(seg.Args[2])
			lf.rast.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
}
