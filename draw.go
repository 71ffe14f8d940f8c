package facepose

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/esimov/facepose/utils"
	"github.com/golang/geo/r2"
)

// strokeWidth is the width of the overlay lines, in frame pixels.
const strokeWidth = 1.5

// draw paints the current frame and its overlay, scaled to fit the window.
func (g *Gui) draw(gtx C) {
	paint.FillShape(gtx.Ops, g.cfg.color.background,
		clip.Rect{Max: gtx.Constraints.Max}.Op(),
	)

	fw, fh := g.frameSize()
	r := getRatio(fw, fh, float64(gtx.Constraints.Max.X), float64(gtx.Constraints.Max.Y))
	defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(r, r))).Push(gtx.Ops).Pop()

	if img := g.proc.frame.Image; img != nil {
		src := paint.NewImageOp(img)
		src.Add(gtx.Ops)

		stack := clip.Rect{Max: img.Bounds().Size()}.Push(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		stack.Pop()
	}

	sc := NewScene(fw, fh, g.proc.frame.Faces, g.proc.ests, g.proc.errs, &g.cursor)
	g.drawScene(gtx, sc)
}

// drawScene translates the overlay into paint operations.
func (g *Gui) drawScene(gtx C, sc Scene) {
	for _, s := range sc.Segments {
		g.drawLine(gtx, s.From, s.To, s.Color)
	}
	for _, r := range sc.Rects {
		g.drawRect(gtx, r)
	}
	for _, m := range sc.Markers {
		g.drawCircle(gtx, m.Center, m.Diameter/2, m.Color)
	}
	for _, t := range sc.Texts {
		g.drawText(gtx, t)
	}
	for _, r := range sc.Indicator {
		g.drawRect(gtx, r)
	}
}

// drawCircle draws a filled circle with the provided radius.
func (g *Gui) drawCircle(gtx C, c r2.Point, radius float64, col color.NRGBA) {
	rect := image.Rect(
		int(c.X-radius), int(c.Y-radius),
		int(c.X+radius+0.5), int(c.Y+radius+0.5),
	)
	paint.FillShape(gtx.Ops, col, clip.Ellipse(rect).Op(gtx.Ops))
}

// drawLine strokes a line between two points.
func (g *Gui) drawLine(gtx C, from, to r2.Point, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(point(from))
	path.LineTo(point(to))

	paint.FillShape(gtx.Ops, col,
		clip.Stroke{Path: path.End(), Width: strokeWidth}.Op(),
	)
}

// drawRect fills or strokes a rectangle.
func (g *Gui) drawRect(gtx C, r Rect) {
	if r.Fill {
		rect := image.Rect(int(r.Min.X), int(r.Min.Y), int(r.Max.X), int(r.Max.Y))
		paint.FillShape(gtx.Ops, r.Color, clip.Rect(rect).Op())
		return
	}

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(point(r.Min))
	path.LineTo(f32.Pt(float32(r.Max.X), float32(r.Min.Y)))
	path.LineTo(point(r.Max))
	path.LineTo(f32.Pt(float32(r.Min.X), float32(r.Max.Y)))
	path.Close()

	paint.FillShape(gtx.Ops, r.Color,
		clip.Stroke{Path: path.End(), Width: strokeWidth}.Op(),
	)
}

// drawText lays out a label with its baseline at the text position.
func (g *Gui) drawText(gtx C, t Text) {
	pos := image.Pt(int(t.Pos.X), int(t.Pos.Y-t.Size))
	defer op.Offset(pos).Push(gtx.Ops).Pop()

	lbl := material.Label(g.theme, unit.Sp(t.Size), t.Value)
	lbl.Color = t.Color
	gtx.Constraints.Min = image.Point{}
	lbl.Layout(gtx)
}

// point converts an overlay coordinate to Gio f32.Point.
func point(p r2.Point) f32.Point {
	return f32.Point{
		X: float32(p.X),
		Y: float32(p.Y),
	}
}

// getRatio returns the scale factor fitting the frame into the window
// while maintaining the aspect ratio.
func getRatio(fw, fh, ww, wh float64) float32 {
	if fw <= 0 || fh <= 0 || ww <= 0 || wh <= 0 {
		return 1
	}
	return float32(utils.Min(ww/fw, wh/fh))
}
