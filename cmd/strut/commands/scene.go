package commands

import (
	"fmt"

	"github.com/agiangrant/strut"
	"github.com/agiangrant/strut/draw"
	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/layout"
	"github.com/agiangrant/strut/render"
	"github.com/agiangrant/strut/retained"
	"github.com/agiangrant/strut/solver"
)

// buildDemo attaches the demo scene: a bordered card holding a centered
// ellipse, and a scroll view over a tall striped column.
func buildDemo(app *strut.App) error {
	root := retained.NewWidget("root").SetDrawable(draw.NewRect(render.White))

	card := retained.NewWidget("card").SetDrawable(&draw.RectState{
		Background: render.RGBA(0xee, 0xee, 0xff, 0xff),
		Border:     &draw.Border{Width: 2, Color: render.Black},
	})
	if err := card.Layout().Add(layout.Fixed(card.Layout(), geom.RectFromLTWH(40, 40, 240, 160))...); err != nil {
		return err
	}

	dot := retained.NewWidget("dot").SetDrawable(&draw.EllipseState{
		Background: render.Red,
		Border:     &draw.Border{Width: 3, Color: render.Black},
	})
	if err := dot.Layout().Add(append(layout.Size(dot.Layout(), geom.Sz(120, 80)), layout.Center(dot.Layout(), card.Layout())...)...); err != nil {
		return err
	}

	view := app.NewScroll("view")
	if err := view.Layout().Add(layout.Fixed(view.Layout(), geom.RectFromLTWH(320, 40, 200, 240))...); err != nil {
		return err
	}

	root.AddChild(card).AddChild(view)
	card.AddChild(dot)
	if err := app.SetRoot(root); err != nil {
		return err
	}

	column := retained.NewWidget("column").SetDrawable(draw.NewRect(render.RGBA(0xdd, 0xdd, 0xdd, 0xff)))
	if err := column.Layout().Add(layout.Size(column.Layout(), geom.Sz(200, 1200))...); err != nil {
		return err
	}
	for i := 0; i < 12; i++ {
		c := uint8(0x40 + 0x10*i)
		stripe := retained.NewWidget(fmt.Sprintf("stripe%d", i)).SetDrawable(draw.NewRect(render.RGBA(c, 0x80, 0xff-c, 0xff)))
		n := stripe.Layout()
		cs := layout.Set{
			layout.AlignLeft(n, column.Layout()),
			layout.Width(n, 200),
			layout.Height(n, 90),
			solver.Eq(n.Top(), column.Layout().Top().Expression().AddConstant(float64(100*i))),
		}
		if err := n.Add(cs...); err != nil {
			return err
		}
		column.AddChild(stripe)
	}
	return app.Tree().AddChild(view, column)
}
