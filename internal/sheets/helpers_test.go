package sheets

import (
	"time"
)

type gadget struct {
	RowMeta
	Name     string
	Note     string
	Active   bool
	Count    int
	Made     time.Time
	Tags     []string
	prepared bool
}

func (g *gadget) Prepare(now time.Time) {
	g.prepared = true
	if g.Made.IsZero() {
		g.Made = now
	}
}

func gadgetCodec() *Codec[*gadget] {
	return NewCodec("gadgets", func() *gadget { return &gadget{} },
		String("name", func(g *gadget) *string { return &g.Name }),
		OptionalString("note", func(g *gadget) *string { return &g.Note }),
		Bool("active", func(g *gadget) *bool { return &g.Active }),
		Int("count", func(g *gadget) *int { return &g.Count }),
		Time("made", func(g *gadget) *time.Time { return &g.Made }),
		List("tags", func(g *gadget) *[]string { return &g.Tags }),
	)
}
