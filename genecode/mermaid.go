package genecode

import (
	"fmt"
	"strings"

	"github.com/erasmus-gp/egpcore/cgraph"
)

// Colours used by the rendered chart, matching the four-class palette a
// Mermaid flowchart of a genetic code distinguishes: an unknown/external
// node, a codon leaf, a composite GC, and a meta/abstract node.
const (
	mermaidRed   = "red"
	mermaidGreen = "green"
	mermaidBlue  = "blue"
	mermaidGrey  = "grey"
)

var mermaidHeader = []string{"flowchart TD"}

var mermaidFooter = []string{
	"classDef grey fill:#444444,stroke:#333333,stroke-width:2px",
	"classDef red fill:#A74747,stroke:#996666,stroke-width:2px",
	"classDef blue fill:#336699,stroke:#556688,stroke-width:2px",
	"classDef green fill:#576457,stroke:#667766,stroke-width:2px",
	"linkStyle default stroke:#AAAAAA,stroke-width:2px",
}

func mcNodeStr(shape, name, label, color string) string {
	var open, close string
	switch shape {
	case "circle":
		open, close = "((", "))"
	case "hexagon":
		open, close = "{{", "}}"
	default:
		open, close = "[", "]"
	}
	if color == "" {
		return fmt.Sprintf("%s%s\"%s\"%s", name, open, label, close)
	}
	return fmt.Sprintf("%s%s\"%s\"%s:::%s", name, open, label, close, color)
}

func mcConnectStr(namea, nameb string) string {
	return fmt.Sprintf("%s --> %s", namea, nameb)
}

// Mermaid renders g as a Mermaid flowchart: one node per row endpoint
// that participates in a connection, plus edges for every connection in
// the stabilised cgraph. Debug-only output; it is not part of the
// signature and is never parsed back.
func (g *GC) Mermaid(prefix string) string {
	var lines []string
	lines = append(lines, mermaidHeader...)

	label := fmt.Sprintf("%s\\n%s", prefix, g.signature.String()[:8])
	color := mermaidBlue
	switch {
	case g.IsMeta():
		color = mermaidRed
	case g.IsCodon():
		color = mermaidGreen
	}
	shape := "rectangle"
	if g.IsCodon() {
		shape = "circle"
	}
	if g.IsConditional() {
		shape = "hexagon"
	}
	lines = append(lines, mcNodeStr(shape, prefix, label, color))

	for _, c := range g.cgraph.Connections() {
		srcName := fmt.Sprintf("%s_%s%03d", prefix, c.SrcRow, c.SrcIdx)
		dstName := fmt.Sprintf("%s_%s%03d", prefix, c.DstRow, c.DstIdx)
		lines = append(lines, mcNodeStr("circle", srcName, string(c.SrcRow), mermaidGrey))
		lines = append(lines, mcNodeStr("circle", dstName, string(c.DstRow), mermaidGrey))
		lines = append(lines, mcConnectStr(srcName, dstName))
	}

	for _, row := range []cgraph.Row{cgraph.RowIs, cgraph.RowOd} {
		itf := g.cgraph.Row(row)
		if itf == nil {
			continue
		}
		for i := 0; i < itf.Len(); i++ {
			epName := fmt.Sprintf("%s_%s%03d", prefix, row, i)
			if row == cgraph.RowIs {
				lines = append(lines, mcConnectStr(prefix, epName))
			} else {
				lines = append(lines, mcConnectStr(epName, prefix))
			}
		}
	}

	lines = append(lines, mermaidFooter...)
	return strings.Join(lines, "\n")
}
