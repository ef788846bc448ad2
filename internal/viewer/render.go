package viewer

import (
	"fmt"
	"strings"

	"github.com/allocview/internal/aggregator"
)

// renderLines renders every visible node as one styled line.
func (m *Model) renderLines() string {
	var b strings.Builder
	for i, node := range m.visible {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderLine(node, i == m.cursor))
	}
	return b.String()
}

func (m *Model) renderLine(node *aggregator.Node, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	line := cursor + strings.Repeat("  ", depth(node)) + foldMarker(node) + renderPayload(node)
	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

// renderPayload produces the text for a node's payload, one styled line
// per variant.
func renderPayload(node *aggregator.Node) string {
	switch payload := node.Payload.(type) {
	case *aggregator.Header:
		line := fmt.Sprintf("%d allocations (%s) in %d groups",
			payload.AttributedCount, formatBytes(payload.AttributedBytes), payload.Groups)
		if payload.UnattributedCount > 0 {
			line += dimStyle.Render(fmt.Sprintf("  [+%d unattributed, %s]",
				payload.UnattributedCount, formatBytes(payload.UnattributedBytes)))
		}
		return headerStyle.Render(line)

	case *aggregator.GroupEntry:
		location := payload.RelPath
		if location == "" {
			location = payload.Location.File
		}
		return fmt.Sprintf("%s %s: %d allocations, %s",
			styleForLabel(payload.Label).Render(payload.Label),
			fmt.Sprintf("%s:%d", location, payload.Location.Line),
			payload.Count, formatBytes(payload.TotalBytes))

	case *aggregator.Allocation:
		return fmt.Sprintf("%s of %s",
			formatBytes(payload.Record.Size),
			styleForLabel(payload.Record.Type).Render(payload.Record.Type))

	case *aggregator.Frame:
		frame := payload.Frame
		return fmt.Sprintf("%s  %s", frame.ShortFunction(),
			dimStyle.Render(fmt.Sprintf("%s:%d", frame.BaseFile(), frame.Line)))

	default:
		panic("viewer: unknown node payload")
	}
}

// foldMarker shows the fold state for nodes that can expand.
func foldMarker(node *aggregator.Node) string {
	if len(node.Children) == 0 {
		return "  "
	}
	if node.Folded {
		return "+ "
	}
	return "- "
}

func depth(node *aggregator.Node) int {
	d := 0
	for p := node.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

func (m *Model) footer() string {
	help := "j/k move  enter fold  o editor  f filter  r reset  a all frames  q quit"
	if m.status != "" {
		return statusStyle.Render(m.status) + "\n" + dimStyle.Render(help)
	}
	return dimStyle.Render(help)
}

// formatBytes renders a byte count in a human-readable unit.
func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
