package viewer

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// palette cycles through distinguishable terminal colors for package
// labels and type tags.
var palette = []lipgloss.Color{
	"39", "42", "135", "168", "172", "81", "114", "203", "147", "215",
}

// colorCache assigns a stable color to each label on first sight. The
// assignment persists for the process lifetime so repeated runs over
// the same packages keep the same colors.
type colorCache struct {
	mu       sync.Mutex
	assigned map[string]lipgloss.Style
	next     int
}

var labelColors = &colorCache{assigned: make(map[string]lipgloss.Style)}

// styleForLabel returns the stable style assigned to a label.
func styleForLabel(label string) lipgloss.Style {
	return labelColors.style(label)
}

func (c *colorCache) style(label string) lipgloss.Style {
	c.mu.Lock()
	defer c.mu.Unlock()

	if style, ok := c.assigned[label]; ok {
		return style
	}
	style := lipgloss.NewStyle().Foreground(palette[c.next%len(palette)])
	c.assigned[label] = style
	c.next++
	return style
}
