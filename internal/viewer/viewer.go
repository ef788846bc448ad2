// Package viewer wraps the aggregation tree in an interactive,
// collapsible terminal menu. It is a bubbletea model: the program
// blocks on one keypress at a time and every command operates on the
// node under the cursor.
package viewer

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/allocview/internal/aggregator"
	"github.com/allocview/internal/editor"
	"github.com/allocview/internal/locator"
	"github.com/allocview/pkg/filter"
	"github.com/allocview/pkg/model"
	"github.com/allocview/pkg/utils"
)

// DefaultMaxPageSize bounds the page size when no override is
// configured.
const DefaultMaxPageSize = 30

// Model is the interactive tree controller state.
type Model struct {
	tree    *aggregator.Tree
	display *filter.Filter
	loc     locator.Locator
	opener  editor.Opener
	logger  utils.Logger

	viewport viewport.Model
	visible  []*aggregator.Node
	cursor   int
	maxPage  int
	status   string
	quitting bool
}

// New creates the controller for a built tree. display is the session's
// configured display filter, re-applied by the "apply display filter"
// command. maxPage bounds the visible page size; 0 uses the default.
func New(tree *aggregator.Tree, display *filter.Filter, loc locator.Locator,
	opener editor.Opener, logger utils.Logger, maxPage int) *Model {

	if maxPage <= 0 {
		maxPage = DefaultMaxPageSize
	}
	if logger == nil {
		logger = &utils.NullLogger{}
	}

	m := &Model{
		tree:     tree,
		display:  display,
		loc:      loc,
		opener:   opener,
		logger:   logger,
		maxPage:  maxPage,
		viewport: viewport.New(0, maxPage),
	}
	m.refresh()

	// The cursor starts on the first group line, not the header.
	if len(m.visible) > 1 {
		m.cursor = 1
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Keys the controller does not handle
// itself fall through to the viewport's scrolling behavior.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "pgup":
			m.moveCursor(-m.viewport.Height)
		case "pgdown":
			m.moveCursor(m.viewport.Height)
		case "g", "home":
			m.moveCursor(-len(m.visible))
		case "G", "end":
			m.moveCursor(len(m.visible))

		case "enter", " ", "tab":
			m.toggleFold()

		case "o":
			m.openEditor()

		case "f":
			m.refilter(m.display, "display filter applied")
		case "r":
			m.refilter(filter.Default(m.loc), "reset to default frames")
		case "a":
			m.refilter(filter.Everything(), "showing all frames")

		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// current returns the node under the cursor.
func (m *Model) current() *aggregator.Node {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.refresh()
}

// toggleFold flips the folded flag of the current node.
func (m *Model) toggleFold() {
	node := m.current()
	if node == nil || len(node.Children) == 0 {
		return
	}
	node.Folded = !node.Folded
	m.refresh()
}

// refilter recomputes the current allocation node's visible frames with
// the given filter. Only allocation nodes accept re-filter commands.
func (m *Model) refilter(f *filter.Filter, status string) {
	node := m.current()
	if node == nil {
		return
	}
	if _, ok := node.Payload.(*aggregator.Allocation); !ok {
		m.status = "re-filter applies to allocation rows only"
		return
	}

	aggregator.RebuildFrames(node, f)
	node.Folded = false
	m.status = status
	m.refresh()
}

// openEditor resolves the current node to a source location and opens
// the configured editor there. Unknown lines are a no-op.
func (m *Model) openEditor() {
	node := m.current()
	if node == nil {
		return
	}
	loc, ok := resolveLocation(node)
	if !ok {
		return
	}
	if loc.Line <= 0 {
		m.status = "no source line for this entry"
		return
	}

	full := m.loc.Resolve(loc.File).FullPath
	if err := m.opener.Open(full, loc.Line); err != nil {
		m.logger.Warn("editor failed: %v", err)
		m.status = "editor failed: " + err.Error()
		return
	}
	m.status = "opened " + loc.String()
}

// resolveLocation maps a node to its source location: groups and frames
// carry their own, allocations borrow their parent group's. The header
// has none. Any other payload breaks the tree invariants.
func resolveLocation(node *aggregator.Node) (model.SourceLocation, bool) {
	switch payload := node.Payload.(type) {
	case *aggregator.Header:
		return model.SourceLocation{}, false
	case *aggregator.GroupEntry:
		return payload.Location, true
	case *aggregator.Allocation:
		parent, ok := node.Parent.Payload.(*aggregator.GroupEntry)
		if !ok {
			panic("viewer: allocation node without group parent")
		}
		return parent.Location, true
	case *aggregator.Frame:
		return payload.Frame.Location(), true
	default:
		panic("viewer: unknown node payload")
	}
}

// refresh re-flattens the visible node list and clamps the page size to
// the content, bounded by the configured maximum.
func (m *Model) refresh() {
	m.visible = m.visible[:0]
	m.flatten(m.tree.Root)

	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	page := len(m.visible)
	if page > m.maxPage {
		page = m.maxPage
	}
	m.viewport.Height = page
	m.viewport.SetContent(m.renderLines())
	m.scrollToCursor()
}

func (m *Model) flatten(node *aggregator.Node) {
	m.visible = append(m.visible, node)
	if node.Folded {
		return
	}
	for _, child := range node.Children {
		m.flatten(child)
	}
}

// scrollToCursor keeps the cursor row inside the viewport window.
func (m *Model) scrollToCursor() {
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	}
	bottom := m.viewport.YOffset + m.viewport.Height - 1
	if m.cursor > bottom {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return m.viewport.View() + "\n" + m.footer()
}

// Visible returns the currently visible nodes. Exposed for tests.
func (m *Model) Visible() []*aggregator.Node {
	return m.visible
}

// Cursor returns the cursor row. Exposed for tests.
func (m *Model) Cursor() int {
	return m.cursor
}

// PageSize returns the clamped page size. Exposed for tests.
func (m *Model) PageSize() int {
	return m.viewport.Height
}

// Run launches the interactive session and blocks until the user quits.
func Run(tree *aggregator.Tree, display *filter.Filter, loc locator.Locator,
	opener editor.Opener, logger utils.Logger, maxPage int) error {

	m := New(tree, display, loc, opener, logger, maxPage)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
