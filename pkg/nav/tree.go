// Package nav builds the lesson navigation tree: one collapsible header per
// step with its lessons as leaves, or a flat list of lessons when the
// curriculum has no steps.
package nav

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
)

// Kind distinguishes step headers from lesson leaves.
type Kind int

const (
	KindHeader Kind = iota
	KindLeaf
)

func (k Kind) String() string {
	if k == KindHeader {
		return "header"
	}
	return "leaf"
}

// Node is one row of the navigation tree. Headers carry a step id, leaves a
// lesson id.
type Node struct {
	ID       string
	Title    string
	Kind     Kind
	Depth    int
	Parent   *Node
	Children []*Node

	// Collapsed and Expanded are always opposite; both exist so renderers
	// can ask whichever question reads better.
	Collapsed bool
	Expanded  bool
	Active    bool
}

// Styles controls how View renders rows. The zero value renders plain text.
type Styles struct {
	Header    lipgloss.Style
	Leaf      lipgloss.Style
	Active    lipgloss.Style
	Cursor    lipgloss.Style
	Indicator lipgloss.Style
	Muted     lipgloss.Style
}

// DefaultStyles returns unstyled text with a bold active row.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		Leaf:      lipgloss.NewStyle(),
		Active:    lipgloss.NewStyle().Bold(true),
		Cursor:    lipgloss.NewStyle().Reverse(true),
		Indicator: lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle().Faint(true),
	}
}

// Tree is the navigation surface. It owns the collapse flags and the active
// marker. Like the selection controller it runs on the UI event loop only.
type Tree struct {
	roots    []*Node
	headers  map[string]*Node
	leaves   map[string]*Node
	flatList []*Node
	onSelect func(id string)
	flat     bool

	active *Node
	cursor int

	width          int
	height         int
	viewportOffset int
	styles         Styles
}

// Build creates the tree for repo. Every step header starts collapsed.
// onSelect is called with the lesson id when a leaf is clicked; it may be nil.
func Build(repo *curriculum.Repository, onSelect func(id string)) *Tree {
	t := &Tree{
		headers:  make(map[string]*Node),
		leaves:   make(map[string]*Node),
		onSelect: onSelect,
		styles:   DefaultStyles(),
	}
	if repo == nil {
		return t
	}

	t.flat = repo.IsFlat()
	for _, step := range repo.AllSteps() {
		header := &Node{
			ID:        step.ID,
			Title:     step.Title,
			Kind:      KindHeader,
			Collapsed: true,
		}
		for _, lesson := range step.Lessons {
			leaf := &Node{ID: lesson.ID, Title: lesson.Title, Kind: KindLeaf, Depth: 1, Parent: header}
			header.Children = append(header.Children, leaf)
			t.leaves[leaf.ID] = leaf
		}
		t.headers[header.ID] = header
		t.roots = append(t.roots, header)
	}
	for _, lesson := range repo.LooseLessons() {
		leaf := &Node{ID: lesson.ID, Title: lesson.Title, Kind: KindLeaf}
		t.leaves[leaf.ID] = leaf
		t.roots = append(t.roots, leaf)
	}

	t.rebuildFlatList()
	return t
}

// SetStyles replaces the row styles.
func (t *Tree) SetStyles(s Styles) {
	t.styles = s
}

// SetSize sets the render area. Height counts rows.
func (t *Tree) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// IsFlat reports whether the tree has no step headers.
func (t *Tree) IsFlat() bool {
	return t.flat
}

// Roots returns the top-level nodes.
func (t *Tree) Roots() []*Node {
	return t.roots
}

// Header returns the header node for stepID.
func (t *Tree) Header(stepID string) (*Node, bool) {
	n, ok := t.headers[stepID]
	return n, ok
}

// Leaf returns the leaf node for lessonID.
func (t *Tree) Leaf(lessonID string) (*Node, bool) {
	n, ok := t.leaves[lessonID]
	return n, ok
}

// Click dispatches a click on the node with the given id and reports whether
// a node handled it. Lesson ids are tried before step ids.
func (t *Tree) Click(id string) bool {
	if n, ok := t.leaves[id]; ok {
		return t.dispatch(n)
	}
	if n, ok := t.headers[id]; ok {
		return t.dispatch(n)
	}
	return false
}

// dispatch walks from the clicked node up through its ancestors until a
// handler reports the click handled. A leaf always handles its own click,
// so the enclosing header never sees it.
func (t *Tree) dispatch(target *Node) bool {
	for n := target; n != nil; n = n.Parent {
		if t.handle(n, target) {
			return true
		}
	}
	return false
}

func (t *Tree) handle(n, target *Node) bool {
	switch n.Kind {
	case KindLeaf:
		if t.onSelect != nil {
			t.onSelect(n.ID)
		}
		return true
	case KindHeader:
		if n != target {
			return false
		}
		t.toggle(n)
		return true
	}
	return false
}

// Toggle flips the collapse state of the step header. It never changes the
// active lesson.
func (t *Tree) Toggle(stepID string) bool {
	n, ok := t.headers[stepID]
	if !ok {
		return false
	}
	t.toggle(n)
	return true
}

func (t *Tree) toggle(n *Node) {
	t.setCollapsed(n, !n.Collapsed)
}

func (t *Tree) setCollapsed(n *Node, collapsed bool) {
	if n.Collapsed == collapsed {
		return
	}
	current := t.SelectedNode()
	n.Collapsed = collapsed
	n.Expanded = !collapsed
	t.rebuildFlatList()
	t.restoreCursor(current)
}

// Collapsed reports whether the step header is collapsed. Unknown steps
// report false.
func (t *Tree) Collapsed(stepID string) bool {
	n, ok := t.headers[stepID]
	return ok && n.Collapsed
}

// SetActive marks the node with id as the only active node. Any previously
// active node is cleared first, so an unknown id leaves nothing active.
func (t *Tree) SetActive(id string) {
	if t.active != nil {
		t.active.Active = false
		t.active = nil
	}
	n, ok := t.leaves[id]
	if !ok {
		n, ok = t.headers[id]
	}
	if !ok {
		return
	}
	n.Active = true
	t.active = n
}

// Active returns the active node id, or "".
func (t *Tree) Active() string {
	if t.active == nil {
		return ""
	}
	return t.active.ID
}

// IsActive reports whether id is the active node.
func (t *Tree) IsActive(id string) bool {
	return t.active != nil && t.active.ID == id
}

// ActiveCount returns how many nodes are marked active.
func (t *Tree) ActiveCount() int {
	count := 0
	for _, n := range t.headers {
		if n.Active {
			count++
		}
	}
	for _, n := range t.leaves {
		if n.Active {
			count++
		}
	}
	return count
}

// RevealActive expands the active lesson's step and moves the cursor to it.
func (t *Tree) RevealActive() {
	if t.active == nil {
		return
	}
	if p := t.active.Parent; p != nil && p.Collapsed {
		t.setCollapsed(p, false)
	}
	t.restoreCursor(t.active)
}

// ExpandAll expands every step.
func (t *Tree) ExpandAll() {
	t.setAllCollapsed(false)
}

// CollapseAll collapses every step. The cursor moves to the header of the
// lesson it was on.
func (t *Tree) CollapseAll() {
	t.setAllCollapsed(true)
}

func (t *Tree) setAllCollapsed(collapsed bool) {
	current := t.SelectedNode()
	for _, n := range t.roots {
		if n.Kind == KindHeader {
			n.Collapsed = collapsed
			n.Expanded = !collapsed
		}
	}
	t.rebuildFlatList()
	t.restoreCursor(current)
}

// CollapseState returns the collapse flag of every step.
func (t *Tree) CollapseState() map[string]bool {
	state := make(map[string]bool, len(t.headers))
	for id, n := range t.headers {
		state[id] = n.Collapsed
	}
	return state
}

// ApplyCollapseState restores collapse flags by step id. Steps missing from
// state keep their current flag.
func (t *Tree) ApplyCollapseState(state map[string]bool) {
	current := t.SelectedNode()
	for id, collapsed := range state {
		if n, ok := t.headers[id]; ok {
			n.Collapsed = collapsed
			n.Expanded = !collapsed
		}
	}
	t.rebuildFlatList()
	t.restoreCursor(current)
}

// Visible returns the rows currently shown: every root, plus the children of
// expanded headers.
func (t *Tree) Visible() []*Node {
	out := make([]*Node, len(t.flatList))
	copy(out, t.flatList)
	return out
}

// Len returns the number of visible rows.
func (t *Tree) Len() int {
	return len(t.flatList)
}

// Cursor returns the cursor row index.
func (t *Tree) Cursor() int {
	return t.cursor
}

// SelectedNode returns the node under the cursor, or nil for an empty tree.
func (t *Tree) SelectedNode() *Node {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return nil
	}
	return t.flatList[t.cursor]
}

// CursorID returns the id of the node under the cursor, or "".
func (t *Tree) CursorID() string {
	if n := t.SelectedNode(); n != nil {
		return n.ID
	}
	return ""
}

// MoveDown moves the cursor one row down.
func (t *Tree) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor one row up.
func (t *Tree) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop moves the cursor to the first row.
func (t *Tree) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last row.
func (t *Tree) JumpToBottom() {
	if len(t.flatList) > 0 {
		t.cursor = len(t.flatList) - 1
		t.ensureCursorVisible()
	}
}

// SetCursor moves the cursor to row i, clamped to the visible rows.
func (t *Tree) SetCursor(i int) {
	if len(t.flatList) == 0 {
		t.cursor = 0
		return
	}
	t.cursor = max(0, min(i, len(t.flatList)-1))
	t.ensureCursorVisible()
}

// SetCursorByID moves the cursor to the visible node with id. Leaves are
// preferred over headers with the same id.
func (t *Tree) SetCursorByID(id string) bool {
	if n, ok := t.leaves[id]; ok && t.restoreCursor(n) {
		return true
	}
	if n, ok := t.headers[id]; ok && t.restoreCursor(n) {
		return true
	}
	return false
}

// ClickCursor clicks the node under the cursor.
func (t *Tree) ClickCursor() bool {
	n := t.SelectedNode()
	if n == nil {
		return false
	}
	return t.dispatch(n)
}

// ExpandOrMoveToChild expands a collapsed header under the cursor, or moves
// onto its first lesson when it is already expanded.
func (t *Tree) ExpandOrMoveToChild() {
	n := t.SelectedNode()
	if n == nil || n.Kind != KindHeader || len(n.Children) == 0 {
		return
	}
	if n.Collapsed {
		t.setCollapsed(n, false)
		return
	}
	t.restoreCursor(n.Children[0])
}

// CollapseOrJumpToParent collapses an expanded header under the cursor, or
// moves from a lesson to its step header.
func (t *Tree) CollapseOrJumpToParent() {
	n := t.SelectedNode()
	if n == nil {
		return
	}
	if n.Kind == KindHeader {
		if !n.Collapsed {
			t.setCollapsed(n, true)
		}
		return
	}
	if n.Parent != nil {
		t.restoreCursor(n.Parent)
	}
}

// RowAt returns the node rendered on screen row y of the last View, or nil.
func (t *Tree) RowAt(y int) *Node {
	if y < 0 || y >= t.effectiveVisibleCount() {
		return nil
	}
	start, end := t.visibleRange()
	i := start + y
	if i >= end {
		return nil
	}
	return t.flatList[i]
}

// ClickRow moves the cursor to screen row y and clicks that node. It
// reports false when no node is rendered there.
func (t *Tree) ClickRow(y int) bool {
	if t.RowAt(y) == nil {
		return false
	}
	start, _ := t.visibleRange()
	t.cursor = start + y
	return t.dispatch(t.flatList[t.cursor])
}

// restoreCursor puts the cursor on n, or on its header when n is hidden.
func (t *Tree) restoreCursor(n *Node) bool {
	for ; n != nil; n = n.Parent {
		for i, v := range t.flatList {
			if v == n {
				t.cursor = i
				t.ensureCursorVisible()
				return true
			}
		}
	}
	return false
}

func (t *Tree) rebuildFlatList() {
	t.flatList = t.flatList[:0]
	for _, root := range t.roots {
		t.flatList = append(t.flatList, root)
		if root.Kind == KindHeader && root.Expanded {
			t.flatList = append(t.flatList, root.Children...)
		}
	}
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// View renders the visible window of rows.
func (t *Tree) View() string {
	if len(t.flatList) == 0 {
		return t.styles.Muted.Render("No lessons.")
	}

	var sb strings.Builder
	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		if i > start {
			sb.WriteString("\n")
		}
		sb.WriteString(t.renderNode(t.flatList[i], i == t.cursor))
	}
	if len(t.flatList) > t.effectiveVisibleCount() && t.height > 0 {
		sb.WriteString("\n")
		sb.WriteString(t.styles.Muted.Render(
			fmt.Sprintf(" %d-%d of %d", start+1, end, len(t.flatList))))
	}
	return sb.String()
}

func (t *Tree) renderNode(n *Node, isCursor bool) string {
	prefix := t.buildTreePrefix(n)
	indicator := t.expandIndicator(n) + " "

	title := n.Title
	if n.Kind == KindHeader {
		title = fmt.Sprintf("%s (%d)", title, len(n.Children))
	}
	if t.width > 0 {
		avail := t.width - runewidth.StringWidth(prefix) - runewidth.StringWidth(indicator)
		title = truncateTitle(title, avail)
	}

	style := t.styles.Leaf
	if n.Kind == KindHeader {
		style = t.styles.Header
	}
	if n.Active {
		style = t.styles.Active
	}
	line := prefix + t.styles.Indicator.Render(indicator) + style.Render(title)
	if isCursor {
		line = t.styles.Cursor.Render(line)
	}
	return line
}

// buildTreePrefix draws the box connectors for leaves nested under a step.
func (t *Tree) buildTreePrefix(n *Node) string {
	if n.Parent == nil {
		return ""
	}
	siblings := n.Parent.Children
	if siblings[len(siblings)-1] == n {
		return "└── "
	}
	return "├── "
}

func (t *Tree) expandIndicator(n *Node) string {
	switch {
	case n.Kind == KindLeaf && n.Active:
		return "●"
	case n.Kind == KindLeaf, len(n.Children) == 0:
		return "•"
	case n.Collapsed:
		return "▸"
	default:
		return "▾"
	}
}

// truncateTitle shortens title to fit maxWidth terminal cells, counting wide
// runes as two cells.
func truncateTitle(title string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(title) <= maxWidth {
		return title
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(title, maxWidth, "…")
}

// effectiveVisibleCount is the number of node rows that fit, reserving one
// line for the position indicator when the list scrolls.
func (t *Tree) effectiveVisibleCount() int {
	visible := t.height
	if visible <= 0 {
		visible = 20
	}
	if len(t.flatList) > visible {
		visible--
	}
	return max(visible, 1)
}

func (t *Tree) visibleRange() (start, end int) {
	if len(t.flatList) == 0 {
		return 0, 0
	}
	visible := t.effectiveVisibleCount()
	start = max(t.viewportOffset, 0)
	end = start + visible
	if end > len(t.flatList) {
		end = len(t.flatList)
		start = max(end-visible, 0)
	}
	return start, end
}

func (t *Tree) ensureCursorVisible() {
	if len(t.flatList) == 0 {
		t.viewportOffset = 0
		return
	}
	visible := t.effectiveVisibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visible {
		t.viewportOffset = t.cursor - visible + 1
	}
	maxOffset := max(len(t.flatList)-visible, 0)
	t.viewportOffset = max(0, min(t.viewportOffset, maxOffset))
}
