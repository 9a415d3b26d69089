package nav_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/nav"
	"github.com/vanderheijden86/candlecourse/pkg/testutil"
)

// scenario builds the two-step fixture:
//
//	S1: L1, L2
//	S2: L3
func scenario(t *testing.T) (*nav.Tree, *[]string) {
	t.Helper()
	var selected []string
	tree := nav.Build(testutil.QuickScenario(), func(id string) {
		selected = append(selected, id)
	})
	return tree, &selected
}

func visibleIDs(tree *nav.Tree) []string {
	var ids []string
	for _, n := range tree.Visible() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBuildHeadersStartCollapsed(t *testing.T) {
	tree, _ := scenario(t)

	if tree.IsFlat() {
		t.Fatal("grouped curriculum reported flat")
	}
	for _, id := range []string{"S1", "S2"} {
		if !tree.Collapsed(id) {
			t.Errorf("step %s should start collapsed", id)
		}
		h, ok := tree.Header(id)
		if !ok {
			t.Fatalf("missing header %s", id)
		}
		if h.Expanded {
			t.Errorf("step %s Expanded should be false", id)
		}
	}
	if got := strings.Join(visibleIDs(tree), ","); got != "S1,S2" {
		t.Errorf("visible = %s, want S1,S2", got)
	}
}

func TestBuildLeavesUnderHeaders(t *testing.T) {
	tree, _ := scenario(t)

	h, _ := tree.Header("S1")
	if len(h.Children) != 2 {
		t.Fatalf("S1 children = %d, want 2", len(h.Children))
	}
	for _, c := range h.Children {
		if c.Kind != nav.KindLeaf || c.Parent != h || c.Depth != 1 {
			t.Errorf("bad leaf %+v", c)
		}
	}
	leaf, ok := tree.Leaf("L3")
	if !ok || leaf.Parent.ID != "S2" {
		t.Errorf("L3 should hang under S2")
	}
}

func TestBuildFlat(t *testing.T) {
	tree := nav.Build(testutil.QuickFlat(3), nil)

	if !tree.IsFlat() {
		t.Fatal("expected flat tree")
	}
	if got := strings.Join(visibleIDs(tree), ","); got != "L1,L2,L3" {
		t.Errorf("visible = %s", got)
	}
	for _, n := range tree.Visible() {
		if n.Kind != nav.KindLeaf || n.Parent != nil {
			t.Errorf("flat node %s should be a root leaf", n.ID)
		}
	}
	if !tree.Click("L2") {
		t.Error("click on flat leaf should be handled with a nil callback")
	}
}

func TestBuildNilAndEmpty(t *testing.T) {
	for name, repo := range map[string]*curriculum.Repository{
		"nil":   nil,
		"empty": testutil.Empty(),
	} {
		t.Run(name, func(t *testing.T) {
			tree := nav.Build(repo, nil)
			if tree.Len() != 0 {
				t.Errorf("Len = %d", tree.Len())
			}
			if tree.SelectedNode() != nil || tree.CursorID() != "" {
				t.Error("empty tree should have no cursor node")
			}
			if tree.ClickCursor() {
				t.Error("ClickCursor on empty tree should report false")
			}
			if got := ansi.Strip(tree.View()); got != "No lessons." {
				t.Errorf("View = %q", got)
			}
		})
	}
}

func TestToggle(t *testing.T) {
	tree, selected := scenario(t)

	if !tree.Toggle("S1") {
		t.Fatal("Toggle(S1) reported unknown step")
	}
	if tree.Collapsed("S1") {
		t.Error("S1 should be expanded after one toggle")
	}
	if !tree.Collapsed("S2") {
		t.Error("toggling S1 must not touch S2")
	}
	if got := strings.Join(visibleIDs(tree), ","); got != "S1,L1,L2,S2" {
		t.Errorf("visible = %s", got)
	}

	tree.Toggle("S1")
	if !tree.Collapsed("S1") {
		t.Error("S1 should be collapsed after two toggles")
	}
	if len(*selected) != 0 {
		t.Errorf("Toggle must not select, got %v", *selected)
	}
	if tree.Toggle("nope") {
		t.Error("Toggle on unknown step should report false")
	}
}

func TestToggleKeepsActiveLesson(t *testing.T) {
	tree, _ := scenario(t)
	tree.SetActive("L1")

	tree.Toggle("S1")
	tree.Toggle("S1")
	tree.Toggle("S2")

	if !tree.IsActive("L1") || tree.ActiveCount() != 1 {
		t.Errorf("active = %q (count %d), want L1", tree.Active(), tree.ActiveCount())
	}
}

func TestClickDispatch(t *testing.T) {
	tests := []struct {
		name          string
		clicks        []string
		wantSelected  []string
		wantCollapsed map[string]bool
	}{
		{
			name:          "header toggles without selecting",
			clicks:        []string{"S1"},
			wantCollapsed: map[string]bool{"S1": false, "S2": true},
		},
		{
			name:          "leaf selects without toggling",
			clicks:        []string{"S1", "L2"},
			wantSelected:  []string{"L2"},
			wantCollapsed: map[string]bool{"S1": false, "S2": true},
		},
		{
			name:          "leaf click works while header collapsed",
			clicks:        []string{"L3"},
			wantSelected:  []string{"L3"},
			wantCollapsed: map[string]bool{"S1": true, "S2": true},
		},
		{
			name:          "header twice restores",
			clicks:        []string{"S2", "L3", "S2"},
			wantSelected:  []string{"L3"},
			wantCollapsed: map[string]bool{"S1": true, "S2": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, selected := scenario(t)
			for _, id := range tt.clicks {
				if !tree.Click(id) {
					t.Fatalf("Click(%s) not handled", id)
				}
			}
			if strings.Join(*selected, ",") != strings.Join(tt.wantSelected, ",") {
				t.Errorf("selected = %v, want %v", *selected, tt.wantSelected)
			}
			for id, want := range tt.wantCollapsed {
				if got := tree.Collapsed(id); got != want {
					t.Errorf("Collapsed(%s) = %v, want %v", id, got, want)
				}
			}
		})
	}
}

func TestClickUnknown(t *testing.T) {
	tree, selected := scenario(t)
	if tree.Click("missing") {
		t.Error("unknown id should not be handled")
	}
	if len(*selected) != 0 {
		t.Error("unknown id should not select")
	}
}

func TestClickPrefersLessonOverStepWithSameID(t *testing.T) {
	repo, err := curriculum.New([]model.Step{
		{ID: "X", Title: "Step X", Lessons: []model.Lesson{
			{ID: "A", Title: "A", Data: testutil.NewDefault().Lesson().Data},
		}},
		{ID: "Y", Title: "Step Y", Lessons: []model.Lesson{
			{ID: "X", Title: "Lesson X", Data: testutil.NewDefault().Lesson().Data},
		}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var selected []string
	tree := nav.Build(repo, func(id string) { selected = append(selected, id) })

	tree.Click("X")
	if len(selected) != 1 || selected[0] != "X" {
		t.Errorf("selected = %v", selected)
	}
	if !tree.Collapsed("X") {
		t.Error("lesson click must not toggle the step sharing its id")
	}
}

func TestSetActiveSingle(t *testing.T) {
	tree, _ := scenario(t)

	tree.SetActive("L1")
	tree.SetActive("L3")
	if tree.IsActive("L1") || !tree.IsActive("L3") {
		t.Errorf("active = %q", tree.Active())
	}
	if n := tree.ActiveCount(); n != 1 {
		t.Errorf("ActiveCount = %d", n)
	}

	tree.SetActive("S1")
	if n, _ := tree.Leaf("L3"); n.Active {
		t.Error("L3 should be cleared when a header becomes active")
	}

	tree.SetActive("missing")
	if tree.ActiveCount() != 0 || tree.Active() != "" {
		t.Error("unknown id should clear the active set")
	}
}

func TestCursorMovement(t *testing.T) {
	tree, selected := scenario(t)

	if tree.CursorID() != "S1" {
		t.Fatalf("cursor starts on %q", tree.CursorID())
	}
	tree.MoveUp()
	if tree.Cursor() != 0 {
		t.Error("MoveUp at top should stay")
	}

	tree.ClickCursor()
	if tree.Collapsed("S1") {
		t.Fatal("ClickCursor on header should expand it")
	}
	tree.MoveDown()
	tree.MoveDown()
	if tree.CursorID() != "L2" {
		t.Fatalf("cursor on %q, want L2", tree.CursorID())
	}
	tree.ClickCursor()
	if strings.Join(*selected, ",") != "L2" {
		t.Errorf("selected = %v", *selected)
	}

	tree.JumpToBottom()
	if tree.CursorID() != "S2" {
		t.Errorf("bottom = %q", tree.CursorID())
	}
	tree.MoveDown()
	if tree.CursorID() != "S2" {
		t.Error("MoveDown at bottom should stay")
	}
	tree.JumpToTop()
	if tree.CursorID() != "S1" {
		t.Errorf("top = %q", tree.CursorID())
	}
}

func TestCollapseMovesCursorToHeader(t *testing.T) {
	tree, _ := scenario(t)
	tree.ExpandAll()
	tree.SetCursorByID("L2")

	tree.CollapseAll()
	if tree.CursorID() != "S1" {
		t.Errorf("cursor = %q, want S1", tree.CursorID())
	}
	for _, id := range []string{"S1", "S2"} {
		if !tree.Collapsed(id) {
			t.Errorf("%s should be collapsed", id)
		}
	}
}

func TestExpandOrMoveToChild(t *testing.T) {
	tree, _ := scenario(t)

	tree.ExpandOrMoveToChild()
	if tree.Collapsed("S1") || tree.CursorID() != "S1" {
		t.Fatalf("first press should expand S1 in place, cursor %q", tree.CursorID())
	}
	tree.ExpandOrMoveToChild()
	if tree.CursorID() != "L1" {
		t.Errorf("second press should move to L1, cursor %q", tree.CursorID())
	}

	tree.CollapseOrJumpToParent()
	if tree.CursorID() != "S1" || tree.Collapsed("S1") {
		t.Errorf("from a lesson, h should jump to S1 without collapsing")
	}
	tree.CollapseOrJumpToParent()
	if !tree.Collapsed("S1") {
		t.Error("on an expanded header, h should collapse")
	}
}

func TestRevealActive(t *testing.T) {
	tree, _ := scenario(t)
	tree.SetActive("L3")

	tree.RevealActive()
	if tree.Collapsed("S2") {
		t.Error("S2 should be expanded")
	}
	if tree.CursorID() != "L3" {
		t.Errorf("cursor = %q, want L3", tree.CursorID())
	}
	if !tree.Collapsed("S1") {
		t.Error("S1 should stay collapsed")
	}
}

func TestCollapseStateRoundTrip(t *testing.T) {
	tree, _ := scenario(t)
	tree.Toggle("S2")
	state := tree.CollapseState()

	rebuilt, _ := scenario(t)
	rebuilt.ApplyCollapseState(map[string]bool{"S2": state["S2"], "gone": false})
	if rebuilt.Collapsed("S2") {
		t.Error("S2 should come back expanded")
	}
	if !rebuilt.Collapsed("S1") {
		t.Error("S1 should stay collapsed")
	}
}

func TestViewIndicatorsAndActive(t *testing.T) {
	tree, _ := scenario(t)
	tree.SetStyles(nav.Styles{})
	tree.Toggle("S1")
	tree.SetActive("L2")
	tree.SetSize(40, 10)

	lines := strings.Split(ansi.Strip(tree.View()), "\n")
	want := []string{
		"▾ Step S1 (2)",
		"├── • Lesson L1",
		"└── ● Lesson L2",
		"▸ Step S2 (1)",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestViewTruncatesWideTitles(t *testing.T) {
	repo, err := curriculum.New(nil, []model.Lesson{
		{ID: "k1", Title: "캔들스틱 패턴의 기본 구조 이해하기", Data: testutil.NewDefault().Lesson().Data},
	})
	if err != nil {
		t.Fatal(err)
	}
	tree := nav.Build(repo, nil)
	tree.SetStyles(nav.Styles{})
	tree.SetSize(16, 5)

	line := ansi.Strip(tree.View())
	if w := runewidth.StringWidth(line); w > 16 {
		t.Errorf("width %d > 16: %q", w, line)
	}
	if !strings.HasSuffix(line, "…") {
		t.Errorf("expected ellipsis, got %q", line)
	}
}

func TestViewWindowing(t *testing.T) {
	tree := nav.Build(testutil.QuickFlat(30), nil)
	tree.SetStyles(nav.Styles{})
	tree.SetSize(30, 6)

	lines := strings.Split(ansi.Strip(tree.View()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 5 rows + indicator", len(lines))
	}
	if !strings.Contains(lines[5], "1-5 of 30") {
		t.Errorf("indicator = %q", lines[5])
	}

	tree.JumpToBottom()
	lines = strings.Split(ansi.Strip(tree.View()), "\n")
	if !strings.Contains(lines[4], "L30") {
		t.Errorf("last row = %q, want L30", lines[4])
	}
	if n := tree.RowAt(4); n == nil || n.ID != "L30" {
		t.Errorf("RowAt(4) = %v", n)
	}
	if tree.RowAt(5) != nil {
		t.Error("indicator row should not map to a node")
	}
}

func TestClickRow(t *testing.T) {
	tree, selected := scenario(t)
	tree.SetSize(40, 10)

	// Rows: S1, S2. Clicking row 0 expands S1.
	if !tree.ClickRow(0) || tree.Collapsed("S1") {
		t.Fatal("clicking S1 should expand it")
	}
	// Rows: S1, L1, L2, S2.
	if !tree.ClickRow(2) {
		t.Fatal("clicking L2 should be handled")
	}
	if got := strings.Join(*selected, ","); got != "L2" {
		t.Errorf("selected = %s, want L2", got)
	}
	if tree.CursorID() != "L2" {
		t.Errorf("cursor = %s, want L2", tree.CursorID())
	}
	for _, y := range []int{-1, 4, 9} {
		if tree.ClickRow(y) {
			t.Errorf("ClickRow(%d) on an empty row reported handled", y)
		}
	}
}
