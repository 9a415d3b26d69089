package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/testutil"
)

type fakeDetails struct {
	title, description string
	calls              int
}

func (d *fakeDetails) ShowLesson(title, description string) {
	d.title, d.description = title, description
	d.calls++
}

// fakeNav mimics a navigation surface: one flag per node id.
type fakeNav struct {
	active map[string]bool
}

func newFakeNav(repo *curriculum.Repository) *fakeNav {
	n := &fakeNav{active: map[string]bool{}}
	for _, s := range repo.AllSteps() {
		n.active[s.ID] = false
	}
	for _, l := range repo.AllLessons() {
		n.active[l.ID] = false
	}
	return n
}

func (n *fakeNav) SetActive(id string) {
	for k := range n.active {
		n.active[k] = false
	}
	if _, ok := n.active[id]; ok {
		n.active[id] = true
	}
}

func (n *fakeNav) activeIDs() []string {
	var ids []string
	for k, v := range n.active {
		if v {
			ids = append(ids, k)
		}
	}
	return ids
}

type fixture struct {
	repo    *curriculum.Repository
	details *fakeDetails
	nav     *fakeNav
	chart   *chart.Recorder
	logs    *observer.ObservedLogs
	ctrl    *Controller
}

func newFixture(t *testing.T, withChart bool) *fixture {
	t.Helper()
	repo := testutil.QuickScenario()
	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{
		repo:    repo,
		details: &fakeDetails{},
		nav:     newFakeNav(repo),
		chart:   &chart.Recorder{},
		logs:    logs,
	}
	opts := []Option{
		WithDetails(f.details),
		WithHighlighter(f.nav),
		WithLogger(zap.New(core)),
	}
	if withChart {
		opts = append(opts, WithChart(f.chart))
	}
	f.ctrl = New(repo, opts...)
	return f
}

func TestSelectUpdatesEveryView(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.ctrl.Select("L3"))

	l3 := testutil.MustLesson(t, f.repo, "L3")
	assert.Equal(t, l3.Title, f.details.title)
	assert.Equal(t, l3.Description, f.details.description)
	assert.Equal(t, []string{"L3"}, f.nav.activeIDs())
	assert.Equal(t, l3.Data, f.chart.Points)
	assert.Equal(t, []string{"SetSeries(5)", "FitViewport"}, f.chart.Calls)
	assert.Equal(t, State{ActiveLessonID: "L3"}, f.ctrl.State())
	assert.Equal(t, 0, f.logs.Len())
}

func TestSelectSwitchesActiveLesson(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Select("L1"))
	f.nav.active["S1"] = true // stale header highlight from elsewhere

	require.NoError(t, f.ctrl.Select("L2"))

	assert.Equal(t, []string{"L2"}, f.nav.activeIDs(), "previous lesson and headers are cleared")
	assert.Equal(t, "L2", f.ctrl.State().ActiveLessonID)
	assert.Equal(t, 2, f.chart.Fits)
}

func TestSelectUnknownLessonChangesNothing(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Select("L1"))
	f.chart.Reset()
	before := f.details.calls
	beforeData := f.chart.Points

	err := f.ctrl.Select("nope")

	assert.ErrorIs(t, err, ErrLessonNotFound)
	assert.Equal(t, before, f.details.calls)
	assert.Equal(t, "Lesson L1", f.details.title)
	assert.Equal(t, []string{"L1"}, f.nav.activeIDs())
	assert.Empty(t, f.chart.Calls)
	assert.Equal(t, beforeData, f.chart.Points)
	assert.Equal(t, "L1", f.ctrl.State().ActiveLessonID)

	entries := f.logs.FilterMessage("lesson not found").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "nope", entries[0].ContextMap()["lesson_id"])
}

func TestSelectBeforeAnyLessonLeavesStateEmpty(t *testing.T) {
	f := newFixture(t, true)
	assert.Error(t, f.ctrl.Select(""))
	assert.Empty(t, f.ctrl.State().ActiveLessonID)
}

func TestSelectWithoutChartStillUpdatesDetailsAndNav(t *testing.T) {
	f := newFixture(t, false)
	assert.False(t, f.ctrl.HasChart())

	require.NoError(t, f.ctrl.Select("L2"))

	assert.Equal(t, "Lesson L2", f.details.title)
	assert.Equal(t, []string{"L2"}, f.nav.activeIDs())
	assert.Equal(t, "L2", f.ctrl.State().ActiveLessonID)
	assert.Equal(t, 1, f.logs.FilterMessage("chart unavailable, skipping chart update").Len())
}

func TestSelectWithOnlyLookup(t *testing.T) {
	ctrl := New(testutil.QuickScenario())
	require.NoError(t, ctrl.Select("L1"))
	assert.Equal(t, "L1", ctrl.State().ActiveLessonID)
	assert.Nil(t, ctrl.Chart())
}

func TestClearBlanksViewsAndKeepsState(t *testing.T) {
	repo := testutil.QuickScenario()
	details := &fakeDetails{}
	nav := newFakeNav(repo)
	rec := &chart.Recorder{}
	c := New(repo, WithDetails(details), WithHighlighter(nav), WithChart(rec), WithLogger(zap.NewNop()))
	require.NoError(t, c.Select("L2"))

	c.Clear()

	assert.Empty(t, details.title)
	assert.Empty(t, details.description)
	assert.Empty(t, nav.activeIDs())
	assert.Empty(t, rec.Points)
	assert.Equal(t, 2, rec.Fits)
	assert.Equal(t, "L2", c.State().ActiveLessonID)

	// Without collaborators there is nothing to clear.
	New(repo).Clear()
}

func TestRebind(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Select("L1"))

	flat := testutil.QuickFlat(2)
	nav := newFakeNav(flat)
	f.ctrl.Rebind(flat, nav)

	assert.Equal(t, "L1", f.ctrl.State().ActiveLessonID)
	require.NoError(t, f.ctrl.Select("L2"))
	assert.Equal(t, []string{"L2"}, nav.activeIDs())
	assert.ErrorIs(t, f.ctrl.Select("L3"), ErrLessonNotFound)
}

func TestSelectSequenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		repo := testutil.QuickGrouped(2, 3, 1)
		details := &fakeDetails{}
		nav := newFakeNav(repo)
		rec := &chart.Recorder{}
		ctrl := New(repo, WithDetails(details), WithHighlighter(nav), WithChart(rec), WithLogger(zap.NewNop()))

		ids := append(testutil.LessonIDs(repo), "S1", "missing", "")
		want := ""
		for _, id := range rapid.SliceOfN(rapid.SampledFrom(ids), 1, 30).Draw(t, "ids") {
			err := ctrl.Select(id)
			if _, ok := repo.FindLesson(id); ok {
				if err != nil {
					t.Fatalf("select %q: %v", id, err)
				}
				want = id
			} else if err == nil {
				t.Fatalf("select %q: expected error", id)
			}

			if got := ctrl.State().ActiveLessonID; got != want {
				t.Fatalf("active = %q, want %q", got, want)
			}
			active := nav.activeIDs()
			if want == "" {
				if len(active) != 0 {
					t.Fatalf("unexpected active nodes %v", active)
				}
				continue
			}
			if len(active) != 1 || active[0] != want {
				t.Fatalf("active nodes %v, want [%s]", active, want)
			}
			lesson, _ := repo.FindLesson(want)
			if details.title != lesson.Title {
				t.Fatalf("details show %q, want %q", details.title, lesson.Title)
			}
			if len(rec.Points) != len(lesson.Data) || rec.Points[0] != lesson.Data[0] {
				t.Fatalf("chart data does not match %s", want)
			}
		}
	})
}
