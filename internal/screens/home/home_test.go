package home

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/checkpoint"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
	hist "github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/router"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screen"
	historyscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/history"
	sessionscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

func testDeps(t *testing.T) sessionscreen.Deps {
	t.Helper()
	p, err := passage.Default()
	require.NoError(t, err)
	set, err := questiongen.Bank(p.ID)
	require.NoError(t, err)

	kv := store.NewMemory()
	return sessionscreen.Deps{
		Passage:     p,
		Questions:   questiongen.NewCached(&questiongen.StaticGenerator{Set: set}, kv, nil),
		Grader:      grading.NewLocalGrader(nil),
		Checkpoints: checkpoint.New(kv, nil),
		History:     hist.New(kv, nil),
	}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestHomeScreen_ViewWithoutHistory(t *testing.T) {
	deps := testDeps(t)
	h := New(deps)
	h.Update(h.Init()())

	view := h.View(100, 30)
	assert.Contains(t, view, deps.Passage.Title)
	assert.Contains(t, view, "No attempts yet")
	assert.Contains(t, view, "Start reading")
	assert.Contains(t, view, "New questions")
}

func TestHomeScreen_StatsAndProgress(t *testing.T) {
	ctx := context.Background()
	deps := testDeps(t)
	require.NoError(t, deps.History.Append(ctx, hist.NewSummary(5, 6, time.Now())))

	set, err := deps.Questions.Generate(ctx, deps.Passage)
	require.NoError(t, err)
	deps.Checkpoints.Save(ctx, set.Identity(), checkpoint.Record{
		ActiveIndex: 1,
		Phase:       "answering",
		AnswerLog: []checkpoint.Answer{
			{QuestionID: set.Questions[0].ID, SubmittedText: "x", SubmittedAt: time.Now().UTC()},
		},
	})

	h := New(deps)
	h.Update(h.Init()())
	view := h.View(100, 30)
	assert.Contains(t, view, "Attempts 1")
	assert.Contains(t, view, "Best 83%")
	assert.Contains(t, view, "continue at question 2 of 6")
}

func TestHomeScreen_MenuNavigation(t *testing.T) {
	h := New(testDeps(t))

	_, cmd := h.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &sessionscreen.SessionScreen{}, push.Screen)

	h.Update(specialKey(tea.KeyDown))
	h.Update(specialKey(tea.KeyDown))
	_, cmd = h.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	push, ok = cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &historyscreen.HistoryScreen{}, push.Screen)
}

func TestHomeScreen_ReloadsWhenResumed(t *testing.T) {
	deps := testDeps(t)
	h := New(deps)
	h.Update(h.Init()())
	assert.Equal(t, 0, h.stats.Count)

	require.NoError(t, deps.History.Append(context.Background(), hist.NewSummary(3, 6, time.Now())))
	_, cmd := h.Update(screen.ResumedMsg{})
	require.NotNil(t, cmd)
	h.Update(cmd())
	assert.Equal(t, 1, h.stats.Count)
	assert.Equal(t, 50, h.stats.Best)
}
