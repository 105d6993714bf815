package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/checkpoint"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/router"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/home"
	historyscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/history"
	sessionscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/welcome"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	p, err := passage.Default()
	require.NoError(t, err)
	set, err := questiongen.Bank(p.ID)
	require.NoError(t, err)
	kv := store.NewMemory()
	return Options{Deps: sessionscreen.Deps{
		Passage:     p,
		Questions:   questiongen.NewCached(&questiongen.StaticGenerator{Set: set}, kv, nil),
		Grader:      grading.NewLocalGrader(nil),
		Checkpoints: checkpoint.New(kv, nil),
		History:     history.New(kv, nil),
	}}
}

func sized(m AppModel, w, h int) AppModel {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return updated.(AppModel)
}

func TestNewAppModel_StartScreens(t *testing.T) {
	opts := testOptions(t)
	assert.IsType(t, &welcome.WelcomeScreen{}, newAppModel(opts).router.Active())

	opts.SkipSplash = true
	assert.IsType(t, &home.HomeScreen{}, newAppModel(opts).router.Active())

	opts.StartReading = true
	m := newAppModel(opts)
	require.NotNil(t, m.start)
	push, ok := m.start().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &sessionscreen.SessionScreen{}, push.Screen)
}

func TestAppModel_TooSmall(t *testing.T) {
	m := sized(newAppModel(testOptions(t)), 60, 20)
	assert.Contains(t, m.render(), "Terminal too small")
}

func TestAppModel_HeaderAndFooter(t *testing.T) {
	opts := testOptions(t)
	opts.SkipSplash = true
	m := sized(newAppModel(opts), 100, 30)

	view := m.render()
	assert.Contains(t, view, "comprehend")
	assert.Contains(t, view, "Home")
	assert.Contains(t, view, "Navigate")
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(testOptions(t))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestAppModel_EscPopsAndRespectsCapture(t *testing.T) {
	opts := testOptions(t)
	opts.SkipSplash = true
	m := newAppModel(opts)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd, "esc at the root does nothing")

	hs := historyscreen.New(opts.Deps.History)
	m.router.Push(hs)
	hs.Update(hs.Init()())

	require.NoError(t, opts.Deps.History.Append(context.Background(), history.NewSummary(4, 6, time.Now())))
	hs.Update(hs.Init()())
	m.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	require.True(t, hs.CapturesEscape())

	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd, "esc closes the prompt instead of leaving")
	assert.False(t, hs.CapturesEscape())
	assert.Equal(t, 2, m.router.Depth())

	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, isPop := cmd().(router.PopScreenMsg)
	assert.True(t, isPop)
}

func TestAppModel_SessionStatusInHeader(t *testing.T) {
	opts := testOptions(t)
	opts.SkipSplash = true
	m := sized(newAppModel(opts), 140, 40)

	s := sessionscreen.New(opts.Deps)
	m.router.Push(s)
	runLoad(m, s)

	view := m.render()
	assert.True(t, strings.Contains(view, "Score 0/6"), "header should show the running score")
}

// runLoad drives the screen's Init batch until the set is loaded.
func runLoad(m AppModel, s *sessionscreen.SessionScreen) {
	var drain func(tea.Cmd)
	drain = func(c tea.Cmd) {
		if c == nil {
			return
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				drain(sub)
			}
			return
		}
		m.router.Update(msg)
	}
	drain(s.Init())
}
