package model

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trusttrade/trusttrade/pkg/api"
	"github.com/trusttrade/trusttrade/pkg/config"
	"github.com/trusttrade/trusttrade/pkg/db/fs"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
)

type fakeService struct {
	mu          sync.Mutex
	pages       map[int]*v1.AssetPage
	err         error
	calls       []api.ListParams
	interested  []v1.ID
	interestErr error
}

func (f *fakeService) ListAssets(ctx context.Context, p api.ListParams) (*v1.AssetPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	if page, ok := f.pages[p.Page]; ok {
		return page, nil
	}
	return &v1.AssetPage{Page: p.Page, Pages: p.Page}, nil
}

func (f *fakeService) GetAsset(ctx context.Context, id v1.ID) (*v1.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		for _, a := range p.Assets {
			if a.ID == id {
				a := a
				return &a, nil
			}
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeService) ExpressInterest(ctx context.Context, id v1.ID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interested = append(f.interested, id)
	return f.interestErr
}

func (f *fakeService) lastCall() api.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return api.ListParams{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeService) interestedIn() []v1.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]v1.ID(nil), f.interested...)
}

var (
	forklift = v1.Asset{
		ID:          "a1",
		Title:       "Forklift",
		Price:       12500,
		Category:    "Machinery",
		Condition:   "Good",
		Location:    "Rotterdam",
		Seller:      v1.Seller{ID: "b1", Name: "Acme", TrustScore: 87, Verified: true},
		Quantity:    2,
		Description: "<p>Low hours.</p>",
	}
	pallets = v1.Asset{
		ID:       "a2",
		Title:    "Pallet racking",
		Price:    899.5,
		Category: "Furniture",
		Seller:   v1.Seller{ID: "b2"},
		Quantity: 0,
	}
	truck = v1.Asset{
		ID:       "a3",
		Title:    "Box truck",
		Price:    30000,
		Category: "Vehicles",
		Seller:   v1.Seller{ID: "b3", Name: "Haulers"},
		Quantity: 1,
	}
)

func testConfig() config.Config {
	cfg := config.Default
	cfg.SnackbarDuration = time.Minute
	return cfg
}

func newTestModel(t *testing.T, svc *fakeService, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{WithGlamourStyle("notty")}, opts...)
	m := New(context.Background(), testConfig(), svc, nil, opts...)
	t.Cleanup(m.Close)
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and any batched commands, returning the messages they
// produce. Commands still blocked after a short wait (store subscriptions,
// timers) are abandoned.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// loaded refreshes the feed synchronously and hands the change to the model.
func loaded(t *testing.T, m Model) Model {
	t.Helper()
	m.Feed().Refresh(context.Background())
	m, _ = send(m, feedChangedMsg{})
	return m
}

func waitForConfirmation(t *testing.T, m Model) Model {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !m.Notifications().Confirmation().Open {
		if time.Now().After(deadline) {
			t.Fatal("confirmation never opened")
		}
		time.Sleep(time.Millisecond)
	}
	m, _ = send(m, notifyChangedMsg{})
	return m
}

func TestListingShowsLoadedAssets(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{forklift, pallets}, Page: 1, Pages: 1},
	}}
	m := loaded(t, newTestModel(t, svc))

	view := m.View()
	assert.Contains(t, view, "Forklift")
	assert.Contains(t, view, "$12,500")
	assert.Contains(t, view, "Pallet racking")
	assert.Contains(t, view, "$899.5")
	assert.Contains(t, view, "2 assets")
	assert.Contains(t, view, "sold out")
	assert.Contains(t, view, "trust 87")
	assert.NotContains(t, view, "No assets found.")
	assert.Equal(t, 12, svc.lastCall().Limit)
}

func TestListingEmptyState(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeService{}))
	assert.Contains(t, m.View(), "No assets found.")
}

func TestListingShowsFetchError(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeService{err: errors.New("connection refused")}))

	view := m.View()
	assert.Contains(t, view, "Couldn’t load assets")
	assert.Contains(t, view, "connection refused")
	assert.NotContains(t, view, "No assets found.")
}

func TestUnauthorizedIsFatal(t *testing.T) {
	m := loaded(t, newTestModel(t, &fakeService{err: &api.StatusError{Code: 401, Body: "invalid token"}}))

	assert.Contains(t, m.View(), "rejected the configured token")

	_, cmd := send(m, keyPress("j"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMovingPastTheEndLoadsMore(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{forklift, pallets}, Page: 1, Pages: 2},
		2: {Assets: []v1.Asset{truck}, Page: 2, Pages: 2},
	}}
	m := loaded(t, newTestModel(t, svc))

	m, cmd := send(m, keyPress("j"))
	assert.Equal(t, 1, m.listing.index)
	runCmd(cmd)
	assert.Equal(t, 1, svc.lastCall().Page, "moving within the loaded items must not fetch")

	m, cmd = send(m, keyPress("j"))
	runCmd(cmd)
	assert.Equal(t, 2, svc.lastCall().Page)

	m, _ = send(m, feedChangedMsg{})
	assert.Len(t, m.common.feedState.Items, 3)
	assert.False(t, m.common.feedState.HasMore)

	m, _ = send(m, keyPress("j"))
	assert.Equal(t, 2, m.listing.index)
	assert.Contains(t, m.View(), "Box truck")
}

func TestExpressInterestAfterConfirming(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{forklift}, Page: 1, Pages: 1},
	}}
	m := loaded(t, newTestModel(t, svc))

	m, cmd := send(m, keyPress("i"))
	require.NotNil(t, cmd)
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	m = waitForConfirmation(t, m)
	view := m.View()
	assert.Contains(t, view, "Express interest?")
	assert.Contains(t, view, "[y] Send")
	assert.Contains(t, view, "[n] Not now")

	// keys other than an answer are swallowed while the question is open
	m, cmd = send(m, keyPress("q"))
	assert.Nil(t, cmd)
	assert.True(t, m.Notifications().Confirmation().Open)

	m, _ = send(m, keyPress("y"))
	assert.False(t, m.common.confirm.Open)

	msg := <-result
	m, _ = send(m, msg)
	assert.Equal(t, []v1.ID{"a1"}, svc.interestedIn())

	m, cmd = send(m, notifyChangedMsg{})
	assert.NotNil(t, cmd, "a new snackbar starts its dismissal timer")
	sb := m.Notifications().Snackbar()
	assert.Equal(t, v1.SnackbarSuccess, sb.Kind)
	assert.Contains(t, m.View(), "Interest sent to Acme")
}

func TestSentInterestIsRemembered(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{forklift}, Page: 1, Pages: 1},
	}}
	interests, err := fs.New(filepath.Join(t.TempDir(), fs.DefaultFilename))
	require.NoError(t, err)
	m := loaded(t, newTestModel(t, svc, WithInterestLog(interests)))
	assert.NotContains(t, m.View(), "contacted")

	m, cmd := send(m, keyPress("i"))
	require.NotNil(t, cmd)
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()
	m = waitForConfirmation(t, m)
	m, _ = send(m, keyPress("y"))
	m, _ = send(m, <-result)

	in, err := interests.Get("a1")
	require.NoError(t, err)
	assert.Equal(t, "Forklift", in.Title)
	assert.Equal(t, "Acme", in.Seller)
	assert.Contains(t, m.View(), "contacted")

	// asking again says so
	m, cmd = send(m, keyPress("i"))
	require.NotNil(t, cmd)
	go func() { result <- cmd() }()
	m = waitForConfirmation(t, m)
	assert.Contains(t, m.View(), "[y] Send again")
	assert.Contains(t, m.common.confirm.Message, "You already contacted them")
	m, _ = send(m, keyPress("n"))
	m, _ = send(m, <-result)
	assert.Equal(t, []v1.ID{"a1"}, svc.interestedIn())
}

func TestDecliningSendsNothing(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{truck}, Page: 1, Pages: 1},
	}}
	m := loaded(t, newTestModel(t, svc))

	m, cmd := send(m, keyPress("i"))
	require.NotNil(t, cmd)
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	m = waitForConfirmation(t, m)
	// the seller is not verified
	assert.True(t, m.common.confirm.IsDangerous)

	m, _ = send(m, keyPress("n"))
	m, _ = send(m, <-result)

	assert.Empty(t, svc.interestedIn())
	assert.False(t, m.Notifications().Snackbar().Open)
}

func TestInterestFailureShowsError(t *testing.T) {
	svc := &fakeService{
		pages:       map[int]*v1.AssetPage{1: {Assets: []v1.Asset{forklift}, Page: 1, Pages: 1}},
		interestErr: errors.New("boom"),
	}
	m := loaded(t, newTestModel(t, svc))

	m, cmd := send(m, keyPress("i"))
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()
	m = waitForConfirmation(t, m)
	m, _ = send(m, keyPress("enter"))
	send(m, <-result)

	sb := m.Notifications().Snackbar()
	assert.Equal(t, v1.SnackbarError, sb.Kind)
	assert.Contains(t, sb.Message, "boom")
}

func TestSoldOutAssetsAreNotOffered(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{pallets}, Page: 1, Pages: 1},
	}}
	m := loaded(t, newTestModel(t, svc))

	m, cmd := send(m, keyPress("i"))
	assert.Nil(t, cmd)
	assert.False(t, m.Notifications().Confirmation().Open)

	sb := m.Notifications().Snackbar()
	assert.Equal(t, v1.SnackbarWarning, sb.Kind)
	assert.Contains(t, sb.Message, "sold out")
}

func TestStaleSnackbarTimerKeepsNewerMessage(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	n := m.Notifications()

	first := n.ShowSnackbar("Saved", v1.SnackbarSuccess)
	m, cmd := send(m, notifyChangedMsg{})
	assert.NotNil(t, cmd)

	second := n.ShowSnackbar("Failed", v1.SnackbarError)
	m, _ = send(m, notifyChangedMsg{})

	m, _ = send(m, snackbarTimeoutMsg(first.ID))
	assert.True(t, n.Snackbar().Open)

	m, _ = send(m, snackbarTimeoutMsg(second.ID))
	assert.False(t, n.Snackbar().Open)

	m, _ = send(m, notifyChangedMsg{})
	assert.NotContains(t, m.View(), "Failed")
}

func TestInvalidPriceIsNotApplied(t *testing.T) {
	svc := &fakeService{}
	m := loaded(t, newTestModel(t, svc))
	calls := len(svc.calls)

	m, _ = send(m, keyPress("["))
	assert.Equal(t, filterEditing, m.listing.filterState)
	for _, r := range "abc" {
		m, _ = send(m, keyPress(string(r)))
	}
	m, cmd := send(m, keyPress("enter"))
	runCmd(cmd)

	assert.Equal(t, filterEditing, m.listing.filterState, "stay in the editor so the value can be fixed")
	assert.Equal(t, v1.SnackbarWarning, m.Notifications().Snackbar().Kind)
	assert.Empty(t, m.common.feed.State().Filters.MinPrice)
	assert.Len(t, svc.calls, calls)

	m, _ = send(m, keyPress("esc"))
	assert.Equal(t, filterIdle, m.listing.filterState)
}

func TestSearchAppliesAndRefreshes(t *testing.T) {
	svc := &fakeService{}
	m := loaded(t, newTestModel(t, svc))

	m, _ = send(m, keyPress("/"))
	for _, r := range "fork" {
		m, _ = send(m, keyPress(string(r)))
	}
	// typing q while searching is text, not quit
	m, cmd := send(m, keyPress("q"))
	for _, msg := range runCmd(cmd) {
		assert.NotEqual(t, tea.QuitMsg{}, msg)
	}
	m, cmd = send(m, keyPress("enter"))
	runCmd(cmd)

	assert.Equal(t, "forkq", svc.lastCall().Filters.Search)
	assert.Equal(t, 1, svc.lastCall().Page)
	assert.Equal(t, filterIdle, m.listing.filterState)
}

func TestCategoryCycles(t *testing.T) {
	svc := &fakeService{}
	m := loaded(t, newTestModel(t, svc))

	m, cmd := send(m, keyPress("c"))
	assert.Equal(t, "Vehicles", m.Feed().State().Filters.Category)
	runCmd(cmd)
	assert.Equal(t, "Vehicles", svc.lastCall().Filters.Category)

	_, cmd = send(m, keyPress("x"))
	runCmd(cmd)
	assert.True(t, svc.lastCall().Filters.IsEmpty())
}

func TestQuickFilterKeysSeeEachOther(t *testing.T) {
	svc := &fakeService{}
	m := loaded(t, newTestModel(t, svc))

	// no store change message is delivered between the keypresses
	m, _ = send(m, keyPress("c"))
	m, _ = send(m, keyPress("c"))
	assert.Equal(t, "Electronics", m.Feed().State().Filters.Category)

	m, _ = send(m, keyPress("o"))
	assert.Equal(t, "New", m.Feed().State().Filters.Condition)

	_, cmd := send(m, keyPress("x"))
	require.NotNil(t, cmd, "clearing right after cycling must not be skipped")
	assert.True(t, m.common.feedState.Filters.IsEmpty())

	runCmd(cmd)
	assert.True(t, svc.lastCall().Filters.IsEmpty())
	assert.True(t, m.Feed().State().Filters.IsEmpty())
}

func TestCycle(t *testing.T) {
	opts := []string{"New", "Used"}
	assert.Equal(t, "New", cycle(opts, ""))
	assert.Equal(t, "Used", cycle(opts, "new"))
	assert.Equal(t, "", cycle(opts, "Used"))
	assert.Equal(t, "", cycle(opts, "Broken"))
	assert.Equal(t, "", cycle(nil, ""))
}

func TestOpenAssetAndReturn(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{forklift}, Page: 1, Pages: 1},
	}}
	m := loaded(t, newTestModel(t, svc))

	_, cmd := send(m, keyPress("enter"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	m, cmd = send(m, msgs[0])
	assert.Equal(t, stateShowAsset, m.state)

	for _, msg := range runCmd(cmd) {
		m, _ = send(m, msg)
	}
	view := m.View()
	assert.Contains(t, view, "Forklift")
	assert.Contains(t, view, "Low hours.")
	assert.Contains(t, view, "Acme")

	m, _ = send(m, keyPress("esc"))
	assert.Equal(t, stateShowListing, m.state)
	assert.Nil(t, m.pager.asset)
}

func TestAssetMarkdown(t *testing.T) {
	md := assetMarkdown(&pallets)
	assert.Contains(t, md, "# Pallet racking")
	assert.Contains(t, md, "sold out")
	assert.Contains(t, md, "seller b2")
	assert.NotContains(t, md, "## Description")

	md = assetMarkdown(&forklift)
	assert.Contains(t, md, "2 available")
	assert.Contains(t, md, "verified")
	assert.Contains(t, md, "trust score 87/100")
	assert.Contains(t, md, "Low hours.")
	assert.False(t, strings.Contains(md, "<p>"))
}

func TestConfigReload(t *testing.T) {
	m := newTestModel(t, &fakeService{})

	cfg := testConfig()
	cfg.SnackbarDuration = 9 * time.Second
	cfg.Categories = []string{"Boats"}
	cfg.GlamourStyle = "dark"
	m, _ = send(m, configReloadedMsg{cfg: &cfg})

	assert.Equal(t, 9*time.Second, m.common.cfg.SnackbarDuration)
	assert.Equal(t, "dark", m.common.glamourStyle)
	assert.Equal(t, "Configuration reloaded", m.Notifications().Snackbar().Message)

	m, cmd := send(m, keyPress("c"))
	runCmd(cmd)
	assert.Equal(t, "Boats", m.Feed().State().Filters.Category)
}

func TestQuitClosesPendingConfirmations(t *testing.T) {
	svc := &fakeService{pages: map[int]*v1.AssetPage{
		1: {Assets: []v1.Asset{forklift}, Page: 1, Pages: 1},
	}}
	m := loaded(t, newTestModel(t, svc))

	m, cmd := send(m, keyPress("i"))
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()
	m = waitForConfirmation(t, m)

	_, cmd = send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	msg := (<-result).(interestResultMsg)
	assert.False(t, msg.confirmed)
	assert.Error(t, msg.err)
	assert.Empty(t, svc.interestedIn())
}
