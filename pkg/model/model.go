// Package model is the terminal front end: an asset listing with filters,
// an asset pager, and the snackbar and confirmation surfaces, all driven by
// the feed and notify stores.
package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/trusttrade/trusttrade/pkg/api"
	"github.com/trusttrade/trusttrade/pkg/config"
	"github.com/trusttrade/trusttrade/pkg/db"
	"github.com/trusttrade/trusttrade/pkg/feed"
	"github.com/trusttrade/trusttrade/pkg/logging"
	"github.com/trusttrade/trusttrade/pkg/notify"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"go.uber.org/zap"
)

// AssetService is what the UI needs from the marketplace API. *api.Client
// implements it.
type AssetService interface {
	feed.Lister
	GetAsset(ctx context.Context, id v1.ID) (*v1.Asset, error)
	ExpressInterest(ctx context.Context, id v1.ID, message string) error
}

// state is the top-level application state.
type state int

const (
	stateShowListing state = iota
	stateShowAsset
)

func (s state) String() string {
	return map[state]string{
		stateShowListing: "showing asset listing",
		stateShowAsset:   "showing asset",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	ctx    context.Context
	cfg    config.Config
	log    *zap.Logger
	svc    AssetService
	feed   *feed.Store
	notify *notify.Store

	// interests remembers contacted sellers across sessions; nil disables it
	interests db.InterestLog

	glamourStyle string
	width        int
	height       int

	// snapshots taken whenever a store announces a change
	feedState feed.State
	snackbar  v1.Snackbar
	confirm   v1.Confirmation
}

type Model struct {
	common   *commonModel
	state    state
	listing  listingModel
	pager    *pagerModel
	fatalErr error

	cancel        context.CancelFunc
	feedChanges   <-chan struct{}
	notifyChanges <-chan struct{}
	configUpdates <-chan *config.Config
	unsubscribe   []func()
}

type Option func(*Model)

// WithConfigUpdates applies configurations received on ch while running.
func WithConfigUpdates(ch <-chan *config.Config) Option {
	return func(m *Model) { m.configUpdates = ch }
}

// WithGlamourStyle picks the glamour style used by the asset pager. "auto"
// follows the terminal background.
func WithGlamourStyle(style string) Option {
	return func(m *Model) { m.common.glamourStyle = style }
}

// WithInterestLog records sent interest in l and marks contacted assets.
func WithInterestLog(l db.InterestLog) Option {
	return func(m *Model) { m.common.interests = l }
}

func New(ctx context.Context, cfg config.Config, svc AssetService, log *zap.Logger, opts ...Option) Model {
	log = logging.OrNop(log)
	ctx, cancel := context.WithCancel(ctx)

	common := &commonModel{
		ctx:          ctx,
		cfg:          cfg,
		log:          log,
		svc:          svc,
		feed:         feed.New(svc, feed.WithLogger(log.Named("feed")), feed.WithPageSize(cfg.PageSize)),
		notify:       notify.New(log.Named("notify")),
		glamourStyle: cfg.GlamourStyle,
	}
	if common.glamourStyle == "" {
		common.glamourStyle = "auto"
	}

	feedChanges, unsubFeed := common.feed.Subscribe()
	notifyChanges, unsubNotify := common.notify.Subscribe()

	m := Model{
		common:        common,
		state:         stateShowListing,
		listing:       newListingModel(common),
		pager:         newPagerModel(common),
		cancel:        cancel,
		feedChanges:   feedChanges,
		notifyChanges: notifyChanges,
		unsubscribe:   []func(){unsubFeed, unsubNotify},
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Feed exposes the listing store, mostly for tests and one-shot commands.
func (m Model) Feed() *feed.Store { return m.common.feed }

// Notifications exposes the snackbar and confirmation store.
func (m Model) Notifications() *notify.Store { return m.common.notify }

// Close stops in-flight requests, fails pending confirmations and releases
// the store subscriptions. It is safe to call more than once.
func (m Model) Close() {
	m.cancel()
	m.common.notify.Close()
	m.common.feed.Close()
	for _, u := range m.unsubscribe {
		u()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForChange(m.feedChanges, feedChangedMsg{}),
		waitForChange(m.notifyChanges, notifyChangedMsg{}),
		m.common.refreshCmd(),
	}
	if m.configUpdates != nil {
		cmds = append(cmds, waitForConfig(m.configUpdates))
	}
	return tea.Batch(cmds...)
}

// unloadAsset returns to the listing. Note that while this method alters the
// model we also need to send along any commands returned.
func (m *Model) unloadAsset() []tea.Cmd {
	m.state = stateShowListing
	m.pager.unload()
	m.listing.setSize(m.common.width, m.common.height)

	var batch []tea.Cmd
	if m.common.feedState.IsLoading() {
		batch = append(batch, m.listing.startSpinner())
	}
	return batch
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m.quit()
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits no matter where in the application you are.
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		// An open confirmation owns the keyboard until it is answered.
		if m.common.confirm.Open {
			m.common.answerConfirmation(msg)
			return m, nil
		}

		switch msg.String() {
		case "q":
			// pass all keys through while a filter is being typed
			if m.state == stateShowListing && m.listing.filterState == filterEditing {
				break
			}
			return m.quit()

		case "esc", "left", "h", "delete":
			if m.state == stateShowAsset {
				cmds = append(cmds, m.unloadAsset()...)
				return m, tea.Batch(cmds...)
			}
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.listing.setSize(msg.Width, msg.Height)
		m.pager.setSize(msg.Width, msg.Height)

	case feedChangedMsg:
		m.common.feedState = m.common.feed.State()
		m.listing.clampIndex()
		// nothing will load without valid credentials
		var se *api.StatusError
		if errors.As(m.common.feedState.Err, &se) && se.Code == http.StatusUnauthorized {
			m.fatalErr = fmt.Errorf("the marketplace rejected the configured token: %w", se)
		}
		cmds = append(cmds, waitForChange(m.feedChanges, feedChangedMsg{}))
		if m.common.feedState.IsLoading() {
			cmds = append(cmds, m.listing.startSpinner())
		}
		return m, tea.Batch(cmds...)

	case notifyChangedMsg:
		cmds = append(cmds, m.common.syncNotifications())
		cmds = append(cmds, waitForChange(m.notifyChanges, notifyChangedMsg{}))
		return m, tea.Batch(cmds...)

	// The spinner belongs to the listing even while an asset is open.
	case spinner.TickMsg:
		newListingModel, cmd := m.listing.update(msg)
		m.listing = newListingModel
		return m, cmd

	case snackbarTimeoutMsg:
		m.common.notify.Expire(uint64(msg))
		return m, nil

	case interestResultMsg:
		m.common.showInterestResult(msg)
		return m, nil

	case configReloadedMsg:
		m.common.applyConfig(msg.cfg)
		m.listing.setSize(m.common.width, m.common.height)
		return m, waitForConfig(m.configUpdates)

	case openAssetMsg:
		m.state = stateShowAsset
		a := v1.Asset(msg)
		cmds = append(cmds, m.pager.load(&a), fetchAssetCmd(m.common, a.ID))
		return m, tea.Batch(cmds...)

	case errMsg:
		m.common.log.Error("ui command failed", zap.Error(msg.err))
		if !errors.Is(msg.err, context.Canceled) {
			m.common.notify.ShowSnackbar(msg.Error(), v1.SnackbarError)
		}
		return m, nil
	}

	// Process children
	switch m.state {
	case stateShowListing:
		newListingModel, cmd := m.listing.update(msg)
		m.listing = newListingModel
		cmds = append(cmds, cmd)

	case stateShowAsset:
		newPagerModel, cmd := m.pager.update(msg)
		m.pager = newPagerModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state {
	case stateShowAsset:
		return m.pager.View()
	default:
		return m.listing.view()
	}
}

// applyConfig takes the settings that can change at runtime. The API
// endpoint, token and page size are bound at startup.
func (c *commonModel) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.APIBaseURL != c.cfg.APIBaseURL || cfg.PageSize != c.cfg.PageSize || cfg.Token != c.cfg.Token {
		c.log.Info("api settings changed; restart to apply them")
	}
	c.cfg.SnackbarDuration = cfg.SnackbarDuration
	c.cfg.Categories = cfg.Categories
	c.cfg.Conditions = cfg.Conditions
	c.cfg.LogLevel = cfg.LogLevel
	c.cfg.GlamourStyle = cfg.GlamourStyle
	c.glamourStyle = cfg.GlamourStyle
	c.notify.ShowSnackbar("Configuration reloaded", v1.SnackbarInfo)
}
