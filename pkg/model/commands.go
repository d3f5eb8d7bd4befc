package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/trusttrade/trusttrade/pkg/config"
	"github.com/trusttrade/trusttrade/pkg/db"
	"github.com/trusttrade/trusttrade/pkg/notify"
	"github.com/trusttrade/trusttrade/pkg/text"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"go.uber.org/zap"
)

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type feedChangedMsg struct{}
type notifyChangedMsg struct{}
type snackbarTimeoutMsg uint64
type openAssetMsg v1.Asset
type assetLoadedMsg *v1.Asset
type configReloadedMsg struct{ cfg *config.Config }

type interestResultMsg struct {
	asset     v1.Asset
	confirmed bool
	err       error
}

// waitForChange turns one store notification into msg. The command ends
// without a message once the subscription is closed.
func waitForChange(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

func waitForConfig(ch <-chan *config.Config) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configReloadedMsg{cfg: cfg}
	}
}

func waitForSnackbarTimeout(id uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return snackbarTimeoutMsg(id)
	})
}

// The feed commands block until the store has applied the result. Their
// outcome reaches the view through the store subscription, so they return
// no message of their own.

func (c *commonModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		c.feed.Refresh(c.ctx)
		return nil
	}
}

func (c *commonModel) loadMoreCmd() tea.Cmd {
	return func() tea.Msg {
		c.feed.LoadMore(c.ctx)
		return nil
	}
}

// clearFiltersCmd empties the filters in the snapshot right away; the store
// clears its own copy when the command runs.
func (c *commonModel) clearFiltersCmd() tea.Cmd {
	c.feedState.Filters = v1.Filters{}
	return func() tea.Msg {
		c.feed.ClearFilters(c.ctx)
		return nil
	}
}

func fetchAssetCmd(c *commonModel, id v1.ID) tea.Cmd {
	return func() tea.Msg {
		a, err := c.svc.GetAsset(c.ctx, id)
		if err != nil {
			// the listing copy is still on screen, so this is not worth a snackbar
			c.log.Warn("could not refresh asset", zap.String("id", id.String()), zap.Error(err))
			return nil
		}
		return assetLoadedMsg(a)
	}
}

// expressInterestCmd asks for confirmation and, once given, tells the seller.
// The command blocks on the confirmation while the UI keeps running.
func expressInterestCmd(c *commonModel, a v1.Asset) tea.Cmd {
	opts := v1.ConfirmOptions{
		Title:       "Express interest?",
		Message:     fmt.Sprintf("%s will be told you are interested in “%s”.", a.Seller.DisplayName(), a.Title),
		ConfirmText: "Send",
		CancelText:  "Not now",
	}
	if !a.Seller.Verified {
		opts.Title = "Express interest in an unverified seller?"
		opts.IsDangerous = true
	}
	if in, ok := c.contacted(a.ID); ok {
		opts.Message += fmt.Sprintf(" You already contacted them %s.", text.RelativeTime(in.At))
		opts.ConfirmText = "Send again"
	}

	return func() tea.Msg {
		ok, err := c.notify.Confirm(c.ctx, opts)
		if err != nil || !ok {
			return interestResultMsg{asset: a, err: err}
		}
		err = c.svc.ExpressInterest(c.ctx, a.ID, "")
		return interestResultMsg{asset: a, confirmed: true, err: err}
	}
}

// syncNotifications refreshes the notification snapshots and starts the
// dismissal timer for a snackbar that has not been seen before.
func (c *commonModel) syncNotifications() tea.Cmd {
	prev := c.snackbar
	c.snackbar = c.notify.Snackbar()
	c.confirm = c.notify.Confirmation()

	if c.snackbar.Open && c.snackbar.ID != prev.ID {
		return waitForSnackbarTimeout(c.snackbar.ID, c.cfg.SnackbarDuration)
	}
	return nil
}

func (c *commonModel) answerConfirmation(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y", "enter":
		c.notify.Accept()
	case "n", "N", "esc":
		c.notify.Cancel()
	default:
		return
	}
	// take the next snapshot now so a quick second keypress is not applied
	// to the question that was just answered
	c.confirm = c.notify.Confirmation()
}

func (c *commonModel) showInterestResult(msg interestResultMsg) {
	switch {
	case errors.Is(msg.err, notify.ErrConfirmationClosed), errors.Is(msg.err, context.Canceled):
		// shutting down
	case !msg.confirmed && msg.err == nil:
		c.log.Debug("interest not sent", zap.String("id", msg.asset.ID.String()))
	case msg.err != nil:
		c.log.Error("failed to express interest", zap.String("id", msg.asset.ID.String()), zap.Error(msg.err))
		c.notify.ShowSnackbar(fmt.Sprintf("Couldn’t contact %s: %v", msg.asset.Seller.DisplayName(), msg.err), v1.SnackbarError)
	default:
		c.recordInterest(msg.asset)
		c.notify.ShowSnackbar(fmt.Sprintf("Interest sent to %s", msg.asset.Seller.DisplayName()), v1.SnackbarSuccess)
	}
}

// contacted reports the recorded interest for id, if any.
func (c *commonModel) contacted(id v1.ID) (db.Interest, bool) {
	if c.interests == nil {
		return db.Interest{}, false
	}
	in, err := c.interests.Get(id)
	if err != nil {
		return db.Interest{}, false
	}
	return in, true
}

func (c *commonModel) recordInterest(a v1.Asset) {
	if c.interests == nil {
		return
	}
	err := c.interests.Record(db.Interest{
		AssetID: a.ID,
		Title:   a.Title,
		Seller:  a.Seller.DisplayName(),
		At:      time.Now(),
	})
	if err != nil {
		c.log.Warn("unable to record interest", zap.String("id", a.ID.String()), zap.String("path", c.interests.StoragePath()), zap.Error(err))
	}
}
