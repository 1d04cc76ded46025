// Package dispatch turns tracker actions into compositor commands. Send
// failures are logged and dropped so a flaky compositor never stalls the
// event loop.
package dispatch

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/niritile/internal/cachemanager"
	"github.com/zjrosen/niritile/internal/log"
	"github.com/zjrosen/niritile/internal/tracing"
	"github.com/zjrosen/niritile/internal/tracker"
)

// CommandSender issues layout commands to the compositor. *niri.Client
// satisfies it.
type CommandSender interface {
	MaximizeWindow(ctx context.Context, id uint64) error
	SetWindowWidth(ctx context.Context, id uint64, width float64) error
}

// Dispatcher sends actions to the compositor. Within the cooldown window
// it suppresses a command only when it is identical to the last command
// sent for the same window; a different action for that window replaces
// the cached entry and always goes through, so legitimate corrections
// (maximize after a restore and vice versa) are never swallowed. With a
// zero cooldown every action goes through.
type Dispatcher struct {
	sender CommandSender
	// recent maps a window id to the signature of the last command sent
	// for that window.
	recent cachemanager.CacheManager[string, string]

	mu       sync.Mutex
	cooldown time.Duration
	dryRun   bool
}

// New builds a dispatcher over the given sender.
func New(sender CommandSender, cooldown time.Duration, dryRun bool) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		recent:   cachemanager.NewInMemoryCacheManager[string, string]("dispatch-cooldown", cooldown, cachemanager.DefaultCleanupInterval),
		cooldown: cooldown,
		dryRun:   dryRun,
	}
}

// SetCooldown updates the suppression window. Takes effect for the next
// dispatch; entries already cached keep their original TTL.
func (d *Dispatcher) SetCooldown(cooldown time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cooldown = cooldown
}

// SetDryRun toggles dry-run mode at runtime.
func (d *Dispatcher) SetDryRun(dryRun bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dryRun = dryRun
}

// Dispatch sends each action in order. Suppressed and failed actions are
// recorded on the ambient span; errors never propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, actions []tracker.Action) {
	if len(actions) == 0 {
		return
	}

	d.mu.Lock()
	cooldown := d.cooldown
	dryRun := d.dryRun
	d.mu.Unlock()

	span := trace.SpanFromContext(ctx)

	for _, action := range actions {
		sig := action.Signature()
		window := strconv.FormatUint(action.Window(), 10)

		if cooldown > 0 {
			if last, hit := d.recent.Get(ctx, window); hit && last == sig {
				log.Debug(log.CatDispatch, "suppressing repeated action", "action", sig, "cooldown", cooldown)
				span.AddEvent(tracing.EventActionSuppressed, trace.WithAttributes(
					attribute.String(tracing.AttrActions, sig),
				))
				continue
			}
			d.recent.Set(ctx, window, sig, cooldown)
		}

		if dryRun {
			log.Info(log.CatDispatch, "dry-run, not sending", "action", sig)
			continue
		}

		if err := d.send(ctx, action); err != nil {
			log.ErrorErr(log.CatDispatch, "failed to send action", err, "action", sig)
			span.AddEvent(tracing.EventDispatchFailed, trace.WithAttributes(
				attribute.String(tracing.AttrActions, sig),
				attribute.String(tracing.AttrErrorMessage, err.Error()),
			))
			continue
		}

		log.Info(log.CatDispatch, "sent action", "action", sig)
		span.AddEvent(tracing.EventActionEmitted, trace.WithAttributes(
			attribute.String(tracing.AttrActions, sig),
		))
	}
}

func (d *Dispatcher) send(ctx context.Context, action tracker.Action) error {
	switch a := action.(type) {
	case tracker.Maximize:
		return d.sender.MaximizeWindow(ctx, a.WindowID)
	case tracker.Restore:
		return d.sender.SetWindowWidth(ctx, a.WindowID, a.Width)
	default:
		log.Warn(log.CatDispatch, "unknown action type", "action", action.Signature())
		return nil
	}
}
