// Package daemon runs the event loop: it keeps a subscription to the
// compositor alive, reseeds tracker state from a full snapshot on every
// (re)connect, and feeds decoded events through the tracker into the
// dispatcher.
package daemon

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/niritile/internal/config"
	"github.com/zjrosen/niritile/internal/dispatch"
	"github.com/zjrosen/niritile/internal/log"
	"github.com/zjrosen/niritile/internal/niri"
	"github.com/zjrosen/niritile/internal/tracing"
	"github.com/zjrosen/niritile/internal/tracker"
)

// EventSource is a live stream of compositor events.
type EventSource interface {
	Next() (niri.Event, error)
	Close() error
}

// Compositor is the daemon's view of the compositor connection. Wrap a
// *niri.Client with NewClientCompositor to satisfy it.
type Compositor interface {
	Windows(ctx context.Context) ([]niri.Window, error)
	Subscribe(ctx context.Context) (EventSource, error)
}

type clientCompositor struct {
	client *niri.Client
}

// NewClientCompositor adapts a *niri.Client to the Compositor interface.
func NewClientCompositor(client *niri.Client) Compositor {
	return clientCompositor{client: client}
}

func (c clientCompositor) Windows(ctx context.Context) ([]niri.Window, error) {
	return c.client.Windows(ctx)
}

func (c clientCompositor) Subscribe(ctx context.Context) (EventSource, error) {
	return c.client.Subscribe(ctx)
}

// Daemon owns the tracker and runs the subscribe/seed/react loop.
type Daemon struct {
	compositor Compositor
	tracker    *tracker.Tracker
	dispatcher *dispatch.Dispatcher
	tracer     trace.Tracer
	reconnect  config.ReconnectConfig
}

// New builds a daemon. The tracer may be a no-op tracer.
func New(compositor Compositor, dispatcher *dispatch.Dispatcher, tracer trace.Tracer, reconnect config.ReconnectConfig) *Daemon {
	return &Daemon{
		compositor: compositor,
		tracker:    tracker.New(),
		dispatcher: dispatcher,
		tracer:     tracer,
		reconnect:  reconnect,
	}
}

// ApplyConfig applies the runtime-adjustable parts of a reloaded
// configuration: log level and dispatch behavior. Socket and tracing
// changes require a restart.
func (d *Daemon) ApplyConfig(cfg config.Config) {
	log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	d.dispatcher.SetCooldown(cfg.Dispatch.Cooldown)
	d.dispatcher.SetDryRun(cfg.Dispatch.DryRun)
	log.Info(log.CatDaemon, "configuration applied",
		"log_level", cfg.Log.Level,
		"cooldown", cfg.Dispatch.Cooldown,
		"dry_run", cfg.Dispatch.DryRun)
}

// Run connects to the compositor and processes events until ctx is
// canceled. Every session end — failed subscribe, failed snapshot, or a
// lost stream — is followed by an exponential backoff delay. One backoff
// instance lives across sessions so a crash-looping compositor keeps
// escalating toward MaxInterval; it resets only once a session has stayed
// up for ResetAfter. Retries are unlimited: the only way out is ctx.
func (d *Daemon) Run(ctx context.Context) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = d.reconnect.InitialInterval
	expo.MaxInterval = d.reconnect.MaxInterval
	expo.Reset()

	for {
		started := time.Now()
		err := d.runSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(started) >= d.reconnect.ResetAfter {
			expo.Reset()
		}

		next := expo.NextBackOff()
		log.Warn(log.CatDaemon, "session ended, reconnecting", "error", err, "next_attempt_in", next)
		select {
		case <-time.After(next):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runSession subscribes and drives one session to completion.
func (d *Daemon) runSession(ctx context.Context) error {
	stream, err := d.compositor.Subscribe(ctx)
	if err != nil {
		return err
	}
	return d.session(ctx, stream)
}

// session owns one live subscription: resync state from a snapshot, then
// consume events until the stream fails or ctx ends.
func (d *Daemon) session(ctx context.Context, stream EventSource) error {
	defer stream.Close()

	sessionID := uuid.NewString()
	log.Info(log.CatDaemon, "session established", "session", sessionID)

	// Next blocks in a read with no context; close the stream to unblock
	// it when ctx ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			stream.Close()
		case <-done:
		}
	}()

	if err := d.resync(ctx, sessionID); err != nil {
		return err
	}

	for {
		ev, err := stream.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		d.handle(ctx, sessionID, ev)
	}
}

// resync replaces all tracker state with a fresh snapshot. Seeding never
// emits actions: pre-existing lone windows keep whatever size the user
// gave them until the next transition.
func (d *Daemon) resync(ctx context.Context, sessionID string) error {
	ctx, span := d.tracer.Start(ctx, tracing.SpanSnapshot, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, sessionID),
	))
	defer span.End()

	windows, err := d.compositor.Windows(ctx)
	if err != nil {
		span.SetAttributes(attribute.String(tracing.AttrErrorMessage, err.Error()))
		return err
	}

	d.tracker.Reset()
	d.tracker.Seed(windows)
	log.Info(log.CatDaemon, "state resynced", "session", sessionID, "windows", len(windows))
	return nil
}

// handle runs one event through the tracker and dispatches whatever
// actions fall out.
func (d *Daemon) handle(ctx context.Context, sessionID string, ev niri.Event) {
	ctx, span := d.tracer.Start(ctx, tracing.SpanEventCycle, trace.WithAttributes(
		attribute.String(tracing.AttrEventKind, ev.Kind()),
		attribute.String(tracing.AttrSessionID, sessionID),
	))
	defer span.End()
	span.AddEvent(tracing.EventDecoded)

	actions := d.tracker.HandleEvent(ev)
	span.SetAttributes(attribute.Int(tracing.AttrActionCount, len(actions)))
	if len(actions) > 0 {
		span.SetAttributes(attribute.String(tracing.AttrActions, joinSignatures(actions)))
	}

	d.dispatcher.Dispatch(ctx, actions)
}

func joinSignatures(actions []tracker.Action) string {
	sigs := make([]string, len(actions))
	for i, a := range actions {
		sigs[i] = a.Signature()
	}
	return strings.Join(sigs, ",")
}
