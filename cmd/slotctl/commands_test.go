package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/complete_bookings"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
)

type fakeRegenerator struct {
	got *regenerate_horizon.Request
}

func (f *fakeRegenerator) Execute(ctx context.Context, req *regenerate_horizon.Request) (*regenerate_horizon.Response, error) {
	f.got = req
	return &regenerate_horizon.Response{StartDay: req.StartDay, Days: req.Days, Created: 5, Errors: []string{}}, nil
}

type fakeReconciler struct {
	got *reconcile_counts.Request
}

func (f *fakeReconciler) Execute(ctx context.Context, req *reconcile_counts.Request) (*reconcile_counts.Response, error) {
	f.got = req
	return &reconcile_counts.Response{FromDay: req.FromDay, Checked: 4, Corrected: 1, Errors: []string{}}, nil
}

type fakeCompleter struct {
	calls int
}

func (f *fakeCompleter) Execute(ctx context.Context) (*complete_bookings.Response, error) {
	f.calls++
	return &complete_bookings.Response{Completed: 2}, nil
}

type harness struct {
	regen      *fakeRegenerator
	reconciler *fakeReconciler
	completer  *fakeCompleter
	configPath string
	closed     bool
}

func newHarness() *harness {
	return &harness{regen: &fakeRegenerator{}, reconciler: &fakeReconciler{}, completer: &fakeCompleter{}}
}

func (h *harness) open(ctx context.Context, configPath string) (*Jobs, error) {
	h.configPath = configPath
	return &Jobs{
		Regenerator: h.regen,
		Reconciler:  h.reconciler,
		Completer:   h.completer,
		Close:       func() { h.closed = true },
	}, nil
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(open)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegenerate(t *testing.T) {
	h := newHarness()
	out, err := run(t, h.open, "regenerate", "--config", "prod.toml", "--start", "2026-10-20", "--days", "7")
	require.NoError(t, err)

	assert.Equal(t, "prod.toml", h.configPath)
	assert.Equal(t, "2026-10-20", h.regen.got.StartDay.String())
	assert.Equal(t, 7, h.regen.got.Days)
	assert.Contains(t, out, "created=5")
	assert.True(t, h.closed)
}

func TestRegenerate_Validation(t *testing.T) {
	h := newHarness()

	_, err := run(t, h.open, "regenerate")
	assert.Error(t, err, "--days is required")

	_, err = run(t, h.open, "regenerate", "--start", "20.10.2026", "--days", "7")
	assert.Error(t, err)
	assert.Nil(t, h.regen.got)
}

func TestReconcile_JSON(t *testing.T) {
	h := newHarness()
	out, err := run(t, h.open, "reconcile", "--from", "2026-10-14", "--json")
	require.NoError(t, err)

	var body reconcile_counts.Response
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "2026-10-14", body.FromDay.String())
	assert.Equal(t, 1, body.Corrected)
}

func TestReconcile_DefaultsToToday(t *testing.T) {
	h := newHarness()
	_, err := run(t, h.open, "reconcile")
	require.NoError(t, err)
	assert.True(t, h.reconciler.got.FromDay.IsZero())
}

func TestComplete(t *testing.T) {
	h := newHarness()
	out, err := run(t, h.open, "complete")
	require.NoError(t, err)
	assert.Equal(t, 1, h.completer.calls)
	assert.Equal(t, "completed=2\n", out)
}

func TestOpenFailure(t *testing.T) {
	failing := func(ctx context.Context, configPath string) (*Jobs, error) {
		return nil, errors.New("config: failed to load config")
	}
	_, err := run(t, failing, "complete")
	assert.EqualError(t, err, "config: failed to load config")
}
