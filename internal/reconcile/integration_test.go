package reconcile_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/wheecious/kener/internal/kener"
	"github.com/wheecious/kener/internal/reconcile"
	"github.com/wheecious/kener/internal/sim"
	"github.com/wheecious/kener/pkg/types"
)

const integrationKey = "integration-key"

func newStack(t *testing.T, dryRun bool) (*reconcile.Reconciler, *kener.Client) {
	t.Helper()

	simSrv := sim.New(
		sim.Config{APIKey: integrationKey},
		sim.Dependencies{Store: sim.NewMemoryStore()},
	)
	server := httptest.NewServer(simSrv.Handler)
	t.Cleanup(server.Close)

	client, err := kener.NewClient(
		kener.Config{BaseURL: server.URL, APIKey: integrationKey},
		kener.Dependencies{HTTPClient: server.Client()},
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	reconciler, err := reconcile.New(
		reconcile.Config{DryRun: dryRun},
		reconcile.Dependencies{API: client},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return reconciler, client
}

func integrationSpec() types.MonitorSpec {
	return types.MonitorSpec{
		State:        types.StatePresent,
		Tag:          "edge-gateway",
		Name:         "Edge Gateway",
		Status:       types.StatusActive,
		Cron:         "* * * * *",
		CategoryName: "Home",
		Type:         types.MonitorTypePING,
		TypeData: &types.HostsData{
			Hosts: []types.Host{{Host: "10.0.0.1", Type: types.HostTypeIP4, TimeoutMillis: 3000}},
		},
	}
}

func TestReconcileLifecycleAgainstSimulator(t *testing.T) {
	ctx := context.Background()
	reconciler, client := newStack(t, false)
	spec := integrationSpec()

	// Create.
	result, err := reconciler.Reconcile(ctx, spec)
	if err != nil {
		t.Fatalf("create reconcile: %v", err)
	}
	if result.Action != reconcile.ActionCreate || !result.Changed {
		t.Fatalf("unexpected create result: %+v", result)
	}
	if result.ID == "" {
		t.Fatalf("expected created id")
	}

	// Same spec again is a no-op.
	result, err = reconciler.Reconcile(ctx, spec)
	if err != nil {
		t.Fatalf("noop reconcile: %v", err)
	}
	if result.Action != reconcile.ActionNone || result.Changed {
		t.Fatalf("unexpected noop result: %+v", result)
	}
	if result.Message != "Monitor edge-gateway with the same parameters already exists" {
		t.Fatalf("unexpected noop message %q", result.Message)
	}

	// Drift: a second host triggers an update that keeps the id.
	createdID := result.ID
	spec.TypeData = &types.HostsData{
		Hosts: []types.Host{
			{Host: "10.0.0.1", Type: types.HostTypeIP4, TimeoutMillis: 3000},
			{Host: "10.0.0.2", Type: types.HostTypeIP4, TimeoutMillis: 3000},
		},
	}
	result, err = reconciler.Reconcile(ctx, spec)
	if err != nil {
		t.Fatalf("update reconcile: %v", err)
	}
	if result.Action != reconcile.ActionUpdate || !result.Changed {
		t.Fatalf("unexpected update result: %+v", result)
	}
	if result.ID != createdID {
		t.Fatalf("update changed the id: %s != %s", result.ID, createdID)
	}

	// The stored record decodes back into the desired typed data.
	monitors, err := client.ListMonitorsByTag(ctx, spec.Tag)
	if err != nil {
		t.Fatalf("ListMonitorsByTag: %v", err)
	}
	if len(monitors) != 1 {
		t.Fatalf("expected 1 monitor, got %d", len(monitors))
	}
	data, err := types.DecodeTypeData(spec.Type, monitors[0].TypeData)
	if err != nil {
		t.Fatalf("DecodeTypeData: %v", err)
	}
	hosts, ok := data.(*types.HostsData)
	if !ok || len(hosts.Hosts) != 2 || hosts.Hosts[1].Host != "10.0.0.2" {
		t.Fatalf("unexpected stored hosts: %+v", data)
	}

	// Absent removes the monitor.
	spec.State = types.StateAbsent
	result, err = reconciler.Reconcile(ctx, spec)
	if err != nil {
		t.Fatalf("delete reconcile: %v", err)
	}
	if result.Action != reconcile.ActionDelete || !result.Changed {
		t.Fatalf("unexpected delete result: %+v", result)
	}
	if result.Message != "Monitor edge-gateway was removed" {
		t.Fatalf("unexpected delete message %q", result.Message)
	}

	// Absent again finds nothing.
	result, err = reconciler.Reconcile(ctx, spec)
	if err != nil {
		t.Fatalf("absent noop reconcile: %v", err)
	}
	if result.Action != reconcile.ActionNone || result.Changed {
		t.Fatalf("unexpected absent noop result: %+v", result)
	}
	if result.Message != "No monitor edge-gateway found" {
		t.Fatalf("unexpected absent noop message %q", result.Message)
	}

	monitors, err = client.ListMonitorsByTag(ctx, spec.Tag)
	if err != nil {
		t.Fatalf("ListMonitorsByTag after delete: %v", err)
	}
	if len(monitors) != 0 {
		t.Fatalf("expected no monitors, got %+v", monitors)
	}
}

func TestReconcileDryRunAgainstSimulator(t *testing.T) {
	ctx := context.Background()
	reconciler, client := newStack(t, true)
	spec := integrationSpec()

	result, err := reconciler.Reconcile(ctx, spec)
	if err != nil {
		t.Fatalf("dry-run reconcile: %v", err)
	}
	if result.Action != reconcile.ActionCreate || !result.Changed {
		t.Fatalf("unexpected dry-run result: %+v", result)
	}

	monitors, err := client.ListMonitorsByTag(ctx, spec.Tag)
	if err != nil {
		t.Fatalf("ListMonitorsByTag: %v", err)
	}
	if len(monitors) != 0 {
		t.Fatalf("dry run must not create monitors, got %+v", monitors)
	}
}
