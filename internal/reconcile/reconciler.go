package reconcile

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/wheecious/kener/pkg/types"
)

// API captures the remote monitor operations the reconciler drives.
type API interface {
	ListMonitorsByTag(ctx context.Context, tag string) ([]types.RemoteMonitor, error)
	CreateMonitor(ctx context.Context, payload types.MonitorPayload) (types.RemoteMonitor, error)
	UpdateMonitor(ctx context.Context, id types.ID, payload types.MonitorPayload) (types.RemoteMonitor, error)
	DeleteMonitor(ctx context.Context, id types.ID) error
}

// Action identifies the mutation a reconciliation performed.
type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Result reports what a reconciliation did. ID carries the remote identifier
// when one is known.
type Result struct {
	Action  Action
	Changed bool
	ID      types.ID
	Message string
}

// Config controls reconciliation behaviour.
type Config struct {
	// DryRun looks up and diffs but suppresses create, update, and delete
	// calls; results report the action that would have been taken.
	DryRun bool
}

// Dependencies holds the collaborators a Reconciler needs.
type Dependencies struct {
	API    API
	Logger *log.Logger
}

// Reconciler drives one monitor definition, keyed by tag, to its desired
// state on the remote service.
type Reconciler struct {
	cfg    Config
	api    API
	logger *log.Logger
}

// New builds a Reconciler from configuration and dependencies.
func New(cfg Config, deps Dependencies) (*Reconciler, error) {
	if deps.API == nil {
		return nil, fmt.Errorf("API client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Reconciler{cfg: cfg, api: deps.API, logger: logger}, nil
}

// Reconcile applies one desired monitor state. It performs exactly one tag
// lookup and at most one mutating call; there are no retries and no state is
// kept between invocations.
func (r *Reconciler) Reconcile(ctx context.Context, spec types.MonitorSpec) (Result, error) {
	if spec.Tag == "" {
		return Result{}, &ValidationError{Field: "tag", MonitorType: spec.Type}
	}

	switch spec.State {
	case types.StateAbsent:
		return r.reconcileAbsent(ctx, spec)
	case types.StatePresent, "":
		return r.reconcilePresent(ctx, spec)
	default:
		return Result{}, fmt.Errorf("unsupported state %q", spec.State)
	}
}

func (r *Reconciler) reconcilePresent(ctx context.Context, spec types.MonitorSpec) (Result, error) {
	payload, err := BuildPayload(spec)
	if err != nil {
		return Result{}, err
	}

	existing, err := r.api.ListMonitorsByTag(ctx, spec.Tag)
	if err != nil {
		return Result{}, fmt.Errorf("look up monitor %q: %w", spec.Tag, err)
	}

	if len(existing) == 0 {
		if r.cfg.DryRun {
			return Result{
				Action:  ActionCreate,
				Changed: true,
				Message: fmt.Sprintf("Monitor %s would be created (dry run)", spec.Tag),
			}, nil
		}
		created, err := r.api.CreateMonitor(ctx, payload)
		if err != nil {
			return Result{}, fmt.Errorf("create monitor %q: %w", spec.Tag, err)
		}
		r.logger.Printf("created monitor %s (id=%s)", spec.Tag, created.ID)
		return Result{
			Action:  ActionCreate,
			Changed: true,
			ID:      created.ID,
			Message: fmt.Sprintf("Monitor %s created", spec.Tag),
		}, nil
	}

	current := r.pickMatch(spec.Tag, existing)

	changed, err := HasChanged(payload, current)
	if err != nil {
		return Result{}, err
	}
	if !changed {
		return Result{
			Action:  ActionNone,
			Changed: false,
			ID:      current.ID,
			Message: fmt.Sprintf("Monitor %s with the same parameters already exists", spec.Tag),
		}, nil
	}

	if r.cfg.DryRun {
		return Result{
			Action:  ActionUpdate,
			Changed: true,
			ID:      current.ID,
			Message: fmt.Sprintf("Monitor %s would be updated (dry run)", spec.Tag),
		}, nil
	}

	payload.ID = current.ID
	if _, err := r.api.UpdateMonitor(ctx, current.ID, payload); err != nil {
		return Result{}, fmt.Errorf("update monitor %q: %w", spec.Tag, err)
	}
	r.logger.Printf("updated monitor %s (id=%s)", spec.Tag, current.ID)
	return Result{
		Action:  ActionUpdate,
		Changed: true,
		ID:      current.ID,
		Message: fmt.Sprintf("Monitor %s updated", spec.Tag),
	}, nil
}

func (r *Reconciler) reconcileAbsent(ctx context.Context, spec types.MonitorSpec) (Result, error) {
	existing, err := r.api.ListMonitorsByTag(ctx, spec.Tag)
	if err != nil {
		return Result{}, fmt.Errorf("look up monitor %q: %w", spec.Tag, err)
	}

	if len(existing) == 0 {
		return Result{
			Action:  ActionNone,
			Changed: false,
			Message: fmt.Sprintf("No monitor %s found", spec.Tag),
		}, nil
	}

	current := r.pickMatch(spec.Tag, existing)

	if r.cfg.DryRun {
		return Result{
			Action:  ActionDelete,
			Changed: true,
			ID:      current.ID,
			Message: fmt.Sprintf("Monitor %s would be removed (dry run)", spec.Tag),
		}, nil
	}

	if err := r.api.DeleteMonitor(ctx, current.ID); err != nil {
		return Result{}, fmt.Errorf("delete monitor %q: %w", spec.Tag, err)
	}
	r.logger.Printf("deleted monitor %s (id=%s)", spec.Tag, current.ID)
	return Result{
		Action:  ActionDelete,
		Changed: true,
		ID:      current.ID,
		Message: fmt.Sprintf("Monitor %s was removed", spec.Tag),
	}, nil
}

// pickMatch takes the first record the API returned for the tag. Tags are
// meant to be unique; when they are not, the first match is authoritative
// and the ambiguity is logged.
func (r *Reconciler) pickMatch(tag string, existing []types.RemoteMonitor) types.RemoteMonitor {
	current := existing[0]
	if len(existing) > 1 {
		r.logger.Printf("monitor tag %q matches %d records, using first (id=%s)", tag, len(existing), current.ID)
	}
	return current
}
