// Package inventory mediates every mutation of the pantry inventory.
//
// A Controller reads and writes records through a storage.ItemStore, keeps
// the authoritative snapshot in a State value, and rebuilds it from a full
// read after mutations. Operations are serialized; the only fan-out is the
// bulk delete in RemoveAll.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"pantrytracker"
	"pantrytracker/recipe"
	"pantrytracker/storage"
)

// DefaultDelay matches the pop-up and pop-away animation length.
const DefaultDelay = 500 * time.Millisecond

var (
	ErrEmptyName = errors.New("item name is empty")
	ErrNoRecipe  = errors.New("no recipe available to import")
)

type generator interface {
	Generate(ctx context.Context, query string) string
}

type Options struct {
	// DeleteDelay is how long a removed last unit stays pending before the record is deleted.
	DeleteDelay time.Duration
	// MarkerDelay is how long a pop-up marker stays set.
	MarkerDelay time.Duration

	Logger pantrytracker.OperationLogger
	Tracer trace.Tracer
	Meter  metric.Meter
}

type Controller struct {
	mu    sync.Mutex
	state State

	store     storage.ItemStore
	generator generator
	logger    pantrytracker.OperationLogger

	deleteDelay time.Duration
	markerDelay time.Duration
	deletes     *Scheduler
	markers     *Scheduler

	tracer     trace.Tracer
	operations metric.Int64Counter
	failures   metric.Int64Counter
	itemsGauge metric.Int64Gauge
}

func NewController(store storage.ItemStore, gen generator, opts Options) *Controller {
	if opts.DeleteDelay <= 0 {
		opts.DeleteDelay = DefaultDelay
	}
	if opts.MarkerDelay <= 0 {
		opts.MarkerDelay = DefaultDelay
	}
	if opts.Logger == nil {
		opts.Logger = pantrytracker.NewNoOpOperationLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracenoop.NewTracerProvider().Tracer(pantrytracker.TracerNameController)
	}
	if opts.Meter == nil {
		opts.Meter = metricnoop.NewMeterProvider().Meter(pantrytracker.TracerNameController)
	}

	operations, _ := opts.Meter.Int64Counter("inventory_operations_total",
		metric.WithDescription("Total number of inventory operations started"))
	failures, _ := opts.Meter.Int64Counter("inventory_operations_failed_total",
		metric.WithDescription("Total number of inventory operations that failed"))
	itemsGauge, _ := opts.Meter.Int64Gauge("inventory_items_count",
		metric.WithDescription("Number of records returned by the last refresh"))

	c := &Controller{
		state:       newState(),
		store:       store,
		generator:   gen,
		logger:      opts.Logger,
		deleteDelay: opts.DeleteDelay,
		markerDelay: opts.MarkerDelay,
		tracer:      opts.Tracer,
		operations:  operations,
		failures:    failures,
		itemsGauge:  itemsGauge,
	}
	c.deletes = NewScheduler(&c.mu)
	c.markers = NewScheduler(&c.mu)
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Refresh rebuilds the snapshot from a full read of the store.
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.run(ctx, "Refresh", "", func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		return c.refresh(ctx, st)
	})
}

// Add creates name with quantity 1 or increments it. Imported records keep their quantity.
func (c *Controller) Add(ctx context.Context, name string) (State, error) {
	if name == "" {
		return c.State(), ErrEmptyName
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelDelete(name)
	return c.run(ctx, "Add", name, func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		rec, ok, err := c.store.Get(ctx, name)
		if err != nil {
			return err
		}
		entry.Before = recordPtr(rec, ok)

		switch {
		case !ok:
			rec = storage.Record{Quantity: 1}
		case rec.IsImported:
			slog.Info("CONTROLLER: Imported item keeps its quantity", "item", name)
		default:
			rec.Quantity++
		}
		if !ok || !rec.IsImported {
			if err := c.store.Put(ctx, name, rec); err != nil {
				return err
			}
			entry.After = &rec
		}

		if err := c.refresh(ctx, st); err != nil {
			return err
		}
		c.mark(st, name, MarkerPopUp)
		return nil
	})
}

// Remove decrements name. The last unit, or an imported item, is hidden from
// the snapshot at once and deleted from the store after the delete delay
// unless a later operation on name cancels it.
func (c *Controller) Remove(ctx context.Context, name string) (State, error) {
	if name == "" {
		return c.State(), ErrEmptyName
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.run(ctx, "Remove", name, func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		rec, ok, err := c.store.Get(ctx, name)
		if err != nil {
			return err
		}
		entry.Before = recordPtr(rec, ok)

		if !ok {
			return c.refresh(ctx, st)
		}

		if rec.Quantity <= 1 || rec.IsImported {
			st.Pending[name] = Pending{
				Kind:  PendingDelete,
				Item:  storage.Item{Name: name, Quantity: rec.Quantity, IsImported: rec.IsImported},
				Since: time.Now(),
			}
			c.markers.Cancel(name)
			st.Markers[name] = MarkerPopAway

			taskCtx := context.WithoutCancel(ctx)
			c.deletes.Schedule(name, c.deleteDelay, func() { c.deleteScheduled(taskCtx, name) })
			entry.Scheduled = true
			return nil
		}

		rec.Quantity--
		if err := c.store.Put(ctx, name, rec); err != nil {
			return err
		}
		entry.After = &rec
		return c.refresh(ctx, st)
	})
}

// Increment adds one unit to an existing, non-imported item.
func (c *Controller) Increment(ctx context.Context, name string) (State, error) {
	if name == "" {
		return c.State(), ErrEmptyName
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelDelete(name)
	return c.run(ctx, "Increment", name, func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		rec, ok, err := c.store.Get(ctx, name)
		if err != nil {
			return err
		}
		entry.Before = recordPtr(rec, ok)

		if ok && !rec.IsImported {
			rec.Quantity++
			if err := c.store.Put(ctx, name, rec); err != nil {
				return err
			}
			entry.After = &rec
		}
		return c.refresh(ctx, st)
	})
}

// RemoveAll deletes every record concurrently and refreshes once all deletes
// have returned. Deletes that succeeded stay deleted when another fails.
func (c *Controller) RemoveAll(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deletes.CancelAll()
	c.markers.CancelAll()
	// cancelled deletes stop hiding their items
	for name, p := range c.state.Pending {
		if p.Kind == PendingDelete {
			delete(c.state.Pending, name)
		}
	}
	clear(c.state.Markers)
	return c.run(ctx, "RemoveAll", "", func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		items, err := c.store.List(ctx)
		if err != nil {
			return err
		}

		var (
			g       errgroup.Group
			mu      sync.Mutex
			deleted = make([]string, 0, len(items))
		)
		for _, it := range items {
			g.Go(func() error {
				if err := c.store.Delete(ctx, it.Name); err != nil {
					return err
				}
				mu.Lock()
				deleted = append(deleted, it.Name)
				mu.Unlock()
				return nil
			})
		}
		err = g.Wait()
		entry.Deleted = deleted
		if err != nil {
			return err
		}

		clear(st.Pending)
		clear(st.Markers)
		return c.refresh(ctx, st)
	})
}

// AddImported records an ingredient from a recipe. A new key is created as
// imported with quantity 1; an existing manual item is flagged imported and
// incremented; an already imported item is left as is. The item is shown as a
// pending import until the next refresh confirms it.
func (c *Controller) AddImported(ctx context.Context, ingredient string) (State, error) {
	if ingredient == "" {
		return c.State(), ErrEmptyName
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.addImported(ctx, ingredient)
}

func (c *Controller) addImported(ctx context.Context, name string) (State, error) {
	if strings.TrimSpace(name) == "" {
		return c.state.clone(), ErrEmptyName
	}
	c.cancelDelete(name)
	return c.run(ctx, "AddImported", name, func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		rec, ok, err := c.store.Get(ctx, name)
		if err != nil {
			return err
		}
		entry.Before = recordPtr(rec, ok)

		if !ok || !rec.IsImported {
			if ok {
				rec.Quantity++
			} else {
				rec.Quantity = 1
			}
			rec.IsImported = true
			if err := c.store.Put(ctx, name, rec); err != nil {
				return err
			}
			entry.After = &rec
		}

		st.Pending[name] = Pending{
			Kind:  PendingImport,
			Item:  storage.Item{Name: name, Quantity: rec.Quantity, IsImported: true},
			Since: time.Now(),
		}
		c.mark(st, name, MarkerPopUp)
		return nil
	})
}

// Generate asks the completion provider for a recipe and keeps the text in
// the state. A failed completion leaves recipe.ErrorPlaceholder as the recipe.
func (c *Controller) Generate(ctx context.Context, query string) State {
	ctx, span := c.tracer.Start(ctx, "Controller.Generate", trace.WithAttributes(
		attribute.String("recipe.query", query),
	))
	defer span.End()

	text := c.generator.Generate(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = query
	c.state.Recipe = text
	return c.state.clone()
}

// ImportRecipe adds every ingredient parsed from the current recipe as an
// imported item, then refreshes once. It returns the ingredients that were
// stored. A failing ingredient does not stop the rest.
func (c *Controller) ImportRecipe(ctx context.Context) ([]string, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(c.state.Recipe) == "" {
		slog.Warn("CONTROLLER: No recipe available to import")
		return nil, c.state.clone(), ErrNoRecipe
	}

	ingredients, err := recipe.ParseIngredients(c.state.Recipe)
	if err != nil {
		slog.Warn("CONTROLLER: No ingredients found in the recipe", "query", c.state.Query)
		c.logOperation(pantrytracker.OperationLog{
			ID:        uuid.NewString(),
			Operation: "ImportRecipe",
			Timestamp: time.Now(),
			Error:     err.Error(),
		})
		return nil, c.state.clone(), err
	}

	imported := make([]string, 0, len(ingredients))
	var errs []error
	for _, ing := range ingredients {
		if _, err := c.addImported(ctx, ing); err != nil {
			errs = append(errs, err)
			continue
		}
		imported = append(imported, ing)
	}

	st, err := c.run(ctx, "Refresh", "", func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		return c.refresh(ctx, st)
	})
	if err != nil {
		errs = append(errs, err)
	}

	slog.Info("CONTROLLER: Ingredients imported", "count", len(imported), "failed", len(ingredients)-len(imported))
	return imported, st, errors.Join(errs...)
}

// Wait blocks until every scheduled delete and marker clear has finished.
func (c *Controller) Wait() {
	c.deletes.Wait()
	c.markers.Wait()
}

// Close drops pending marker clears and waits for scheduled deletes to run.
func (c *Controller) Close() {
	c.mu.Lock()
	c.markers.CancelAll()
	c.mu.Unlock()

	c.Wait()
}

type opFunc func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error

// run applies fn to a working copy of the state and commits it only on
// success. It must be called with c.mu held.
func (c *Controller) run(ctx context.Context, op, name string, fn opFunc) (State, error) {
	ctx, span := c.tracer.Start(ctx, "Controller."+op, trace.WithAttributes(
		attribute.String("item.name", name),
	))
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("operation", op))
	c.operations.Add(ctx, 1, attrs)

	entry := pantrytracker.OperationLog{
		ID:        uuid.NewString(),
		Operation: op,
		Item:      name,
		Timestamp: time.Now(),
	}

	next := c.state.clone()
	if err := fn(ctx, &next, &entry); err != nil {
		c.failures.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, op+" failed")
		span.RecordError(err)

		entry.Error = err.Error()
		c.logOperation(entry)
		slog.Error("CONTROLLER: Operation failed", "operation", op, "item", name, "error", err)

		if name == "" {
			return c.state.clone(), fmt.Errorf("%s: %w", strings.ToLower(op), err)
		}
		return c.state.clone(), fmt.Errorf("%s %q: %w", strings.ToLower(op), name, err)
	}

	c.state = next
	c.logOperation(entry)
	return c.state.clone(), nil
}

func (c *Controller) refresh(ctx context.Context, st *State) error {
	items, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch inventory: %w", err)
	}
	st.reconcile(items, time.Now())
	c.itemsGauge.Record(ctx, int64(len(items)))
	return nil
}

// deleteScheduled runs as a Scheduler task, so c.mu is already held.
func (c *Controller) deleteScheduled(ctx context.Context, name string) {
	_, err := c.run(ctx, "Delete", name, func(ctx context.Context, st *State, entry *pantrytracker.OperationLog) error {
		if err := c.store.Delete(ctx, name); err != nil {
			return err
		}
		entry.Deleted = []string{name}
		delete(st.Markers, name)
		return c.refresh(ctx, st)
	})
	if err != nil {
		// the record is still stored, so stop hiding it
		if p, ok := c.state.Pending[name]; ok && p.Kind == PendingDelete {
			delete(c.state.Pending, name)
		}
		delete(c.state.Markers, name)
	}
}

// cancelDelete aborts a scheduled delete for name and un-hides the item. A
// pending delete without a task behind it is dropped as well.
func (c *Controller) cancelDelete(name string) {
	if c.deletes.Cancel(name) {
		slog.Info("CONTROLLER: Cancelled pending delete", "item", name)
	}
	if p, ok := c.state.Pending[name]; ok && p.Kind == PendingDelete {
		delete(c.state.Pending, name)
	}
	if c.state.Markers[name] == MarkerPopAway {
		delete(c.state.Markers, name)
	}
}

func (c *Controller) mark(st *State, name string, m Marker) {
	st.Markers[name] = m
	c.markers.Schedule(name, c.markerDelay, func() {
		if c.state.Markers[name] == m {
			delete(c.state.Markers, name)
		}
	})
}

func (c *Controller) logOperation(entry pantrytracker.OperationLog) {
	if err := c.logger.LogOperation(entry); err != nil {
		slog.Error("CONTROLLER: Failed to log operation", "operation", entry.Operation, "error", err)
	}
}

func recordPtr(rec storage.Record, ok bool) *storage.Record {
	if !ok {
		return nil
	}
	return &rec
}
