// Package store implements the reconciling store: the single source of truth
// for clinic data. Writes go to the remote gateway first and fall back to the
// local mirror when the backend is unreachable; reads come from an in-memory
// snapshot produced by merging remote and mirrored rows by record id.
package store

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/gateway"
	"github.com/vitacasa-care/community-service/internal/mirror"
	"github.com/vitacasa-care/community-service/internal/telemetry"
)

// Mutation actions, also used as audit and event verbs.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notifier receives the user-visible outcome of every mutation and load.
type Notifier interface {
	Info(clinicID, message string)
	Warn(clinicID, message string)
	Error(clinicID, message string)
}

// Publisher emits change events after successful remote mutations.
type Publisher interface {
	PublishChange(ctx context.Context, clinicID string, table collection.Name, action, recordID string)
}

// AuditSink records who did what. Best effort; failures only log.
type AuditSink interface {
	Record(ctx context.Context, clinicID string, table collection.Name, action, recordID string)
}

// Store owns all mutable clinic state. Snapshots are replaced atomically
// under one lock; there is no other locking discipline because nothing else
// holds collection state.
type Store struct {
	gw       gateway.Gateway
	mirror   *mirror.Store
	notifier Notifier

	publisher Publisher
	audit     AuditSink
	metrics   *telemetry.Metrics

	mu       sync.RWMutex
	data     map[string][]collection.Record
	clinics  map[string]struct{}
	breakers map[string]*breaker

	now func() time.Time
}

func New(gw gateway.Gateway, m *mirror.Store, n Notifier) *Store {
	return &Store{
		gw:       gw,
		mirror:   m,
		notifier: n,
		data:     make(map[string][]collection.Record),
		clinics:  make(map[string]struct{}),
		breakers: make(map[string]*breaker),
		now:      time.Now,
	}
}

// SetPublisher wires the change-event publisher. Call before serving.
func (s *Store) SetPublisher(p Publisher) { s.publisher = p }

// SetAudit wires the audit sink. Call before serving.
func (s *Store) SetAudit(a AuditSink) { s.audit = a }

// SetMetrics wires custom metrics. Call before serving.
func (s *Store) SetMetrics(m *telemetry.Metrics) { s.metrics = m }

func (s *Store) breakerFor(clinicID string, table collection.Name) *breaker {
	key := collection.Key(clinicID, table)
	s.mu.Lock()
	defer s.mu.Unlock()
	br, ok := s.breakers[key]
	if !ok {
		br = newBreaker(s.now)
		s.breakers[key] = br
	}
	return br
}

// BreakerState exposes the availability state of one collection, for the
// status endpoint and tests.
func (s *Store) BreakerState(clinicID string, table collection.Name) BreakerState {
	return s.breakerFor(clinicID, table).current()
}

// Clinics returns the clinics loaded in this process, for the refresher and
// the medication scanner.
func (s *Store) Clinics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.clinics))
	for c := range s.clinics {
		out = append(out, c)
	}
	return out
}

// Collection returns the current snapshot of a collection. The slice and its
// records are copies.
func (s *Store) Collection(clinicID string, table collection.Name) []collection.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.data[collection.Key(clinicID, table)]
	out := make([]collection.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// Get returns a single record from the snapshot by id.
func (s *Store) Get(clinicID string, table collection.Name, id string) (collection.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.data[collection.Key(clinicID, table)] {
		if r.ID() == id {
			return r.Clone(), true
		}
	}
	return nil, false
}

// Load fetches every collection for a clinic in parallel, merges each with
// the mirror by id (mirror wins on conflicting fields) and atomically
// replaces the in-memory snapshot. Collections whose fetch fails fall back
// to mirror contents; a cold start with nothing yields empty collections,
// never an error.
func (s *Store) Load(ctx context.Context, clinicID string) error {
	started := s.now()

	tables := collection.All()
	results := make([]loadResult, len(tables))

	var wg sync.WaitGroup
	for i, table := range tables {
		wg.Add(1)
		go func(i int, table collection.Name) {
			defer wg.Done()
			results[i] = s.loadOne(ctx, clinicID, table)
		}(i, table)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	var failed []string
	s.mu.Lock()
	for _, res := range results {
		s.data[collection.Key(clinicID, res.table)] = res.merged
		if res.failed {
			failed = append(failed, string(res.table))
		}
	}
	s.clinics[clinicID] = struct{}{}
	s.mu.Unlock()

	if len(failed) > 0 {
		s.notifier.Warn(clinicID, "backend unreachable, showing locally cached data for: "+strings.Join(failed, ", "))
	}
	if s.metrics != nil {
		s.metrics.RecordReload(ctx, clinicID, float64(s.now().Sub(started).Milliseconds()))
	}
	return nil
}

// LoadCollection refreshes a single collection, used where a screen re-fetches
// its own data independently of the full reload.
func (s *Store) LoadCollection(ctx context.Context, clinicID string, table collection.Name) error {
	res := s.loadOne(ctx, clinicID, table)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data[collection.Key(clinicID, table)] = res.merged
	s.clinics[clinicID] = struct{}{}
	s.mu.Unlock()

	if res.failed {
		s.notifier.Warn(clinicID, "backend unreachable, showing locally cached "+string(table))
	}
	return nil
}

type loadResult struct {
	table  collection.Name
	merged []collection.Record
	failed bool
}

func (s *Store) loadOne(ctx context.Context, clinicID string, table collection.Name) loadResult {
	mirrored := s.mirror.Get(table, clinicID)
	br := s.breakerFor(clinicID, table)
	if !br.allow() {
		return loadResult{table: table, merged: mirrored, failed: true}
	}

	remote, err := s.gw.List(ctx, clinicID, table)
	if err != nil {
		br.failure()
		s.recordBreaker(ctx, table)
		log.Printf("load %s for clinic %s failed, using mirror: %v", table, clinicID, err)
		return loadResult{table: table, merged: mirrored, failed: true}
	}
	br.success()

	merged := collection.MergeByID(remote, mirrored)
	// Write the merged view back so a later cold start sees remote rows too.
	if err := s.mirror.Replace(table, clinicID, merged); err != nil {
		log.Printf("failed to cache %s for clinic %s: %v", table, clinicID, err)
	}
	return loadResult{table: table, merged: merged}
}

// Create writes a new record. Gateway first when the breaker allows; on
// failure the record goes to the mirror only, a warning is surfaced, and the
// call still succeeds. Either way the clinic is fully reloaded afterwards.
func (s *Store) Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
	rec = rec.Clone()
	if rec.ID() == "" {
		rec["id"] = uuid.New().String()
	}
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = s.now().UTC().Format(time.RFC3339)
	}
	rec["clinic_id"] = clinicID

	br := s.breakerFor(clinicID, table)
	if br.allow() {
		created, err := s.gw.Insert(ctx, clinicID, table, rec)
		if err == nil {
			br.success()
			return s.finishRemote(ctx, clinicID, table, ActionCreated, created)
		}
		br.failure()
		s.recordBreaker(ctx, table)
		log.Printf("insert into %s failed, falling back to mirror: %v", table, err)
	}
	return s.finishFallback(ctx, clinicID, table, ActionCreated, rec)
}

// Update patches a record by id with spread-overwrite semantics.
func (s *Store) Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error) {
	br := s.breakerFor(clinicID, table)
	if br.allow() {
		updated, err := s.gw.Update(ctx, clinicID, table, id, patch)
		if err == nil {
			br.success()
			return s.finishRemote(ctx, clinicID, table, ActionUpdated, updated)
		}
		if err == gateway.ErrNotFound || err == gateway.ErrUnknownCollection {
			br.success()
			return nil, err
		}
		br.failure()
		s.recordBreaker(ctx, table)
		log.Printf("update %s/%s failed, falling back to mirror: %v", table, id, err)
	}

	shadow := patch.Clone()
	shadow["id"] = id
	return s.finishFallback(ctx, clinicID, table, ActionUpdated, shadow)
}

// Delete removes a record by id, mirror-only when the gateway is unavailable.
func (s *Store) Delete(ctx context.Context, clinicID string, table collection.Name, id string) error {
	br := s.breakerFor(clinicID, table)
	if br.allow() {
		err := s.gw.Delete(ctx, clinicID, table, id)
		if err == nil {
			br.success()
			if derr := s.mirror.Delete(table, clinicID, id); derr != nil && derr != mirror.ErrNotFound {
				log.Printf("failed to drop %s/%s from mirror: %v", table, id, derr)
			}
			s.afterMutation(ctx, clinicID, table, ActionDeleted, id, "remote")
			s.notifier.Info(clinicID, string(table)+" record deleted")
			return s.Load(ctx, clinicID)
		}
		if err == gateway.ErrNotFound || err == gateway.ErrUnknownCollection {
			br.success()
			return err
		}
		br.failure()
		s.recordBreaker(ctx, table)
		log.Printf("delete %s/%s failed, falling back to mirror: %v", table, id, err)
	}

	if err := s.mirror.Delete(table, clinicID, id); err != nil && err != mirror.ErrNotFound {
		s.notifier.Error(clinicID, "could not delete "+string(table)+" record")
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordMirrorFallback(ctx, string(table))
	}
	s.afterMutation(ctx, clinicID, table, ActionDeleted, id, "mirror")
	s.notifier.Warn(clinicID, string(table)+" record deleted locally only, backend unreachable")
	return s.Load(ctx, clinicID)
}

func (s *Store) finishRemote(ctx context.Context, clinicID string, table collection.Name, action string, rec collection.Record) (collection.Record, error) {
	if err := s.mirror.Put(table, clinicID, rec); err != nil {
		log.Printf("failed to cache %s/%s in mirror: %v", table, rec.ID(), err)
	}
	s.afterMutation(ctx, clinicID, table, action, rec.ID(), "remote")
	s.notifier.Info(clinicID, string(table)+" record "+action)
	if err := s.Load(ctx, clinicID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) finishFallback(ctx context.Context, clinicID string, table collection.Name, action string, rec collection.Record) (collection.Record, error) {
	if err := s.mirror.Put(table, clinicID, rec); err != nil {
		s.notifier.Error(clinicID, "could not save "+string(table)+" record")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordMirrorFallback(ctx, string(table))
	}
	s.afterMutation(ctx, clinicID, table, action, rec.ID(), "mirror")
	s.notifier.Warn(clinicID, string(table)+" record "+action+" locally only, backend unreachable")
	if err := s.Load(ctx, clinicID); err != nil {
		return nil, err
	}
	if merged, ok := s.Get(clinicID, table, rec.ID()); ok {
		return merged, nil
	}
	return rec, nil
}

func (s *Store) afterMutation(ctx context.Context, clinicID string, table collection.Name, action, recordID, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordMutation(ctx, string(table), action, outcome)
	}
	if s.publisher != nil && outcome == "remote" {
		s.publisher.PublishChange(ctx, clinicID, table, action, recordID)
	}
	if s.audit != nil && table != collection.AuditLogs {
		s.audit.Record(ctx, clinicID, table, action, recordID)
	}
}

func (s *Store) recordBreaker(ctx context.Context, table collection.Name) {
	if s.metrics != nil {
		s.metrics.RecordBreakerTransition(ctx, string(table), StateOpen.String())
	}
}

// StartRefresher reloads every loaded clinic on a fixed interval until ctx is
// cancelled.
func (s *Store) StartRefresher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, clinicID := range s.Clinics() {
					if err := s.Load(ctx, clinicID); err != nil {
						log.Printf("periodic reload for clinic %s: %v", clinicID, err)
					}
				}
			}
		}
	}()
}

// Reload satisfies the messaging subscriber: a change notification for a
// clinic triggers a full reload.
func (s *Store) Reload(ctx context.Context, clinicID string) error {
	return s.Load(ctx, clinicID)
}
