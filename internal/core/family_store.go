// Package core persists the genome family in block storage and serves its
// individuals.
package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	blockcore "orchard/internal/block/core"
	"orchard/pkg/genome"
)

// Default record location.
const (
	DefaultBlock  blockcore.ID = 1
	DefaultOffset              = 0
)

// Operation names reported to metrics and tracers.
const (
	OpEnsureValid = "ensure_valid"
	OpRegenerate  = "regenerate"
	OpGet         = "get_family"
	OpIndividual  = "get_individual"
)

// FamilyStore loads, validates and regenerates the family record held at a
// fixed block offset. Regeneration is serialized by an internal mutex; a new
// family is visible only once its single patch has been committed.
type FamilyStore struct {
	store  blockcore.Store
	block  blockcore.ID
	offset int

	mu     sync.Mutex
	random genome.RandomSource

	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// NewFamilyStore binds a FamilyStore to store. Without WithRandomSource the
// generator is seeded from the clock.
func NewFamilyStore(store blockcore.Store, opts ...Option) *FamilyStore {
	s := &FamilyStore{
		store:   store,
		block:   DefaultBlock,
		offset:  DefaultOffset,
		clock:   ClockFunc(nil),
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.random == nil {
		seed := uint64(s.clock.Now().UnixNano())
		s.random = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
	return s
}

// Block returns the block id and offset of the record.
func (s *FamilyStore) Block() (blockcore.ID, int) { return s.block, s.offset }

// EnsureValid returns the stored family, regenerating and persisting a new
// one when the block is empty or its header does not validate. regenerated
// reports whether a write took place.
func (s *FamilyStore) EnsureValid(ctx context.Context) (family genome.Family, regenerated bool, err error) {
	err = s.observe(ctx, OpEnsureValid, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		f, loadErr := s.load(ctx)
		if loadErr == nil {
			family = f
			return nil
		}
		var verr *genome.ValidationError
		if !errors.As(loadErr, &verr) {
			return loadErr
		}
		s.logger.Warn("genome record invalid, regenerating", "reason", string(verr.Reason), "block", uint32(s.block))
		f, genErr := s.regenerateLocked(ctx)
		if genErr != nil {
			return genErr
		}
		family, regenerated = f, true
		return nil
	})
	return family, regenerated, err
}

// Regenerate unconditionally draws and persists a new family.
func (s *FamilyStore) Regenerate(ctx context.Context) (genome.Family, error) {
	var family genome.Family
	err := s.observe(ctx, OpRegenerate, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		f, err := s.regenerateLocked(ctx)
		family = f
		return err
	})
	return family, err
}

// Get reads the stored family without repairing it. A missing or
// header-mismatched record yields a *genome.ValidationError.
func (s *FamilyStore) Get(ctx context.Context) (genome.Family, error) {
	var family genome.Family
	err := s.observe(ctx, OpGet, func(ctx context.Context) error {
		f, err := s.load(ctx)
		family = f
		return err
	})
	return family, err
}

// Individual reads member i and its expression without repairing the record.
// An out of range index is rejected before storage is touched.
func (s *FamilyStore) Individual(ctx context.Context, i int) (genome.Individual, error) {
	var ind genome.Individual
	err := s.observe(ctx, OpIndividual, func(ctx context.Context) error {
		if err := genome.CheckIndex(i); err != nil {
			return err
		}
		f, err := s.load(ctx)
		if err != nil {
			return err
		}
		ind, err = f.Individual(i)
		return err
	})
	return ind, err
}

// locate rejects a record placement that does not fit inside a block.
func (s *FamilyStore) locate() error {
	if err := blockcore.CheckPatch(s.offset, genome.RecordSize); err != nil {
		return &StorageError{Op: "locate", Block: s.block, Err: err}
	}
	return nil
}

func (s *FamilyStore) load(ctx context.Context) (genome.Family, error) {
	if err := s.locate(); err != nil {
		return genome.Family{}, err
	}
	data, ok, err := s.store.GetData(ctx, s.block)
	if err != nil {
		return genome.Family{}, &StorageError{Op: "read", Block: s.block, Err: err}
	}
	if !ok {
		return genome.Family{}, &genome.ValidationError{Reason: genome.ReasonAbsent}
	}
	if s.offset > len(data) {
		return genome.Family{}, &genome.ValidationError{Reason: genome.ReasonCorrupt, Detail: fmt.Sprintf("block holds %d bytes, record starts at %d", len(data), s.offset)}
	}
	return genome.Decode(data[s.offset:])
}

func (s *FamilyStore) regenerateLocked(ctx context.Context) (genome.Family, error) {
	if err := s.locate(); err != nil {
		return genome.Family{}, err
	}
	f, err := genome.NewFamily(s.random)
	if err != nil {
		return genome.Family{}, fmt.Errorf("generate family: %w", err)
	}
	if err := s.store.PatchData(ctx, s.block, genome.Encode(f), s.offset); err != nil {
		return genome.Family{}, &StorageError{Op: "write", Block: s.block, Err: err}
	}
	s.logger.Info("genome regenerated", "family", f.Name.String(), "block", uint32(s.block), "offset", s.offset)
	return f, nil
}

func (s *FamilyStore) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, s.clock.Now().Sub(start))
	if err != nil {
		s.logger.Debug("genome operation failed", "operation", op, "error", err)
	}
	return err
}
