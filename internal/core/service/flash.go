package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
	"github.com/sameboat/jobsheet/internal/pkg/metrics"
)

// FlashStore keeps at most one pending flash per session. Reading takes
// the entry out of the store in the same step.
type FlashStore struct {
	store  ports.KVStore
	ttl    time.Duration
	logger zerolog.Logger
}

var _ ports.FlashStore = (*FlashStore)(nil)

func NewFlashStore(store ports.KVStore, ttl time.Duration, logger zerolog.Logger) *FlashStore {
	return &FlashStore{store: store, ttl: ttl, logger: logger}
}

// Set queues flash for the next page of sessionID, replacing any pending one.
func (f *FlashStore) Set(ctx context.Context, sessionID string, flash domain.Flash) error {
	b, err := json.Marshal(flash.Normalize())
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	if err := f.store.Set(ctx, sessionKey(sessionID, keyFlash), string(b), f.ttl); err != nil {
		countStoreError("set")
		return fmt.Errorf("store flash: %w", err)
	}
	metrics.FlashesTotal.WithLabelValues("set").Inc()
	return nil
}

// Read returns the pending flash and removes it. A malformed entry is
// dropped and reads as nil.
func (f *FlashStore) Read(ctx context.Context, sessionID string) (*domain.Flash, error) {
	raw, ok, err := f.store.Take(ctx, sessionKey(sessionID, keyFlash))
	if err != nil {
		countStoreError("take")
		return nil, fmt.Errorf("take flash: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var flash domain.Flash
	if err := json.Unmarshal([]byte(raw), &flash); err != nil {
		f.logger.Warn().Err(err).Str("session", sessionID).Msg("discarding malformed flash")
		return nil, nil
	}
	flash = flash.Normalize()
	metrics.FlashesTotal.WithLabelValues("delivered").Inc()
	return &flash, nil
}
