package store

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"github.com/hyrx/studio-backend/internal/config"
	"github.com/hyrx/studio-backend/internal/model/contact"
)

// SupabaseStore writes submission rows through the Supabase REST client.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

// NewSupabaseStore connects to the hosted store.
func NewSupabaseStore(cfg config.StoreConfig) (*SupabaseStore, error) {
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseStore{client: client, table: cfg.Table}, nil
}

// InsertSubmission inserts one row with its initial "pending" status.
func (s *SupabaseStore) InsertSubmission(ctx context.Context, rec contact.Record) error {
	_ = ctx // the REST client does not take a context

	_, _, err := s.client.From(s.table).
		Insert(rec, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// Close implements ContactStore. The REST client holds no connection
// state to release.
func (s *SupabaseStore) Close() error {
	return nil
}

var _ ContactStore = (*SupabaseStore)(nil)
var _ ContactStore = (*MemoryStore)(nil)
