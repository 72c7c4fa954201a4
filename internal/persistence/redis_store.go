package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"maintitrack/internal/models"
)

// State bundles the four persisted stores. A nil slice means the store was
// absent from the collaborator and the caller should fall back to defaults.
type State struct {
	Items      []*models.InventoryItem  `json:"items"`
	Loans      []*models.LoanRecord     `json:"loans"`
	History    []*models.TransactionLog `json:"history"`
	Categories []string                 `json:"categories"`
}

// SnapshotStore is the key-value persistence collaborator: the whole state is
// loaded once on startup and written back after every mutation.
type SnapshotStore interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

const (
	keyInventory  = "maintitrack:inventory"
	keyLoans      = "maintitrack:loans"
	keyHistory    = "maintitrack:history"
	keyCategories = "maintitrack:categories"
)

type redisSnapshotStore struct {
	client *redis.Client
}

// NewRedisSnapshotStore creates a snapshot store backed by the given Redis
// client. Snapshots have no TTL; they live until overwritten.
func NewRedisSnapshotStore(client *redis.Client) SnapshotStore {
	return &redisSnapshotStore{client: client}
}

func (r *redisSnapshotStore) Load(ctx context.Context) (*State, error) {
	state := &State{}

	if err := loadKey(ctx, r.client, keyInventory, &state.Items); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, r.client, keyLoans, &state.Loans); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, r.client, keyHistory, &state.History); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, r.client, keyCategories, &state.Categories); err != nil {
		return nil, err
	}

	return state, nil
}

func loadKey(ctx context.Context, client *redis.Client, key string, dst interface{}) error {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil // store absent, caller applies defaults
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

func (r *redisSnapshotStore) Save(ctx context.Context, state *State) error {
	payloads := map[string]interface{}{
		keyInventory:  state.Items,
		keyLoans:      state.Loans,
		keyHistory:    state.History,
		keyCategories: state.Categories,
	}

	pipe := r.client.TxPipeline()
	for key, value := range payloads {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		pipe.Set(ctx, key, data, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

const keyInsights = "maintitrack:insights"

// InsightCache caches the most recent insight report so the dashboard does
// not hit the text-generation collaborator on every request.
type InsightCache interface {
	Get(ctx context.Context) (*models.InsightReport, error)
	Set(ctx context.Context, report *models.InsightReport, ttl time.Duration) error
}

type redisInsightCache struct {
	client *redis.Client
}

// NewRedisInsightCache creates an insight cache backed by the given Redis client.
func NewRedisInsightCache(client *redis.Client) InsightCache {
	return &redisInsightCache{client: client}
}

func (r *redisInsightCache) Get(ctx context.Context) (*models.InsightReport, error) {
	data, err := r.client.Get(ctx, keyInsights).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var report models.InsightReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *redisInsightCache) Set(ctx context.Context, report *models.InsightReport, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyInsights, data, ttl).Err()
}
