package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/internal/metrics"
)

// LatestCache fronts a Records store with a Redis copy of each class's latest
// record. Every insert bumps a per-class generation and drops the cached copy;
// a reader only fills the cache if the generation it saw before reading the
// store is still current, so a slow reader cannot put back a superseded record.
type LatestCache struct {
	next   Records
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewLatestCache wraps next. A non-positive ttl falls back to ten minutes.
func NewLatestCache(next Records, client *redis.Client, ttl time.Duration) *LatestCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LatestCache{next: next, client: client, ttl: ttl, prefix: "attendance:"}
}

func (c *LatestCache) key(classID string) string    { return c.prefix + "latest:" + classID }
func (c *LatestCache) genKey(classID string) string { return c.prefix + "gen:" + classID }

var errGenerationMoved = errors.New("generation moved")

// InsertRecord writes through to the store, then invalidates the class.
func (c *LatestCache) InsertRecord(ctx context.Context, rec Record) (string, error) {
	id, err := c.next.InsertRecord(ctx, rec)
	if err != nil {
		return "", err
	}
	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, c.genKey(rec.ClassID))
		p.Del(ctx, c.key(rec.ClassID))
		return nil
	})
	if err != nil {
		log.Printf("latest cache: invalidate %s failed: %v", rec.ClassID, err)
	}
	return id, nil
}

// LatestRecord serves the cached copy when present, otherwise reads the store
// and fills the cache unless an insert happened meanwhile.
func (c *LatestCache) LatestRecord(ctx context.Context, classID string) (Record, error) {
	raw, err := c.client.Get(ctx, c.key(classID)).Bytes()
	switch {
	case err == nil:
		var rec Record
		if jerr := json.Unmarshal(raw, &rec); jerr == nil {
			metrics.ObserveCache("hit")
			return rec, nil
		}
		metrics.ObserveCache("error")
	case errors.Is(err, redis.Nil):
		metrics.ObserveCache("miss")
	default:
		metrics.ObserveCache("error")
		log.Printf("latest cache: read %s failed: %v", classID, err)
	}

	gen, genErr := c.generation(ctx, c.client, classID)

	rec, err := c.next.LatestRecord(ctx, classID)
	if err != nil {
		return Record{}, err
	}
	if genErr != nil {
		return rec, nil
	}
	if err := c.fill(ctx, classID, gen, rec); err != nil && !errors.Is(err, errGenerationMoved) {
		log.Printf("latest cache: write %s failed: %v", classID, err)
	}
	return rec, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *LatestCache) generation(ctx context.Context, cmd getter, classID string) (int64, error) {
	gen, err := cmd.Get(ctx, c.genKey(classID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// fill stores rec only while the class generation still equals seen. WATCH
// aborts the transaction if an insert bumps the generation before EXEC.
func (c *LatestCache) fill(ctx context.Context, classID string, seen int64, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	genKey := c.genKey(classID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx, classID)
		if err != nil {
			return err
		}
		if cur != seen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key(classID), payload, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errGenerationMoved
	}
	return err
}
