package database

import (
	"encoding/json"
	"fmt"

	"github.com/quizparty-games/quizparty/internal/byteutil"
	"github.com/quizparty-games/quizparty/internal/cache"
	"github.com/quizparty-games/quizparty/internal/database"
	"github.com/quizparty-games/quizparty/internal/database/results/model"
	bolt "go.etcd.io/bbolt"
)

const prefix = "results"

var ErrNotFound = fmt.Errorf("not found")

func New(db *database.DB, cache cache.Cache) *DB {
	return &DB{sDB: db, cache: cache}
}

type DB struct {
	sDB *database.DB

	cache cache.Cache
}

// Add appends the results of one completed room, keyed by completion time
// so the bucket reads back in chronological order.
func (db *DB) Add(results []model.Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := db.sDB.DB.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer tx.Rollback() // nolint

	b := tx.Bucket([]byte(prefix))
	if b == nil {
		bs, err := tx.CreateBucket([]byte(prefix))
		if err != nil {
			return fmt.Errorf("can not create bucket: %w", err)
		}
		b = bs
	}

	bytes, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	key := append(byteutil.EncodeInt64ToBytes(results[0].CompletedAt.UnixNano()), []byte(results[0].RoomID)...)
	if err := b.Put(key, bytes); err != nil {
		return fmt.Errorf("put to bucket error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	db.cache.Add(results[0].RoomID, results)

	return nil
}

func (db *DB) FetchByRoomID(roomID string) ([]model.Result, error) {
	if cached, ok := db.cache.Get(roomID); ok {
		if results, ok := cached.([]model.Result); ok {
			return results, nil
		}
	}

	var found []model.Result
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix))
		if b == nil {
			return ErrNotFound
		}

		return b.ForEach(func(k, v []byte) error {
			var results []model.Result
			if err := json.Unmarshal(v, &results); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			if len(results) > 0 && results[0].RoomID == roomID {
				found = results
			}
			return nil
		})
	}); err != nil {
		return nil, err
	}

	if found == nil {
		return nil, ErrNotFound
	}

	db.cache.Add(roomID, found)

	return found, nil
}
