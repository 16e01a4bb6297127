package checkout

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var eventBucket = []byte("webhook_events")

// EventDedupe remembers processed webhook event ids so retried
// deliveries never settle an order twice. Backed by a local bbolt
// file, so the guarantee survives restarts.
type EventDedupe struct {
	db *bolt.DB
}

// NewEventDedupe opens (or creates) the dedupe store at path.
func NewEventDedupe(path string) (*EventDedupe, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open dedupe store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create dedupe bucket")
	}
	return &EventDedupe{db: db}, nil
}

// Seen records the event id and reports whether it was already there.
// The check and the write happen in one transaction.
func (d *EventDedupe) Seen(eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("empty event id")
	}
	seen := false
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventBucket)
		if b.Get([]byte(eventID)) != nil {
			seen = true
			return nil
		}
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], uint64(time.Now().Unix()))
		return b.Put([]byte(eventID), ts[:])
	})
	return seen, err
}

// Sweep drops entries older than maxAge and returns how many went.
func (d *EventDedupe) Sweep(maxAge time.Duration) (int, error) {
	cutoff := uint64(time.Now().Add(-maxAge).Unix())
	removed := 0
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventBucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) != 8 {
				continue
			}
			if binary.BigEndian.Uint64(v) < cutoff {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

func (d *EventDedupe) Close() error {
	return d.db.Close()
}
