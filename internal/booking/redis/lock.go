package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis holds short-lived slot locks taken while a confirmed payment is
// being turned into a booking row. Locks expire on their own; there is no
// unlock-on-crash path to maintain.
type Redis struct {
	Client  *redis.Client
	lockTTL time.Duration
}

func NewRedis(client *redis.Client, lockTTL time.Duration) *Redis {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &Redis{Client: client, lockTTL: lockTTL}
}

func slotKey(venueID, date, slotID string) string {
	return fmt.Sprintf("slot_lock:%s:%s:%s", venueID, date, slotID)
}

// CheckSlotAvailability checks if a slot is free (not locked) without
// locking it.
func (r *Redis) CheckSlotAvailability(venueID, date, slotID string) (bool, error) {
	_, err := r.Client.Get(context.Background(), slotKey(venueID, date, slotID)).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// LockSlot takes the lock for one slot on one date. Returns false when the
// slot is already held by another booking attempt.
func (r *Redis) LockSlot(venueID, date, slotID, owner string) (bool, error) {
	key := slotKey(venueID, date, slotID)
	ok, err := r.Client.SetNX(context.Background(), key, owner, r.lockTTL).Result()
	return ok, err
}

// UnlockSlot releases the lock if owner still holds it.
func (r *Redis) UnlockSlot(venueID, date, slotID, owner string) error {
	ctx := context.Background()
	key := slotKey(venueID, date, slotID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released
	}
	if err != nil {
		return err
	}
	if val == owner {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
