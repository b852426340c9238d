package housekeeping

import (
	"context"
	"log"
	"time"

	"confroom-backend/internal/config"
	"confroom-backend/internal/database"
	"confroom-backend/internal/stats"
)

// Janitor runs the periodic sweeps: demoting lapsed premium accounts and
// purging messages past the retention window. Each sweep works a bounded
// batch; whatever is left over is picked up on the next tick.
type Janitor struct {
	log   *log.Logger
	db    database.ConfRoomRepository
	stats stats.StatsProvider

	interval     time.Duration
	retention    time.Duration
	premiumBatch int
	messageBatch int

	stop chan struct{}
	done chan struct{}
}

func NewJanitor(logger *log.Logger, db database.ConfRoomRepository, sp stats.StatsProvider, cfg *config.Config) *Janitor {
	return &Janitor{
		log:          logger,
		db:           db,
		stats:        sp,
		interval:     cfg.SweepInterval,
		retention:    cfg.MessageRetention,
		premiumBatch: cfg.PremiumSweepBatch,
		messageBatch: cfg.MessageSweepBatch,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (j *Janitor) Run() {
	ticker := time.NewTicker(j.interval)
	defer func() {
		ticker.Stop()
		close(j.done)
	}()

	for {
		select {
		case <-ticker.C:
			j.sweep(time.Now().UTC())
		case <-j.stop:
			return
		}
	}
}

func (j *Janitor) Shutdown(ctx context.Context) error {
	close(j.stop)
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sweep runs both jobs; a failure in one never blocks the other.
func (j *Janitor) sweep(now time.Time) {
	if n, err := j.CheckPremiumExpiration(now); err != nil {
		j.log.Println("premium expiration sweep:", err)
	} else if n > 0 {
		j.log.Printf("demoted %d expired premium accounts", n)
	}

	if n, err := j.DeleteOldMessages(now); err != nil {
		j.log.Println("old message sweep:", err)
	} else if n > 0 {
		j.log.Printf("deleted %d expired messages", n)
	}
}

// CheckPremiumExpiration demotes a bounded batch of accounts whose premium
// entitlement expired before now.
func (j *Janitor) CheckPremiumExpiration(now time.Time) (int, error) {
	n, err := j.db.ExpirePremium(now, j.premiumBatch)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		j.stats.Add(stats.PremiumExpired, n)
	}

	return n, nil
}

// DeleteOldMessages purges a bounded batch of messages older than the
// retention window. Safe to re-run; an interrupted batch is finished by the
// next tick.
func (j *Janitor) DeleteOldMessages(now time.Time) (int, error) {
	n, err := j.db.DeleteMessagesBefore(now.Add(-j.retention), j.messageBatch)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		j.stats.Add(stats.MessagesDeleted, n)
	}

	return n, nil
}
