package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clinic-queue/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// nextTokenScript is a package-level Lua script. The Redis client switches to
// EVALSHA after the first call, so the script body is only sent once.
//
// INCR and the TTL stamp must be one atomic step: if the key expired between
// two separate commands, a counter could be reborn at 1 while tokens for the
// day already exist.
var nextTokenScript = redis.NewScript(`
	local n = redis.call('INCR', KEYS[1])
	if n == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return n
`)

const (
	// Redis key prefix for per-(doctor, date) token counters
	TokenCounterKeyPrefix = "queue:token:"

	// Counters are primed in batches at startup
	primeBatchSize = 500
)

// TokenCounterService hands out sequential token numbers per (doctor, date)
// with a single atomic increment-and-fetch in Redis. The appointments table
// carries a unique index on (doctor_id, date, token_number) as the backstop:
// if the counter ever disagrees with the ledger, the insert fails and the
// caller resyncs here before retrying.
type TokenCounterService struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	apptRepo    repository.AppointmentRepository

	// Per-counter mutex so concurrent resyncs of the same key serialize.
	counterMu sync.Map // map[string]*sync.Mutex
}

func NewTokenCounterService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, apptRepo repository.AppointmentRepository) *TokenCounterService {
	return &TokenCounterService{
		db:          db,
		redisClient: redisClient,
		log:         log,
		apptRepo:    apptRepo,
	}
}

// Next allocates the next token number for the doctor and date key.
func (s *TokenCounterService) Next(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error) {
	key := counterKey(doctorID, dateKey)
	ttl := counterTTL(dateKey)

	n, err := nextTokenScript.Run(ctx, s.redisClient, []string{key}, ttl.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("next token for %s: %w", key, err)
	}
	return n, nil
}

// Resync forces the counter back to the highest token the ledger has
// recorded for this (doctor, date). Called after an insert failed with a
// duplicate token, and after a storage failure orphaned an allocation, so
// the dense 1..N sequence is preserved.
func (s *TokenCounterService) Resync(ctx context.Context, doctorID uuid.UUID, dateKey string) error {
	key := counterKey(doctorID, dateKey)

	mu := s.keyMutex(key)
	mu.Lock()
	defer mu.Unlock()

	max, err := s.apptRepo.MaxTokenByDoctorAndDate(s.db.WithContext(ctx), doctorID, dateKey)
	if err != nil {
		return fmt.Errorf("max token for %s: %w", key, err)
	}

	if err := s.redisClient.Set(ctx, key, max, counterTTL(dateKey)).Err(); err != nil {
		return fmt.Errorf("resync counter %s: %w", key, err)
	}

	s.log.Debugf("Resynced token counter %s to %d", key, max)
	return nil
}

// PrimeToday seeds today's counters from the ledger. Run before accepting
// traffic so a restarted process with a flushed Redis cannot re-issue token
// numbers that already exist.
func (s *TokenCounterService) PrimeToday(ctx context.Context, dateKey string) error {
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	maxima, err := s.apptRepo.TokenMaxima(s.db.WithContext(ctx), dateKey)
	if err != nil {
		return fmt.Errorf("token maxima for %s: %w", dateKey, err)
	}
	if len(maxima) == 0 {
		s.log.Info("No token counters to prime")
		return nil
	}

	ttl := counterTTL(dateKey)
	for start := 0; start < len(maxima); start += primeBatchSize {
		end := start + primeBatchSize
		if end > len(maxima) {
			end = len(maxima)
		}

		// New pipeline per batch keeps memory flat for large clinics.
		pipe := s.redisClient.TxPipeline()
		for _, m := range maxima[start:end] {
			pipe.Set(ctx, counterKey(m.DoctorID, dateKey), m.MaxToken, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("prime counters batch at %d: %w", start, err)
		}
	}

	s.log.Infof("Primed %d token counters for %s", len(maxima), dateKey)
	return nil
}

func (s *TokenCounterService) keyMutex(key string) *sync.Mutex {
	mu, _ := s.counterMu.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func counterKey(doctorID uuid.UUID, dateKey string) string {
	return fmt.Sprintf("%s%s:%s", TokenCounterKeyPrefix, doctorID, dateKey)
}

// counterTTL keeps a counter alive until 24 hours past its calendar day, so
// late bookings for today still see it while stale days age out on their own.
func counterTTL(dateKey string) time.Duration {
	day, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return 48 * time.Hour
	}
	ttl := time.Until(day.AddDate(0, 0, 2))
	if ttl <= 0 {
		return time.Minute
	}
	return ttl
}
