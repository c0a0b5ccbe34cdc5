package repository

import (
	"context"
	"fmt"
	"time"

	"schooldesk_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const existsCacheTTL = 30 * time.Second

// RefRepository answers the validator's existence checks. Positive results
// are cached in Redis with a short TTL so repeated validations of the same
// stream/teacher don't hit MySQL every time; negative results are never
// cached, a just-created entity must be visible immediately.
type RefRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewRefRepository(db *gorm.DB, redisClient *redis.Client) *RefRepository {
	return &RefRepository{db: db, redis: redisClient}
}

// WithTx returns a repository bound to the given transaction.
func (r *RefRepository) WithTx(tx *gorm.DB) *RefRepository {
	return &RefRepository{db: tx, redis: r.redis}
}

func (r *RefRepository) StreamExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, "stream", &models.Stream{}, id)
}

func (r *RefRepository) SubjectExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, "subject", &models.Subject{}, id)
}

func (r *RefRepository) TeacherExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, "teacher", &models.Teacher{}, id)
}

func (r *RefRepository) exists(ctx context.Context, kind string, model interface{}, id uint) (bool, error) {
	cacheKey := fmt.Sprintf("exists:%s:%d", kind, id)

	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil && val == "1" {
			return true, nil
		} else if err != nil && err != redis.Nil {
			logrus.WithError(err).WithField("key", cacheKey).Warn("existence cache read failed, falling back to database")
		}
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}

	if count > 0 && r.redis != nil {
		if err := r.redis.Set(ctx, cacheKey, "1", existsCacheTTL).Err(); err != nil {
			logrus.WithError(err).WithField("key", cacheKey).Warn("existence cache write failed")
		}
	}

	return count > 0, nil
}
