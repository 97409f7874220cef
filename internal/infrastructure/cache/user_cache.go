package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
	"github.com/medintegra/salud-ocupacional-api/pkg/config"
	"github.com/medintegra/salud-ocupacional-api/pkg/logger"
)

// NewClient inicializa el cliente Redis del caché de directorio.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("conectar a redis: %w", err)
	}
	return client, nil
}

var _ repository.UserRepository = (*UserCache)(nil)

// UserCache decora un UserRepository cacheando snapshots de actor por ID con
// TTL corto. Las escrituras pasan directo al repositorio interno e invalidan
// la entrada; las mutaciones protegidas no usan este decorador porque leen
// estado fresco dentro de su transacción.
type UserCache struct {
	inner repository.UserRepository
	rdb   *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewUserCache construye el decorador. ttl <= 0 usa 5 minutos.
func NewUserCache(inner repository.UserRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *UserCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserCache{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func userKey(id string) string {
	return "directorio:user:" + id
}

// GetByID devuelve el snapshot cacheado si existe; en fallo de Redis degrada
// al repositorio interno sin propagar el error.
func (c *UserCache) GetByID(ctx context.Context, id string) (*entity.User, error) {
	val, err := c.rdb.Get(ctx, userKey(id)).Result()
	if err == nil {
		var u entity.User
		if jerr := json.Unmarshal([]byte(val), &u); jerr == nil {
			return &u, nil
		}
		// Entrada corrupta: se descarta y se relee del directorio.
		c.rdb.Del(ctx, userKey(id))
	} else if err != redis.Nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("caché de directorio no disponible, leyendo directo")
	}

	u, err := c.inner.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if data, jerr := json.Marshal(u); jerr == nil {
		if serr := c.rdb.Set(ctx, userKey(id), data, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Str("user_id", id).Msg("no se pudo cachear el snapshot de usuario")
		}
	}
	return u, nil
}

func (c *UserCache) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.GetByEmail(ctx, email)
}

func (c *UserCache) ListByEnterprise(ctx context.Context, enterpriseID string, filter repository.ScopeFilter, limit, offset int) ([]*entity.User, error) {
	return c.inner.ListByEnterprise(ctx, enterpriseID, filter, limit, offset)
}

func (c *UserCache) Create(ctx context.Context, user *entity.User) error {
	return c.inner.Create(ctx, user)
}

// Update escribe en el directorio e invalida el snapshot. La invalidación es
// best-effort: el TTL corto acota la ventana de un snapshot obsoleto.
func (c *UserCache) Update(ctx context.Context, user *entity.User, expectedVersion int64) error {
	if err := c.inner.Update(ctx, user, expectedVersion); err != nil {
		return err
	}
	c.invalidate(ctx, user.ID)
	return nil
}

func (c *UserCache) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *UserCache) ReportingEdges(ctx context.Context, enterpriseID string) (map[string]string, error) {
	return c.inner.ReportingEdges(ctx, enterpriseID)
}

func (c *UserCache) invalidate(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, userKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("no se pudo invalidar el snapshot de usuario")
	}
}
