package ownership

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
)

const (
	keyPrefix  = "seedr:owners:"
	defaultTTL = 7 * 24 * time.Hour

	connectTimeout = 5 * time.Second
	syncTimeout    = 3 * time.Second
)

// releaseScript implements spec §4.2's atomic release: remove the member,
// read the resulting cardinality, and either delete the now-empty key or
// refresh its TTL. KEYS[1] is the owner set key, ARGV[1] the member being
// removed, ARGV[2] the TTL in seconds to apply on a non-empty set.
var releaseScript = redis.NewScript(`
local removed = redis.call("SREM", KEYS[1], ARGV[1])
local card = redis.call("SCARD", KEYS[1])
if card == 0 then
	redis.call("DEL", KEYS[1])
	return 1
end
redis.call("EXPIRE", KEYS[1], ARGV[2])
return 0
`)

// RedisRegistry is the default multi-instance Registry: a remote set per
// info-hash, members are instance tags, TTL-refreshed on every claim and
// release (spec §4.2, §9 "Ownership registry").
type RedisRegistry struct {
	log *logrus.Entry
	rdb *redis.Client
	tag string
	ttl time.Duration
}

// NewRedis builds a RedisRegistry. connString is a standard redis:// URL;
// instanceTag identifies this process among its peers and must match
// [A-Za-z0-9_-]+ (validated at config load, see pkg/config).
func NewRedis(connString, instanceTag string) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(connString)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = connectTimeout
	opts.ReadTimeout = syncTimeout
	opts.WriteTimeout = syncTimeout

	return &RedisRegistry{
		log: logger.GetLogger("ownership"),
		rdb: redis.NewClient(opts),
		tag: instanceTag,
		ttl: defaultTTL,
	}, nil
}

func ownerKey(infoHash string) string {
	return keyPrefix + infoHash
}

func (r *RedisRegistry) ClaimOwnership(ctx context.Context, infoHash string) error {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	key := ownerKey(infoHash)
	if err := r.rdb.SAdd(ctx, key, r.tag).Err(); err != nil {
		return err
	}
	return r.rdb.Expire(ctx, key, r.ttl).Err()
}

func (r *RedisRegistry) IsOwnedByMe(ctx context.Context, infoHash string) Result {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	ok, err := r.rdb.SIsMember(ctx, ownerKey(infoHash), r.tag).Result()
	if err != nil {
		r.log.WithError(err).Warnf("ownership check failed for %s, treating as unknown", infoHash)
		return Unknown
	}
	if ok {
		return True
	}
	return False
}

func (r *RedisRegistry) ReleaseOwnership(ctx context.Context, infoHash string) Result {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	ttlSeconds := int(r.ttl / time.Second)
	wasLast, err := releaseScript.Run(ctx, r.rdb, []string{ownerKey(infoHash)}, r.tag, ttlSeconds).Int()
	if err != nil {
		r.log.WithError(err).Warnf("release failed for %s, treating as unknown", infoHash)
		return Unknown
	}
	if wasLast == 1 {
		return True
	}
	return False
}

func (r *RedisRegistry) TestConnection(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return err.Error()
	}
	return ""
}

// Close releases the underlying connection pool.
func (r *RedisRegistry) Close() error {
	return r.rdb.Close()
}

var _ Registry = (*RedisRegistry)(nil)
