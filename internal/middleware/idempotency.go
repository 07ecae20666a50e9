package middleware

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/local-services-marketplace/internal/config"
	"github.com/iliyamo/local-services-marketplace/internal/errs"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	idempotencyLockTTL = 30 * time.Second
	maxIdempotencyKey  = 255
)

// Idempotency stores the first successful response to a request carrying
// an Idempotency-Key header and replays it for repeats by the same
// account.  A repeat arriving while the first is still running gets
// Conflict.  Requests without the header pass through.
func Idempotency(cfg config.IdempotencyConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(IdempotencyHeader)
			if raw == "" {
				return next(c)
			}
			if len(raw) > maxIdempotencyKey {
				return errs.Validation("Invalid input: Idempotency-Key is too long",
					[]errs.FieldError{{Field: IdempotencyHeader, Error: "must not exceed 255 characters"}})
			}

			ctx := c.Request().Context()
			key := idempotencyKey(cfg.Prefix, c, raw)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					c.Response().Header().Set(ReplayedHeader, "true")
					return replay(c, status, hdr, body)
				}
			} else if !errors.Is(err, redis.Nil) {
				GetLogger(c).Warn().Err(err).Msg("idempotency lookup failed")
				return next(c)
			}

			lock := key + ":lock"
			acquired, err := rdb.SetNX(ctx, lock, "1", idempotencyLockTTL).Result()
			if err != nil {
				GetLogger(c).Warn().Err(err).Msg("idempotency lock failed")
				return next(c)
			}
			if !acquired {
				return errs.New(errs.KindConflict, "A request with this Idempotency-Key is already in progress")
			}
			defer rdb.Del(context.WithoutCancel(ctx), lock)

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}
			if cw.status < 200 || cw.status >= 300 {
				return nil
			}
			payload, err := encodePayload(cw.status, snapshotHeader(c.Response().Header()), cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err(); err != nil {
				GetLogger(c).Warn().Err(err).Msg("idempotency store failed")
			}
			return nil
		}
	}
}

func idempotencyKey(prefix string, c echo.Context, raw string) string {
	sum := sha1.Sum([]byte(c.Request().Method + " " + c.Path() + " " + raw))
	return fmt.Sprintf("%s:%s:%x", prefix, userKey(c), sum[:])
}
