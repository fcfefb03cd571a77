package endpoint

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/kv"
	"github.com/kbukum/gokv/scan"
	"github.com/kbukum/gokv/server"
)

// Store is the read-only slice of kv.Commands served over HTTP.
type Store interface {
	ScanContinue(ctx context.Context, cursor scan.Cursor, args *scan.Args) (scan.KeyPage, error)
	HScanContinue(ctx context.Context, key string, cursor scan.Cursor, args *scan.Args) (scan.MapPage, error)
	HGet(ctx context.Context, key, field string) (string, bool, error)
	Type(ctx context.Context, key string) (string, error)
	PTTL(ctx context.Context, key string) (time.Duration, error)
}

var _ Store = (*kv.Commands)(nil)

// scanQuery is the query string of a scan step. An empty cursor starts a new
// scan.
type scanQuery struct {
	Cursor string `form:"cursor"`
	Match  string `form:"match"`
	Count  int64  `form:"count" binding:"gte=0,lte=10000"`
	Type   string `form:"type"`
}

func (q scanQuery) args() *scan.Args {
	return &scan.Args{Match: q.Match, Count: q.Count, Type: q.Type}
}

// Field is one hash entry in a scan response.
type Field struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// KeyInfo describes a single key.
type KeyInfo struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	TTLMs int64  `json:"ttl_ms"`
}

// RegisterKV mounts the key and hash routes on r:
//
//	GET /keys?cursor&match&count&type
//	GET /keys/:key
//	GET /hashes/:key?cursor&match&count
//	GET /hashes/:key/fields/:field
func RegisterKV(r gin.IRouter, store Store) {
	r.GET("/keys", ScanKeys(store))
	r.GET("/keys/:key", GetKey(store))
	r.GET("/hashes/:key", ScanHash(store))
	r.GET("/hashes/:key/fields/:field", GetField(store))
}

// ScanKeys runs one key-space scan step.
func ScanKeys(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindScan(c)
		if !ok {
			return
		}
		page, err := store.ScanContinue(c.Request.Context(), scan.Resume(q.Cursor), q.args())
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		keys := page.Keys
		if keys == nil {
			keys = []string{}
		}
		server.RespondOKWithMeta(c, keys, meta(page.Cursor, len(keys)))
	}
}

// ScanHash runs one scan step over the hash named in the path.
func ScanHash(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindScan(c)
		if !ok {
			return
		}
		if q.Type != "" {
			server.RespondWithError(c, errors.InvalidInput("type", "only recognized by key scans"))
			return
		}
		page, err := store.HScanContinue(c.Request.Context(), c.Param("key"), scan.Resume(q.Cursor), q.args())
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		fields := make([]Field, 0, len(page.Entries))
		for _, e := range page.Entries {
			fields = append(fields, Field{Field: e.Key, Value: e.Value})
		}
		server.RespondOKWithMeta(c, fields, meta(page.Cursor, len(fields)))
	}
}

// GetField returns one hash field. A missing field or hash is NOT_FOUND.
func GetField(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, field := c.Param("key"), c.Param("field")
		value, found, err := store.HGet(c.Request.Context(), key, field)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		if !found {
			server.RespondWithError(c, errors.NotFound("field", key+"/"+field))
			return
		}
		server.RespondOK(c, Field{Field: field, Value: value})
	}
}

// GetKey returns the type and remaining TTL of a key. A key without expiry
// reports ttl_ms -1.
func GetKey(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.Param("key")
		typ, err := store.Type(ctx, key)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		if typ == "none" {
			server.RespondWithError(c, errors.NotFound("key", key))
			return
		}
		ttl, err := store.PTTL(ctx, key)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		info := KeyInfo{Key: key, Type: typ, TTLMs: ttl.Milliseconds()}
		switch ttl {
		case kv.NoExpiry:
			info.TTLMs = -1
		case kv.KeyMissing:
			server.RespondWithError(c, errors.NotFound("key", key))
			return
		}
		server.RespondOK(c, info)
	}
}

func bindScan(c *gin.Context) (scanQuery, bool) {
	var q scanQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		server.RespondWithError(c, errors.InvalidInput("query", err.Error()))
		return q, false
	}
	return q, true
}

func meta(cursor scan.Cursor, n int) *server.Meta {
	return &server.Meta{Cursor: cursor.Token(), Finished: cursor.Finished(), Count: n}
}
