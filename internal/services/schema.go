package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrCacheMiss is returned by a SchemaCache without an entry.
var ErrCacheMiss = errors.New("cache miss")

// SchemaSource loads field attributes for a scope.
type SchemaSource interface {
	Load(ctx context.Context, scope models.SchemaScope) ([]models.FieldAttribute, error)
}

// SchemaCache stores encoded attribute lists.
type SchemaCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DBSchemaSource reads the field_attributes table
type DBSchemaSource struct {
	db Querier
}

// NewDBSchemaSource creates a database-backed schema source
func NewDBSchemaSource(db Querier) *DBSchemaSource {
	return &DBSchemaSource{db: db}
}

// Load returns the attributes of scope in display order
func (s *DBSchemaSource) Load(ctx context.Context, scope models.SchemaScope) ([]models.FieldAttribute, error) {
	query := `
		SELECT name, label_en, type, required, is_flex_field, choices
		FROM field_attributes
		WHERE scope = $1
		ORDER BY position
	`

	rows, err := s.db.Query(ctx, query, string(scope))
	if err != nil {
		return nil, fmt.Errorf("query field attributes: %w", err)
	}
	defer rows.Close()

	attrs := []models.FieldAttribute{}
	for rows.Next() {
		var (
			a       models.FieldAttribute
			typ     string
			choices []byte
		)
		if err := rows.Scan(&a.Name, &a.LabelEn, &typ, &a.Required, &a.IsFlexField, &choices); err != nil {
			return nil, fmt.Errorf("scan field attribute: %w", err)
		}
		a.Type = models.FieldType(typ)
		if len(choices) > 0 {
			if err := json.Unmarshal(choices, &a.Choices); err != nil {
				return nil, fmt.Errorf("decode choices of %s: %w", a.Name, err)
			}
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// FileSchemaSource reads a YAML document with "individual" and "household" lists.
type FileSchemaSource struct {
	path string
}

// NewFileSchemaSource creates a file-backed schema source
func NewFileSchemaSource(path string) *FileSchemaSource {
	return &FileSchemaSource{path: path}
}

// Load parses the file on every call; SchemaService caches the result.
func (s *FileSchemaSource) Load(_ context.Context, scope models.SchemaScope) ([]models.FieldAttribute, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return ParseSchemaYAML(data, scope)
}

// ParseSchemaYAML extracts the attribute list of scope from a YAML document.
func ParseSchemaYAML(data []byte, scope models.SchemaScope) ([]models.FieldAttribute, error) {
	var doc map[models.SchemaScope][]models.FieldAttribute
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}
	attrs, ok := doc[scope]
	if !ok {
		return nil, fmt.Errorf("schema yaml has no %q section", scope)
	}
	return attrs, nil
}

// RedisSchemaCache is a SchemaCache backed by redis
type RedisSchemaCache struct {
	client *redis.Client
}

// NewRedisSchemaCache wraps a redis client
func NewRedisSchemaCache(client *redis.Client) *RedisSchemaCache {
	return &RedisSchemaCache{client: client}
}

func (c *RedisSchemaCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisSchemaCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

type schemaEntry struct {
	schema   *fields.Schema
	loadedAt time.Time
}

// SchemaService serves read-only field attribute schemas shared by all
// sessions. Lookups go memory, then cache, then source. Cache failures are
// logged and bypassed.
type SchemaService struct {
	source SchemaSource
	cache  SchemaCache
	ttl    time.Duration
	logger *zap.SugaredLogger
	now    func() time.Time

	mu      sync.RWMutex
	schemas map[models.SchemaScope]schemaEntry
}

// NewSchemaService creates a schema service. cache may be nil.
func NewSchemaService(source SchemaSource, cache SchemaCache, ttl time.Duration, logger *zap.SugaredLogger) *SchemaService {
	return &SchemaService{
		source:  source,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		schemas: make(map[models.SchemaScope]schemaEntry),
	}
}

// Schema returns the indexed schema of scope.
func (s *SchemaService) Schema(ctx context.Context, scope models.SchemaScope) (*fields.Schema, error) {
	if !scope.Valid() {
		return nil, ErrInvalidScope
	}

	s.mu.RLock()
	entry, ok := s.schemas[scope]
	s.mu.RUnlock()
	if ok && s.now().Sub(entry.loadedAt) < s.ttl {
		return entry.schema, nil
	}

	attrs, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	schema := fields.NewSchema(attrs)

	s.mu.Lock()
	s.schemas[scope] = schemaEntry{schema: schema, loadedAt: s.now()}
	s.mu.Unlock()
	return schema, nil
}

// Attributes returns the attribute list of scope.
func (s *SchemaService) Attributes(ctx context.Context, scope models.SchemaScope) ([]models.FieldAttribute, error) {
	schema, err := s.Schema(ctx, scope)
	if err != nil {
		return nil, err
	}
	return schema.Attributes(), nil
}

func (s *SchemaService) load(ctx context.Context, scope models.SchemaScope) ([]models.FieldAttribute, error) {
	key := "field_attributes:" + string(scope)

	if s.cache != nil {
		b, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var attrs []models.FieldAttribute
			if err := json.Unmarshal(b, &attrs); err == nil {
				return attrs, nil
			}
			s.logger.Warnw("Discarding undecodable schema cache entry", "scope", scope)
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warnw("Schema cache read failed", "scope", scope, "error", err)
		}
	}

	attrs, err := s.source.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load %s schema: %w", scope, err)
	}

	if s.cache != nil {
		if b, err := json.Marshal(attrs); err == nil {
			if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
				s.logger.Warnw("Schema cache write failed", "scope", scope, "error", err)
			}
		}
	}

	s.logger.Infow("Field schema loaded", "scope", scope, "attributes", len(attrs))
	return attrs, nil
}
