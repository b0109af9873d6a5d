package qarecord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/qacache/internal/db"
	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/domain/record"
)

// store is the consumer interface for QA records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string) (int, error)
}

// EmbedSource selects which side of a record is vectorized on insert.
type EmbedSource string

// Embed sources.
const (
	EmbedAnswer   EmbedSource = "answer"
	EmbedQuestion EmbedSource = "question"
)

// Config holds index settings.
type Config struct {
	Dimensions  int
	HNSWM       int
	HNSWEF      int
	EmbedSource EmbedSource
}

// Repo stores QA records as hashes under one vector index and answers nearest-neighbor queries.
// Backend and embedding failures are returned wrapped in domain.ErrStoreUnavailable.
type Repo struct {
	store    store
	docEmb   domain.Embedder
	queryEmb domain.Embedder
	cfg      Config

	idMu   sync.Mutex
	lastID int64
	now    func() time.Time
}

// New creates a record repository. docEmb vectorizes stored text, queryEmb vectorizes questions;
// they differ only by instruction prefix for models that expect one.
func New(s store, docEmb, queryEmb domain.Embedder, cfg Config) *Repo {
	if cfg.EmbedSource == "" {
		cfg.EmbedSource = EmbedAnswer
	}
	return &Repo{store: s, docEmb: docEmb, queryEmb: queryEmb, cfg: cfg, now: time.Now}
}

// EnsureIndex creates the record index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("%w: check index: %w", domain.ErrStoreUnavailable, err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.cfg)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("%w: create index: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Insert embeds and stores rec under a fresh id. Identical records are stored independently.
func (r *Repo) Insert(ctx context.Context, rec record.Record) (string, error) {
	source := rec.Text()
	if r.cfg.EmbedSource == EmbedQuestion {
		source = rec.Question()
	}

	emb, err := r.docEmb.Embed(ctx, source)
	if err != nil {
		return "", fmt.Errorf("%w: embed record: %w", domain.ErrStoreUnavailable, err)
	}

	id := r.nextID()
	key := recordKey(id)
	if err := r.store.HSet(ctx, key, toHash(rec, emb.Embedding)); err != nil {
		return "", fmt.Errorf("%w: hset %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	return id, nil
}

// Query returns up to k records nearest to question, best first. An empty index yields no matches.
func (r *Repo) Query(ctx context.Context, question string, k int) ([]record.Match, error) {
	if k <= 0 {
		k = 1
	}

	emb, err := r.queryEmb.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrStoreUnavailable, err)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		VectorField:  vectorAlias,
		Vector:       emb.Embedding,
		K:            k,
		ReturnFields: []string{fieldText, fieldQuestion, fieldTimestamp},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %w", domain.ErrStoreUnavailable, err)
	}

	matches := make([]record.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		rec, ok := fromHash(idFromKey(e.Key), e.Fields)
		if !ok {
			continue
		}
		matches = append(matches, record.NewMatch(rec, e.Score))
	}
	return matches, nil
}

// Get returns a stored record by id.
func (r *Repo) Get(ctx context.Context, id string) (record.Record, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return record.Record{}, domain.ErrNotFound
	}
	h, err := r.store.HGetAll(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return record.Record{}, domain.ErrNotFound
		}
		return record.Record{}, fmt.Errorf("%w: hgetall: %w", domain.ErrStoreUnavailable, err)
	}
	rec, ok := fromHash(id, h)
	if !ok {
		return record.Record{}, fmt.Errorf("record %s: %w", id, domain.ErrInvalidRecord)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

// nextID returns a nanosecond clock reading bumped past the previous id.
func (r *Repo) nextID() string {
	r.idMu.Lock()
	defer r.idMu.Unlock()

	id := r.now().UnixNano()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return strconv.FormatInt(id, 10)
}
