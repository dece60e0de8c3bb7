package query

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// Store 查詢所需的最小集合介面，*mongo.Collection 即滿足
type Store interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Relation 可展開的參照欄位
type Relation struct {
	Path  string
	Store Store
	// Select 呼叫端未指定時使用的預設欄位（空白分隔）
	Select string
}

type Meta struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type Result[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

type settings struct {
	relations map[string]Relation
	schema    Schema
}

type Option func(*settings)

func WithRelations(relations ...Relation) Option {
	return func(s *settings) {
		for _, r := range relations {
			s.relations[r.Path] = r
		}
	}
}

func WithSchema(schema Schema) Option {
	return func(s *settings) { s.schema = schema }
}

// Engine 綁定單一集合的列表查詢。可共用，每次 Execute 的狀態都是獨立的。
type Engine[T any] struct {
	store     Store
	relations map[string]Relation
	schema    Schema
}

func New[T any](store Store, opts ...Option) *Engine[T] {
	s := settings{relations: map[string]Relation{}}
	for _, o := range opts {
		o(&s)
	}
	return &Engine[T]{store: store, relations: s.relations, schema: s.schema}
}

// Build 套用各 Stage，分頁最後處理
func (e *Engine[T]) Build(opts Options, searchable []string) (State, error) {
	return Apply(NewState(),
		Search(opts.SearchTerm, searchable),
		Filter(opts.Filters, e.schema),
		AdvancedFilter(opts.Advanced),
		SortBy(opts.Sort),
		Project(opts.Fields),
		PopulateWith(opts.Populate, e.relations),
		Paginate(opts.Page, opts.Limit),
	)
}

// Execute 同時執行分頁查詢與 count，兩者使用相同條件。
// 任一失敗時另一個會被取消，錯誤原樣回傳。
func (e *Engine[T]) Execute(ctx context.Context, opts Options, searchable []string) (*Result[T], error) {
	state, err := e.Build(opts, searchable)
	if err != nil {
		return nil, err
	}

	var (
		docs  []bson.M
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := e.store.Find(gctx, state.Filter, state.FindOptions())
		if err != nil {
			return err
		}
		return cur.All(gctx, &docs)
	})
	g.Go(func() error {
		n, err := e.store.CountDocuments(gctx, state.Filter)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := e.populate(ctx, state.Populate, docs); err != nil {
		return nil, err
	}

	data := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := decode(doc, &item); err != nil {
			return nil, err
		}
		data = append(data, item)
	}

	return &Result[T]{
		Data: data,
		Meta: Meta{
			Page:       state.Page,
			Limit:      state.Limit,
			Total:      total,
			TotalPages: TotalPages(total, state.Limit),
		},
	}, nil
}

// populate 每個關聯只查一次（$in），找不到的參照換成 null
func (e *Engine[T]) populate(ctx context.Context, specs []PopulateSpec, docs []bson.M) error {
	for _, spec := range specs {
		rel := e.relations[spec.Path]
		ids := collectIDs(docs, spec.Path)
		if len(ids) == 0 {
			continue
		}

		sel := spec.Select
		if sel == "" {
			sel = rel.Select
		}
		cur, err := rel.Store.Find(ctx,
			bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(selectProjection(sel)),
		)
		if err != nil {
			return err
		}
		var related []bson.M
		if err := cur.All(ctx, &related); err != nil {
			return err
		}

		byID := make(map[primitive.ObjectID]bson.M, len(related))
		for _, r := range related {
			if id, ok := r["_id"].(primitive.ObjectID); ok {
				byID[id] = r
			}
		}
		for _, doc := range docs {
			id, ok := doc[spec.Path].(primitive.ObjectID)
			if !ok {
				continue
			}
			if r, found := byID[id]; found {
				doc[spec.Path] = r
			} else {
				doc[spec.Path] = nil
			}
		}
	}
	return nil
}

func collectIDs(docs []bson.M, path string) bson.A {
	seen := map[primitive.ObjectID]struct{}{}
	ids := bson.A{}
	for _, doc := range docs {
		id, ok := doc[path].(primitive.ObjectID)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// selectProjection 空白分隔；空字串時排除 RevisionField
func selectProjection(sel string) bson.D {
	fields := strings.Fields(sel)
	if len(fields) == 0 {
		return bson.D{{Key: RevisionField, Value: 0}}
	}
	proj := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "-") {
			proj = append(proj, bson.E{Key: f[1:], Value: 0})
			continue
		}
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}

func decode(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
