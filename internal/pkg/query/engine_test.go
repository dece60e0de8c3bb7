package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memStore 測試用記憶體集合：支援等值、$in、$regex、$or、$and，
// 第一個排序鍵、skip/limit 與包含式投影
type memStore struct {
	mu       sync.Mutex
	docs     []bson.M
	findErr  error
	countErr error
	filters  []any
}

func (m *memStore) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.filters = append(m.filters, filter)
	m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []bson.M
	for _, d := range m.docs {
		if match(d, filter.(bson.M)) {
			out = append(out, d)
		}
	}
	var skip, limit int64
	if len(opts) > 0 && opts[0] != nil {
		o := opts[0]
		if sd, ok := o.Sort.(bson.D); ok && len(sd) > 0 {
			key, dir := sd[0].Key, sd[0].Value.(int)
			sort.SliceStable(out, func(i, j int) bool {
				a, b := fmt.Sprint(out[i][key]), fmt.Sprint(out[j][key])
				if dir < 0 {
					return a > b
				}
				return a < b
			})
		}
		if o.Skip != nil {
			skip = *o.Skip
		}
		if o.Limit != nil {
			limit = *o.Limit
		}
	}
	if skip >= int64(len(out)) {
		out = nil
	} else {
		out = out[skip:]
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}

	var proj bson.D
	if len(opts) > 0 && opts[0] != nil {
		proj, _ = opts[0].Projection.(bson.D)
	}
	docs := make([]interface{}, 0, len(out))
	for _, d := range out {
		docs = append(docs, projectDoc(d, proj))
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (m *memStore) CountDocuments(ctx context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, d := range m.docs {
		if match(d, filter.(bson.M)) {
			n++
		}
	}
	return n, nil
}

func match(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		switch key {
		case "$or":
			ok := false
			for _, sub := range want.(bson.A) {
				if match(doc, sub.(bson.M)) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		case "$and":
			for _, sub := range want.(bson.A) {
				if !match(doc, sub.(bson.M)) {
					return false
				}
			}
		default:
			cond, isOp := want.(bson.M)
			if !isOp {
				if doc[key] != want {
					return false
				}
				continue
			}
			if in, ok := cond["$in"].(bson.A); ok {
				found := false
				for _, v := range in {
					if doc[key] == v {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			if re, ok := cond["$regex"].(string); ok {
				if !regexp.MustCompile("(?i)" + re).MatchString(fmt.Sprint(doc[key])) {
					return false
				}
			}
		}
	}
	return true
}

type record struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

func seed(n int, prefix string) []bson.M {
	docs := make([]bson.M, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, bson.M{"_id": primitive.NewObjectID(), "name": fmt.Sprintf("%s %02d", prefix, i)})
	}
	return docs
}

func TestExecuteSearchAndPaginate(t *testing.T) {
	store := &memStore{docs: append(seed(12, "Ann"), seed(7, "Bob")...)}
	engine := New[record](store)

	res, err := engine.Execute(context.Background(), Options{
		SearchTerm: "ann",
		Sort:       "name",
		Page:       ptr(2),
		Limit:      ptr(5),
	}, []string{"name"})
	require.NoError(t, err)

	assert.Equal(t, Meta{Page: 2, Limit: 5, Total: 12, TotalPages: 3}, res.Meta)
	require.Len(t, res.Data, 5)
	for i, r := range res.Data {
		assert.Equal(t, fmt.Sprintf("Ann %02d", i+6), r.Name)
	}

	// find 與 count 使用相同條件
	require.Len(t, store.filters, 1)
}

func TestExecuteEmptyResult(t *testing.T) {
	engine := New[record](&memStore{})

	res, err := engine.Execute(context.Background(), Options{}, []string{"name"})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, Meta{Page: 1, Limit: DefaultLimit, Total: 0, TotalPages: 0}, res.Meta)
}

func TestExecuteStoreErrors(t *testing.T) {
	boom := errors.New("count failed")
	_, err := New[record](&memStore{docs: seed(3, "x"), countErr: boom}).
		Execute(context.Background(), Options{}, nil)
	assert.ErrorIs(t, err, boom)

	boom = errors.New("find failed")
	_, err = New[record](&memStore{docs: seed(3, "x"), findErr: boom}).
		Execute(context.Background(), Options{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New[record](&memStore{docs: seed(3, "x")}).Execute(ctx, Options{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteInvalidOptions(t *testing.T) {
	store := &memStore{docs: seed(3, "x")}
	_, err := New[record](store, WithSchema(Schema{"name": String})).
		Execute(context.Background(), Options{Filters: map[string]any{"secret": "1"}}, nil)
	require.Error(t, err)
	// 驗證失敗時不會碰到資料庫
	assert.Empty(t, store.filters)
}

func TestExecutePopulate(t *testing.T) {
	alice := bson.M{"_id": primitive.NewObjectID(), "username": "alice", "name": "Alice"}
	users := &memStore{docs: []bson.M{alice}}

	missing := primitive.NewObjectID()
	roles := &memStore{docs: []bson.M{
		{"_id": primitive.NewObjectID(), "name": "a", "createdBy": alice["_id"]},
		{"_id": primitive.NewObjectID(), "name": "b", "createdBy": missing},
		{"_id": primitive.NewObjectID(), "name": "c"},
	}}

	engine := New[bson.M](roles, WithRelations(Relation{Path: "createdBy", Store: users, Select: "username"}))
	res, err := engine.Execute(context.Background(), Options{
		Sort:     "name",
		Populate: []PopulateSpec{{Path: "createdBy"}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.Data, 3)

	populated, ok := res.Data[0]["createdBy"].(bson.M)
	require.True(t, ok, "got %T", res.Data[0]["createdBy"])
	assert.Equal(t, "alice", populated["username"])

	// 參照不存在時為 null，沒有參照的欄位維持原樣
	v, exists := res.Data[1]["createdBy"]
	assert.True(t, exists)
	assert.Nil(t, v)
	assert.NotContains(t, res.Data[2], "createdBy")

	// 每個關聯只查一次
	require.Len(t, users.filters, 1)
	assert.Equal(t, bson.M{"_id": bson.M{"$in": bson.A{alice["_id"], missing}}}, users.filters[0])
}

// projectDoc 只處理包含式投影，_id 一律保留
func projectDoc(doc bson.M, proj bson.D) bson.M {
	keep := map[string]bool{}
	for _, e := range proj {
		if e.Value == 1 {
			keep[e.Key] = true
		}
	}
	if len(keep) == 0 {
		return doc
	}
	out := bson.M{"_id": doc["_id"]}
	for k, v := range doc {
		if keep[k] {
			out[k] = v
		}
	}
	return out
}

func TestExecutePopulateWithFields(t *testing.T) {
	alice := bson.M{"_id": primitive.NewObjectID(), "username": "alice"}
	users := &memStore{docs: []bson.M{alice}}
	roles := &memStore{docs: []bson.M{
		{"_id": primitive.NewObjectID(), "name": "a", "alias": "A", "createdBy": alice["_id"]},
	}}

	engine := New[bson.M](roles, WithRelations(Relation{Path: "createdBy", Store: users, Select: "username"}))
	res, err := engine.Execute(context.Background(), Options{
		Fields:   "name",
		Populate: []PopulateSpec{{Path: "createdBy"}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)

	// 投影沒列出 createdBy 也要能展開，其餘欄位仍被排除
	populated, ok := res.Data[0]["createdBy"].(bson.M)
	require.True(t, ok, "got %T", res.Data[0]["createdBy"])
	assert.Equal(t, "alice", populated["username"])
	assert.Equal(t, "a", res.Data[0]["name"])
	assert.NotContains(t, res.Data[0], "alias")
}
