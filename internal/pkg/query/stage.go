package query

import (
	"fmt"
	"regexp"
	"strings"

	cErr "bastion/internal/pkg/error"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// State 累積中的查詢狀態。每個 Stage 都回傳新值，不修改傳入的 State。
type State struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.D
	Populate   []PopulateSpec
	Page       int64
	Limit      int64
}

// Stage 純函式：讀取目前狀態並回傳更新後的狀態
type Stage func(State) (State, error)

// NewState 空條件、預設分頁
func NewState() State {
	return State{Filter: bson.M{}, Page: DefaultPage, Limit: DefaultLimit}
}

// Apply 依序套用
func Apply(s State, stages ...Stage) (State, error) {
	var err error
	for _, stage := range stages {
		if s, err = stage(s); err != nil {
			return State{}, err
		}
	}
	return s, nil
}

func (s State) clone() State {
	out := s
	out.Filter = make(bson.M, len(s.Filter))
	for k, v := range s.Filter {
		out.Filter[k] = v
	}
	out.Sort = append(bson.D(nil), s.Sort...)
	out.Projection = append(bson.D(nil), s.Projection...)
	out.Populate = append([]PopulateSpec(nil), s.Populate...)
	return out
}

// Skip (page-1)*limit
func (s State) Skip() int64 {
	if s.Page <= 1 {
		return 0
	}
	return (s.Page - 1) * s.Limit
}

// FindOptions 轉為 driver 參數
func (s State) FindOptions() *options.FindOptions {
	opts := options.Find().SetSkip(s.Skip()).SetLimit(s.Limit)
	if len(s.Sort) > 0 {
		opts.SetSort(s.Sort)
	}
	if len(s.Projection) > 0 {
		opts.SetProjection(s.Projection)
	}
	return opts
}

// and 合併條件；鍵衝突時改以 $and 包起來，不覆蓋既有條件
func and(filter, clause bson.M) bson.M {
	if len(clause) == 0 {
		return filter
	}
	if len(filter) == 0 {
		out := make(bson.M, len(clause))
		for k, v := range clause {
			out[k] = v
		}
		return out
	}
	for k := range clause {
		if _, exists := filter[k]; exists {
			return bson.M{"$and": bson.A{filter, clause}}
		}
	}
	out := make(bson.M, len(filter)+len(clause))
	for k, v := range filter {
		out[k] = v
	}
	for k, v := range clause {
		out[k] = v
	}
	return out
}

// Search 對 fields 建立不分大小寫的 $or；term 或 fields 為空時不動
func Search(term string, fields []string) Stage {
	return func(s State) (State, error) {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" || len(fields) == 0 {
			return s, nil
		}
		pattern := regexp.QuoteMeta(trimmed)
		or := make(bson.A, 0, len(fields))
		for _, f := range fields {
			or = append(or, bson.M{f: bson.M{"$regex": pattern, "$options": "i"}})
		}
		out := s.clone()
		out.Filter = and(out.Filter, bson.M{"$or": or})
		return out, nil
	}
}

// Filter 非保留字的鍵轉為等值條件，與搜尋條件 AND。
// schema 非 nil 時未宣告的鍵直接拒絕，值依宣告型別轉換。
func Filter(filters map[string]any, schema Schema) Stage {
	return func(s State) (State, error) {
		clause := bson.M{}
		for key, value := range filters {
			if IsReserved(key) {
				continue
			}
			if key == "" || strings.HasPrefix(key, "$") {
				return State{}, cErr.ValidateQueryErr(fmt.Sprintf("invalid filter key %q", key))
			}
			if schema != nil {
				kind, ok := schema[key]
				if !ok {
					return State{}, cErr.ValidateQueryErr(fmt.Sprintf("unknown filter %q", key))
				}
				converted, err := kind.Coerce(value)
				if err != nil {
					return State{}, cErr.ValidateQueryErr(fmt.Sprintf("filter %q: %v", key, err)).WithCause(err)
				}
				value = converted
			}
			clause[key] = value
		}
		if len(clause) == 0 {
			return s, nil
		}
		out := s.clone()
		out.Filter = and(out.Filter, clause)
		return out, nil
	}
}

// AdvancedFilter 呼叫端自行組好的條件，原樣併入
func AdvancedFilter(predicate bson.M) Stage {
	return func(s State) (State, error) {
		if len(predicate) == 0 {
			return s, nil
		}
		out := s.clone()
		out.Filter = and(out.Filter, predicate)
		return out, nil
	}
}

// SortBy 逗號分隔，"-" 前綴為遞減；空字串使用 DefaultSort
func SortBy(spec string) Stage {
	return func(s State) (State, error) {
		keys := spec
		if strings.TrimSpace(keys) == "" {
			keys = DefaultSort
		}
		var sort bson.D
		seen := map[string]struct{}{}
		for _, part := range strings.Split(keys, ",") {
			part = strings.TrimSpace(part)
			dir := 1
			if strings.HasPrefix(part, "-") {
				dir = -1
				part = strings.TrimSpace(part[1:])
			}
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			sort = append(sort, bson.E{Key: part, Value: dir})
		}
		out := s.clone()
		out.Sort = sort
		return out, nil
	}
}

// Project 逗號分隔的欄位投影；"-" 前綴為排除。
// 空字串時排除 RevisionField。除 _id 外不可混用包含與排除。
func Project(fields string) Stage {
	return func(s State) (State, error) {
		out := s.clone()
		if strings.TrimSpace(fields) == "" {
			out.Projection = bson.D{{Key: RevisionField, Value: 0}}
			return out, nil
		}
		var proj bson.D
		include, exclude := false, false
		for _, part := range strings.Split(fields, ",") {
			part = strings.TrimSpace(part)
			val := 1
			if strings.HasPrefix(part, "-") {
				val = 0
				part = strings.TrimSpace(part[1:])
			}
			if part == "" {
				continue
			}
			if part != "_id" {
				if val == 1 {
					include = true
				} else {
					exclude = true
				}
			}
			proj = append(proj, bson.E{Key: part, Value: val})
		}
		if include && exclude {
			return State{}, cErr.ValidateQueryErr("fields cannot mix inclusion and exclusion")
		}
		out.Projection = proj
		return out, nil
	}
}

// PopulateWith 只接受 relations 中宣告的路徑，須在 Project 之後套用。
// 包含式投影會補上被展開的路徑；明確排除的路徑不能展開。
func PopulateWith(specs []PopulateSpec, relations map[string]Relation) Stage {
	return func(s State) (State, error) {
		if len(specs) == 0 {
			return s, nil
		}
		out := s.clone()
		out.Populate = out.Populate[:0]
		inclusive := isInclusion(out.Projection)
		for _, spec := range specs {
			if _, ok := relations[spec.Path]; !ok {
				return State{}, cErr.ValidateQueryErr(fmt.Sprintf("cannot populate %q", spec.Path))
			}
			val, listed := projected(out.Projection, spec.Path)
			switch {
			case inclusive && !listed:
				out.Projection = append(out.Projection, bson.E{Key: spec.Path, Value: 1})
			case listed && val == 0:
				return State{}, cErr.ValidateQueryErr(fmt.Sprintf("cannot populate excluded field %q", spec.Path))
			}
			out.Populate = append(out.Populate, spec)
		}
		return out, nil
	}
}

func isInclusion(proj bson.D) bool {
	for _, e := range proj {
		if e.Key != "_id" && e.Value == 1 {
			return true
		}
	}
	return false
}

func projected(proj bson.D, key string) (any, bool) {
	for _, e := range proj {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Paginate 必須在篩選之後套用
func Paginate(page, limit *int64) Stage {
	return func(s State) (State, error) {
		out := s.clone()
		out.Page, out.Limit = Sanitize(page, limit)
		return out, nil
	}
}
