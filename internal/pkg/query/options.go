// Package query 將列表請求的參數（搜尋、篩選、排序、分頁、欄位投影、關聯展開）
// 轉為一次有界的 MongoDB 讀取，並與 count 合併成 {data, meta}。
package query

import (
	"net/url"
	"strconv"
	"strings"

	cErr "bastion/internal/pkg/error"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 20
	MaxLimit     int64 = 1000

	DefaultSort = "-createdAt"
	// 內部版本欄位，預設不輸出
	RevisionField = "revision"
)

// 保留字，永遠不會進入等值篩選
const (
	KeySearchTerm = "searchTerm"
	KeySort       = "sort"
	KeyLimit      = "limit"
	KeyPage       = "page"
	KeyFields     = "fields"
	KeyPopulate   = "populate"
)

var reservedKeys = map[string]struct{}{
	KeySearchTerm: {},
	KeySort:       {},
	KeyLimit:      {},
	KeyPage:       {},
	KeyFields:     {},
	KeyPopulate:   {},
}

// IsReserved 是否為保留查詢參數
func IsReserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// PopulateSpec 單一關聯展開：Path 為欄位名，Select 為空白分隔的投影欄位
type PopulateSpec struct {
	Path   string
	Select string
}

// Options 呼叫端提供的查詢參數（每次請求一份，不共用）
type Options struct {
	SearchTerm string
	Sort       string
	Page       *int64
	Limit      *int64
	Fields     string
	Populate   []PopulateSpec
	Filters    map[string]any
	// Advanced 直接併入查詢條件，不做任何檢查；只給已信任條件的呼叫端使用
	Advanced bson.M
}

// ParseValues 由 query string 建立 Options。
// page/limit 非數字直接拒絕；數值越界則交給 Sanitize 夾住。
func ParseValues(values url.Values) (Options, error) {
	opts := Options{Filters: map[string]any{}}
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		raw := strings.TrimSpace(vs[0])
		switch key {
		case KeySearchTerm:
			opts.SearchTerm = raw
		case KeySort:
			opts.Sort = raw
		case KeyFields:
			opts.Fields = raw
		case KeyPopulate:
			opts.Populate = ParsePopulate(vs...)
		case KeyPage, KeyLimit:
			if raw == "" {
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Options{}, cErr.ValidateQueryErr(key + " must be an integer").WithCause(err)
			}
			if key == KeyPage {
				opts.Page = &n
			} else {
				opts.Limit = &n
			}
		default:
			opts.Filters[key] = raw
		}
	}
	return opts, nil
}

// ParsePopulate 支援三種寫法：
//
//	populate=createdBy
//	populate=createdBy,updatedBy
//	populate=createdBy:name email
func ParsePopulate(values ...string) []PopulateSpec {
	var specs []PopulateSpec
	seen := map[string]int{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			spec := PopulateSpec{Path: part}
			if i := strings.Index(part, ":"); i >= 0 {
				spec.Path = strings.TrimSpace(part[:i])
				spec.Select = strings.Join(strings.Fields(part[i+1:]), " ")
			}
			if spec.Path == "" {
				continue
			}
			// 同一路徑以最後一次為準
			if idx, ok := seen[spec.Path]; ok {
				specs[idx] = spec
				continue
			}
			seen[spec.Path] = len(specs)
			specs = append(specs, spec)
		}
	}
	return specs
}

// Sanitize 夾住分頁參數：page 最小 1；limit 介於 [1, MaxLimit]，未給時為 DefaultLimit
func Sanitize(page, limit *int64) (int64, int64) {
	p, l := DefaultPage, DefaultLimit
	if page != nil {
		p = max(*page, 1)
	}
	if limit != nil {
		l = min(max(*limit, 1), MaxLimit)
	}
	return p, l
}

// TotalPages ceil(total/limit)；total 為 0 時為 0
func TotalPages(total, limit int64) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
