package dto

import "bastion/internal/pkg/query"

// ListResponse 列表查詢的回傳格式
type ListResponse[T any] struct {
	Data []T        `json:"data"`
	Meta query.Meta `json:"meta"`
}

// ToListResponse 逐筆轉換為回應 DTO，meta 原樣保留
func ToListResponse[M any, D any](result *query.Result[M], convert func(*M) D) *ListResponse[D] {
	data := make([]D, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, convert(&result.Data[i]))
	}
	return &ListResponse[D]{Data: data, Meta: result.Meta}
}
