package query

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FieldKind int

const (
	String FieldKind = iota
	Bool
	ObjectID
	Int
	Time
)

// Schema 可篩選欄位與其型別
type Schema map[string]FieldKind

// Coerce 將 query string 值轉為欄位型別；非字串輸入視為呼叫端已轉好
func (k FieldKind) Coerce(value any) (any, error) {
	raw, ok := value.(string)
	if !ok {
		return value, nil
	}
	switch k {
	case Bool:
		return strconv.ParseBool(raw)
	case ObjectID:
		return primitive.ObjectIDFromHex(raw)
	case Int:
		return strconv.ParseInt(raw, 10, 64)
	case Time:
		return time.Parse(time.RFC3339, raw)
	case String:
		return raw, nil
	}
	return nil, fmt.Errorf("unsupported field kind %d", k)
}
