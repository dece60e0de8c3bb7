package model

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref 指向另一個集合的文件。
// 資料庫中永遠只存 ObjectID；列表查詢 populate 後 Doc 會帶入被參照的文件。
type Ref struct {
	ID  primitive.ObjectID
	Doc bson.M
}

func NewRef(id primitive.ObjectID) *Ref {
	return &Ref{ID: id}
}

func (r Ref) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.ID)
}

func (r *Ref) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeObjectID:
		id, ok := bson.RawValue{Type: t, Value: data}.ObjectIDOK()
		if !ok {
			return fmt.Errorf("ref: invalid objectId")
		}
		*r = Ref{ID: id}
	case bson.TypeEmbeddedDocument:
		var doc bson.M
		if err := bson.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("ref: %w", err)
		}
		*r = Ref{Doc: doc}
		if id, ok := doc["_id"].(primitive.ObjectID); ok {
			r.ID = id
		}
	case bson.TypeNull, bson.TypeUndefined:
		*r = Ref{}
	default:
		return fmt.Errorf("ref: cannot decode %s", t)
	}
	return nil
}

// MarshalJSON 展開時輸出文件（_id 改為 id），否則輸出 hex 字串
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Doc == nil {
		if r.ID.IsZero() {
			return []byte("null"), nil
		}
		return json.Marshal(r.ID.Hex())
	}
	out := make(map[string]any, len(r.Doc))
	for k, v := range r.Doc {
		if k == "_id" {
			k = "id"
		}
		out[k] = v
	}
	return json.Marshal(out)
}
