package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidProductID = errors.New("invalid product id")

// ProductID is the canonical form of a product reference. Every line match
// compares ProductID values with ==, never the raw client or store encoding.
type ProductID string

// NewProductID canonicalizes s. Surrounding whitespace is dropped. ObjectID
// hex is lower-cased so "65A1..." and "65a1..." name the same product; any
// other id is kept as is and stays case-sensitive.
func NewProductID(s string) ProductID {
	s = strings.TrimSpace(s)
	if primitive.IsValidObjectID(s) {
		return ProductID(strings.ToLower(s))
	}
	return ProductID(s)
}

// ProductIDFromObjectID converts a store-assigned ObjectID.
func ProductIDFromObjectID(oid primitive.ObjectID) ProductID {
	return ProductID(oid.Hex())
}

func (id ProductID) String() string {
	return string(id)
}

func (id ProductID) IsZero() bool {
	return id == ""
}

// ObjectID returns the ObjectID form when the canonical id is 24 hex chars.
func (id ProductID) ObjectID() (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// UnmarshalJSON accepts a string, a number, a populated product object
// ({"_id": ...}) or extended JSON ({"$oid": ...}).
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProductID, err)
		}
		*id = NewProductID(s)
		return nil
	case '{':
		var obj struct {
			ID  *ProductID `json:"_id"`
			OID *string    `json:"$oid"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProductID, err)
		}
		switch {
		case obj.OID != nil:
			*id = NewProductID(*obj.OID)
		case obj.ID != nil:
			*id = *obj.ID
		default:
			return fmt.Errorf("%w: object without _id", ErrInvalidProductID)
		}
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProductID, err)
		}
		*id = NewProductID(n.String())
		return nil
	}
}

// MarshalBSONValue stores ObjectID-shaped ids as ObjectIDs so they join
// against the products collection, and everything else as strings.
func (id ProductID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, ok := id.ObjectID(); ok {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(string(id))
}

func (id *ProductID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeObjectID:
		*id = ProductIDFromObjectID(raw.ObjectID())
	case bson.TypeString:
		*id = NewProductID(raw.StringValue())
	case bson.TypeNull, bson.TypeUndefined:
		*id = ""
	default:
		return fmt.Errorf("%w: unsupported bson type %s", ErrInvalidProductID, t)
	}
	return nil
}
