package domain

import (
	"encoding/json"
	"time"
)

// Transaction is one recorded purchase. A multi-item purchase is a single
// transaction carrying every id; its wire form joins them with commas.
type Transaction struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user"`
	Products  []ProductID `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
}

// Product returns the delimited product reference, e.g. "7,12".
func (t Transaction) Product() string {
	return JoinProductIDs(t.Products)
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        string    `json:"id,omitempty"`
		User      string    `json:"user"`
		Product   string    `json:"product"`
		Timestamp time.Time `json:"timestamp"`
	}
	return json.Marshal(wire{
		ID:        t.ID,
		User:      t.UserID,
		Product:   t.Product(),
		Timestamp: t.Timestamp,
	})
}

// Contains reports whether the purchase includes id.
func (t Transaction) Contains(id ProductID) bool {
	for _, p := range t.Products {
		if p == id {
			return true
		}
	}
	return false
}

// ProductRef is the product part of a purchase request: a single id, a
// delimited id string, or a list of ids (strings or numbers).
type ProductRef []ProductID

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Invalid("invalid product reference")
	}
	ids, err := refIDs(raw)
	if err != nil {
		return err
	}
	*r = ids
	return nil
}

func refIDs(raw interface{}) ([]ProductID, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return ParseProductIDList(v)
	case float64:
		id := ProductID(v)
		if float64(id) != v {
			return nil, Invalid("product id must be an integer")
		}
		return []ProductID{id}, nil
	case []interface{}:
		var ids []ProductID
		for _, item := range v {
			if _, nested := item.([]interface{}); nested {
				return nil, Invalid("invalid product reference")
			}
			part, err := refIDs(item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, part...)
		}
		return ids, nil
	default:
		return nil, Invalid("invalid product reference")
	}
}
