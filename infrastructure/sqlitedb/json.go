package sqlitedb

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores a value in a TEXT column as JSON.
type JSON[T any] struct {
	Data T
}

func (j *JSON[T]) Scan(value any) error {
	if value == nil {
		var zero T
		j.Data = zero
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &j.Data)
	case string:
		return json.Unmarshal([]byte(v), &j.Data)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}
}

func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
