package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// WordList stores word tokens as a JSONB column.
type WordList []Word

func (w WordList) Value() (driver.Value, error) { return jsonValue(w) }
func (w *WordList) Scan(src interface{}) error  { return jsonScan(src, w) }

// ThemeList stores themes as a JSONB column.
type ThemeList []Theme

func (t ThemeList) Value() (driver.Value, error) { return jsonValue(t) }
func (t *ThemeList) Scan(src interface{}) error  { return jsonScan(src, t) }

// Int64List stores episode id references as a JSONB column.
type Int64List []int64

func (l Int64List) Value() (driver.Value, error) { return jsonValue(l) }
func (l *Int64List) Scan(src interface{}) error  { return jsonScan(src, l) }

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func jsonScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch s := src.(type) {
	case []byte:
		return json.Unmarshal(s, dst)
	case string:
		return json.Unmarshal([]byte(s), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}
