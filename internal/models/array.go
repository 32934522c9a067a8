package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// StringArray stores a list of strings as a native text[] column on Postgres
// and as a JSON array on every other dialect, so the same models work against
// the production database and the in-memory SQLite used by tests.
type StringArray []string

// Scan accepts both the Postgres array literal form ({a,b}) and JSON ([...]).
func (a *StringArray) Scan(value interface{}) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringArray", value)
	}

	if len(raw) == 0 {
		*a = nil
		return nil
	}

	if raw[0] == '{' {
		var pa pq.StringArray
		if err := pa.Scan(raw); err != nil {
			return err
		}
		*a = StringArray(pa)
		return nil
	}

	return json.Unmarshal(raw, (*[]string)(a))
}

func (a StringArray) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	if db.Dialector.Name() == "postgres" {
		return clause.Expr{SQL: "?", Vars: []interface{}{pq.Array([]string(a))}}
	}

	if a == nil {
		return clause.Expr{SQL: "?", Vars: []interface{}{nil}}
	}

	data, err := json.Marshal([]string(a))
	if err != nil {
		db.AddError(err)
		return clause.Expr{SQL: "?", Vars: []interface{}{nil}}
	}

	return clause.Expr{SQL: "?", Vars: []interface{}{string(data)}}
}

func (StringArray) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "text[]"
	case "mysql":
		return "JSON"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
