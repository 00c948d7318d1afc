package erp

// The directory's RPC layer is weakly typed: a many2one field arrives as
// [id, label], as a bare id, or as boolean false when unset. Relation is
// the normalized form; raw shape-sniffing must not leak past this package.

// Relation is a decoded many2one reference.
type Relation struct {
	ID    int64
	Label string
	Set   bool
}

// relationOf normalizes a raw RPC value into a Relation.
func relationOf(v interface{}) Relation {
	switch t := v.(type) {
	case []interface{}:
		if len(t) == 0 {
			return Relation{}
		}
		r := Relation{Set: true}
		r.ID = asInt64(t[0])
		if len(t) > 1 {
			if s, ok := t[1].(string); ok {
				r.Label = s
			}
		}
		return r
	case int64, int, int32, float64:
		id := asInt64(t)
		return Relation{ID: id, Set: id != 0}
	default:
		// bool false or nil: field not set
		return Relation{}
	}
}

// asInt64 converts the integer shapes the XML-RPC decoder may produce.
func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

// asString reads a char field. The directory encodes empty char fields as
// boolean false, never as "".
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// asInt64Ptr reads an optional integer field (false when unset).
func asInt64Ptr(v interface{}) *int64 {
	switch t := v.(type) {
	case int64, int, int32, float64:
		n := asInt64(t)
		return &n
	default:
		return nil
	}
}

// strPtr returns nil for empty strings, matching the portal's convention of
// null (not "") for absent property fields.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// records casts a search_read / read reply into a list of field maps.
func records(v interface{}) []map[string]interface{} {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(map[string]interface{}); ok {
			out = append(out, rec)
		}
	}
	return out
}
