package store

import "time"

// opKind discriminates field operations.
type opKind int

const (
	opSet opKind = iota
	opInc
	opServerTime
	opUnion
	opRemove
	opDeleteField
)

// Op is a single field mutation applied by Update, SetMerge, or Tx.Update.
type Op struct {
	value any
	field string
	kind  opKind
}

// SetField replaces a field wholesale.
func SetField(field string, value any) Op {
	return Op{field: field, kind: opSet, value: value}
}

// Inc atomically adds delta to a numeric field, treating an absent field
// as zero.
func Inc(field string, delta int64) Op {
	return Op{field: field, kind: opInc, value: delta}
}

// ServerTime sets a field to the store-assigned time of the write.
func ServerTime(field string) Op {
	return Op{field: field, kind: opServerTime}
}

// Union merges values into an array field as a set: values already present
// are not duplicated. An absent field is treated as empty.
func Union(field string, values ...string) Op {
	return Op{field: field, kind: opUnion, value: values}
}

// Remove deletes values from an array field. Removing from an absent field
// is a no-op.
func Remove(field string, values ...string) Op {
	return Op{field: field, kind: opRemove, value: values}
}

// DeleteField removes a field from the document.
func DeleteField(field string) Op {
	return Op{field: field, kind: opDeleteField}
}

// ApplyOps applies field ops to a document's data in place, using now for
// server timestamps. Shared by the gateway implementations so both resolve
// ops identically.
func ApplyOps(data map[string]any, ops []Op, now time.Time) {
	for _, op := range ops {
		switch op.kind {
		case opSet:
			data[op.field] = op.value
		case opInc:
			data[op.field] = AsInt(data[op.field]) + op.value.(int64)
		case opServerTime:
			data[op.field] = now
		case opUnion:
			existing := AsStrings(data[op.field])
			for _, v := range op.value.([]string) {
				if !containsString(existing, v) {
					existing = append(existing, v)
				}
			}
			data[op.field] = existing
		case opRemove:
			existing := AsStrings(data[op.field])
			kept := existing[:0]
			for _, e := range existing {
				if !containsString(op.value.([]string), e) {
					kept = append(kept, e)
				}
			}
			data[op.field] = kept
		case opDeleteField:
			delete(data, op.field)
		}
	}
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
