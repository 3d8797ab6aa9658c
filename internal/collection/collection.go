// Package collection defines the named record collections shared by the
// gateway, the local mirror and the reconciling store, together with the
// schemaless Record representation and the merge-by-id rules that tie the
// three of them together.
package collection

import "sort"

// Name identifies a backend collection. All collections are scoped by
// clinic id.
type Name string

const (
	Patients      Name = "patients"
	Records       Name = "records"
	Occurrences   Name = "occurrences"
	Agenda        Name = "agenda"
	Documents     Name = "documents"
	Settings      Name = "settings"
	Medications   Name = "medications"
	Transactions  Name = "transactions"
	Inventory     Name = "inventory"
	PTIGoals      Name = "pti_goals"
	HealthRecords Name = "health_records"
	AppUsers      Name = "app_users"
	ClinicUsers   Name = "clinic_users"
	AuditLogs     Name = "audit_logs"
)

// All returns every collection the store loads for a clinic, in a stable
// order.
func All() []Name {
	return []Name{
		Patients, Records, Occurrences, Agenda, Documents, Settings,
		Medications, Transactions, Inventory, PTIGoals, HealthRecords,
		AppUsers, ClinicUsers, AuditLogs,
	}
}

// Valid reports whether name is a known collection.
func Valid(name Name) bool {
	for _, n := range All() {
		if n == name {
			return true
		}
	}
	return false
}

// Record is a schemaless row. The store never validates record shape; typed
// models live in the domain packages and convert at the edge.
type Record map[string]any

// ID returns the record identifier, or "" when the record has none.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy. Fields are JSON scalars, maps and slices;
// callers that mutate nested values must copy those themselves.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Overlay copies patch fields over base and returns the result, leaving both
// inputs untouched. This is the spread-overwrite rule: last writer per field
// wins, no timestamps consulted.
func Overlay(base, patch Record) Record {
	out := base.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// MergeByID reconciles a remote listing with the mirrored copy of the same
// collection. Remote order is preserved; a mirrored record with a matching id
// is overlaid on top of the remote one (mirror wins on conflicting fields).
// Mirror-only records sort ahead of the remote ones, matching the mirror's
// prepend-on-insert behaviour. The result is a fresh slice; inputs are not
// mutated. Merging the same pair twice yields the same result.
func MergeByID(remote, mirrored []Record) []Record {
	byID := make(map[string]Record, len(mirrored))
	for _, m := range mirrored {
		if id := m.ID(); id != "" {
			byID[id] = m
		}
	}

	merged := make([]Record, 0, len(remote)+len(mirrored))
	seen := make(map[string]struct{}, len(remote))
	for _, rec := range remote {
		id := rec.ID()
		if m, ok := byID[id]; ok {
			rec = Overlay(rec, m)
		} else {
			rec = rec.Clone()
		}
		seen[id] = struct{}{}
		merged = append(merged, rec)
	}

	var local []Record
	for _, m := range mirrored {
		if _, ok := seen[m.ID()]; !ok {
			local = append(local, m.Clone())
		}
	}
	return append(local, merged...)
}

// Key builds the cache key used by the mirror and the breaker registry.
func Key(clinicID string, table Name) string {
	return clinicID + ":" + string(table)
}

// SortByCreatedAt orders records newest-first by their created_at field when
// present. Records without the field keep their relative order at the end.
func SortByCreatedAt(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, _ := recs[i]["created_at"].(string)
		b, _ := recs[j]["created_at"].(string)
		return a > b
	})
}
