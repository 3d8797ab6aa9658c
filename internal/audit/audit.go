// Package audit writes a best-effort trail of who changed what. Rows go
// straight to the gateway, bypassing the reconciling store, so audit writes
// never recurse into the mutation path they describe.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/gateway"
)

// Recorder appends audit rows. Failures only log; an unreachable backend
// must not take the audited action down with it.
type Recorder struct {
	gw gateway.Gateway
}

func NewRecorder(gw gateway.Gateway) *Recorder {
	return &Recorder{gw: gw}
}

// Record writes one audit row. The actor comes from the request context;
// system-initiated mutations record "system".
func (r *Recorder) Record(ctx context.Context, clinicID string, table collection.Name, action, recordID string) {
	actor := "system"
	if pr, ok := auth.FromContext(ctx); ok {
		actor = pr.UserID
	}

	row := collection.Record{
		"actor":      actor,
		"action":     action,
		"collection": string(table),
		"record_id":  recordID,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := r.gw.Insert(ctx, clinicID, collection.AuditLogs, row); err != nil {
		log.Printf("failed to write audit row for %s %s/%s: %v", action, table, recordID, err)
	}
}
