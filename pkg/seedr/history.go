package seedr

import "context"

// GrabHistoryEntry is one historical grab recorded against this adapter
// instance, as reported by the surrounding queue/import pipeline's
// persistent history (spec §1 "the grab-history service" — deliberately
// out of scope here, consumed through this interface).
type GrabHistoryEntry struct {
	DownloadID      string
	Imported        bool
	SeedrName       string
	SeedrTransferID *string
}

// GrabHistory is the external collaborator RecoverFromHistory consumes.
type GrabHistory interface {
	ListGrabs(ctx context.Context) ([]GrabHistoryEntry, error)
}

// RecoverFromHistory rebuilds mappings lost to a process restart from the
// surrounding system's durable grab history (spec §4.5 "RecoverFromHistory",
// §9 "Mapping store as process-local state"). Called at most once per
// process; the adapter enforces that via the recovered flag in Adapter.
func (a *Adapter) RecoverFromHistory(ctx context.Context) error {
	if a.history == nil {
		return nil
	}

	entries, err := a.history.ListGrabs(ctx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.Imported {
			continue
		}
		if _, ok := a.store.Get(e.DownloadID); ok {
			continue
		}

		m := mappingFromHistory(e)
		a.store.Set(e.DownloadID, m)
		a.log.Infof("recovered mapping %s (%s) from grab history", e.DownloadID, e.SeedrName)

		if a.cfg.MultiTenancyConfigured() {
			if err := a.ownership.ClaimOwnership(ctx, e.DownloadID); err != nil {
				a.log.WithError(err).Warnf("failed to claim ownership of recovered mapping %s", e.DownloadID)
			}
		}
	}

	return nil
}
