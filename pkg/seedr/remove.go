package seedr

import (
	"context"

	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/ownership"
)

// RemoveItem deletes item's cloud state (subject to ownership) and,
// optionally, its local payload, then removes the mapping (spec §4.5
// "RemoveItem").
func (a *Adapter) RemoveItem(ctx context.Context, downloadID string, deleteLocalData bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.store.Get(downloadID)
	if !ok {
		return nil
	}

	if a.mayDeleteFromCloud(ctx, downloadID) {
		a.deleteCloudState(ctx, m)
	}

	if deleteLocalData {
		if path := a.localPath(m.Name); path != "" {
			if err := a.disk.Remove(path); err != nil {
				a.log.WithError(err).Warnf("failed to remove local payload for %s", downloadID)
			}
		}
	}

	a.store.Remove(downloadID)
	return nil
}

// MarkItemAsImported applies the same cloud-deletion logic as RemoveItem,
// gated by DeleteFromCloud, but never touches local data (spec §4.5
// "MarkItemAsImported").
func (a *Adapter) MarkItemAsImported(ctx context.Context, downloadID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.store.Get(downloadID)
	if !ok {
		return nil
	}

	if a.cfg.DeleteFromCloud && a.mayDeleteFromCloud(ctx, downloadID) {
		a.deleteCloudState(ctx, m)
	}

	a.store.Remove(downloadID)
	return nil
}

// mayDeleteFromCloud applies spec §4.5 step 2: when multi-tenancy is
// configured, ownership release governs whether cloud deletion may
// proceed; unknown and false both suppress it (fail-safe for shared cloud
// state). Unconfigured multi-tenancy always permits deletion.
func (a *Adapter) mayDeleteFromCloud(ctx context.Context, downloadID string) bool {
	if !a.cfg.MultiTenancyConfigured() {
		return true
	}

	switch a.ownership.ReleaseOwnership(ctx, downloadID) {
	case ownership.True:
		return true
	case ownership.Unknown:
		a.log.Warnf("ownership release unknown for %s, skipping cloud delete", downloadID)
		return false
	default:
		return false
	}
}

// deleteCloudState issues exactly one cloud delete, preferring the most
// specific identifier available: folder, then file, then transfer (spec
// §4.5 step 4). Errors are caught and logged, never propagated.
func (a *Adapter) deleteCloudState(ctx context.Context, m mapping.DownloadMapping) {
	var err error
	switch {
	case m.FolderID != nil:
		err = a.api.DeleteFolder(ctx, *m.FolderID)
	case m.FileID != nil:
		err = a.api.DeleteFile(ctx, *m.FileID)
	case m.TransferID != nil:
		err = a.api.DeleteTransfer(ctx, *m.TransferID)
	default:
		a.log.Warnf("mapping %s has no cloud identifier to delete", m.InfoHash)
		return
	}
	if err != nil {
		a.log.WithError(err).Warnf("cloud delete failed for %s", m.InfoHash)
	}
}
