// Package seedr is the Reconciliation Engine (C5): the adapter's public
// surface. It fuses the cloud inventory (C1), the mapping store (C3), the
// async fetcher (C4), local disk state, and the ownership registry (C2)
// into a single consistent view (spec §1, §4.5).
package seedr

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/l3uddz/seedr-adapter/pkg/config"
	"github.com/l3uddz/seedr-adapter/pkg/fetcher"
	"github.com/l3uddz/seedr-adapter/pkg/localdisk"
	"github.com/l3uddz/seedr-adapter/pkg/logger"
	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/ownership"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

// cloudProxy is the slice of C1 the reconciler calls directly (beyond what
// the fetcher already needs).
type cloudProxy interface {
	GetFolderContents(ctx context.Context, folderID *string) (*seedrapi.Snapshot, error)
	AddMagnet(ctx context.Context, magnetURI string) (seedrapi.AddResult, error)
	AddTorrentFile(ctx context.Context, filename string, data []byte) (seedrapi.AddResult, error)
	DeleteTransfer(ctx context.Context, id string) error
	DeleteFolder(ctx context.Context, id string) error
	DeleteFile(ctx context.Context, id string) error
	GetUser(ctx context.Context) (seedrapi.User, error)
}

// Adapter is the Reconciliation Engine. Construct with New; all public
// methods are safe for the caller's single polling goroutine. Submit,
// GetItems, RemoveItem, MarkItemAsImported and Test additionally
// self-serialise on a per-adapter mutex (spec §5); GrabMetadata and
// RecoverFromHistory do not take it.
type Adapter struct {
	log *logrus.Entry
	mu  sync.Mutex

	cfg       *config.Configuration
	api       cloudProxy
	ownership ownership.Registry
	store     mapping.Store
	fetcher   *fetcher.Fetcher
	disk      localdisk.Disk
	history   GrabHistory
	torrent   TorrentInfo

	recovered bool
}

// Options bundles Adapter's collaborators. Ownership, History and Torrent
// may be nil: a nil Ownership gets ownership.NewNoop(); nil History/Torrent
// simply disable the features that need them.
type Options struct {
	Config    *config.Configuration
	API       cloudProxy
	Ownership ownership.Registry
	Store     mapping.Store
	Fetcher   *fetcher.Fetcher
	Disk      localdisk.Disk
	History   GrabHistory
	Torrent   TorrentInfo
}

// New builds a Reconciliation Engine.
func New(opts Options) *Adapter {
	reg := opts.Ownership
	if reg == nil {
		reg = ownership.NewNoop()
	}

	return &Adapter{
		log:       logger.GetLogger("seedr"),
		cfg:       opts.Config,
		api:       opts.API,
		ownership: reg,
		store:     opts.Store,
		fetcher:   opts.Fetcher,
		disk:      opts.Disk,
		history:   opts.History,
		torrent:   opts.Torrent,
	}
}

// Submit registers a release with Seedr and opens its mapping (spec §4.5
// "Submit").
func (a *Adapter) Submit(ctx context.Context, r Release) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var result seedrapi.AddResult
	var err error
	if r.MagnetURI != "" {
		result, err = a.api.AddMagnet(ctx, r.MagnetURI)
	} else {
		result, err = a.api.AddTorrentFile(ctx, r.Title, r.TorrentBytes)
	}
	if err != nil {
		return "", fmt.Errorf("register release with Seedr: %w", err)
	}

	infoHash, err := resolveInfoHash(r, a.torrent)
	if err != nil {
		return "", err
	}

	transferID := result.ID
	m := mapping.DownloadMapping{
		InfoHash:   infoHash,
		TransferID: &transferID,
		Name:       firstNonEmpty(result.Name, r.Title),
	}
	a.store.Set(infoHash, m)

	if err := a.ownership.ClaimOwnership(ctx, infoHash); err != nil {
		a.log.WithError(err).Warnf("failed to claim ownership of %s", infoHash)
	}

	return infoHash, nil
}

// GrabMetadata returns the persisted fields the surrounding history
// pipeline needs to later recover this mapping (spec §4.5 "GrabMetadata").
func (a *Adapter) GrabMetadata(downloadID string) map[string]string {
	m, ok := a.store.Get(downloadID)
	if !ok {
		return nil
	}

	meta := map[string]string{"SeedrName": m.Name}
	if m.TransferID != nil {
		meta["SeedrTransferId"] = *m.TransferID
	}
	return meta
}

func mappingFromHistory(e GrabHistoryEntry) mapping.DownloadMapping {
	return mapping.DownloadMapping{
		InfoHash:   e.DownloadID,
		Name:       e.SeedrName,
		TransferID: e.SeedrTransferID,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
