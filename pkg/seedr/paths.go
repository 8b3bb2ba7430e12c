package seedr

import "path/filepath"

// localPath mirrors fetcher.Fetcher.LocalPath: the sanitised destination
// under the configured download directory for a cloud-supplied name, or
// "" if sanitisation yields an empty base name (spec §9).
func (a *Adapter) localPath(name string) string {
	base := a.disk.SanitizeBaseName(name)
	if base == "" {
		return ""
	}
	return filepath.Join(a.cfg.DownloadDirectory, base)
}
