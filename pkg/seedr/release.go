package seedr

import (
	"fmt"
	"net/url"
	"strings"
)

// Release is the adapter's submission input (spec §6 "Adapter submission
// contract"): either a magnet URI or raw .torrent bytes, plus a title and
// an optionally pre-extracted info-hash.
type Release struct {
	InfoHash     string
	MagnetURI    string
	TorrentBytes []byte
	Title        string
}

// TorrentInfo is the external collaborator that extracts a BitTorrent
// info-hash from a raw .torrent payload (spec §1 "torrent file parsing
// (hash extraction)" is deliberately out of scope of this package).
type TorrentInfo interface {
	InfoHash(torrentBytes []byte) (string, error)
}

// resolveInfoHash implements the hash-resolution half of spec §6's
// submission contract: prefer an already-known hash, then the magnet's
// xt=urn:btih parameter (parsed locally — no collaborator needed), then
// the torrent-info service for raw .torrent bytes.
func resolveInfoHash(r Release, info TorrentInfo) (string, error) {
	if r.InfoHash != "" {
		return strings.ToUpper(r.InfoHash), nil
	}

	if r.MagnetURI != "" {
		hash, err := hashFromMagnet(r.MagnetURI)
		if err != nil {
			return "", err
		}
		return strings.ToUpper(hash), nil
	}

	if len(r.TorrentBytes) > 0 {
		if info == nil {
			return "", fmt.Errorf("no torrent-info collaborator configured to parse .torrent payload")
		}
		hash, err := info.InfoHash(r.TorrentBytes)
		if err != nil {
			return "", fmt.Errorf("extract info-hash from torrent file: %w", err)
		}
		return strings.ToUpper(hash), nil
	}

	return "", fmt.Errorf("release carries neither a magnet URI, torrent bytes, nor a pre-extracted info-hash")
}

// hashFromMagnet extracts the exact-topic BitTorrent hash from a magnet
// URI's xt=urn:btih:<hash> parameter.
func hashFromMagnet(magnetURI string) (string, error) {
	u, err := url.Parse(magnetURI)
	if err != nil {
		return "", fmt.Errorf("parse magnet uri: %w", err)
	}

	for _, xt := range u.Query()["xt"] {
		const prefix = "urn:btih:"
		if strings.HasPrefix(xt, prefix) {
			return strings.TrimPrefix(xt, prefix), nil
		}
	}
	return "", fmt.Errorf("magnet uri has no xt=urn:btih parameter")
}
