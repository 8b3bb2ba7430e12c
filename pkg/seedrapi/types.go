package seedrapi

import (
	"encoding/json"
	"strconv"
)

// Transfer, Folder and File are the normalised shapes every caller above
// C1 sees — the wire-format oddities in spec §4.1 ("Protocol quirks") are
// absorbed entirely inside this package.

type Transfer struct {
	ID       string
	Name     string
	Hash     string // may be empty
	Size     int64
	Progress float64 // 0-100
}

type Folder struct {
	ID   string
	Name string
	Size int64
}

type File struct {
	ID   string
	Name string
	Size int64
}

// Snapshot is the immutable per-poll result of GetFolderContents (spec §3).
type Snapshot struct {
	Transfers []Transfer
	Folders   []Folder
	Files     []File
}

type User struct {
	Email     string
	SpaceUsed int64
	SpaceMax  int64
}

// AddResult is the response shape of AddMagnet/AddTorrentFile.
type AddResult struct {
	ID   string
	Name string
	Hash string
}

// flexString unmarshals a JSON field that the API sometimes sends as a
// number and sometimes as a string (e.g. ids).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat unmarshals a progress value that may arrive as a number or a
// numeric string, defaulting to 0 on anything else (spec §4.1).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if parsed, perr := strconv.ParseFloat(s, 64); perr == nil {
			*f = flexFloat(parsed)
			return nil
		}
	}

	*f = 0
	return nil
}

// rawSnapshot mirrors the top-level /folder response. Transfers arrive
// under the key "torrents", not "transfers" (spec §4.1).
type rawSnapshot struct {
	Torrents []rawTransferListing `json:"torrents"`
	Folders  []rawFolder          `json:"folders"`
	Files    []rawFile            `json:"files"`
}

// rawTransferListing is the shape a transfer takes inside a folder listing.
type rawTransferListing struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	Hash     string     `json:"hash"`
	Size     int64      `json:"size"`
	Progress flexFloat  `json:"progress"`
}

func (r rawTransferListing) normalize() Transfer {
	return Transfer{
		ID:       string(r.ID),
		Name:     r.Name,
		Hash:     r.Hash,
		Size:     r.Size,
		Progress: float64(r.Progress),
	}
}

// rawFolder accepts either {id,name} or {folder_id,folder_name} (spec §4.1
// sub-folder quirk).
type rawFolder struct {
	ID         flexString `json:"id"`
	Name       string     `json:"name"`
	FolderID   flexString `json:"folder_id"`
	FolderName string     `json:"folder_name"`
	Size       int64      `json:"size"`
}

func (r rawFolder) normalize() Folder {
	id := string(r.ID)
	if id == "" {
		id = string(r.FolderID)
	}
	name := r.Name
	if name == "" {
		name = r.FolderName
	}
	return Folder{ID: id, Name: name, Size: r.Size}
}

type rawFile struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
	Size int64      `json:"size"`
}

func (r rawFile) normalize() File {
	return File{ID: string(r.ID), Name: r.Name, Size: r.Size}
}

func (r rawSnapshot) normalize() Snapshot {
	snap := Snapshot{}
	for _, t := range r.Torrents {
		snap.Transfers = append(snap.Transfers, t.normalize())
	}
	for _, f := range r.Folders {
		snap.Folders = append(snap.Folders, f.normalize())
	}
	for _, f := range r.Files {
		snap.Files = append(snap.Files, f.normalize())
	}
	return snap
}

// rawAddResult is the shape a transfer-creation response takes:
// user_torrent_id / title / torrent_hash (spec §4.1), distinct from the
// folder-listing shape above.
type rawAddResult struct {
	Result        json.RawMessage `json:"result"`
	UserTorrentID flexString      `json:"user_torrent_id"`
	Title         string          `json:"title"`
	TorrentHash   string          `json:"torrent_hash"`
}

func (r rawAddResult) normalize() AddResult {
	return AddResult{ID: string(r.UserTorrentID), Name: r.Title, Hash: r.TorrentHash}
}

type rawUser struct {
	Email     string `json:"email"`
	SpaceUsed int64  `json:"space_used"`
	SpaceMax  int64  `json:"space_max"`
	Error     string `json:"error"`
}
