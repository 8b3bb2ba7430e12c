// Package seedrapi is the Cloud API Proxy (C1): the only component that
// speaks Seedr.cc's REST wire protocol. It absorbs every JSON-shape quirk
// (spec §4.1) and classifies every error (spec §7) so everything above it
// sees one uniform model.
package seedrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
)

const defaultBaseURL = "https://www.seedr.cc/rest"

// Options configures a Client. Zero-value fields take the defaults noted
// per-field.
type Options struct {
	Email    string
	Password string

	// BaseURL defaults to https://www.seedr.cc/rest.
	BaseURL string

	// RequestTimeout bounds any single non-download request. Defaults to 30s.
	RequestTimeout time.Duration

	// ListRetryMax bounds retries for idempotent list/delete calls.
	// Defaults to 0 (spec §4.1).
	ListRetryMax int

	// DownloadRetryMax bounds retries for file downloads. Defaults to 2.
	DownloadRetryMax int

	// DownloadTimeout bounds a single file stream. Defaults to 30 minutes
	// (spec §5 "File streams carry a 30-minute timeout").
	DownloadTimeout time.Duration

	// RateLimiter, if set, throttles every outgoing request.
	RateLimiter ratelimit.Limiter
}

// Client is the Cloud API Proxy.
type Client struct {
	log      *logrus.Entry
	email    string
	password string
	baseURL  string

	idempotent *http.Client // list/delete/get — configurable retry, default 0
	mutating   *http.Client // AddMagnet/AddTorrentFile — never retried
	download   *http.Client // file streaming — configurable retry, default 2
}

// NewClient builds a Cloud API Proxy client.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	reqTimeout := opts.RequestTimeout
	if reqTimeout == 0 {
		reqTimeout = 30 * time.Second
	}
	dlTimeout := opts.DownloadTimeout
	if dlTimeout == 0 {
		dlTimeout = 30 * time.Minute
	}

	return &Client{
		log:        logger.GetLogger("seedrapi"),
		email:      opts.Email,
		password:   opts.Password,
		baseURL:    baseURL,
		idempotent: newRetryableClient(reqTimeout, opts.ListRetryMax, opts.RateLimiter),
		mutating:   newRetryableClient(reqTimeout, 0, opts.RateLimiter),
		download:   newRetryableClient(dlTimeout, orDefault(opts.DownloadRetryMax, 2), opts.RateLimiter),
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// doRequest sends req on client, applying Basic auth, and returns the
// response body with status-code classification already applied (spec
// §4.1's error table). Network/DNS/timeout failures become TransportError.
func (c *Client) doRequest(ctx context.Context, client *http.Client, method, rawURL string, body io.Reader, headers map[string]string, resource string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.password)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	buf, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, &TransportError{Err: readErr}
	}

	if classErr := classifyStatus(resp.StatusCode, resource); classErr != nil {
		return buf, classErr
	}

	if len(buf) == 0 {
		return nil, &ProtocolError{Detail: "empty body on success"}
	}

	return buf, nil
}

// checkResult inspects a JSON body's "result" field (when present) for the
// explicit failure case "result": false described in spec §4.1.
func checkResult(buf []byte) error {
	var probe struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(buf, &probe); err != nil || probe.Result == nil {
		return nil
	}

	var ok bool
	if err := json.Unmarshal(probe.Result, &ok); err == nil && !ok {
		return &ProtocolError{Detail: "result=false"}
	}
	return nil
}

// GetFolderContents retrieves the inventory rooted at folderID, or the
// account root when folderID is nil (spec §4.1).
func (c *Client) GetFolderContents(ctx context.Context, folderID *string) (*Snapshot, error) {
	path := "/folder"
	resource := "folder"
	if folderID != nil && *folderID != "" {
		path = "/folder/" + *folderID
		resource = "folder/" + *folderID
	}

	buf, err := c.doRequest(ctx, c.idempotent, http.MethodGet, c.url(path), nil, nil, resource)
	if err != nil {
		return nil, err
	}
	if err := checkResult(buf); err != nil {
		return nil, err
	}

	var raw rawSnapshot
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, &ProtocolError{Detail: fmt.Sprintf("decode folder contents: %v", err)}
	}

	snap := raw.normalize()
	return &snap, nil
}

// AddMagnet registers a magnet link for download. Never retried — it is
// not idempotent (spec §4.1).
func (c *Client) AddMagnet(ctx context.Context, magnetURI string) (AddResult, error) {
	form := url.Values{"magnet": {magnetURI}}
	body := bytes.NewBufferString(form.Encode())
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

	buf, err := c.doRequest(ctx, c.mutating, http.MethodPost, c.url("/transfer/magnet"), body, headers, "transfer/magnet")
	if err != nil {
		return AddResult{}, err
	}
	return c.decodeAddResult(buf)
}

// AddTorrentFile uploads a .torrent file's raw bytes. Never retried.
func (c *Client) AddTorrentFile(ctx context.Context, filename string, data []byte) (AddResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return AddResult{}, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return AddResult{}, fmt.Errorf("write multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return AddResult{}, fmt.Errorf("close multipart writer: %w", err)
	}

	headers := map[string]string{"Content-Type": mw.FormDataContentType()}
	respBuf, err := c.doRequest(ctx, c.mutating, http.MethodPost, c.url("/transfer/file"), &buf, headers, "transfer/file")
	if err != nil {
		return AddResult{}, err
	}
	return c.decodeAddResult(respBuf)
}

func (c *Client) decodeAddResult(buf []byte) (AddResult, error) {
	if err := checkResult(buf); err != nil {
		return AddResult{}, err
	}

	var raw rawAddResult
	if err := json.Unmarshal(buf, &raw); err != nil {
		return AddResult{}, &ProtocolError{Detail: fmt.Sprintf("decode add result: %v", err)}
	}
	return raw.normalize(), nil
}

func (c *Client) delete(ctx context.Context, path, resource string) error {
	buf, err := c.doRequest(ctx, c.idempotent, http.MethodDelete, c.url(path), nil, nil, resource)
	if err != nil {
		return err
	}
	return checkResult(buf)
}

func (c *Client) DeleteTransfer(ctx context.Context, id string) error {
	return c.delete(ctx, "/torrent/"+id, "torrent/"+id)
}

func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.delete(ctx, "/folder/"+id, "folder/"+id)
}

func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.delete(ctx, "/file/"+id, "file/"+id)
}

// GetUser retrieves account info. An auth failure here is what Test()
// (pkg/seedr) reports against the Email field (spec §4.5).
func (c *Client) GetUser(ctx context.Context) (User, error) {
	buf, err := c.doRequest(ctx, c.idempotent, http.MethodGet, c.url("/user"), nil, nil, "user")
	if err != nil {
		return User{}, err
	}

	var raw rawUser
	if err := json.Unmarshal(buf, &raw); err != nil {
		return User{}, &ProtocolError{Detail: fmt.Sprintf("decode user: %v", err)}
	}
	if raw.Error != "" {
		return User{}, &ProtocolError{Detail: raw.Error}
	}

	return User{Email: raw.Email, SpaceUsed: raw.SpaceUsed, SpaceMax: raw.SpaceMax}, nil
}

// DownloadFileToPath streams fileId's content into path, following the
// rules in spec §4.1: write to path+".part", then atomically replace path
// on success; remove the partial file on any failing exit.
func (c *Client) DownloadFileToPath(ctx context.Context, fileID string, path string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/file/"+fileID), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.password)

	resp, err := c.download.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if classErr := classifyStatus(resp.StatusCode, "file/"+fileID); classErr != nil {
		return classErr
	}

	partPath := path + ".part"
	out, err := createFile(partPath)
	if err != nil {
		return fmt.Errorf("create partial file: %w", err)
	}

	closed := false
	defer func() {
		if !closed {
			out.Close()
		}
		if err != nil {
			removeIfExists(partPath)
		}
	}()

	if _, copyErr := io.Copy(out, resp.Body); copyErr != nil {
		err = &TransportError{Err: copyErr}
		return err
	}
	closed = true
	if closeErr := out.Close(); closeErr != nil {
		err = fmt.Errorf("close partial file: %w", closeErr)
		return err
	}

	if renameErr := replaceFile(partPath, path); renameErr != nil {
		err = fmt.Errorf("rename partial file: %w", renameErr)
		return err
	}

	return nil
}
