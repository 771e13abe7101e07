package remote

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lintang-b-s/tm-search/pkg/datastructure"
	"github.com/lintang-b-s/tm-search/pkg/engine"
	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const DEFAULT_TIMEOUT = 30 * time.Second

type Config struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
}

// Client is an engine.Engine that forwards every call to a remote memory server.
type Client struct {
	baseURL  string
	name     string
	user     string
	password string
	ticket   string
	http     *http.Client
	log     *zap.Logger
	closed  bool
	sync.RWMutex
}

var _ engine.Engine = (*Client)(nil)

// NewClient logs in right away; an unreachable server or rejected credentials is a configuration error.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, util.WrapErrorf(err, util.ErrConfiguration, "invalid remote memory url %q", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DEFAULT_TIMEOUT
	}
	c := &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		name:     u.Host,
		user:     cfg.User,
		password: cfg.Password,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}

	ticket, err := c.login()
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrConfiguration, "cannot open remote memory %s", c.baseURL)
	}
	c.ticket = ticket
	log.Info("remote memory connected", zap.String("url", c.baseURL), zap.String("user", cfg.User))
	return c, nil
}

func (c *Client) login() (string, error) {
	var resp LoginResponse
	err := c.post(PATH_LOGIN, LoginRequest{User: c.user, Password: c.password}, "", &resp)
	if err != nil {
		return "", err
	}
	if resp.Status != STATUS_OK || resp.Ticket == "" {
		return "", errors.Newf("login as %s failed: %s", c.user, resp.Reason)
	}
	return resp.Ticket, nil
}

// relogin replaces stale with a fresh ticket. concurrent callers holding the same stale
// ticket share one login.
func (c *Client) relogin(stale string) (string, error) {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return "", util.ErrClosed
	}
	if c.ticket != stale {
		return c.ticket, nil
	}
	ticket, err := c.login()
	if err != nil {
		return "", util.WrapErrorf(err, util.ErrRemoteProtocol, "session on %s expired and login failed", c.baseURL)
	}
	c.ticket = ticket
	c.log.Info("remote session renewed", zap.String("url", c.baseURL), zap.String("user", c.user))
	return ticket, nil
}

func (c *Client) post(path string, body interface{}, ticket string, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "error when encoding remote request")
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return errors.Wrap(err, "error when creating remote request")
	}
	req.Header.Set("Content-Type", "application/json")
	if ticket != "" {
		req.Header.Set(HEADER_SESSION, ticket)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error when calling %s", path)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "error when reading response of %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return util.WrapErrorf(err, util.ErrRemoteProtocol, "unexpected response from %s (http %d)", path, res.StatusCode)
	}
	return nil
}

// call sends one command and turns a failed status into an error. an expired session
// is renewed once and the command sent again.
func (c *Client) call(req Request) (*Response, error) {
	c.RLock()
	closed, ticket := c.closed, c.ticket
	c.RUnlock()
	if closed {
		return nil, util.ErrClosed
	}

	var resp Response
	if err := c.post(PATH_TM, req, ticket, &resp); err != nil {
		return nil, err
	}
	if resp.Status != STATUS_OK && resp.Code == CODE_UNAUTHORIZED {
		fresh, err := c.relogin(ticket)
		if err != nil {
			return nil, err
		}
		resp = Response{}
		if err := c.post(PATH_TM, req, fresh, &resp); err != nil {
			return nil, err
		}
	}
	if resp.Status == STATUS_OK {
		return &resp, nil
	}

	switch resp.Code {
	case CODE_NOT_FOUND:
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "%s", resp.Reason)
	case CODE_CLOSED:
		return nil, util.WrapErrorf(nil, util.ErrClosed, "%s", resp.Reason)
	case CODE_BAD_REQUEST:
		return nil, util.WrapErrorf(util.WrapErrorf(nil, util.ErrBadParamInput, "%s", resp.Reason),
			util.ErrRemoteProtocol, "remote %s failed", req.Command)
	}
	return nil, util.WrapErrorf(errors.New(resp.Reason), util.ErrRemoteProtocol, "remote %s failed", req.Command)
}

func (c *Client) Name() string {
	return c.name
}

// Close closes the remote memory. later calls fail with util.ErrClosed without reaching the server.
func (c *Client) Close() error {
	_, err := c.call(Request{Command: CMD_CLOSE})
	c.Lock()
	c.closed = true
	c.Unlock()
	if errors.Is(err, util.ErrClosed) {
		return util.ErrClosed
	}
	return err
}

func (c *Client) Commit() error {
	_, err := c.call(Request{Command: CMD_COMMIT})
	return err
}

func (c *Client) StoreUnit(tu *datastructure.TranslationUnit) (string, error) {
	resp, err := c.call(Request{Command: CMD_STORE_TU, TU: tu})
	if err != nil {
		return "", err
	}
	if resp.TU == nil {
		return "", util.WrapErrorf(nil, util.ErrRemoteProtocol, "remote %s returned no unit", CMD_STORE_TU)
	}
	return resp.TU.ID, nil
}

func (c *Client) RemoveUnit(id string) error {
	_, err := c.call(Request{Command: CMD_REMOVE_TU, ID: id})
	return err
}

func (c *Client) GetUnit(id string) (*datastructure.TranslationUnit, error) {
	resp, err := c.call(Request{Command: CMD_GET_TU, ID: id})
	if err != nil {
		return nil, err
	}
	if resp.TU == nil {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "unit %s not found", id)
	}
	return normalizeUnit(resp.TU), nil
}

func (c *Client) GetAllLanguages() ([]string, error) {
	resp, err := c.call(Request{Command: CMD_GET_LANGUAGES})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Languages), nil
}

func (c *Client) GetAllProjects() ([]string, error) {
	resp, err := c.call(Request{Command: CMD_GET_PROJECTS})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Projects), nil
}

func (c *Client) GetAllSubjects() ([]string, error) {
	resp, err := c.call(Request{Command: CMD_GET_SUBJECTS})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Subjects), nil
}

func (c *Client) GetAllClients() ([]string, error) {
	resp, err := c.call(Request{Command: CMD_GET_CLIENTS})
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Clients), nil
}

// ImportTMX uploads the file at path. Progress is called once with the final count.
func (c *Client) ImportTMX(path string, opts engine.ImportOptions) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, util.WrapErrorf(err, util.ErrBadParamInput, "cannot open TMX file %s", path)
	}
	resp, err := c.call(Request{
		Command:  CMD_IMPORT_TMX,
		File:     base64.StdEncoding.EncodeToString(data),
		Project:  opts.Project,
		Customer: opts.Customer,
		Subject:  opts.Subject,
	})
	if err != nil {
		return 0, err
	}
	count := 0
	if resp.Imported != nil {
		count = *resp.Imported
	}
	if opts.Progress != nil {
		opts.Progress(count)
	}
	return count, nil
}

func (c *Client) ExportTMX(path string, langs []string, srcLang string) error {
	resp, err := c.call(Request{Command: CMD_EXPORT_TMX, Langs: langs, SrcLang: srcLang})
	if err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(resp.File)
	if err != nil {
		return util.WrapErrorf(err, util.ErrRemoteProtocol, "remote %s returned an invalid file", CMD_EXPORT_TMX)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "cannot write TMX file %s", path)
	}
	return nil
}

func (c *Client) SearchTranslation(query, srcLang, tgtLang string, minSimilarity int, caseSensitive bool) ([]datastructure.Match, error) {
	resp, err := c.call(Request{
		Command:       CMD_SEARCH_TRANSLATION,
		Query:         query,
		SrcLang:       srcLang,
		TgtLang:       tgtLang,
		MinSimilarity: minSimilarity,
		CaseSensitive: caseSensitive,
	})
	if err != nil {
		return nil, err
	}
	if resp.Matches == nil {
		return []datastructure.Match{}, nil
	}
	return resp.Matches, nil
}

func (c *Client) SearchAll(query, srcLang string, minSimilarity int, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	resp, err := c.call(Request{
		Command:       CMD_SEARCH_ALL,
		Query:         query,
		SrcLang:       srcLang,
		MinSimilarity: minSimilarity,
		CaseSensitive: caseSensitive,
	})
	if err != nil {
		return nil, err
	}
	return normalizeUnits(resp.TUs), nil
}

func (c *Client) ConcordanceSearch(query, srcLang string, limit int, isRegexp, caseSensitive bool) ([]*datastructure.TranslationUnit, error) {
	resp, err := c.call(Request{
		Command:       CMD_CONCORDANCE_SEARCH,
		Query:         query,
		SrcLang:       srcLang,
		Limit:         limit,
		IsRegexp:      isRegexp,
		CaseSensitive: caseSensitive,
	})
	if err != nil {
		return nil, err
	}
	return normalizeUnits(resp.TUs), nil
}

func (c *Client) BatchTranslate(segments []datastructure.Segment) ([]datastructure.Segment, error) {
	if len(segments) == 0 {
		return []datastructure.Segment{}, nil
	}
	resp, err := c.call(Request{Command: CMD_BATCH_TRANSLATE, Segments: segments})
	if err != nil {
		return nil, err
	}
	if len(resp.Segments) != len(segments) {
		return nil, util.WrapErrorf(nil, util.ErrRemoteProtocol, "remote %s returned %d segments for %d", CMD_BATCH_TRANSLATE,
			len(resp.Segments), len(segments))
	}
	for i := range resp.Segments {
		if resp.Segments[i].Matches == nil {
			resp.Segments[i].Matches = []datastructure.Match{}
		}
	}
	return resp.Segments, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// normalizeUnit restores the empty collections that omitempty dropped on the wire.
func normalizeUnit(tu *datastructure.TranslationUnit) *datastructure.TranslationUnit {
	if tu.Properties == nil {
		tu.Properties = make(map[string]string)
	}
	if tu.Languages == nil {
		tu.Languages = []string{}
	}
	if tu.Notes == nil {
		tu.Notes = []string{}
	}
	if tu.Variants == nil {
		tu.Variants = make(map[string]datastructure.Variant)
	}
	return tu
}

func normalizeUnits(tus []*datastructure.TranslationUnit) []*datastructure.TranslationUnit {
	out := make([]*datastructure.TranslationUnit, 0, len(tus))
	for _, tu := range tus {
		out = append(out, normalizeUnit(tu))
	}
	return out
}
