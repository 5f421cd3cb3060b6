/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/rs/zerolog"
)

// Credentials identify one Jira Cloud account. Every request carries its
// own set; the client holds no process-wide authentication state.
type Credentials struct {
    Domain   string `json:"domain"`
    Email    string `json:"email"`
    APIToken string `json:"apiToken"`
}

func (c Credentials) Complete() bool {
    return strings.TrimSpace(c.Domain) != "" && strings.TrimSpace(c.Email) != "" && strings.TrimSpace(c.APIToken) != ""
}

type Client struct {
    baseURL string
    email   string
    token   string
    http    *http.Client
    log     zerolog.Logger
}

// NewClient builds an immutably-configured client for one credential
// set. baseURLOverride replaces the <domain>.atlassian.net convention
// for server/DC installs; leave it empty for Cloud.
func NewClient(creds Credentials, baseURLOverride string, timeout time.Duration, log zerolog.Logger) *Client {
    base := strings.TrimRight(baseURLOverride, "/")
    if base == "" {
        clean := strings.TrimSpace(creds.Domain)
        clean = strings.TrimPrefix(clean, "https://")
        clean = strings.TrimPrefix(clean, "http://")
        clean = strings.TrimSuffix(clean, "/")
        clean = strings.TrimSuffix(clean, ".atlassian.net")
        base = "https://" + clean + ".atlassian.net"
    }
    return &Client{
        baseURL: base,
        email:   creds.Email,
        token:   creds.APIToken,
        http:    &http.Client{Timeout: timeout},
        log:     log,
    }
}

func (c *Client) apiURL(path string, q url.Values) string {
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := c.baseURL + "/rest/api/3" + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("jira: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        var r io.Reader
        if payload != nil { r = strings.NewReader(string(payload)) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return nil, err }
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        req.Header.Set("Accept", "application/json")
        req.SetBasicAuth(c.email, c.token)
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            if resp.StatusCode >= 300 {
                b, _ := io.ReadAll(resp.Body)
                resp.Body.Close()
                // retry on 429/5xx
                if resp.StatusCode == 429 || resp.StatusCode >= 500 {
                    lastErr = fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                } else {
                    return nil, fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                }
            } else {
                var out map[string]any
                err := json.NewDecoder(resp.Body).Decode(&out)
                resp.Body.Close()
                if err != nil { return nil, err }
                return out, nil
            }
        }
        // backoff
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return nil, lastErr
}

// Myself returns the authenticated user, used to validate credentials.
func (c *Client) Myself(ctx context.Context) (map[string]any, error) {
    return c.doJSON(ctx, http.MethodGet, c.apiURL("/myself", nil), nil)
}

// Search runs a JQL query with startAt/maxResults paging.
func (c *Client) Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error) {
    if jql == "" { return nil, errors.New("jira: empty jql") }
    q := url.Values{}
    q.Set("jql", jql)
    if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
    if max > 0 { q.Set("maxResults", fmt.Sprint(max)) }
    q.Set("fields", "summary,issuetype,project,status,updated")
    return c.doJSON(ctx, http.MethodGet, c.apiURL("/search", q), nil)
}

// Changelog returns one page of an issue's audit log, unordered allowed.
func (c *Client) Changelog(ctx context.Context, key string, startAt, max int) (map[string]any, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    q := url.Values{}
    if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
    if max > 0 { q.Set("maxResults", fmt.Sprint(max)) }
    return c.doJSON(ctx, http.MethodGet, c.apiURL("/issue/"+url.PathEscape(key)+"/changelog", q), nil)
}
