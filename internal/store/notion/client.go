// Package notion stores records as pages of Notion databases. A collection
// key is a database id.
package notion

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jomei/notionapi"
)

// DefaultBaseURL is the public Notion API.
const DefaultBaseURL = "https://api.notion.com"

// newClient builds the SDK client. A base URL other than the public API
// redirects every request to that host.
func newClient(token, baseURL string, hc *http.Client) (*notionapi.Client, error) {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL != "" && baseURL != DefaultBaseURL {
		target, err := url.Parse(baseURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("notion: bad base url %q", baseURL)
		}
		next := hc.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		rebased := *hc
		rebased.Transport = rehost{target: target, next: next}
		hc = &rebased
	}
	return notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(hc)), nil
}

type rehost struct {
	target *url.URL
	next   http.RoundTripper
}

func (r rehost) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	req.Host = r.target.Host
	return r.next.RoundTrip(req)
}
