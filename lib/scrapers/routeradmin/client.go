// Package routeradmin drives a consumer router's HTML admin interface:
// it scrapes the access-control rule tables out of the admin pages and
// replays the form postbacks the router's own UI would have sent.
package routeradmin

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/Wayne-King/RouterControl/lib/htmlutil"
	"github.com/Wayne-King/RouterControl/lib/knowndevices"
	"github.com/Wayne-King/RouterControl/lib/pagecache"
	"github.com/Wayne-King/RouterControl/lib/restyutil"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// Admin endpoints. These are protocol constants of the firmware, not
// configuration.
const (
	deviceListPath = "/access_control.htm"
	addDevicePath  = "/access_control_add.htm"
)

// Cache keys. The device list is parsed from the admin page, so
// invalidating the page cascades onto it.
const (
	pageCacheKey    = "routeradmin:page"
	devicesCacheKey = "routeradmin:devices"
)

type Credential struct {
	Username string
	Password string
}

var ErrNotAuthenticated = fmt.Errorf("no router credential is configured")

// CredentialProvider supplies the admin credential on demand. Get
// fails with ErrNotAuthenticated when none is configured.
type CredentialProvider interface {
	Get() (Credential, error)
}

// Page is the scraped snapshot of the admin control page: the hidden
// form fields the firmware round-trips through every postback, the
// form's action, and the raw body the rule tables are parsed from.
// Session affinity itself lives in the client's cookie jar.
type Page struct {
	Fields map[string]string
	Action string
	Body   []byte
}

type Client struct {
	baseUrl *url.URL
	http    *resty.Client
	creds   CredentialProvider
	known   knowndevices.Source
	cache   *pagecache.Store
	pageTtl time.Duration
}

type ClientOptions struct {
	BaseUrl     string
	Credentials CredentialProvider
	// KnownDevices may be nil, in which case every device is named
	// with the unknown sentinel.
	KnownDevices knowndevices.Source
	Cache        *pagecache.Store
	// PageTtl defaults to pagecache.DefaultTTL.
	PageTtl time.Duration
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	// the firmware ties form submission to the session token it set on
	// the page fetch; the jar threads it through unchanged
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	ttl := opts.PageTtl
	if ttl == 0 {
		ttl = pagecache.DefaultTTL
	}
	opts.Cache.DependsOn(devicesCacheKey, pageCacheKey)

	return &Client{
		baseUrl: baseUrl,
		http:    client,
		creds:   opts.Credentials,
		known:   opts.KnownDevices,
		cache:   opts.Cache,
		pageTtl: ttl,
	}, nil
}

// FetchPage returns the admin control page, from cache when fresh.
func (c *Client) FetchPage(ctx context.Context) (Page, error) {
	return pagecache.GetOrCreate(c.cache, pageCacheKey, c.pageTtl, func() (Page, error) {
		return c.fetchPage(ctx, deviceListPath)
	})
}

// FetchAddPage fetches the add-device sub-page form. It is not cached;
// the add form is only needed at the moment of an add postback.
func (c *Client) FetchAddPage(ctx context.Context) (Page, error) {
	return c.fetchPage(ctx, addDevicePath)
}

func (c *Client) fetchPage(ctx context.Context, path string) (Page, error) {
	ctx, span := tracer.Start(ctx, "client:fetchPage")
	defer span.End()

	cred, err := c.creds.Get()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no credential")
		return Page{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(cred.Username, cred.Password).
		Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch admin page")
		return Page{}, err
	}
	if res.StatusCode() != http.StatusOK {
		// best effort: parse whatever the router sent back anyway
		slog.Warn(
			"unexpected status fetching admin page",
			"path", path,
			"status", res.StatusCode(),
		)
	} else {
		slog.Info("fetched admin page", "path", path)
	}

	return parsePage(res.Body())
}

// parsePage extracts the first form's action and a flat snapshot of
// its input fields. A multi-valued input keeps its first value only;
// compose paths that cannot replay such a field drop it instead.
func parsePage(body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return Page{}, err
	}

	form := doc.Find("form").First()
	page := Page{
		Fields: map[string]string{},
		Action: form.AttrOr("action", ""),
		Body:   body,
	}
	for _, node := range form.Find("input").Nodes {
		name := htmlutil.Attr(node, "name")
		if name == "" {
			continue
		}
		if _, exists := page.Fields[name]; exists {
			continue
		}
		page.Fields[name] = htmlutil.Attr(node, "value")
	}
	return page, nil
}

// FetchDevices returns the merged device list, from cache when fresh.
func (c *Client) FetchDevices(ctx context.Context) ([]Device, error) {
	return pagecache.GetOrCreate(c.cache, devicesCacheKey, c.pageTtl, func() ([]Device, error) {
		page, err := c.FetchPage(ctx)
		if err != nil {
			return nil, err
		}
		return c.devicesFromPage(ctx, page)
	})
}

// fetchDevicesUncached re-fetches and re-parses the device list,
// bypassing both caches. The rule-settings encoder needs the router's
// current view, not a snapshot up to TTL old.
func (c *Client) fetchDevicesUncached(ctx context.Context) ([]Device, error) {
	page, err := c.fetchPage(ctx, deviceListPath)
	if err != nil {
		return nil, err
	}
	return c.devicesFromPage(ctx, page)
}

func (c *Client) devicesFromPage(ctx context.Context, page Page) ([]Device, error) {
	ctx, span := tracer.Start(ctx, "client:devicesFromPage")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page.Body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse admin page html")
		return nil, err
	}

	var devices []Device
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("span[name^='rule_']").Length() == 0 {
			return
		}
		fragment, err := goquery.OuterHtml(row)
		if err != nil {
			span.RecordError(err)
			return
		}

		props := ParseRuleFragment(fragment)
		if props.Len() == 0 {
			return
		}
		// rows of the live rule table carry a status property; rows of
		// the static allow/block lists do not
		hint := ConnectionOffline
		if props.Has("mac") {
			hint = ConnectionOnline
		}

		device := DeviceFromProperties(props, hint)
		if device.MacAddress == "" {
			slog.Warn("skipping rule row without a mac", "properties", props.Names())
			return
		}
		devices = append(devices, device)
	})

	known, err := c.loadKnown(ctx)
	if err != nil {
		return nil, err
	}
	return MergeKnownNames(devices, known), nil
}

func (c *Client) loadKnown(ctx context.Context) ([]knowndevices.KnownDevice, error) {
	if c.known == nil {
		return nil, nil
	}
	return c.known.Load(ctx)
}

// Postback submits fields to the cached page's form action, with the
// session the page fetch established. A non-2xx response is warned
// about and otherwise ignored; the caller observes a no-op and may
// retry.
func (c *Client) Postback(ctx context.Context, fields map[string]string) error {
	ctx, span := tracer.Start(ctx, "client:Postback")
	defer span.End()

	page, err := c.FetchPage(ctx)
	if err != nil {
		return err
	}
	action, err := c.resolveAction(page.Action)
	if err != nil {
		return err
	}
	cred, err := c.creds.Get()
	if err != nil {
		return err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(cred.Username, cred.Password).
		SetFormData(fields).
		Post(action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "postback failed")
		slog.Warn("postback failed", "action", action, "err", err)
		return nil
	}

	if res.StatusCode() != http.StatusOK {
		slog.Warn(
			"postback returned unexpected status",
			"action", action,
			"status", res.StatusCode(),
		)
		return nil
	}
	slog.Info("postback succeeded", "action", action)
	return nil
}

// resolveAction resolves the form action against the router's origin.
func (c *Client) resolveAction(action string) (string, error) {
	if action == "" {
		return deviceListPath, nil
	}
	resolved, err := c.baseUrl.Parse(action)
	if err != nil {
		return "", fmt.Errorf("unusable form action %q: %w", action, err)
	}
	return resolved.String(), nil
}

// InvalidatePage drops the cached admin page, and with it the device
// list derived from it.
func (c *Client) InvalidatePage() error {
	return c.cache.Invalidate(pageCacheKey)
}

// InvalidateDevices drops only the cached device list.
func (c *Client) InvalidateDevices() error {
	return c.cache.Invalidate(devicesCacheKey)
}
