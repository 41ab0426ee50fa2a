package httpengine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/resilience"
)

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// client fetches documents for one cookie scope.
type client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breaker  *resilience.Breaker
	maxBytes int64
}

// response is a fetched document.
type response struct {
	URL         string
	Status      int
	ContentType string
	Disposition string
	Body        []byte
	Secure      bool
	Issuer      *string
}

// newTransport returns the pooled transport shared by every client.
func newTransport() http.RoundTripper {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	return retryClient.HTTPClient.Transport
}

func newBreaker() *resilience.Breaker {
	return resilience.New("http-engine", resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Sites vary in reliability, so only trip on sustained failure
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})
}

func newClient(settings *engine.Settings, transport http.RoundTripper, jar http.CookieJar, limiter *rate.Limiter, breaker *resilience.Breaker) *client {
	restyClient := resty.NewWithClient(&http.Client{Transport: transport, Jar: jar})
	restyClient.
		SetTimeout(settings.RequestTimeout.Duration).
		SetRetryCount(settings.RetryMax).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(settings.MaxRedirects)).
		SetHeader("User-Agent", settings.UserAgent).
		SetHeader("Accept", acceptHeader).
		SetDoNotParseResponse(true)

	if settings.TrackingProtection {
		restyClient.SetHeader("DNT", "1")
	}

	return &client{
		resty:    restyClient,
		limiter:  limiter,
		breaker:  breaker,
		maxBytes: settings.MaxBodyBytes,
	}
}

func newJar() http.CookieJar {
	// cookiejar.New only fails with a broken PublicSuffixList
	jar, _ := cookiejar.New(nil)
	return jar
}

// fetch GETs url through the rate limiter and circuit breaker.
func (c *client) fetch(ctx context.Context, url string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	resp, err := resilience.Call(c.breaker, func() (*response, error) {
		raw, err := c.resty.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, err
		}
		return c.read(raw)
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (c *client) read(raw *resty.Response) (*response, error) {
	body := raw.RawBody()
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	status := raw.StatusCode()
	if status >= 500 {
		return nil, fmt.Errorf("HTTP %d", status)
	}

	resp := &response{
		URL:         raw.Request.URL,
		Status:      status,
		ContentType: raw.Header().Get("Content-Type"),
		Disposition: raw.Header().Get("Content-Disposition"),
		Body:        data,
	}
	if httpResp := raw.RawResponse; httpResp != nil {
		if httpResp.Request != nil && httpResp.Request.URL != nil {
			resp.URL = httpResp.Request.URL.String()
		}
		if tls := httpResp.TLS; tls != nil {
			resp.Secure = true
			if len(tls.PeerCertificates) > 0 {
				issuer := tls.PeerCertificates[0].Issuer.CommonName
				resp.Issuer = &issuer
			}
		}
	}
	return resp, nil
}
