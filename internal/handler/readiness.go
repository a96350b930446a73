package handler

import (
	"context"
	"net/http"
	"time"
)

// UpstreamCheck builds a readiness check that issues a HEAD request to
// baseURL. Any HTTP answer counts as reachable.
func UpstreamCheck(hc *http.Client, baseURL string) ReadinessCheck {
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Second}
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}
