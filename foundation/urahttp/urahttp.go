// Package urahttp provides an http client for URA instant prediction endpoints
package urahttp

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// returnList selects the response fields needed to build predictions
const returnList = "stoppointname,linename,destinationtext,tripid,estimatedtime,expiretime"

// Client fetches raw prediction payloads from a URA instant endpoint
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a Client for the endpoint base url. Requests that take
// longer than timeout are abandoned.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

// GetPredictions performs a single GET for predictions matching a stop and
// direction, returning the raw response body, one JSON record per line.
func (c *Client) GetPredictions(stopId string, directionId string) (string, error) {
	q := make(url.Values)
	q.Set("StopId", stopId)
	q.Set("DirectionID", directionId)
	q.Set("ReturnList", returnList)
	resource := c.endpoint + "?" + q.Encode()

	resp, err := c.httpClient.Get(resource)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", resource, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, resource)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed reading response from %s: %w", resource, err)
	}
	return string(body), nil
}
