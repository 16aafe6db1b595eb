package refrate

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/classbank/bank-engine/internal/config"
	"github.com/sirupsen/logrus"
)

// Client fetches a central-bank reference key rate over the SOAP feed
// and caches the latest value. Teachers use it as a reference point when
// setting product base rates; the engine itself never depends on it.
type Client struct {
	url     string
	client  *http.Client
	log     *logrus.Logger
	backoff time.Duration

	mu        sync.RWMutex
	rate      float64
	fetchedAt time.Time
}

// NewClient initializes a new reference rate client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.RateFeedURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:     log,
		backoff: time.Second,
	}
}

// buildSOAPRequest creates a SOAP request for the key rate history
func (c *Client) buildSOAPRequest() string {
	fromDate := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	toDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

// sendRequest sends the SOAP request to the feed
func (c *Client) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Rate feed XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts the latest key rate from the XML body
func parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %w", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return 0, fmt.Errorf("no key rate data found in XML")
	}

	// The first element carries the most recent rate
	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return 0, fmt.Errorf("rate element not found in XML")
	}

	var rate float64
	if _, err := fmt.Sscanf(rateElement.Text(), "%f", &rate); err != nil {
		return 0, fmt.Errorf("failed to parse rate: %w", err)
	}

	return rate, nil
}

func (c *Client) fetch() (float64, error) {
	body, err := c.sendRequest(c.buildSOAPRequest())
	if err != nil {
		return 0, err
	}
	return parseXMLResponse(body)
}

// Refresh fetches the current rate with bounded exponential-backoff
// retries and updates the cache. Called from the scheduled refresh job.
func (c *Client) Refresh() error {
	const maxAttempts = 3

	var lastErr error
	delay := c.backoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		rate, err := c.fetch()
		if err == nil {
			c.mu.Lock()
			c.rate = rate
			c.fetchedAt = time.Now()
			c.mu.Unlock()
			c.log.Infof("Reference rate refreshed: %.2f%%", rate)
			return nil
		}
		lastErr = err
		if attempt < maxAttempts {
			c.log.Warnf("Reference rate fetch failed (attempt %d/%d): %v", attempt, maxAttempts, err)
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("failed to refresh reference rate: %w", lastErr)
}

// Current returns the cached rate and when it was fetched. A zero time
// means no fetch has succeeded yet.
func (c *Client) Current() (float64, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate, c.fetchedAt
}
