package refrate

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/classbank/bank-engine/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgram>
          <KeyRate>
            <KR>
              <DT>2026-08-28T00:00:00+03:00</DT>
              <Rate>16.50</Rate>
            </KR>
            <KR>
              <DT>2026-08-27T00:00:00+03:00</DT>
              <Rate>17.00</Rate>
            </KR>
          </KeyRate>
        </diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestParseXMLResponse(t *testing.T) {
	rate, err := parseXMLResponse([]byte(sampleResponse))
	require.NoError(t, err)
	assert.Equal(t, 16.50, rate)
}

func TestParseXMLResponseNoData(t *testing.T) {
	empty := `<?xml version="1.0"?><Envelope><Body></Body></Envelope>`
	_, err := parseXMLResponse([]byte(empty))
	assert.Error(t, err)
}

func TestParseXMLResponseNotXML(t *testing.T) {
	_, err := parseXMLResponse([]byte("<unclosed"))
	assert.Error(t, err)
}

func TestRefreshUpdatesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(&config.Config{RateFeedURL: srv.URL}, silentLogger())
	c.backoff = time.Millisecond

	require.NoError(t, c.Refresh())
	rate, fetchedAt := c.Current()
	assert.Equal(t, 16.50, rate)
	assert.False(t, fetchedAt.IsZero())
}

func TestRefreshRetriesThenFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(&config.Config{RateFeedURL: srv.URL}, silentLogger())
	c.backoff = time.Millisecond

	err := c.Refresh()
	assert.Error(t, err)
	assert.Equal(t, 3, calls)

	rate, fetchedAt := c.Current()
	assert.Zero(t, rate)
	assert.True(t, fetchedAt.IsZero())
}
