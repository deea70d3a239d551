package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MarcGrol/cartbackend/lib/mylog"
)

const (
	timeout = 5 * time.Second
)

type jsonHTTPClient struct {
	client *http.Client
	logger mylog.Logger
}

func newJSONHTTPClient() HTTPSender {
	return &jsonHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: mylog.New("httpclient"),
	}
}

func (c jsonHTTPClient) Send(ctx context.Context, method string, url string, body []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("error creating http request for %s %s: %s", method, url, err)
	}

	if len(body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Log(ctx, "", mylog.SeverityDebug, "HTTP request: %s %s", method, url)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("error sending %s %s: %s", method, url, err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response %s %s: %s", method, url, err)
	}

	c.logger.Log(ctx, "", mylog.SeverityDebug, "HTTP response: %s %s -> %d", method, url, httpResp.StatusCode)

	return httpResp.StatusCode, respPayload, nil
}
