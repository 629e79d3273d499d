package dreamina

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RequestOptions tune a single dispatch, all fields are optional.
type RequestOptions struct {
	Params map[string]string

	Data interface{}

	Headers map[string]string

	// NoDefaultParams drops the default query parameter set entirely,
	// used by the commerce endpoints.
	NoDefaultParams bool
}

type apiEnvelope struct {
	Ret     json.RawMessage `json:"ret"`
	Code    json.RawMessage `json:"code"`
	ErrMsg  string          `json:"errmsg"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// lightSign computes the web client's request signature: md5 over the
// salt, the path tail, platform/version codes and the device timestamp.
func lightSign(uri string, deviceTime int64) string {
	tail := uri
	if len(uri) > 7 {
		tail = uri[len(uri)-7:]
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%s|%s|%d||%s", signSaltHead, tail, PlatformCode, VersionCode, deviceTime, signSaltTail)))
	return hex.EncodeToString(sum[:])
}

// generateCookie synthesizes the browser session cookie, every session
// field carries the stripped token.
func (c *Client) generateCookie(regionInfo RegionInfo) string {
	return strings.Join([]string{
		fmt.Sprintf("_tea_web_id=%d", c.webID),
		"is_staff_user=false",
		"store-region=" + regionInfo.StoreRegion(),
		"store-region-src=uid",
		fmt.Sprintf("sid_guard=%s%%7C%d%%7C5184000%%7CMon%%2C+03-Feb-2025+08%%3A17%%3A09+GMT", regionInfo.Token, time.Now().Unix()),
		"uid_tt=" + c.userID,
		"uid_tt_ss=" + c.userID,
		"sid_tt=" + regionInfo.Token,
		"sessionid=" + regionInfo.Token,
		"sessionid_ss=" + regionInfo.Token,
	}, "; ")
}

func parseEnvelopeCode(raw json.RawMessage) (int, bool) {
	trimmed := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}
	code, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return code, true
}

// Do dispatches one signed request to the regional deployment selected by
// the credential and parses the JSON envelope. Classified errors follow
// the retry policy: transient ones are retried after a fixed delay,
// permanent ones surface immediately. On success the data field is
// returned when present, otherwise the whole body.
func (c *Client) Do(ctx context.Context, method, uri, refreshToken string, opts RequestOptions) (json.RawMessage, error) {
	regionInfo := ParseRegionFromToken(refreshToken)

	bucket, exists := c.hosts[regionInfo.Region]
	if !exists {
		bucket = c.hosts[RegionCN]
	}
	baseURL := bucket.Base
	if strings.HasPrefix(uri, "/commerce/") {
		baseURL = bucket.Commerce
	}
	aid := regionInfo.AssistantID()

	deviceTime := time.Now().Unix()
	sign := lightSign(uri, deviceTime)

	params := url.Values{}
	if !opts.NoDefaultParams {
		params.Set("aid", strconv.Itoa(aid))
		params.Set("device_platform", "web")
		params.Set("region", string(regionInfo.Region))
		if !regionInfo.IsInternational {
			params.Set("webId", strconv.FormatInt(c.webID, 10))
		}
		params.Set("da_version", "3.3.2")
		params.Set("web_component_open_flag", "1")
		params.Set("web_version", "7.5.0")
		params.Set("aigc_features", "app_lip_sync")
	}
	for key, value := range opts.Params {
		params.Set(key, value)
	}

	requestURL, err := url.Parse(baseURL + uri)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}
	requestURL.RawQuery = params.Encode()
	origin := requestURL.Scheme + "://" + requestURL.Host

	var body []byte
	if opts.Data != nil {
		if body, err = json.Marshal(opts.Data); err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	headers := http.Header{}
	for key, value := range fakeHeaders {
		headers.Set(key, value)
	}
	headers.Set("Origin", origin)
	headers.Set("Referer", regionInfo.Referer())
	headers.Set("Appid", strconv.Itoa(aid))
	headers.Set("Cookie", c.generateCookie(regionInfo))
	headers.Set("Device-Time", strconv.FormatInt(deviceTime, 10))
	headers.Set("Sign", sign)
	headers.Set("Sign-Ver", "1")
	for key, value := range opts.Headers {
		headers.Set(key, value)
	}

	c.logger.Debugf("sending request: %s %s, region: %s", strings.ToUpper(method), requestURL.String(), regionInfo.Region)

	var lastErr error
	for retries := 0; retries <= c.retry.MaxRetries; retries++ {
		if retries > 0 {
			c.logger.Infof("retry %d/%d for %s %s: %s", retries, c.retry.MaxRetries, strings.ToUpper(method), uri, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retry.Delay):
			}
		}
		data, err := c.doOnce(ctx, method, requestURL.String(), headers, body)
		if err == nil {
			return data, nil
		}
		if apiErr, ok := err.(*APIError); ok && !apiErr.Retryable {
			return nil, apiErr
		}
		lastErr = err
	}
	return nil, lastErr
}

func decodeResponseBody(response *http.Response) (io.ReadCloser, error) {
	switch response.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(response.Body)
	case "deflate":
		return flate.NewReader(response.Body), nil
	}
	return response.Body, nil
}

func (c *Client) doOnce(ctx context.Context, method, requestURL string, headers http.Header, body []byte) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), requestURL, bodyReader)
	if err != nil {
		return nil, err
	}
	request.Header = headers.Clone()

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	// setting Accept-Encoding manually bypasses the transport's
	// transparent gzip, so the advertised codecs are undone here
	decodedBody, err := decodeResponseBody(response)
	if err != nil {
		return nil, err
	}
	defer decodedBody.Close()

	responseBody, err := io.ReadAll(decodedBody)
	if err != nil {
		return nil, err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %s): %w", response.Status, err)
	}

	code, hasCode := parseEnvelopeCode(envelope.Ret)
	if !hasCode {
		code, _ = parseEnvelopeCode(envelope.Code)
	}
	message := envelope.ErrMsg
	if message == "" {
		message = envelope.Message
	}

	if code != 0 {
		friendly := message
		switch code {
		case 1006:
			friendly = fmt.Sprintf("积分不足: %s。请登录 Dreamina 网站充值或领取免费积分。", message)
		case 1015:
			friendly = fmt.Sprintf("登录已失效: %s。请重新获取 Session ID。", message)
		case 1000:
			friendly = fmt.Sprintf("参数错误: %s。请检查 Session ID 是否正确添加了区域前缀。", message)
		}
		return nil, &APIError{Code: code, Message: friendly, Retryable: !isNonRetryableCode(code)}
	}

	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return envelope.Data, nil
	}
	return json.RawMessage(responseBody), nil
}
