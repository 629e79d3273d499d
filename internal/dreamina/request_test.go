package dreamina

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(upstreamURL string) *Client {
	hosts := HostTable{}
	storage := StorageTable{}
	for _, region := range []Region{RegionCN, RegionUS, RegionHK, RegionJP, RegionSG} {
		hosts[region] = HostBucket{Base: upstreamURL, Commerce: upstreamURL}
		storage[region] = StorageBucket{Host: upstreamURL, SigningRegion: "cn-north-1"}
	}
	return NewClient(ClientConfig{
		Retry:   &RetryPolicy{MaxRetries: 2, Delay: time.Millisecond},
		Hosts:   hosts,
		Storage: storage,
	})
}

func TestDoReturnsDataField(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ret":"0","errmsg":"success","data":{"value":42}}`)
	}))
	defer upstream.Close()

	data, err := newTestClient(upstream.URL).Do(context.Background(), "GET", "/mweb/v1/anything", "token", RequestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("data not json: %v", err)
	}
	if parsed.Value != 42 {
		t.Fatalf("value = %d, want 42", parsed.Value)
	}
}

func TestDoReturnsWholeBodyWithoutDataField(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"message":"ok","receive_quota":5}`)
	}))
	defer upstream.Close()

	data, err := newTestClient(upstream.URL).Do(context.Background(), "POST", "/mweb/v1/anything", "token", RequestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed struct {
		ReceiveQuota int `json:"receive_quota"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("body not json: %v", err)
	}
	if parsed.ReceiveQuota != 5 {
		t.Fatalf("receive_quota = %d, want 5", parsed.ReceiveQuota)
	}
}

func TestDoRequestShape(t *testing.T) {
	var captured *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		fmt.Fprint(w, `{"ret":0,"data":{}}`)
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)
	_, err := client.Do(context.Background(), "POST", "/mweb/v1/aigc_draft/generate", "us-secret", RequestOptions{
		Params: map[string]string{"aid": "override", "extra": "1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	query := captured.URL.Query()
	if got := query.Get("aid"); got != "override" {
		t.Fatalf("caller params must win on collision, aid = %q", got)
	}
	if got := query.Get("extra"); got != "1" {
		t.Fatalf("extra param missing, got %q", got)
	}
	if got := query.Get("region"); got != "US" {
		t.Fatalf("region param = %q, want US", got)
	}
	if query.Has("webId") {
		t.Fatalf("webId must be omitted for international regions")
	}
	if got := captured.Header.Get("Sign-Ver"); got != "1" {
		t.Fatalf("Sign-Ver header = %q", got)
	}
	if got := captured.Header.Get("Sign"); len(got) != 32 {
		t.Fatalf("Sign header should be a md5 hex digest, got %q", got)
	}
	if got := captured.Header.Get("Appid"); got != "513641" {
		t.Fatalf("Appid header = %q, want 513641", got)
	}
	cookie := captured.Header.Get("Cookie")
	if !strings.Contains(cookie, "sessionid=secret") {
		t.Fatalf("cookie must carry the stripped token, got %q", cookie)
	}
	if !strings.Contains(cookie, "store-region=us") {
		t.Fatalf("cookie must carry the store region, got %q", cookie)
	}
	if got := captured.Header.Get("Referer"); got != "https://dreamina.capcut.com/" {
		t.Fatalf("referer = %q", got)
	}
}

func TestDoDomesticDefaultParams(t *testing.T) {
	var captured *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		fmt.Fprint(w, `{"ret":0,"data":{}}`)
	}))
	defer upstream.Close()

	if _, err := newTestClient(upstream.URL).Do(context.Background(), "GET", "/mweb/v1/anything", "secret", RequestOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	query := captured.URL.Query()
	if !query.Has("webId") {
		t.Fatalf("domestic requests must carry webId")
	}
	if got := query.Get("aid"); got != "513695" {
		t.Fatalf("aid = %q, want 513695", got)
	}
	if got := query.Get("device_platform"); got != "web" {
		t.Fatalf("device_platform = %q", got)
	}
}

func TestDoSuppressedDefaultParams(t *testing.T) {
	var captured *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		fmt.Fprint(w, `{"ret":0,"data":{}}`)
	}))
	defer upstream.Close()

	if _, err := newTestClient(upstream.URL).Do(context.Background(), "POST", "/commerce/v1/benefits/user_credit", "secret", RequestOptions{NoDefaultParams: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured.URL.Query()) != 0 {
		t.Fatalf("expected no query params, got %v", captured.URL.Query())
	}
}

func TestDoNonRetryableAbortsImmediately(t *testing.T) {
	attempts := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"ret":1006,"errmsg":"no credit"}`)
	}))
	defer upstream.Close()

	_, err := newTestClient(upstream.URL).Do(context.Background(), "POST", "/mweb/v1/anything", "token", RequestOptions{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != 1006 {
		t.Fatalf("code = %d, want 1006", apiErr.Code)
	}
	if apiErr.Retryable {
		t.Fatalf("1006 must be non-retryable")
	}
	if !strings.Contains(apiErr.Message, "积分不足") {
		t.Fatalf("expected enriched message, got %q", apiErr.Message)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestDoRetryableExhaustsPolicy(t *testing.T) {
	attempts := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"ret":500,"errmsg":"server busy"}`)
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)
	_, err := client.Do(context.Background(), "POST", "/mweb/v1/anything", "token", RequestOptions{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.Retryable {
		t.Fatalf("code 500 must be retryable")
	}
	if want := client.retry.MaxRetries + 1; attempts != want {
		t.Fatalf("attempts = %d, want %d", attempts, want)
	}
}

func TestDoRetriesOnMalformedBody(t *testing.T) {
	attempts := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			fmt.Fprint(w, `<html>boom</html>`)
			return
		}
		fmt.Fprint(w, `{"ret":0,"data":{"fine":true}}`)
	}))
	defer upstream.Close()

	if _, err := newTestClient(upstream.URL).Do(context.Background(), "GET", "/mweb/v1/anything", "token", RequestOptions{}); err != nil {
		t.Fatalf("expected recovery after transport-level failure, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestLightSignShape(t *testing.T) {
	first := lightSign("/mweb/v1/aigc_draft/generate", 1700000000)
	if len(first) != 32 {
		t.Fatalf("signature length = %d, want 32", len(first))
	}
	if first != lightSign("/mweb/v1/aigc_draft/generate", 1700000000) {
		t.Fatalf("signature must be deterministic for the same inputs")
	}
	// only the last 7 path characters participate
	if first != lightSign("/other/prefix/ft/generate"[len("/other/prefix/ft/generate")-7:], 1700000000) {
		t.Fatalf("signature must depend only on the path tail")
	}
	if first == lightSign("/mweb/v1/aigc_draft/generate", 1700000001) {
		t.Fatalf("signature must change with the timestamp")
	}
}

func TestDoDecodesCompressedResponses(t *testing.T) {
	envelope := `{"ret":"0","errmsg":"success","data":{"value":7}}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accepted := r.Header.Get("Accept-Encoding"); strings.Contains(accepted, "br") || strings.Contains(accepted, "zstd") {
			t.Errorf("advertised codecs the client cannot undo: %q", accepted)
		}
		var buf bytes.Buffer
		switch r.URL.Query().Get("enc") {
		case "gzip":
			gzipWriter := gzip.NewWriter(&buf)
			gzipWriter.Write([]byte(envelope))
			gzipWriter.Close()
			w.Header().Set("Content-Encoding", "gzip")
		case "deflate":
			flateWriter, _ := flate.NewWriter(&buf, flate.DefaultCompression)
			flateWriter.Write([]byte(envelope))
			flateWriter.Close()
			w.Header().Set("Content-Encoding", "deflate")
		}
		w.Write(buf.Bytes())
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)
	for _, encoding := range []string{"gzip", "deflate"} {
		data, err := client.Do(context.Background(), "GET", "/mweb/v1/anything", "token", RequestOptions{
			Params: map[string]string{"enc": encoding},
		})
		if err != nil {
			t.Fatalf("%s response not decoded: %v", encoding, err)
		}
		var parsed struct {
			Value int `json:"value"`
		}
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("%s data not json: %v", encoding, err)
		}
		if parsed.Value != 7 {
			t.Fatalf("%s value = %d, want 7", encoding, parsed.Value)
		}
	}
}
