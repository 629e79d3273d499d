package dreamina

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haojie06/dreamina-http/internal/awssig"
)

// UploadCredential is issued fresh per upload by the credential endpoint
// and never cached across jobs.
type UploadCredential struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ServiceID       string
}

type uploadTokenResponse struct {
	Auth struct {
		AccessKeyID     string `json:"access_key_id"`
		SecretAccessKey string `json:"secret_access_key"`
		SessionToken    string `json:"session_token"`
	} `json:"auth"`
	ServiceID string `json:"service_id"`
}

type storageResponseMetadata struct {
	Error *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Error"`
}

type applyUploadResponse struct {
	Result struct {
		UploadAddress struct {
			UploadHosts []string `json:"UploadHosts"`
			StoreInfos  []struct {
				StoreURI string `json:"StoreUri"`
				Auth     string `json:"Auth"`
			} `json:"StoreInfos"`
			SessionKey string `json:"SessionKey"`
		} `json:"UploadAddress"`
	} `json:"Result"`
	ResponseMetadata storageResponseMetadata `json:"ResponseMetadata"`
}

type commitUploadResponse struct {
	Result struct {
		Results []struct {
			URI string `json:"Uri"`
		} `json:"Results"`
		PluginResult []struct {
			ImageURI string `json:"ImageUri"`
		} `json:"PluginResult"`
	} `json:"Result"`
	ResponseMetadata storageResponseMetadata `json:"ResponseMetadata"`
}

type rawUploadResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UploadImage turns one image source (remote URL or data URI) into an
// upstream storage reference through the apply/upload/commit exchange.
// Any failed step aborts the whole upload.
func (c *Client) UploadImage(ctx context.Context, imageSource, refreshToken string) (string, error) {
	imageData, err := c.resolveImageSource(ctx, imageSource)
	if err != nil {
		return "", err
	}

	credential, err := c.getUploadCredential(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("获取上传凭证失败: %w", err)
	}

	regionInfo := ParseRegionFromToken(refreshToken)
	bucket, exists := c.storage[regionInfo.Region]
	if !exists {
		bucket = c.storage[RegionCN]
	}

	applyURL := fmt.Sprintf("%s/?Action=ApplyImageUpload&Version=2018-08-01&ServiceId=%s&FileSize=%d&s=%s",
		bucket.Host, credential.ServiceID, len(imageData), randomUploadMark())
	var applied applyUploadResponse
	if err := c.storageRequest(ctx, "GET", applyURL, credential, bucket.SigningRegion, nil, &applied); err != nil {
		return "", fmt.Errorf("申请上传失败: %w", err)
	}
	address := applied.Result.UploadAddress
	if len(address.UploadHosts) == 0 || len(address.StoreInfos) == 0 {
		return "", fmt.Errorf("申请上传失败: empty upload address")
	}

	storeInfo := address.StoreInfos[0]
	if err := c.putImageData(ctx, address.UploadHosts[0], storeInfo.StoreURI, storeInfo.Auth, imageData); err != nil {
		return "", err
	}

	commitURL := fmt.Sprintf("%s/?Action=CommitImageUpload&Version=2018-08-01&ServiceId=%s", bucket.Host, credential.ServiceID)
	commitBody, _ := json.Marshal(map[string]string{"SessionKey": address.SessionKey})
	var committed commitUploadResponse
	if err := c.storageRequest(ctx, "POST", commitURL, credential, bucket.SigningRegion, commitBody, &committed); err != nil {
		return "", fmt.Errorf("提交上传失败: %w", err)
	}
	if len(committed.Result.PluginResult) > 0 && committed.Result.PluginResult[0].ImageURI != "" {
		return committed.Result.PluginResult[0].ImageURI, nil
	}
	if len(committed.Result.Results) > 0 && committed.Result.Results[0].URI != "" {
		return committed.Result.Results[0].URI, nil
	}
	return "", fmt.Errorf("提交上传失败: no storage uri in response")
}

// resolveImageSource fetches a remote URL or decodes an inline data URI.
func (c *Client) resolveImageSource(ctx context.Context, imageSource string) ([]byte, error) {
	if strings.HasPrefix(imageSource, "data:") {
		commaIndex := strings.IndexByte(imageSource, ',')
		if commaIndex < 0 || !strings.Contains(imageSource[:commaIndex], "base64") {
			return nil, fmt.Errorf("unsupported data uri")
		}
		imageData, err := base64.StdEncoding.DecodeString(imageSource[commaIndex+1:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode data uri: %w", err)
		}
		return imageData, nil
	}

	request, err := http.NewRequestWithContext(ctx, "GET", imageSource, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("下载图片失败: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("下载图片失败: %d", response.StatusCode)
	}
	return io.ReadAll(response.Body)
}

func (c *Client) getUploadCredential(ctx context.Context, refreshToken string) (UploadCredential, error) {
	data, err := c.Do(ctx, "POST", "/mweb/v1/get_upload_token", refreshToken, RequestOptions{
		Data: map[string]interface{}{"scene": 2},
	})
	if err != nil {
		return UploadCredential{}, err
	}
	var tokenResponse uploadTokenResponse
	if err := json.Unmarshal(data, &tokenResponse); err != nil {
		return UploadCredential{}, err
	}
	if tokenResponse.Auth.AccessKeyID == "" || tokenResponse.ServiceID == "" {
		return UploadCredential{}, fmt.Errorf("incomplete upload credential")
	}
	return UploadCredential{
		AccessKeyID:     tokenResponse.Auth.AccessKeyID,
		SecretAccessKey: tokenResponse.Auth.SecretAccessKey,
		SessionToken:    tokenResponse.Auth.SessionToken,
		ServiceID:       tokenResponse.ServiceID,
	}, nil
}

// storageRequest sends one derived-key-signed call to the storage api and
// rejects responses carrying an error payload.
func (c *Client) storageRequest(ctx context.Context, method, requestURL string, credential UploadCredential, signingRegion string, payload []byte, out interface{}) error {
	headers := map[string]string{
		awssig.DateHeader: time.Now().UTC().Format("20060102T150405Z"),
	}
	if credential.SessionToken != "" {
		headers[awssig.SecurityTokenHeader] = credential.SessionToken
	}
	authorization, err := awssig.Sign(method, requestURL, headers, credential.AccessKeyID, credential.SecretAccessKey, credential.SessionToken, string(payload), signingRegion)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return err
	}
	request.Header.Set(awssig.DateHeader, headers[awssig.DateHeader])
	if credential.SessionToken != "" {
		request.Header.Set(awssig.SecurityTokenHeader, credential.SessionToken)
	}
	if method == "POST" && payload != nil {
		request.Header.Set("Content-Type", "application/json")
		payloadHash := sha256.Sum256(payload)
		request.Header.Set(awssig.ContentSHA256Header, hex.EncodeToString(payloadHash[:]))
	}
	request.Header.Set("Authorization", authorization)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	var metadata struct {
		ResponseMetadata storageResponseMetadata `json:"ResponseMetadata"`
	}
	if err := json.Unmarshal(responseBody, &metadata); err != nil {
		return fmt.Errorf("failed to decode storage response (status %s): %w", response.Status, err)
	}
	if metadata.ResponseMetadata.Error != nil {
		return fmt.Errorf("storage api error %s: %s", metadata.ResponseMetadata.Error.Code, metadata.ResponseMetadata.Error.Message)
	}
	return json.Unmarshal(responseBody, out)
}

// putImageData sends the raw bytes with the single-use authorization from
// the apply step. Success is decided by the service marker in the body,
// not the transport status alone.
func (c *Client) putImageData(ctx context.Context, uploadHost, storeURI, auth string, imageData []byte) error {
	uploadBase := uploadHost
	if !strings.Contains(uploadBase, "://") {
		uploadBase = "https://" + uploadBase
	}
	uploadURL := fmt.Sprintf("%s/upload/v1/%s", uploadBase, storeURI)
	request, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(imageData))
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", auth)
	request.Header.Set("Content-Crc32", fmt.Sprintf("%08x", crc32.ChecksumIEEE(imageData)))
	request.Header.Set("Content-Type", "application/octet-stream")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("上传图片失败: %w", err)
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("上传图片失败: %d", response.StatusCode)
	}

	var uploadResponse rawUploadResponse
	if err := json.Unmarshal(responseBody, &uploadResponse); err != nil {
		return fmt.Errorf("上传图片失败: unexpected response: %w", err)
	}
	if uploadResponse.Code != 2000 && uploadResponse.Message != "success" {
		return fmt.Errorf("上传图片失败: code %d, message %s", uploadResponse.Code, uploadResponse.Message)
	}
	return nil
}

func randomUploadMark() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:11]
}
