package dreamina

import (
	"context"
	"encoding/json"
)

type CreditInfo struct {
	GiftCredit     int `json:"gift_credit"`
	PurchaseCredit int `json:"purchase_credit"`
	VIPCredit      int `json:"vip_credit"`
	TotalCredit    int `json:"total_credit"`
}

type creditResponse struct {
	Credit struct {
		GiftCredit     int `json:"gift_credit"`
		PurchaseCredit int `json:"purchase_credit"`
		VIPCredit      int `json:"vip_credit"`
	} `json:"credit"`
}

// GetCredit queries the account balance on the commerce host.
func (c *Client) GetCredit(ctx context.Context, refreshToken string) (CreditInfo, error) {
	data, err := c.Do(ctx, "POST", "/commerce/v1/benefits/user_credit", refreshToken, RequestOptions{
		Data:            map[string]interface{}{},
		NoDefaultParams: true,
	})
	if err != nil {
		return CreditInfo{}, err
	}
	var response creditResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return CreditInfo{}, err
	}
	info := CreditInfo{
		GiftCredit:     response.Credit.GiftCredit,
		PurchaseCredit: response.Credit.PurchaseCredit,
		VIPCredit:      response.Credit.VIPCredit,
	}
	info.TotalCredit = info.GiftCredit + info.PurchaseCredit + info.VIPCredit
	c.logger.Infof("credit: gift=%d, purchase=%d, vip=%d, total=%d", info.GiftCredit, info.PurchaseCredit, info.VIPCredit, info.TotalCredit)
	return info, nil
}

type receiveCreditResponse struct {
	ReceiveQuota int `json:"receive_quota"`
}

// ReceiveCredit claims the daily free credits.
func (c *Client) ReceiveCredit(ctx context.Context, refreshToken string) (int, error) {
	data, err := c.Do(ctx, "POST", "/commerce/v1/benefits/credit_receive", refreshToken, RequestOptions{
		Data: map[string]interface{}{
			"time_zone": "Asia/Shanghai",
		},
	})
	if err != nil {
		return 0, err
	}
	var response receiveCreditResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return 0, err
	}
	c.logger.Infof("received %d credits", response.ReceiveQuota)
	return response.ReceiveQuota, nil
}
