package smssvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/shopspring/decimal"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/sms"
)

type (
	sendRequest struct {
		APIKey   string `json:"api_key"`
		SenderID string `json:"senderid"`
		Number   string `json:"number"`
		Message  string `json:"message"`
	}

	sendResponse struct {
		ResponseCode int `json:"response_code"`
	}

	balanceResponse struct {
		Balance json.RawMessage `json:"balance"`
		Error   string          `json:"error"`
	}
)

// bulkSMSBD talks to the BulkSMSBD relay: POST {base}/sendSMS and GET {base}/getBalance.
type bulkSMSBD struct {
	client   *rest.Client
	baseURL  string
	apiKey   string
	senderID string
}

var _ sms.Gateway = (*bulkSMSBD)(nil)

func NewBulkSMSBD(conf *core.Config) sms.Gateway {
	return newBulkSMSBD(conf, &http.Client{Timeout: conf.SMS.Timeout})
}

func newBulkSMSBD(conf *core.Config, httpClient *http.Client) *bulkSMSBD {
	return &bulkSMSBD{
		client:   &rest.Client{HTTPClient: httpClient},
		baseURL:  strings.TrimSuffix(conf.SMS.BaseURL, "/"),
		apiKey:   conf.SMS.APIKey,
		senderID: conf.SMS.SenderID,
	}
}

func (gw *bulkSMSBD) Send(ctx context.Context, sub sms.Submission) (int, error) {
	body, err := json.Marshal(sendRequest{
		APIKey:   gw.apiKey,
		SenderID: gw.senderID,
		Number:   sub.Number,
		Message:  sub.Message,
	})
	if err != nil {
		return 0, errors.Wrap(err, "encoding SMS request")
	}

	res, err := gw.client.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: gw.baseURL + "/sendSMS",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
	if err != nil {
		return 0, errors.Wrap(err, "sending SMS")
	}

	var sr sendResponse
	if err = json.Unmarshal([]byte(res.Body), &sr); err != nil {
		return 0, errors.Wrapf(err, "decoding SMS response (status %d)", res.StatusCode)
	}
	return sr.ResponseCode, nil
}

func (gw *bulkSMSBD) Balance(ctx context.Context) (decimal.Decimal, error) {
	res, err := gw.client.SendWithContext(ctx, rest.Request{
		Method:  rest.Get,
		BaseURL: gw.baseURL + "/getBalance",
	})
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "fetching SMS balance")
	}

	var br balanceResponse
	if err = json.Unmarshal([]byte(res.Body), &br); err != nil {
		return decimal.Zero, errors.Wrapf(err, "decoding SMS balance (status %d)", res.StatusCode)
	}
	if br.Error != "" {
		return decimal.Zero, errors.New(br.Error)
	}
	if len(br.Balance) == 0 || string(br.Balance) == "null" {
		return decimal.Zero, errors.New(fmt.Sprintf("no balance in response (status %d)", res.StatusCode))
	}

	// the relay sends the balance either as a number or as a string
	var bal decimal.Decimal
	if err = bal.UnmarshalJSON(br.Balance); err != nil {
		return decimal.Zero, errors.Wrap(err, "parsing SMS balance")
	}
	return bal, nil
}
