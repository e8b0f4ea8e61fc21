package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://api.sendinblue.com"

type Client struct {
	senderAddress  string
	noReplyAddress string
	siteName       string
	client         *http.Client
	apiKey         string
	baseURL        string
}

type Attachment struct {
	Name    string `json:"name"`
	B64Data string `json:"content"`
}

type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type EmailMessage struct {
	Sender      Address      `json:"sender"`
	To          []Address    `json:"to"`
	Subject     string       `json:"subject"`
	ReplyTo     *Address     `json:"replyTo,omitempty"`
	TextContent string       `json:"textContent,omitempty"`
	HtmlContent string       `json:"htmlContent,omitempty"`
	Attachment  []Attachment `json:"attachment,omitempty"`
}

func NewClient(apiKey, senderAddress, noReplyAddress, siteName string) (Client, error) {
	if apiKey == "" {
		return Client{}, errors.New("email api key cannot be empty")
	}
	return Client{
		client:         &http.Client{Timeout: 15 * time.Second},
		apiKey:         apiKey,
		senderAddress:  senderAddress,
		siteName:       siteName,
		noReplyAddress: noReplyAddress,
		baseURL:        DefaultBaseURL}, nil
}

// WithBaseURL points the client at another API host.
func (e Client) WithBaseURL(baseURL string) Client {
	e.baseURL = baseURL
	return e
}

func (e Client) DefaultSenderName() string {
	return e.siteName
}

func (e Client) SupportSenderAddress() string {
	return e.senderAddress
}

func (e Client) NoReplySenderAddress() string {
	return e.noReplyAddress
}

func (e Client) SendHTMLEmail(ctx context.Context, from, to, replyTo Address, subject, html string) error {
	return e.send(ctx, EmailMessage{
		Sender:      from,
		ReplyTo:     optional(replyTo),
		Subject:     subject,
		To:          []Address{to},
		HtmlContent: html,
	})
}

func (e Client) SendEmailWithAttachment(ctx context.Context, from, to, replyTo Address, subject, html string, attachment []byte, fileName string) error {
	return e.send(ctx, EmailMessage{
		Sender:      from,
		ReplyTo:     optional(replyTo),
		Subject:     subject,
		To:          []Address{to},
		HtmlContent: html,
		Attachment: []Attachment{{
			Name:    fileName,
			B64Data: base64.StdEncoding.EncodeToString(attachment),
		}},
	})
}

func (e Client) send(ctx context.Context, msg EmailMessage) error {
	reqData, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v3/smtp/email", bytes.NewReader(reqData))
	if err != nil {
		return err
	}
	req.Header.Add("api-key", e.apiKey)
	req.Header.Add("content-type", "application/json")
	res, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		errBody, err := ioutil.ReadAll(res.Body)
		if err != nil {
			errBody = []byte(`unable to read body`)
		}
		return fmt.Errorf("got status code %d when sending email: err %s", res.StatusCode, string(errBody))
	}
	return nil
}

func optional(a Address) *Address {
	if a.Email == "" {
		return nil
	}
	return &a
}
