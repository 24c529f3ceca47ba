package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ChapaService talks to the Chapa payment gateway. It initializes hosted
// checkout transactions and verifies their final status.
type ChapaService struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

type ChapaInitRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
}

type chapaInitResponse struct {
	Status string `json:"status"`
	Data   struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type chapaVerifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Status string `json:"status"` // "success", "failed" or "pending"
		TxRef  string `json:"tx_ref"`
	} `json:"data"`
}

func NewChapaService(secretKey, baseURL string) *ChapaService {
	if baseURL == "" {
		baseURL = "https://api.chapa.co/v1"
	}
	return &ChapaService{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// InitializeTransaction creates a hosted checkout session and returns its
// checkout URL. The txRef is the idempotency key shared with the webhook.
func (s *ChapaService) InitializeTransaction(ctx context.Context, txRef string, amount float64, email, firstName, callbackURL, returnURL string) (string, error) {
	reqBody := ChapaInitRequest{
		Amount:      fmt.Sprintf("%.2f", amount),
		Currency:    "ETB",
		Email:       email,
		FirstName:   firstName,
		TxRef:       txRef,
		CallbackURL: callbackURL,
		ReturnURL:   returnURL,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal init request: %w", err)
	}
	log.Printf("Chapa init request body: %s", string(maskEmail(bodyBytes)))

	var (
		resp       *http.Response
		lastStatus int
		lastBody   []byte
	)
	for retries := 3; retries > 0; retries-- {
		req, rerr := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/transaction/initialize", bytes.NewBuffer(bodyBytes))
		if rerr != nil {
			return "", fmt.Errorf("failed to create init request: %w", rerr)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.secretKey)

		resp, err = s.client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}
		if err != nil {
			log.Printf("Chapa init failed (attempt %d): %v", 4-retries, err)
		} else {
			lastStatus = resp.StatusCode
			lastBody, _ = io.ReadAll(resp.Body)
			resp.Body.Close()
			log.Printf("Chapa init failed with status %d (attempt %d): %s", lastStatus, 4-retries, string(lastBody))
		}
		time.Sleep(time.Second * time.Duration(3-retries))
	}
	if err != nil {
		return "", fmt.Errorf("chapa init failed after retries: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chapa init failed with status %d: %s", lastStatus, string(lastBody))
	}
	defer resp.Body.Close()

	var initResp chapaInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return "", fmt.Errorf("failed to decode init response: %w", err)
	}
	if initResp.Data.CheckoutURL == "" {
		return "", errors.New("no checkout URL in chapa response")
	}
	return initResp.Data.CheckoutURL, nil
}

// Verify returns the gateway-side status of a transaction: "success",
// "failed" or "pending".
func (s *ChapaService) Verify(ctx context.Context, txRef string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/transaction/verify/"+txRef, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chapa verify failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chapa verify failed with status %d: %s", resp.StatusCode, string(body))
	}

	var verifyResp chapaVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		return "", fmt.Errorf("failed to decode verify response: %w", err)
	}
	return verifyResp.Data.Status, nil
}

func maskEmail(body []byte) []byte {
	var req map[string]interface{}
	if err := json.Unmarshal(body, &req); err != nil {
		return body
	}
	if email, ok := req["email"].(string); ok {
		parts := strings.Split(email, "@")
		if len(parts) == 2 && len(parts[0]) > 3 {
			req["email"] = parts[0][:3] + "****@" + parts[1]
		}
	}
	masked, _ := json.Marshal(req)
	return masked
}
