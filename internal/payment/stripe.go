package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/config"
)

// stripeGateway implements Gateway against the Stripe REST API.
type stripeGateway struct {
	apiBase    string
	secretKey  string
	httpClient *http.Client
}

// NewStripeGateway creates a payment gateway client from configuration.
func NewStripeGateway(cfg config.PaymentConfig) (Gateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("payment secret key is required")
	}
	return &stripeGateway{
		apiBase:   strings.TrimRight(cfg.APIBase, "/"),
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// intentResponse mirrors the fields we use from Stripe's PaymentIntent object.
type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent creates a payment intent for an existing customer. Stripe
// takes amounts in the currency's minor unit, so the amount is converted to
// centavos here.
func (g *stripeGateway) CreateIntent(ctx context.Context, customerID string, amount float64, currency string) (*Intent, error) {
	if customerID == "" {
		return nil, errors.New("gateway customer ID is required")
	}
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(math.Round(amount*100)), 10))
	form.Set("currency", currency)
	form.Set("customer", customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/payment_intents", g.apiBase), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payment gateway error (%s): %s", resp.Status, string(body))
	}

	var intent intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	if intent.ClientSecret == "" {
		return nil, errors.New("payment gateway returned no client secret")
	}

	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
