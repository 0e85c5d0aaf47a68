package service

import (
	"fmt"
	"strconv"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"ilika_backend/internals/configs"
)

// Gateway wraps the Razorpay API client. The contribution id goes into
// order/subscription notes so webhook matching has an exact reference
// even when the gateway doesn't echo back our ids any other way.
type Gateway struct {
	client *razorpay.Client
	planID string
}

func NewGatewayFromEnv() *Gateway {
	keyID := configs.GetEnv("RAZORPAY_KEY_ID", "")
	keySecret := configs.GetEnv("RAZORPAY_KEY_SECRET", "")
	if keyID == "" || keySecret == "" {
		return &Gateway{}
	}
	return &Gateway{
		client: razorpay.NewClient(keyID, keySecret),
		planID: configs.GetEnv("RAZORPAY_PLAN_ID", ""),
	}
}

// Configured reports whether API credentials are present. Unconfigured
// environments still record contributions; checkout just has no order.
func (g *Gateway) Configured() bool { return g.client != nil }

// CreateOrder creates a checkout order in paise and returns its id.
func (g *Gateway) CreateOrder(contributionID int64, amount decimal.Decimal) (string, error) {
	if g.client == nil {
		return "", nil
	}
	data := map[string]interface{}{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": "INR",
		"receipt":  fmt.Sprintf("contrib_%d", contributionID),
		"notes": map[string]interface{}{
			"contribution_id": strconv.FormatInt(contributionID, 10),
		},
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}
	id, _ := order["id"].(string)
	return id, nil
}

// CreateSubscription starts a recurring plan when one is configured.
func (g *Gateway) CreateSubscription(contributionID int64) (string, error) {
	if g.client == nil || g.planID == "" {
		return "", nil
	}
	data := map[string]interface{}{
		"plan_id":         g.planID,
		"total_count":     12,
		"customer_notify": 1,
		"notes": map[string]interface{}{
			"contribution_id": strconv.FormatInt(contributionID, 10),
		},
	}
	sub, err := g.client.Subscription.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay subscription create: %w", err)
	}
	id, _ := sub["id"].(string)
	return id, nil
}

// CancelSubscription cancels at the gateway, best effort.
func (g *Gateway) CancelSubscription(subscriptionID string) error {
	if g.client == nil || subscriptionID == "" {
		return nil
	}
	_, err := g.client.Subscription.Cancel(subscriptionID, nil, nil)
	if err != nil {
		return fmt.Errorf("razorpay subscription cancel: %w", err)
	}
	return nil
}
