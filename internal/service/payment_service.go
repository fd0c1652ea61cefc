package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CarlJazper/PSPWEB/internal/payment"
	"github.com/CarlJazper/PSPWEB/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoGatewayCustomer = errors.New("no payment gateway customer for this user")
	ErrPaymentGateway    = errors.New("payment gateway call failed")
)

// --- Service Interface ---
type PaymentService interface {
	// CreateEngagementIntent registers a payment intent with the external
	// gateway for an engagement purchase and returns the client secret the
	// browser uses to collect the payment. No local ledger is written.
	CreateEngagementIntent(ctx context.Context, userID primitive.ObjectID, amount float64) (clientSecret string, err error)
}

// --- Service Implementation ---

type paymentService struct {
	userRepo repository.UserRepository
	gateway  payment.Gateway
	currency string
}

// NewPaymentService creates a new instance of paymentService.
func NewPaymentService(userRepo repository.UserRepository, gateway payment.Gateway, currency string) PaymentService {
	if currency == "" {
		currency = "php"
	}
	return &paymentService{
		userRepo: userRepo,
		gateway:  gateway,
		currency: currency,
	}
}

// CreateEngagementIntent looks up the purchasing user's stored gateway
// customer reference and forwards the amount to the gateway.
func (s *paymentService) CreateEngagementIntent(ctx context.Context, userID primitive.ObjectID, amount float64) (string, error) {
	if amount <= 0 {
		return "", errors.New("amount must be positive")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if user.GatewayCustomerID == "" {
		return "", ErrNoGatewayCustomer
	}

	intent, err := s.gateway.CreateIntent(ctx, user.GatewayCustomerID, amount, s.currency)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}
	return intent.ClientSecret, nil
}
