package shipping

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/carrier"
	"github.com/devkarki/shopveda-backend/pkg/config"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

// ServiceParams groups dependencies for the shipping service.
type ServiceParams struct {
	Repo    Repository
	Orders  OrderWriter
	Carrier CarrierAPI
	Tokens  TokenProvider
	Config  config.CarrierConfig
	Logger  *logger.Logger
}

// Service provisions carrier shipments and drives their lifecycle. Every
// operation acquires the shared token, performs one carrier call, and
// mirrors the result onto the local shipment record.
type Service struct {
	repo    Repository
	orders  OrderWriter
	carrier CarrierAPI
	tokens  TokenProvider
	cfg     config.CarrierConfig
	logger  *logger.Logger
}

// NewService builds a shipping service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Carrier == nil {
		return nil, errors.New("carrier client is required")
	}
	if params.Tokens == nil {
		return nil, errors.New("token provider is required")
	}
	return &Service{
		repo:    params.Repo,
		orders:  params.Orders,
		carrier: params.Carrier,
		tokens:  params.Tokens,
		cfg:     params.Config,
		logger:  params.Logger,
	}, nil
}

// token fetches the shared carrier token; a missing token is a hard
// dependency failure for the operation that needed it.
func (s *Service) token(ctx context.Context) (string, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	return token, nil
}

// recover inspects a failed carrier call and drops the cached token if the
// carrier rejected it, so the next call re-authenticates.
func (s *Service) recover(ctx context.Context, err error) {
	if carrier.Classify(err) != carrier.ClassAuthExpired {
		return
	}
	if invErr := s.tokens.Invalidate(ctx); invErr != nil && s.logger != nil {
		s.logger.Error(ctx, "invalidate carrier token", invErr)
	}
}

func (s *Service) carrierCall(ctx context.Context, call func(token string) error) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	if err := call(token); err != nil {
		s.recover(ctx, err)
		return err
	}
	return nil
}

// carrierRead is carrierCall for idempotent reads. When the carrier rejects
// the token mid-call, it re-authenticates and repeats the call once.
// Creation calls never get a retry because a repeat could register a second
// shipment for the same order.
func (s *Service) carrierRead(ctx context.Context, call func(token string) error) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	callErr := call(token)
	if callErr == nil || carrier.Classify(callErr) != carrier.ClassAuthExpired {
		return callErr
	}
	s.recover(ctx, callErr)
	token, err = s.token(ctx)
	if err != nil {
		return callErr
	}
	return call(token)
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+what)
}
