package inventory

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/devkarki/shopveda-backend/pkg/db"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
	"github.com/devkarki/shopveda-backend/pkg/logger"
)

// ReconcilerParams groups dependencies for the reconciler.
type ReconcilerParams struct {
	DB     *db.Client
	Repo   Repository
	Logger *logger.Logger
}

// Reconciler applies an order's line items to the stock counters. The whole
// order commits or none of it does: one short line item aborts the batch and
// rolls back the decrements already applied in the same transaction.
type Reconciler struct {
	db     *db.Client
	repo   Repository
	logger *logger.Logger
}

// NewReconciler builds an inventory reconciler.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Reconciler{
		db:     params.DB,
		repo:   params.Repo,
		logger: params.Logger,
	}, nil
}

// Reconcile decrements stock for every line item of the order in a single
// transaction. Items are checked in order; the error carries every shortage
// found before the abort so the caller can report them together.
func (r *Reconciler) Reconcile(ctx context.Context, order *models.Order) error {
	if order == nil || len(order.Items) == 0 {
		return nil
	}

	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := r.repo.WithTx(tx)

		var shortages error
		for _, item := range order.Items {
			if err := repo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
					shortages = multierr.Append(shortages, err)
					continue
				}
				return err
			}
		}
		return shortages
	})
	if err != nil {
		if r.logger != nil {
			logCtx := r.logger.WithOrderID(ctx, order.ID.String())
			r.logger.Warn(logCtx, "inventory reconciliation aborted: "+err.Error())
		}
		return err
	}

	if r.logger != nil {
		logCtx := r.logger.WithOrderID(ctx, order.ID.String())
		r.logger.Info(logCtx, "inventory reconciled")
	}
	return nil
}
