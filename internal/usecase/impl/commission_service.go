package impl

import (
	"context"
	"fmt"
	"log/slog"

	"mlm/config"
	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/domain/service"
	"mlm/internal/errors"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const commissionScale = 2

type commissionEngine struct {
	orderRepo     repository.OrderRepository
	profileRepo   repository.ProfileRepository
	genealogyRepo repository.GenealogyRepository
	sponsors      usecase.SponsorUsecase
	wallet        usecase.WalletUsecase
	rates         []decimal.Decimal
	logger        *slog.Logger
}

// CommissionEngineParams holds dependencies for the commission engine, injected by Fx.
type CommissionEngineParams struct {
	fx.In

	OrderRepo     repository.OrderRepository
	ProfileRepo   repository.ProfileRepository
	GenealogyRepo repository.GenealogyRepository
	Sponsors      usecase.SponsorUsecase
	Wallet        usecase.WalletUsecase
	Config        *config.Config
	Logger        *slog.Logger
}

// NewCommissionEngine pays the configured per-level rates to the active upline of a buyer.
func NewCommissionEngine(params CommissionEngineParams) (service.CommissionEngine, error) {
	rates, err := params.Config.Commission.Rates()
	if err != nil {
		return nil, errors.Wrap(err, "invalid commission schedule")
	}

	return &commissionEngine{
		orderRepo:     params.OrderRepo,
		profileRepo:   params.ProfileRepo,
		genealogyRepo: params.GenealogyRepo,
		sponsors:      params.Sponsors,
		wallet:        params.Wallet,
		rates:         rates,
		logger:        params.Logger,
	}, nil
}

func (e *commissionEngine) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, e.logger)
}

type payee struct {
	userID uuid.UUID
	level  int
}

// CalculateCommissions credits rate[level-1] x subtotal to each active ancestor.
// Every credit carries the key commission:{order}:{level}, so a replay pays nothing twice.
func (e *commissionEngine) CalculateCommissions(ctx context.Context, orderID uuid.UUID) error {
	order, err := e.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return mapRepositoryError(err, "failed to load order")
	}
	if order.PaymentStatus != entity.OrderStatusApproved {
		return domainerrors.NewOrderStatusConflict(string(order.PaymentStatus))
	}
	if order.UserID == nil {
		return domainerrors.ErrOrderWithoutUser
	}
	if len(e.rates) == 0 || !order.Subtotal.IsPositive() {
		return nil
	}

	payees, err := e.upline(ctx, *order.UserID)
	if err != nil {
		return err
	}

	var failed []error
	for _, p := range payees {
		amount := e.rates[p.level-1].Mul(order.Subtotal).Round(commissionScale)
		if !amount.IsPositive() {
			continue
		}

		level := p.level
		buyer := *order.UserID
		_, err := e.wallet.Credit(ctx, &usecase.WalletEntryInput{
			UserID:          p.userID,
			Type:            entity.WalletCommission,
			Amount:          amount,
			Status:          entity.WalletStatusCompleted,
			RelatedOrderID:  &order.ID,
			RelatedUserID:   &buyer,
			CommissionLevel: &level,
			Description:     fmt.Sprintf("Level %d commission for order %s", level, order.OrderNumber),
			IdempotencyKey:  commissionKey(order.ID, level),
		})
		switch {
		case errors.Is(err, repository.ErrDuplicateWalletEntry):
			e.log(ctx).Debug("Commission already paid", slog.String("order_id", order.ID.String()), slog.Int("level", level))
		case err != nil:
			failed = append(failed, errors.Wrapf(err, "level %d", level))
		}
	}

	if len(failed) > 0 {
		return errors.Wrapf(errors.Join(failed...), "%d of %d commission credits failed", len(failed), len(payees))
	}

	e.log(ctx).Info("Commissions calculated",
		slog.String("order_id", order.ID.String()),
		slog.Int("payees", len(payees)),
	)

	return nil
}

// upline prefers the genealogy index and falls back to walking sponsor links
// when the index has nothing yet. Both stop at the first inactive ancestor.
func (e *commissionEngine) upline(ctx context.Context, buyer uuid.UUID) ([]payee, error) {
	maxLevel := len(e.rates)

	entries, err := e.genealogyRepo.Ancestors(ctx, buyer, maxLevel)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to read genealogy")
	}

	if len(entries) == 0 {
		return e.walk(ctx, buyer, maxLevel)
	}

	payees := make([]payee, 0, len(entries))
	for i, entry := range entries {
		if entry.Level != i+1 || entry.Level > maxLevel {
			break
		}

		link, err := e.profileRepo.FindSponsorLink(ctx, entry.AncestorID)
		if err != nil {
			return nil, mapRepositoryError(err, "failed to read ancestor")
		}
		if !link.IsActive {
			break
		}
		payees = append(payees, payee{userID: entry.AncestorID, level: entry.Level})
	}

	return payees, nil
}

func (e *commissionEngine) walk(ctx context.Context, buyer uuid.UUID, maxLevel int) ([]payee, error) {
	var payees []payee

	walker := e.sponsors.AncestorWalk(buyer, maxLevel)
	for walker.Next(ctx) {
		if walker.Depth() > maxLevel {
			break
		}
		payees = append(payees, payee{userID: walker.ID(), level: walker.Depth()})
	}
	if err := walker.Err(); err != nil {
		return nil, err
	}

	return payees, nil
}

func commissionKey(orderID uuid.UUID, level int) string {
	return fmt.Sprintf("commission:%s:%d", orderID, level)
}
