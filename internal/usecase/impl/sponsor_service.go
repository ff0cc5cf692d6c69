package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mlm/config"
	deliverycontext "mlm/internal/delivery/context"
	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/domain/repository"
	"mlm/internal/domain/service"
	"mlm/internal/errors"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	defaultMaxDepth        = 20
	defaultCycleCheckLimit = 10000
	referralCodeLength     = 8
	referralCodeAttempts   = 5
)

type sponsorService struct {
	txManager       repository.TransactionManager
	profileRepo     repository.ProfileRepository
	genealogyRepo   repository.GenealogyRepository
	indexer         service.GenealogyIndexer
	maxDepth        int
	cycleCheckLimit int
	logger          *slog.Logger
}

// SponsorServiceParams holds dependencies for SponsorService, injected by Fx.
type SponsorServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	ProfileRepo   repository.ProfileRepository
	GenealogyRepo repository.GenealogyRepository
	Indexer       service.GenealogyIndexer
	Config        *config.Config
	Logger        *slog.Logger
}

// NewSponsorService creates the sponsor graph usecase.
func NewSponsorService(params SponsorServiceParams) usecase.SponsorUsecase {
	maxDepth := defaultMaxDepth
	cycleCheckLimit := defaultCycleCheckLimit
	if params.Config != nil {
		if params.Config.Sponsor.MaxDepth > 0 {
			maxDepth = params.Config.Sponsor.MaxDepth
		}
		if params.Config.Sponsor.CycleCheckLimit > 0 {
			cycleCheckLimit = params.Config.Sponsor.CycleCheckLimit
		}
	}

	return &sponsorService{
		txManager:       params.TxManager,
		profileRepo:     params.ProfileRepo,
		genealogyRepo:   params.GenealogyRepo,
		indexer:         params.Indexer,
		maxDepth:        maxDepth,
		cycleCheckLimit: cycleCheckLimit,
		logger:          params.Logger,
	}
}

func (srv *sponsorService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateProfile registers the affiliate of a user. A referral code, when given,
// must belong to an active affiliate, who becomes the sponsor.
func (srv *sponsorService) CreateProfile(ctx context.Context, input *usecase.CreateProfileInput) (*entity.Profile, error) {
	if input.UserID == uuid.Nil {
		return nil, domainerrors.ErrUnauthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("name is required")
	}

	var sponsor *entity.Profile
	if code := strings.TrimSpace(input.ReferralCode); code != "" {
		found, err := srv.profileRepo.FindByReferralCode(ctx, code)
		if err != nil {
			return nil, mapRepositoryError(err, "failed to resolve referral code")
		}
		if !found.IsActive {
			return nil, domainerrors.ErrSponsorInactive
		}
		sponsor = found
	}

	profile := &entity.Profile{
		ID:       input.UserID,
		Name:     name,
		Rank:     entity.DefaultRank,
		IsActive: true,
	}

	var err error
	for range referralCodeAttempts {
		profile.ReferralCode = newReferralCode()
		err = srv.profileRepo.Create(ctx, profile)
		if !errors.Is(err, repository.ErrDuplicateReferralCode) {
			break
		}
	}
	if err != nil {
		return nil, mapRepositoryError(err, "failed to create profile")
	}

	srv.log(ctx).Info("Profile created",
		slog.String("user_id", profile.ID.String()),
		slog.String("referral_code", profile.ReferralCode),
	)

	if sponsor == nil {
		return profile, nil
	}
	if err := srv.Assign(ctx, profile.ID, sponsor.ID); err != nil {
		return nil, err
	}

	return srv.GetProfile(ctx, profile.ID)
}

func (srv *sponsorService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := srv.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to find profile")
	}

	return profile, nil
}

// Assign attaches userID under sponsorID. The checks and the write share one
// transaction holding the sponsor graph lock; the genealogy index is refreshed
// after commit.
func (srv *sponsorService) Assign(ctx context.Context, userID, sponsorID uuid.UUID) error {
	if userID == sponsorID {
		return domainerrors.ErrSponsorSelfReference
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		profileRepo := repoFactory.NewProfileRepository()
		if err := profileRepo.LockSponsorGraph(ctx); err != nil {
			return mapRepositoryError(err, "failed to lock sponsor graph")
		}

		if _, err := profileRepo.FindSponsorLink(ctx, userID); err != nil {
			return mapRepositoryError(err, "failed to find user")
		}

		sponsor, err := profileRepo.FindSponsorLink(ctx, sponsorID)
		if err != nil {
			return mapRepositoryError(err, "failed to find sponsor")
		}
		if !sponsor.IsActive {
			return domainerrors.ErrSponsorInactive
		}

		if err := srv.checkCycle(ctx, profileRepo, userID, sponsorID); err != nil {
			return err
		}

		return mapRepositoryError(profileRepo.SetSponsor(ctx, userID, &sponsorID), "failed to set sponsor")
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Sponsor assigned",
		slog.String("user_id", userID.String()),
		slog.String("sponsor_id", sponsorID.String()),
	)

	if err := srv.indexer.Rebuild(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to rebuild genealogy", slog.String("user_id", userID.String()), slog.Any("error", err))
	}

	return nil
}

// checkCycle follows sponsor links from sponsorID regardless of activity. Meeting
// userID means the assignment would close a loop.
func (srv *sponsorService) checkCycle(ctx context.Context, profileRepo repository.ProfileRepository, userID, sponsorID uuid.UUID) error {
	current := sponsorID
	for range srv.cycleCheckLimit {
		if current == userID {
			return domainerrors.ErrSponsorCycle
		}

		link, err := profileRepo.FindSponsorLink(ctx, current)
		if err != nil {
			return mapRepositoryError(err, "failed to walk sponsor chain")
		}
		if link.SponsorID == nil {
			return nil
		}
		current = *link.SponsorID
	}

	return domainerrors.ErrSponsorCycle.WithDetails(fmt.Sprintf("sponsor chain longer than %d", srv.cycleCheckLimit))
}

func (srv *sponsorService) AssignByReferralCode(ctx context.Context, userID uuid.UUID, code string) (*entity.Profile, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("referral code is required")
	}

	sponsor, err := srv.profileRepo.FindByReferralCode(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to resolve referral code")
	}

	if err := srv.Assign(ctx, userID, sponsor.ID); err != nil {
		return nil, err
	}

	return srv.GetProfile(ctx, userID)
}

// Detach clears the sponsor. Index maintenance is best-effort.
func (srv *sponsorService) Detach(ctx context.Context, userID uuid.UUID) error {
	link, err := srv.profileRepo.FindSponsorLink(ctx, userID)
	if err != nil {
		return mapRepositoryError(err, "failed to find user")
	}
	if link.SponsorID == nil {
		return domainerrors.ErrNoSponsor
	}

	if err := srv.profileRepo.SetSponsor(ctx, userID, nil); err != nil {
		return mapRepositoryError(err, "failed to clear sponsor")
	}

	srv.log(ctx).Info("Sponsor detached",
		slog.String("user_id", userID.String()),
		slog.String("former_sponsor_id", link.SponsorID.String()),
	)

	if err := srv.indexer.Remove(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to remove genealogy", slog.String("user_id", userID.String()), slog.Any("error", err))
	}

	return nil
}

func (srv *sponsorService) AncestorWalk(start uuid.UUID, maxDepth int) usecase.AncestorWalker {
	if maxDepth <= 0 || maxDepth > srv.maxDepth {
		maxDepth = srv.maxDepth
	}

	return &ancestorWalker{
		profileRepo: srv.profileRepo,
		current:     start,
		maxDepth:    maxDepth,
	}
}

func (srv *sponsorService) Upline(ctx context.Context, userID uuid.UUID) ([]entity.GenealogyEntry, error) {
	entries, err := srv.genealogyRepo.Ancestors(ctx, userID, srv.maxDepth)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to read upline")
	}

	return entries, nil
}

func (srv *sponsorService) Downline(ctx context.Context, userID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error) {
	if maxLevel <= 0 || maxLevel > srv.maxDepth {
		maxLevel = srv.maxDepth
	}

	entries, err := srv.genealogyRepo.Descendants(ctx, userID, maxLevel)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to read downline")
	}

	return entries, nil
}

// ancestorWalker reads one sponsor link per Next. It holds ids only and never
// revisits a node it has already left.
type ancestorWalker struct {
	profileRepo repository.ProfileRepository
	current     uuid.UUID
	depth       int
	maxDepth    int
	done        bool
	err         error
}

func (w *ancestorWalker) Next(ctx context.Context) bool {
	if w.done {
		return false
	}
	if w.depth >= w.maxDepth {
		w.done = true

		return false
	}

	link, err := w.profileRepo.FindSponsorLink(ctx, w.current)
	if err != nil {
		return w.fail(mapRepositoryError(err, "failed to read sponsor link"))
	}
	if link.SponsorID == nil || *link.SponsorID == uuid.Nil {
		w.done = true

		return false
	}

	sponsor, err := w.profileRepo.FindSponsorLink(ctx, *link.SponsorID)
	if err != nil {
		return w.fail(mapRepositoryError(err, "failed to read sponsor"))
	}
	if !sponsor.IsActive {
		w.done = true

		return false
	}

	w.current = sponsor.ID
	w.depth++

	return true
}

func (w *ancestorWalker) fail(err error) bool {
	w.err = err
	w.done = true

	return false
}

func (w *ancestorWalker) ID() uuid.UUID {
	return w.current
}

func (w *ancestorWalker) Depth() int {
	return w.depth
}

func (w *ancestorWalker) Err() error {
	return w.err
}

func newReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")

	return strings.ToUpper(raw[:referralCodeLength])
}
