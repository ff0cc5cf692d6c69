package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"
	"mlm/internal/errors"

	"github.com/google/uuid"
)

type profileRepository struct {
	store *Store
	undo  *undoLog
}

// NewProfileRepository creates a ProfileRepository backed by the store.
func NewProfileRepository(store *Store) repository.ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.data.profiles[profile.ID]; ok {
		return repository.ErrDuplicateProfile
	}
	for _, existing := range r.store.data.profiles {
		if strings.EqualFold(existing.ReferralCode, profile.ReferralCode) {
			return repository.ErrDuplicateReferralCode
		}
	}

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	r.store.data.profiles[profile.ID] = cloneProfile(profile)

	id := profile.ID
	r.undo.record(func(data *state) {
		delete(data.profiles, id)
		delete(data.genealogy, id)
	})

	return nil
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	profile, ok := r.store.data.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	return cloneProfile(profile), nil
}

func (r *profileRepository) FindByReferralCode(ctx context.Context, code string) (*entity.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, profile := range r.store.data.profiles {
		if strings.EqualFold(profile.ReferralCode, code) {
			return cloneProfile(profile), nil
		}
	}

	return nil, repository.ErrProfileNotFound
}

func (r *profileRepository) FindSponsorLink(ctx context.Context, id uuid.UUID) (*entity.SponsorLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	profile, ok := r.store.data.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	link := &entity.SponsorLink{ID: profile.ID, IsActive: profile.IsActive}
	if profile.SponsorID != nil {
		sponsorID := *profile.SponsorID
		link.SponsorID = &sponsorID
	}

	return link, nil
}

func (r *profileRepository) ListChildren(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return childrenOf(r.store.data, id), nil
}

// LockSponsorGraph is a no-op: transactions on the store already run one at a time.
func (r *profileRepository) LockSponsorGraph(ctx context.Context) error {
	return errors.WithStack(ctx.Err())
}

func (r *profileRepository) SetSponsor(ctx context.Context, id uuid.UUID, sponsorID *uuid.UUID) error {
	return r.update(ctx, id, func(profile *entity.Profile) func(*entity.Profile) {
		previous := profile.SponsorID
		if sponsorID == nil {
			profile.SponsorID = nil
		} else {
			v := *sponsorID
			profile.SponsorID = &v
		}

		return func(profile *entity.Profile) {
			profile.SponsorID = previous
		}
	})
}

func (r *profileRepository) UpdateRank(ctx context.Context, id uuid.UUID, rank entity.Rank) error {
	return r.update(ctx, id, func(profile *entity.Profile) func(*entity.Profile) {
		previous := profile.Rank
		profile.Rank = rank

		return func(profile *entity.Profile) {
			if profile.Rank == rank {
				profile.Rank = previous
			}
		}
	})
}

func (r *profileRepository) RaiseRank(ctx context.Context, id uuid.UUID, rank entity.Rank) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profile, ok := r.store.data.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	if !rank.Outranks(profile.Rank) {
		return repository.ErrRankNotRaised
	}

	previous := profile.Rank
	profile.Rank = rank
	profile.UpdatedAt = time.Now()
	r.undo.record(func(data *state) {
		if profile, ok := data.profiles[id]; ok && profile.Rank == rank {
			profile.Rank = previous
		}
	})

	return nil
}

func (r *profileRepository) CreditPoints(ctx context.Context, id uuid.UUID, amount int64) error {
	return r.update(ctx, id, func(profile *entity.Profile) func(*entity.Profile) {
		profile.CurrentPoints += amount
		profile.LifetimePoints += amount

		return func(profile *entity.Profile) {
			profile.CurrentPoints -= amount
			profile.LifetimePoints -= amount
		}
	})
}

// update applies mutate under the write lock. mutate returns its own inverse,
// which is recorded when the call runs inside a transaction.
func (r *profileRepository) update(ctx context.Context, id uuid.UUID, mutate func(*entity.Profile) func(*entity.Profile)) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profile, ok := r.store.data.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	revert := mutate(profile)
	profile.UpdatedAt = time.Now()
	r.undo.record(func(data *state) {
		if profile, ok := data.profiles[id]; ok {
			revert(profile)
		}
	})

	return nil
}

func childrenOf(data *state, id uuid.UUID) []uuid.UUID {
	children := make([]uuid.UUID, 0)
	for _, profile := range data.profiles {
		if profile.SponsorID != nil && *profile.SponsorID == id {
			children = append(children, profile.ID)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].String() < children[j].String()
	})

	return children
}

type genealogyRepository struct {
	store *Store
}

// NewGenealogyRepository creates a GenealogyRepository backed by the store.
func NewGenealogyRepository(store *Store) repository.GenealogyRepository {
	return &genealogyRepository{store: store}
}

// RebuildSubtree recomputes the ancestor rows of userID and every descendant in one critical section.
func (r *genealogyRepository) RebuildSubtree(ctx context.Context, userID uuid.UUID, maxDepth int) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data := r.store.data
	if _, ok := data.profiles[userID]; !ok {
		return repository.ErrProfileNotFound
	}

	visited := map[uuid.UUID]bool{userID: true}
	queue := []uuid.UUID{userID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		data.genealogy[current] = ancestorsOf(data, current, maxDepth)
		for _, child := range childrenOf(data, current) {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}

	return nil
}

func ancestorsOf(data *state, userID uuid.UUID, maxDepth int) []entity.GenealogyEntry {
	entries := make([]entity.GenealogyEntry, 0)
	seen := map[uuid.UUID]bool{userID: true}
	current := data.profiles[userID]
	for level := 1; level <= maxDepth && current != nil && current.SponsorID != nil; level++ {
		ancestorID := *current.SponsorID
		if seen[ancestorID] {
			break
		}
		seen[ancestorID] = true
		entries = append(entries, entity.GenealogyEntry{UserID: userID, AncestorID: ancestorID, Level: level})
		current = data.profiles[ancestorID]
	}

	return entries
}

func (r *genealogyRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.data.genealogy, userID)

	return nil
}

func (r *genealogyRepository) Ancestors(ctx context.Context, userID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := make([]entity.GenealogyEntry, 0)
	for _, entry := range r.store.data.genealogy[userID] {
		if maxLevel > 0 && entry.Level > maxLevel {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Level < entries[j].Level
	})

	return entries, nil
}

func (r *genealogyRepository) Descendants(ctx context.Context, ancestorID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := make([]entity.GenealogyEntry, 0)
	for _, rows := range r.store.data.genealogy {
		for _, entry := range rows {
			if entry.AncestorID != ancestorID {
				continue
			}
			if maxLevel > 0 && entry.Level > maxLevel {
				continue
			}
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Level != entries[j].Level {
			return entries[i].Level < entries[j].Level
		}

		return entries[i].UserID.String() < entries[j].UserID.String()
	})

	return entries, nil
}
