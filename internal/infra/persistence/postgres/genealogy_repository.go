package postgres

import (
	"context"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/lifecycle"
	"mlm/internal/domain/repository"
	"mlm/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// subtreeCTE collects userID and every profile below it. UNION (not UNION ALL)
// makes the recursion terminate even if a cycle slipped into the links.
const subtreeCTE = `
subtree AS (
	SELECT id FROM profiles WHERE id = @user
	UNION
	SELECT p.id FROM profiles p JOIN subtree s ON p.sponsor_id = s.id
)`

const deleteSubtreeSQL = `WITH RECURSIVE ` + subtreeCTE + `
DELETE FROM genealogy WHERE user_id IN (SELECT id FROM subtree)`

// insertSubtreeSQL walks up from every subtree member, one hop per level, capped by @depth.
const insertSubtreeSQL = `WITH RECURSIVE ` + subtreeCTE + `,
chain AS (
	SELECT s.id AS user_id, p.sponsor_id AS ancestor_id, 1 AS level
	  FROM subtree s JOIN profiles p ON p.id = s.id
	 WHERE p.sponsor_id IS NOT NULL
	UNION ALL
	SELECT c.user_id, p.sponsor_id, c.level + 1
	  FROM chain c JOIN profiles p ON p.id = c.ancestor_id
	 WHERE p.sponsor_id IS NOT NULL AND p.sponsor_id <> c.user_id AND c.level < @depth
)
INSERT INTO genealogy (user_id, ancestor_id, level)
SELECT user_id, ancestor_id, MIN(level) FROM chain GROUP BY user_id, ancestor_id
ON CONFLICT (user_id, ancestor_id) DO UPDATE SET level = EXCLUDED.level`

// genealogyRepository implements repository.GenealogyRepository with recursive CTEs.
type genealogyRepository struct {
	db *gorm.DB
}

// NewGenealogyRepository is the constructor for genealogyRepository.
func NewGenealogyRepository(db *gorm.DB) repository.GenealogyRepository {
	return &genealogyRepository{db: db}
}

func (repo *genealogyRepository) RebuildSubtree(ctx context.Context, userID uuid.UUID, maxDepth int) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	args := map[string]any{"user": userID, "depth": maxDepth}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(deleteSubtreeSQL, args).Error; err != nil {
			return errors.Wrap(err, "failed to clear genealogy subtree")
		}
		if err := tx.Exec(insertSubtreeSQL, args).Error; err != nil {
			return errors.Wrap(err, "failed to rebuild genealogy subtree")
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (repo *genealogyRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.GenealogyModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete genealogy rows")
	}

	return nil
}

func (repo *genealogyRepository) Ancestors(ctx context.Context, userID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error) {
	return repo.list(ctx, repo.db.Where("user_id = ?", userID), maxLevel, "level ASC")
}

func (repo *genealogyRepository) Descendants(ctx context.Context, ancestorID uuid.UUID, maxLevel int) ([]entity.GenealogyEntry, error) {
	return repo.list(ctx, repo.db.Where("ancestor_id = ?", ancestorID), maxLevel, "level ASC, user_id ASC")
}

func (repo *genealogyRepository) list(ctx context.Context, scope *gorm.DB, maxLevel int, order string) ([]entity.GenealogyEntry, error) {
	ctx, cancel := lifecycle.WithPersistenceTimeout(ctx)
	defer cancel()

	query := scope.WithContext(ctx).Order(order)
	if maxLevel > 0 {
		query = query.Where("level <= ?", maxLevel)
	}

	var rows []model.GenealogyModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list genealogy rows")
	}

	entries := make([]entity.GenealogyEntry, len(rows))
	for i, row := range rows {
		entries[i] = entity.GenealogyEntry{UserID: row.UserID, AncestorID: row.AncestorID, Level: row.Level}
	}

	return entries, nil
}
