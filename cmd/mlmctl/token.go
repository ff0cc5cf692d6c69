package main

import (
	"mlm/config"
	"mlm/internal/domain/entity"
	"mlm/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func issueToken(cfg *config.Config, rawUserID, rawRole string) (string, uuid.UUID, error) {
	userID := uuid.New()
	if rawUserID != "" {
		parsed, err := uuid.Parse(rawUserID)
		if err != nil {
			return "", uuid.Nil, errors.Wrapf(err, "invalid user id %q", rawUserID)
		}
		userID = parsed
	}

	role := entity.Role(rawRole)
	if !role.IsValid() {
		return "", uuid.Nil, errors.Errorf("unknown role %q", rawRole)
	}

	tokens, err := auth.NewJWTService(cfg)
	if err != nil {
		return "", uuid.Nil, err
	}

	token, err := tokens.IssueAccessToken(userID, string(role))
	if err != nil {
		return "", uuid.Nil, err
	}

	return token, userID, nil
}
