package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/apperrors"
	"github.com/05HarshaVardhan/TenderFlow-sub000/internal/models"
)

// actorFromCtx reads the identity headers set by the upstream authentication
// layer. Authentication itself lives outside this service; absent or
// malformed headers simply mean an unauthorized request.
func actorFromCtx(c *fiber.Ctx) (models.Actor, error) {
	userID, err := uuid.Parse(c.Get("X-User-ID"))
	if err != nil {
		return models.Actor{}, apperrors.Authorization("missing or invalid user identity")
	}
	companyID, err := uuid.Parse(c.Get("X-Company-ID"))
	if err != nil {
		return models.Actor{}, apperrors.Authorization("missing or invalid company identity")
	}

	role := models.Role(c.Get("X-Role"))
	if role != models.RoleAdmin {
		role = models.RoleMember
	}

	return models.Actor{UserID: userID, CompanyID: companyID, Role: role}, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseID(c.Params(name), name)
}

func parseID(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid %s format", name)
	}
	return id, nil
}
