package v1

import (
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/auth"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

func actorName(claims *auth.Claims) string {
	if claims.Name != "" {
		return claims.Name
	}
	return claims.Email
}

func actorType(role string) string {
	switch role {
	case models.RoleTechnician:
		return models.ActorTypeTechnician
	case models.RoleAdmin:
		return models.ActorTypeTechnician
	case models.RoleRequester:
		return models.ActorTypeRequester
	default:
		return models.ActorTypeApprover
	}
}

func actorFromClaims(claims *auth.Claims) approval.Actor {
	return approval.Actor{
		ID:   claims.UserID,
		Name: actorName(claims),
		Type: models.ActorTypeApprover,
	}
}
