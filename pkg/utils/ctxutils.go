package utils

import (
	"context"

	"metrology-portal/pkg/constants"
	"metrology-portal/pkg/contextkeys"
	apperrors "metrology-portal/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	if !ok {
		return "", apperrors.ErrUserIDNotFoundInContext
	}
	return role, nil
}

func IsAdminFromCtx(ctx context.Context) bool {
	role, _ := ctx.Value(contextkeys.UserRoleKey).(string)
	return role == constants.RoleAdmin
}
