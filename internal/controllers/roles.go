package controllers

import "github.com/wauu/lms_backend/internal/models"

var allowedRoles = map[string]struct{}{
	models.RoleAdmin:    {},
	models.RoleLecturer: {},
	models.RoleStudent:  {},
}

// Open registration may not mint admins; those come from admin user
// management.
var selfRegisterRoles = map[string]struct{}{
	models.RoleLecturer: {},
	models.RoleStudent:  {},
}

func IsValidRole(role string) bool {
	_, ok := allowedRoles[role]
	return ok
}

func IsSelfRegisterRole(role string) bool {
	_, ok := selfRegisterRoles[role]
	return ok
}
