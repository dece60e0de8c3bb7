package service

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewHealthService,
	NewRoleService,
	NewResourceService,
	NewPermissionService,
	NewUserService,
	NewSeedService,
	NewAccessGuard,
	storeBindings,
)
