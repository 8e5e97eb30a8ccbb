package idpstub

import (
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/permission"
)

var (
	productModule  = identity.Module{ID: 1, Name: "PRODUCT", BasePath: "/products"}
	categoryModule = identity.Module{ID: 2, Name: "CATEGORY", BasePath: "/categories"}
	authModule     = identity.Module{ID: 3, Name: "AUTH", BasePath: "/auth"}
)

// operations is the server-side catalog with real IDs and routing metadata.
var operations = []identity.Operation{
	{ID: 1, Name: permission.OpReadAllProducts, Path: "", HTTPMethod: "GET", Module: productModule},
	{ID: 2, Name: permission.OpReadOneProduct, Path: "/[0-9]*", HTTPMethod: "GET", Module: productModule},
	{ID: 3, Name: permission.OpCreateOneProduct, Path: "", HTTPMethod: "POST", Module: productModule},
	{ID: 4, Name: permission.OpUpdateOneProduct, Path: "/[0-9]*", HTTPMethod: "PUT", Module: productModule},
	{ID: 5, Name: permission.OpDisableOneProduct, Path: "/[0-9]*/disabled", HTTPMethod: "PUT", Module: productModule},
	{ID: 6, Name: permission.OpEnableOneProduct, Path: "/[0-9]*/enabled", HTTPMethod: "PUT", Module: productModule},
	{ID: 7, Name: permission.OpReadAllCategories, Path: "", HTTPMethod: "GET", Module: categoryModule},
	{ID: 8, Name: permission.OpReadOneCategory, Path: "/[0-9]*", HTTPMethod: "GET", Module: categoryModule},
	{ID: 9, Name: permission.OpCreateOneCategory, Path: "", HTTPMethod: "POST", Module: categoryModule},
	{ID: 10, Name: permission.OpUpdateOneCategory, Path: "/[0-9]*", HTTPMethod: "PUT", Module: categoryModule},
	{ID: 11, Name: permission.OpDisableOneCategory, Path: "/[0-9]*/disabled", HTTPMethod: "PUT", Module: categoryModule},
	{ID: 12, Name: permission.OpEnableOneCategory, Path: "/[0-9]*/enabled", HTTPMethod: "PUT", Module: categoryModule},
	{ID: 13, Name: permission.OpReadMyProfile, Path: "/profile", HTTPMethod: "GET", Module: authModule},
}

var roleIDs = map[string]int64{
	permission.RoleAdministrator:          1,
	permission.RoleAssistantAdministrator: 2,
	permission.RoleCustomer:               3,
}

var roleGrants = map[string][]string{
	permission.RoleAdministrator: {
		permission.OpReadAllProducts, permission.OpReadOneProduct, permission.OpCreateOneProduct,
		permission.OpUpdateOneProduct, permission.OpDisableOneProduct, permission.OpEnableOneProduct,
		permission.OpReadAllCategories, permission.OpReadOneCategory, permission.OpCreateOneCategory,
		permission.OpUpdateOneCategory, permission.OpDisableOneCategory, permission.OpEnableOneCategory,
		permission.OpReadMyProfile,
	},
	permission.RoleAssistantAdministrator: {
		permission.OpReadAllProducts, permission.OpReadOneProduct, permission.OpUpdateOneProduct,
		permission.OpReadAllCategories, permission.OpReadOneCategory, permission.OpUpdateOneCategory,
		permission.OpReadMyProfile,
	},
	permission.RoleCustomer: {
		permission.OpReadMyProfile,
	},
}

// role materializes the full role record for name, permission IDs included.
func role(name string) (identity.Role, bool) {
	grants, ok := roleGrants[name]
	if !ok {
		return identity.Role{}, false
	}
	r := identity.Role{ID: roleIDs[name], Name: name}
	for _, op := range operations {
		for _, g := range grants {
			if op.Name == g {
				r.Permissions = append(r.Permissions, identity.Permission{
					ID:        roleIDs[name]*100 + op.ID,
					Operation: op,
				})
			}
		}
	}
	return r, true
}
