package permission

// Operation names checked by the admin screens.
const (
	OpReadAllProducts    = "READ_ALL_PRODUCTS"
	OpReadOneProduct     = "READ_ONE_PRODUCT"
	OpCreateOneProduct   = "CREATE_ONE_PRODUCT"
	OpUpdateOneProduct   = "UPDATE_ONE_PRODUCT"
	OpDisableOneProduct  = "DISABLE_ONE_PRODUCT"
	OpEnableOneProduct   = "ENABLE_ONE_PRODUCT"
	OpReadAllCategories  = "READ_ALL_CATEGORIES"
	OpReadOneCategory    = "READ_ONE_CATEGORY"
	OpCreateOneCategory  = "CREATE_ONE_CATEGORY"
	OpUpdateOneCategory  = "UPDATE_ONE_CATEGORY"
	OpDisableOneCategory = "DISABLE_ONE_CATEGORY"
	OpEnableOneCategory  = "ENABLE_ONE_CATEGORY"
	OpReadMyProfile      = "READ_MY_PROFILE"
)

var knownOperations = []string{
	OpReadAllProducts,
	OpReadOneProduct,
	OpCreateOneProduct,
	OpUpdateOneProduct,
	OpDisableOneProduct,
	OpEnableOneProduct,
	OpReadAllCategories,
	OpReadOneCategory,
	OpCreateOneCategory,
	OpUpdateOneCategory,
	OpDisableOneCategory,
	OpEnableOneCategory,
	OpReadMyProfile,
}

// DefaultRegistry returns a frozen registry holding the known operations
// plus any extra names. Duplicates among extra are an error.
func DefaultRegistry(extra ...string) (*Registry, error) {
	r := NewRegistry()
	for _, name := range append(append([]string(nil), knownOperations...), extra...) {
		if _, err := r.Register(name); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}
