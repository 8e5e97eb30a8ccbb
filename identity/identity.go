package identity

// Source records where an Identity's role and permission data came from.
type Source uint8

const (
	// SourceToken marks an identity reconstructed from token claims. IDs are
	// synthetic and operation metadata (path, verb, module) is defaulted.
	SourceToken Source = iota
	// SourceProfile marks an identity fetched from the identity service.
	SourceProfile
)

func (s Source) String() string {
	switch s {
	case SourceToken:
		return "token"
	case SourceProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Module groups operations under a base path.
type Module struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	BasePath string `json:"basePath"`
}

// Operation is a named, fine-grained capability. Only Name takes part in
// authorization decisions; the other fields are descriptive.
type Operation struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	HTTPMethod string `json:"httpMethod"`
	Module     Module `json:"module"`
}

// Permission grants one Operation to a Role.
type Permission struct {
	ID        int64     `json:"id"`
	Operation Operation `json:"operation"`
}

// Role is a named bundle of permissions, unique by operation name.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Identity is the authenticated user. Every Identity has exactly one Role.
type Identity struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
	Source      Source `json:"-"`
}

// OperationNames returns the operation names granted to the role, in order.
func (r Role) OperationNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Operation.Name)
	}
	return names
}

// Clone returns a deep copy so callers can never mutate session state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	out := *i
	if i.Role.Permissions != nil {
		out.Role.Permissions = make([]Permission, len(i.Role.Permissions))
		copy(out.Role.Permissions, i.Role.Permissions)
	}
	return &out
}
