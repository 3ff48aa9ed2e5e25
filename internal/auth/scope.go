package auth

// AccessScope is the record-level authorization boundary derived from the
// authenticated identity. It is built per request and never cached.
//
// A non-administrator scope with an empty AllowedCustomsCodes set is valid and
// matches zero records; it must never be widened to "no restriction".
type AccessScope struct {
	Username            string
	Admin               bool
	AllowedCustomsCodes []string
}

// Restricted reports whether queries on behalf of this scope must carry the
// customs-code restriction clause.
func (s AccessScope) Restricted() bool {
	return !s.Admin
}
