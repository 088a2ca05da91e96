package bridge

// Authorized reports whether id may use the bridge. Membership is exact:
// no identity is authorized by partial match. An empty allow-list
// authorizes every identity.
func Authorized(allowed []int64, id int64) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == id {
			return true
		}
	}
	return false
}
