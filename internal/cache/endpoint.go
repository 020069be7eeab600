package cache

// Tag is a logical invalidation label shared between the tags a query
// provides and the tags a mutation invalidates.
type Tag string

// Endpoint statically describes one operation of a resource family. The
// resource modules declare tables of these; the engine stays generic.
type Endpoint struct {
	// Family groups endpoints by resource (accounts, auth, transactions).
	Family string
	// Name identifies the operation within its family.
	Name string
	// Method is the HTTP method. GET endpoints are queries; everything
	// else is a mutation.
	Method string
	// Path renders the request path (and query string) from the call
	// arguments. The result is appended to the client base URL.
	Path func(args any) string
	// Provides lists the tags a query's cached result carries.
	Provides []Tag
	// Invalidates lists the tags a mutation invalidates on success.
	Invalidates []Tag
	// Anonymous endpoints never attach the bearer token.
	Anonymous bool
}

func (e Endpoint) providesAny(tags []Tag) bool {
	for _, provided := range e.Provides {
		for _, tag := range tags {
			if provided == tag {
				return true
			}
		}
	}
	return false
}
