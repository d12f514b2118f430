package server

// HandlerFunc processes one parsed request and fills in the response. A
// returned error becomes a 500 with the error text in the body.
type HandlerFunc func(req *Request, resp *Response) error

// Router is an exact-match dispatch table keyed by method and path. No
// wildcards, prefixes, or path parameters.
type Router struct {
	routes map[string]map[string]HandlerFunc // path -> method -> handler
}

func NewRouter() *Router {
	return &Router{
		routes: make(map[string]map[string]HandlerFunc),
	}
}

// Handle registers a handler. Registration is not safe for concurrent use;
// register everything before serving.
func (r *Router) Handle(method, path string, h HandlerFunc) {
	if r.routes[path] == nil {
		r.routes[path] = make(map[string]HandlerFunc)
	}

	r.routes[path][method] = h
}

// Lookup resolves a handler. An unknown path is errNotFound; a known path
// without the method is errMethodNotAllowed.
func (r *Router) Lookup(method, path string) (HandlerFunc, error) {
	methods, ok := r.routes[path]
	if !ok {
		return nil, errNotFound
	}

	h, ok := methods[method]
	if !ok {
		return nil, errMethodNotAllowed
	}

	return h, nil
}
