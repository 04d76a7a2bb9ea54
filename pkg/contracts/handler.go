package contracts

import "github.com/julienschmidt/httprouter"

// Handler is what every service's HTTP layer exposes to the shared
// application bootstrap.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
