package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a group of routes mounted on the application router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
