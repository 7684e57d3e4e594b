/*
Package tipjard links together all the extensions to construct the tipjar
application.
*/
package tipjard

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/app"
	"github.com/iov-one/tipjar/eventlog"
	"github.com/iov-one/tipjar/x"
	"github.com/iov-one/tipjar/x/cash"
	"github.com/iov-one/tipjar/x/paysplit"
	"github.com/iov-one/tipjar/x/promise"
	"github.com/iov-one/tipjar/x/sigs"
	"github.com/iov-one/tipjar/x/token"
	"github.com/iov-one/tipjar/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the authentication used by all handlers. The
// predecessor of an invocation is either a verified transaction signer or
// the account that scheduled the call.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, promise.Authenticator{})
}

// Chain returns the decorators of transactions: logging, recovery,
// authentication and the transfer of the attached deposit. Events of a
// successful transaction are written to the execution log.
func Chain(authFn x.Authenticator, ctrl cash.Controller) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		sigs.NewDecorator(),
		cash.NewDepositDecorator(authFn, ctrl),
		eventlog.NewDecorator(),
	)
}

// CallChain returns the decorators of scheduled calls. Calls are
// authenticated by the scheduler and never carry a deposit.
func CallChain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		eventlog.NewDecorator(),
	)
}

// Router returns a router with all extension handlers registered.
func Router(authFn x.Authenticator, scheduler tipjar.Scheduler, ctrl cash.Controller) *app.Router {
	r := app.NewRouter()
	cash.RegisterRoutes(r, authFn, ctrl)
	token.RegisterRoutes(r, authFn, token.NewController(), scheduler, paysplit.Notify)
	paysplit.RegisterRoutes(r, authFn, scheduler, ctrl)
	return r
}

// QueryRouter returns a query router, allowing access to "/auth",
// "/wallets", "/tokens", "/tokens/balance", "/promises",
// "/promises/results", "/paysplit/fee" and "/events".
func QueryRouter() tipjar.QueryRouter {
	r := tipjar.NewQueryRouter()
	r.RegisterAll(
		sigs.RegisterQuery,
		cash.RegisterQuery,
		token.RegisterQuery,
		promise.RegisterQuery,
		paysplit.RegisterQuery,
		eventlog.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis initializers of all extensions.
func Initializers() tipjar.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		token.Initializer{},
		paysplit.Initializer{},
	)
}

// Application returns a host over given store with all extensions wired.
// Transactions and scheduled calls share the router, the scheduled calls
// are executed by the promise ticker at the beginning of every block.
func Application(name string, store tipjar.CommitKVStore, logger log.Logger) (*app.Chain, error) {
	authFn := Authenticator()
	ctrl := cash.NewController()
	router := Router(authFn, promise.NewScheduler(), ctrl)

	stack := Chain(authFn, ctrl).WithHandler(router)
	ticker := promise.NewTicker(CallChain().WithHandler(router))

	chain, err := app.NewChain(name, store, stack, ticker, QueryRouter())
	if err != nil {
		return nil, err
	}
	return chain.WithInit(Initializers()).WithLogger(logger), nil
}

// GenerateApp builds the node application on top of given store.
func GenerateApp(store tipjar.CommitKVStore, logger log.Logger) (*app.Chain, error) {
	return Application("tipjar", store, logger)
}
