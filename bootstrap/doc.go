// Package bootstrap runs a streamcast service: it applies and validates the
// configuration, initializes logging and telemetry, starts the registered
// components in order and stops them in reverse on SIGINT or SIGTERM.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(broadcastComponent)
//	app.RegisterComponent(sseServer)
//	return app.Run(ctx)
package bootstrap
