// Package app assembles the browser core.
//
// Browser wires configuration, logging and metrics to the engine, the
// browser store, the session manager and its store mirror, the window and
// extension features, and the control API.
//
// Example Usage:
//
//	b, err := app.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//	b.Start()
//	return b.Run(ctx)
package app
