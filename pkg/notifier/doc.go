// Package notifier provides notification fan-out for plugin observers.
//
// # Overview
//
// A Driver receives notification messages. Exactly one backend is active at a
// time, named by the host configuration. The Hub installs the Aggregator as the
// active backend, keeping any previously configured backend as its first driver,
// so plugins can add and remove their own observers without displacing existing
// delivery.
//
// # Drivers
//
//	type Driver interface {
//		Notify(ctx context.Context, msg Message) error
//	}
//
// Built-in backends: noop, log, and list (the Aggregator). The webhook
// subpackage provides an HTTP backend.
//
// # Usage Example
//
//	backends := notifier.NewBackends()
//	_ = backends.Register(notifier.BackendLog, notifier.NewLogDriver(log))
//
//	hub := notifier.NewHub(store, backends, notifier.WithLogger(log))
//	if err := hub.Install(); err != nil {
//		log.Fatal(err)
//	}
//	hub.Aggregator().AddDriver(myDriver)
//
//	err := hub.Notify(ctx, "compute.host1", "instance.create", notifier.PriorityInfo,
//		map[string]interface{}{"instance_id": id})
//
// # Failure Isolation
//
// The Aggregator recovers errors and panics from each driver, logs them and
// keeps delivering to the remaining drivers. It never fails a Notify call.
//
// # Related Packages
//
//   - pkg/notifier/webhook: HTTP webhook backend
//   - pkg/plugins: Plugins register observers through the Hub
package notifier
