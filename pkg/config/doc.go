// Package config provides host configuration loaded from environment variables
// and optional YAML files.
//
// # Overview
//
// This package loads and validates configuration with sensible defaults, and
// exposes a Store that holds the mutable parts (the active notification backend
// and the plugin class paths) for injection into the notifier and plugin
// packages.
//
// # Configuration Structure
//
// Service settings:
//
//	PLUGINHOST_SERVICE_NAME="compute-api"
//
// Notification settings:
//
//	PLUGINHOST_NOTIFICATION_DRIVER="log"  # noop, log, webhook, list
//	PLUGINHOST_DEFAULT_PUBLISHER_ID="compute.host1"
//	PLUGINHOST_WEBHOOK_URL="https://hooks.example.com/events"
//	PLUGINHOST_WEBHOOK_SECRET="s3cret"
//	PLUGINHOST_WEBHOOK_TIMEOUT="5s"
//	PLUGINHOST_WEBHOOK_MAX_RETRIES="3"
//
// Plugin settings:
//
//	PLUGINHOST_PLUGIN_CLASS_PATHS="/opt/plugins/audit.so.NewPlugin,/opt/plugins/quota.New"
//
// Observability settings:
//
//	PLUGINHOST_LOG_LEVEL="info"  # debug, info, warn, error
//	PLUGINHOST_METRICS_ENABLED="true"
//	PLUGINHOST_METRICS_ADDR=":9090"
//
// # Usage Example
//
//	cfg, err := config.LoadFile("/etc/pluginhost/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	store := config.NewStore(cfg)
//	fmt.Println(store.NotificationDriver())
//
// # Related Packages
//
//   - pkg/notifier: Reads and switches the active backend through Store
//   - pkg/plugins: Reads plugin class paths through Store
package config
