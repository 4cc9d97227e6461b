// Package prefhook implements the user preferences hook: modules contribute
// preference definitions (title, default value, serialization flag and the
// forms their control is attached to) and a Registry merges every module's
// contribution into a single catalog keyed by preference machine name.
//
// Preference keys from all modules share one namespace, so pick prefixed
// machine names (for example "comstack_notifications.enabled") for your
// preferences. By default a key defined by two modules is an error.
//
// The package does not store user values, build forms or check access; it
// owns the definition contract and the merged catalog that a host uses to do
// those things.
package prefhook
