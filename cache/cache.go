// Package cache provides shared storage for merged preference catalogs.
// Every backend implements prefhook.Cache.
package cache
