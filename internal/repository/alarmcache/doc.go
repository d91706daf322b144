// Package alarmcache persists the alarm de-duplication cache as one JSON
// document.
//
// Three stores implement Repository: FileRepository for local runs,
// S3Repository (the production object store) and RedisRepository. Each store
// hands out a version token on Load and refuses a Save whose token is stale,
// returning ErrConflict instead of silently dropping a concurrent update.
package alarmcache
