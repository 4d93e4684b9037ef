// Package redis implements the shared session record and its change feed.
//
// The session record is a single JSON document per user. Creation uses a
// conditional write (SETNX) so two racing starts cannot both succeed; the
// loser observes the existing record and reports the conflict.
package redis
