/*
Package session coordinates concurrent access to stored plan records.

A [Manager] wraps a [ports.PlanStore] and hands out per-ID critical
sections: every operation on a record runs under a refcounted in-process
mutex for that ID, and optionally under a [ports.DistributedLocker] lease
when several processes share one store. Mutexes are created on first use
and dropped as soon as the last holder releases them, so the lock table
stays proportional to the number of records being touched right now, not
to the number of records ever seen.

The manager also owns record bookkeeping: CreatedAt and UpdatedAt are
stamped here on every write, never by the stores themselves.
*/
package session
