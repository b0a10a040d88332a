/*
Package session implements session management and persistence orchestration.

It serializes every change to a wizard session behind a per-session lock,
optionally backed by a distributed lock, so the stateless engine always has a
single writer per session regardless of how many requests or replicas race.
*/
package session
