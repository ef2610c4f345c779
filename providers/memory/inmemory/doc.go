// Package inmemory provides a thread-safe, in-process implementation of
// [memory.Provider]. It is the default history store of a session.
//
// History is stored as [message.Simple] values, so callers can never mutate
// stored entries. Reads return independent copies.
package inmemory
