// Package directory implements the interface directory: a Record that maps
// interface keys to the implementations published under them and keeps every
// reference to a key bound to that key's active implementation.
//
// Each key has at most one active implementation. The first one published
// becomes active; when the active one is withdrawn the oldest remaining one
// takes over and every reference is rebound. References to a key with no
// implementation resolve to nothing until one is published.
//
// A Directory is not safe for concurrent use on its own. It is driven through
// a manager.Kind (see Default), which serialises every mutation; reading a
// Reference's binding is lock-free.
package directory
