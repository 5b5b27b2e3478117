// Package warts converts between scamper warts files and canonical
// traceroutes.
//
// A Reader decodes a whole file at once, resolves the address references of
// its traceroutes (see Dereference) and yields one canonical traceroute per
// warts traceroute object, in file order. A Writer emits the inverse layout:
// a list and a cycle start object, one traceroute object per canonical flow,
// and a cycle stop object.
package warts
