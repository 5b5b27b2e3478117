package warts

import (
	"fmt"
	"net/netip"

	"github.com/dioptra-io/iris-converters/warts/wire"
)

// AddressMode is the address table layout of a warts file.
type AddressMode int

const (
	// LocalTables: each traceroute numbers its own literal addresses.
	LocalTables AddressMode = iota
	// GlobalTable: address objects at file level number every address.
	GlobalTable
)

func (m AddressMode) String() string {
	switch m {
	case LocalTables:
		return "local tables"
	case GlobalTable:
		return "global table"
	}
	return fmt.Sprintf("address mode %d", int(m))
}

// DereferenceError reports an address reference that no table entry
// matches.
type DereferenceError struct {
	Object int    // index of the traceroute among the decoded objects
	Field  string // "src", "dst", "rtr" or "hop N"
	ID     uint32
	Size   int // entries in the table the reference was resolved against
	Mode   AddressMode
	Legacy bool
}

func (e *DereferenceError) Error() string {
	if e.Legacy && e.Mode != GlobalTable {
		return fmt.Sprintf("object %d: %s address id %d without a global address table", e.Object, e.Field, e.ID)
	}
	return fmt.Sprintf("object %d: %s address reference %d out of range (%s with %d entries)", e.Object, e.Field, e.ID, e.Mode, e.Size)
}

// Dereference replaces every address reference of the traceroutes in objs
// with the literal address it designates.
//
// The layout is decided once for the whole file. When objs holds any global
// address object, the global table, numbered from 0 in file order, resolves
// every reference, including the legacy address id parameters. Otherwise
// each traceroute resolves its references against its own literals, in wire
// order: source, destination, router, then hop addresses.
func Dereference(objs []wire.Object) (AddressMode, error) {
	var global []netip.Addr
	for _, obj := range objs {
		if a, ok := obj.(*wire.GlobalAddress); ok {
			global = append(global, a.IP)
		}
	}
	mode := LocalTables
	if len(global) > 0 {
		mode = GlobalTable
	}

	for i, obj := range objs {
		t, ok := obj.(*wire.Traceroute)
		if !ok {
			continue
		}
		res := &resolver{object: i, mode: mode, global: global, table: global}
		if mode == LocalTables {
			res.table = localTable(t)
		}
		if err := res.traceroute(t); err != nil {
			return mode, err
		}
	}
	return mode, nil
}

func localTable(t *wire.Traceroute) []netip.Addr {
	var table []netip.Addr
	add := func(a *wire.Address) {
		if a != nil && !a.Ref {
			table = append(table, a.IP)
		}
	}
	add(t.SrcAddr)
	add(t.DstAddr)
	add(t.RouterAddr)
	for i := range t.Hops {
		add(t.Hops[i].Addr)
	}
	return table
}

type resolver struct {
	object int
	mode   AddressMode
	global []netip.Addr
	table  []netip.Addr
}

func (r *resolver) traceroute(t *wire.Traceroute) error {
	var err error
	if t.SrcAddr, err = r.resolve("src", t.SrcAddr, t.SrcAddrID); err != nil {
		return err
	}
	t.SrcAddrID = nil
	if t.DstAddr, err = r.resolve("dst", t.DstAddr, t.DstAddrID); err != nil {
		return err
	}
	t.DstAddrID = nil
	if t.RouterAddr, err = r.resolve("rtr", t.RouterAddr, nil); err != nil {
		return err
	}
	for i := range t.Hops {
		h := &t.Hops[i]
		if h.Addr, err = r.resolve(fmt.Sprintf("hop %d", i), h.Addr, h.AddrID); err != nil {
			return err
		}
		h.AddrID = nil
	}
	return nil
}

// resolve returns the literal address of an address parameter, falling back
// to the legacy id parameter when the address parameter is absent.
func (r *resolver) resolve(field string, a *wire.Address, legacyID *uint32) (*wire.Address, error) {
	switch {
	case a != nil && !a.Ref:
		return a, nil
	case a != nil:
		return r.lookup(field, r.table, a.ID, false)
	case legacyID != nil:
		return r.lookup(field, r.global, *legacyID, true)
	}
	return nil, nil
}

func (r *resolver) lookup(field string, table []netip.Addr, id uint32, legacy bool) (*wire.Address, error) {
	if uint64(id) >= uint64(len(table)) {
		return nil, &DereferenceError{Object: r.object, Field: field, ID: id, Size: len(table), Mode: r.mode, Legacy: legacy}
	}
	return wire.AddressOf(table[id]), nil
}
