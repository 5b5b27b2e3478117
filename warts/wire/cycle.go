package wire

import "encoding/binary"

// List describes the target list a cycle probes.
type List struct {
	ListID      uint32
	ListIDHuman uint32
	Name        string
	Description string
	MonitorName string
}

func (l *List) Type() ObjectType { return TypeList }

func decodeList(r *reader) *List {
	l := &List{
		ListID:      r.u32(),
		ListIDHuman: r.u32(),
		Name:        r.cstring(),
	}
	r.params(2, func(flag int) {
		switch flag {
		case 1:
			l.Description = r.cstring()
		case 2:
			l.MonitorName = r.cstring()
		}
	})
	return l
}

func (l *List) appendBody(dst []byte) ([]byte, error) {
	dst = binary.BigEndian.AppendUint32(dst, l.ListID)
	dst = binary.BigEndian.AppendUint32(dst, l.ListIDHuman)
	dst = append(dst, l.Name...)
	dst = append(dst, 0)
	var p params
	if l.Description != "" {
		p.cstring(1, l.Description)
	}
	if l.MonitorName != "" {
		p.cstring(2, l.MonitorName)
	}
	return p.appendTo(dst)
}

// Cycle starts a measurement cycle. Definition marks the cycle definition
// objects written at the head of cycle files.
type Cycle struct {
	Definition   bool
	CycleID      uint32
	ListID       uint32
	CycleIDHuman uint32
	StartTime    uint32
	StopTime     uint32
	Hostname     string
}

func (c *Cycle) Type() ObjectType {
	if c.Definition {
		return TypeCycleDefinition
	}
	return TypeCycleStart
}

func decodeCycle(r *reader, definition bool) *Cycle {
	c := &Cycle{
		Definition:   definition,
		CycleID:      r.u32(),
		ListID:       r.u32(),
		CycleIDHuman: r.u32(),
		StartTime:    r.u32(),
	}
	r.params(2, func(flag int) {
		switch flag {
		case 1:
			c.StopTime = r.u32()
		case 2:
			c.Hostname = r.cstring()
		}
	})
	return c
}

func (c *Cycle) appendBody(dst []byte) ([]byte, error) {
	dst = binary.BigEndian.AppendUint32(dst, c.CycleID)
	dst = binary.BigEndian.AppendUint32(dst, c.ListID)
	dst = binary.BigEndian.AppendUint32(dst, c.CycleIDHuman)
	dst = binary.BigEndian.AppendUint32(dst, c.StartTime)
	var p params
	if c.StopTime != 0 {
		p.u32(1, c.StopTime)
	}
	if c.Hostname != "" {
		p.cstring(2, c.Hostname)
	}
	return p.appendTo(dst)
}

type CycleStop struct {
	CycleID  uint32
	StopTime uint32
}

func (c *CycleStop) Type() ObjectType { return TypeCycleStop }

func decodeCycleStop(r *reader) *CycleStop {
	c := &CycleStop{
		CycleID:  r.u32(),
		StopTime: r.u32(),
	}
	if r.remaining() > 0 {
		r.params(0, func(int) {})
	}
	return c
}

func (c *CycleStop) appendBody(dst []byte) ([]byte, error) {
	dst = binary.BigEndian.AppendUint32(dst, c.CycleID)
	dst = binary.BigEndian.AppendUint32(dst, c.StopTime)
	var p params
	return p.appendTo(dst)
}
