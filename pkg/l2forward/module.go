// Package l2forward hosts the forwarding table as a standalone
// module: a config-driven Init/Close lifecycle, a ProcessBatch data
// path, and the add/delete/set_default_gate/lookup/populate command
// surface, instrumented with metrics and an audit trail.
package l2forward

import (
	"errors"
	"sync/atomic"

	"github.com/l2fwd/l2fwd/internal/l2err"
	"github.com/l2fwd/l2fwd/internal/l2hash"
	"github.com/l2fwd/l2fwd/internal/l2table"
	"github.com/l2fwd/l2fwd/pkg/audit"
	"github.com/l2fwd/l2fwd/pkg/config"
	"github.com/l2fwd/l2fwd/pkg/macaddr"
	"github.com/l2fwd/l2fwd/pkg/metrics"
)

// DropGate is the gate index a batch entry is routed to when no entry
// matches and no default gate has been set.
const DropGate = -1

// Entry is one address/gate pair, used by Add and Show.
type Entry struct {
	Addr string `json:"addr"`
	Gate uint16 `json:"gate"`
}

// Module is the forwarding table plus its runtime state: default
// gate, metrics, and audit trail.
type Module struct {
	table       *l2table.Table
	defaultGate atomic.Int32
	Metrics     *metrics.Set
	Audit       *audit.Buffer
	cfg         config.Config
}

// New constructs a Module from a validated Config.
func New(cfg config.Config) (*Module, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	tbl, err := l2table.Init(uint32(cfg.Size), uint32(cfg.Bucket))
	if err != nil {
		return nil, err
	}

	m := &Module{
		table:   tbl,
		Metrics: metrics.New(),
		Audit:   audit.NewBuffer(1000),
		cfg:     cfg,
	}
	m.defaultGate.Store(DropGate)
	m.Metrics.TableCapacity.Set(float64(cfg.Size * cfg.Bucket))
	return m, nil
}

// Close releases the table's backing memory.
func (m *Module) Close() error {
	return m.table.Close()
}

// Batch is a set of packets identified only by their destination MAC
// address, in the internal 48-bit form.
type Batch struct {
	Addrs []uint64
}

// ProcessBatch resolves every address in the batch to a gate, reading
// the default gate exactly once for the whole batch so a concurrent
// SetDefaultGate cannot produce a mix of old and new defaults within
// one batch.
func (m *Module) ProcessBatch(batch Batch) []int32 {
	def := m.defaultGate.Load()
	out := make([]int32, len(batch.Addrs))
	for i, addr := range batch.Addrs {
		m.Metrics.LookupsTotal.Inc()
		if gate, ok := m.table.Find(addr); ok {
			m.Metrics.HitsTotal.Inc()
			out[i] = int32(gate)
			continue
		}
		m.Metrics.MissesTotal.Inc()
		out[i] = def
	}
	return out
}

func (m *Module) addOne(addrStr string, gate uint16) error {
	addr, err := macaddr.Parse(addrStr)
	if err != nil {
		m.record("add", addrStr, gate, err)
		return l2err.Mac(addrStr, l2err.ErrInvalidArgument)
	}

	before := m.table.Stats().Displacement
	err = m.table.Add(addr, gate)
	m.record("add", addrStr, gate, err)
	if err != nil {
		reason := "unknown"
		switch {
		case errors.Is(err, l2err.ErrAlreadyExists):
			reason = "exists"
		case errors.Is(err, l2err.ErrOutOfMemory):
			reason = "full"
		}
		m.Metrics.InsertFailuresTotal.WithLabelValues(reason).Inc()
		return l2err.Mac(addrStr, err)
	}

	stats := m.table.Stats()
	m.Metrics.InsertsTotal.Inc()
	m.Metrics.TableEntries.Set(float64(stats.Count))
	if d := stats.Displacement - before; d > 0 {
		m.Metrics.DisplacementsTotal.Add(float64(d))
	}
	return nil
}

// Add inserts each entry in order. It is not transactional: on the
// first failure it returns that error immediately, leaving every
// prior successful insert in place.
func (m *Module) Add(entries []Entry) error {
	for _, e := range entries {
		if err := m.addOne(e.Addr, e.Gate); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes each address in order, aborting on the first miss
// and leaving prior deletions in place.
func (m *Module) Delete(addrs []string) error {
	for _, addrStr := range addrs {
		addr, err := macaddr.Parse(addrStr)
		if err != nil {
			m.record("delete", addrStr, 0, err)
			return l2err.Mac(addrStr, l2err.ErrInvalidArgument)
		}

		err = m.table.Delete(addr)
		m.record("delete", addrStr, 0, err)
		if err != nil {
			return l2err.Mac(addrStr, err)
		}
	}
	m.Metrics.TableEntries.Set(float64(m.table.Stats().Count))
	return nil
}

// Lookup resolves each address in order. On the first miss it
// discards the partial result and returns NotFound, matching the
// command's all-or-nothing response shape.
func (m *Module) Lookup(addrs []string) ([]uint16, error) {
	gates := make([]uint16, 0, len(addrs))
	for _, addrStr := range addrs {
		addr, err := macaddr.Parse(addrStr)
		if err != nil {
			return nil, l2err.Mac(addrStr, l2err.ErrInvalidArgument)
		}
		gate, ok := m.table.Find(addr)
		m.record("lookup", addrStr, gate, nil)
		if !ok {
			return nil, l2err.Mac(addrStr, l2err.ErrNotFound)
		}
		gates = append(gates, gate)
	}
	return gates, nil
}

// SetDefaultGate changes the gate used for unmatched addresses. Pass
// DropGate to disable default routing. The argument is not validated
// against the module's gate range, matching the command's documented
// behavior.
func (m *Module) SetDefaultGate(gate int32) {
	m.defaultGate.Store(gate)
	m.record("set_default_gate", "", uint16(gate), nil)
}

// DefaultGate returns the currently configured default gate.
func (m *Module) DefaultGate() int32 {
	return m.defaultGate.Load()
}

// macBEValue reads a MAC's six bytes as one 48-bit big-endian integer,
// the conventional way of reading a MAC address as a number.
func macBEValue(mac [6]byte) uint64 {
	return uint64(mac[0])<<40 | uint64(mac[1])<<32 | uint64(mac[2])<<24 |
		uint64(mac[3])<<16 | uint64(mac[4])<<8 | uint64(mac[5])
}

func macFromBEValue(v uint64) [6]byte {
	return [6]byte{
		byte(v >> 40), byte(v >> 32), byte(v >> 24),
		byte(v >> 16), byte(v >> 8), byte(v),
	}
}

// Populate synthesizes count entries starting at base and incrementing
// the MAC address, read as a plain 48-bit counter, by one per entry;
// entry i is assigned gate i mod gateCount. Insertion failures (a
// duplicate from wraparound, a full table) are silently ignored,
// matching the command's documented behavior.
func (m *Module) Populate(base string, count, gateCount int) error {
	addr, err := macaddr.Parse(base)
	if err != nil {
		return l2err.Mac(base, l2err.ErrInvalidArgument)
	}
	if count < 0 || gateCount <= 0 {
		return l2err.ErrInvalidArgument
	}

	v := macBEValue(l2hash.Unpack(addr))
	inserted := 0
	for i := 0; i < count; i++ {
		cur := l2hash.Pack(macFromBEValue(v))
		if err := m.table.Add(cur, uint16(i%gateCount)); err == nil {
			inserted++
		}
		v++
	}
	m.record("populate", base, uint16(inserted), nil)
	m.Metrics.TableEntries.Set(float64(m.table.Stats().Count))
	return nil
}

// Show lists every occupied entry (a supplemented command useful for
// operators inspecting table state).
func (m *Module) Show() []Entry {
	rows := m.table.Entries()
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry{Addr: macaddr.Format(r.Addr), Gate: r.Gate}
	}
	return out
}

// Stats reports current table occupancy.
func (m *Module) Stats() l2table.Stats {
	return m.table.Stats()
}

// Flush clears every entry.
func (m *Module) Flush() {
	m.table.Flush()
	m.Metrics.TableEntries.Set(0)
	m.record("flush", "", 0, nil)
}

func (m *Module) record(cmd, addr string, gate uint16, err error) {
	rec := audit.Record{Command: cmd, Addr: addr, Gate: gate}
	if err != nil {
		rec.Err = err.Error()
	}
	m.Audit.Add(rec)
}
