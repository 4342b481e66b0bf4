// Package snapshot publishes the discovered switch inventory to Redis so
// other lab tools can read it without talking to Mininet.
//
// Layout (one hash per entry, SONiC-style table|key names):
//
//	SWITCH|<switch>                hardware_id, dpid, port_count
//	SWITCH_PORT|<switch>|<port>    index, mac, ip, oper_status
//	SNAPSHOT|meta                  lab, taken_at, switch_count
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/newtmn/pkg/switches"
	"github.com/newtron-network/newtmn/pkg/util"
)

// Table names.
const (
	SwitchTable = "SWITCH"
	PortTable   = "SWITCH_PORT"
	MetaTable   = "SNAPSHOT"
)

const metaKey = MetaTable + "|meta"

// Meta describes the stored snapshot.
type Meta struct {
	Lab         string
	TakenAt     time.Time
	SwitchCount int
}

// Store reads and writes inventory snapshots in one Redis database.
type Store struct {
	client *redis.Client
}

// NewStore creates a store for the Redis server at addr, database db.
func NewStore(addr string, db int) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

// Ping tests the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// ErrConflict reports a snapshot that kept changing while Save ran.
var ErrConflict = errors.New("snapshot changed concurrently")

const saveAttempts = 3

// Save replaces any stored snapshot with sws in a single transaction.
//
// The stale-key scan and the replacement run under WATCH on the meta hash,
// which every Save and Clear rewrites, so a concurrent writer makes the
// transaction abort and Save starts over. Writers that add snapshot keys
// without touching the meta hash are not detected.
func (s *Store) Save(ctx context.Context, lab string, sws []*switches.Switch) error {
	taken := time.Now().UTC().Format(time.RFC3339)
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			stale, err := listKeys(ctx, tx)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if len(stale) > 0 {
					pipe.Del(ctx, stale...)
				}
				for _, sw := range sws {
					pipe.HSet(ctx, switchKey(sw.Name), toArgs(switchFields(sw)))
					for i, p := range sw.Ports {
						pipe.HSet(ctx, portKey(sw.Name, p.Name), toArgs(portFields(i, p)))
					}
				}
				pipe.HSet(ctx, metaKey, toArgs(map[string]string{
					"lab":          lab,
					"taken_at":     taken,
					"switch_count": strconv.Itoa(len(sws)),
				}))
				return nil
			})
			return err
		}, metaKey)
		if err == nil {
			util.WithField("switches", len(sws)).Info("Snapshot saved")
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		util.WithField("attempt", attempt).Debug("snapshot changed during save, retrying")
	}
	return fmt.Errorf("saving snapshot: %w", ErrConflict)
}

// Load returns the stored switches sorted by name, and the snapshot metadata.
// An empty store yields no switches and a zero Meta.
func (s *Store) Load(ctx context.Context) ([]*switches.Switch, Meta, error) {
	var meta Meta
	vals, err := s.client.HGetAll(ctx, metaKey).Result()
	if err != nil {
		return nil, meta, fmt.Errorf("reading snapshot metadata: %w", err)
	}
	meta = decodeMeta(vals)

	keys, err := s.client.Keys(ctx, SwitchTable+"|*").Result()
	if err != nil {
		return nil, meta, err
	}
	sort.Strings(keys)

	out := make([]*switches.Switch, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, SwitchTable+"|")
		vals, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, meta, fmt.Errorf("reading %s: %w", key, err)
		}
		sw, err := decodeSwitch(name, vals)
		if err != nil {
			return nil, meta, err
		}
		if sw.Ports, err = s.loadPorts(ctx, name); err != nil {
			return nil, meta, err
		}
		out = append(out, sw)
	}
	return out, meta, nil
}

// Get returns one stored switch.
func (s *Store) Get(ctx context.Context, name string) (*switches.Switch, error) {
	vals, err := s.client.HGetAll(ctx, switchKey(name)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, util.NewNotFoundError("snapshot switch", name)
	}
	sw, err := decodeSwitch(name, vals)
	if err != nil {
		return nil, err
	}
	if sw.Ports, err = s.loadPorts(ctx, name); err != nil {
		return nil, err
	}
	return sw, nil
}

// Clear deletes every snapshot key and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	keys, err := listKeys(ctx, s.client)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, keys...).Result()
	return int(n), err
}

func (s *Store) loadPorts(ctx context.Context, sw string) ([]switches.Port, error) {
	keys, err := s.client.Keys(ctx, portKey(sw, "*")).Result()
	if err != nil {
		return nil, err
	}
	type indexed struct {
		idx  int
		port switches.Port
	}
	ports := make([]indexed, 0, len(keys))
	for _, key := range keys {
		vals, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		name := strings.TrimPrefix(key, portKey(sw, ""))
		idx, p := decodePort(name, vals)
		ports = append(ports, indexed{idx, p})
	}
	sort.SliceStable(ports, func(i, j int) bool { return ports[i].idx < ports[j].idx })

	out := make([]switches.Port, len(ports))
	for i, ip := range ports {
		out[i] = ip.port
	}
	return out, nil
}

// keyLister is satisfied by both *redis.Client and *redis.Tx.
type keyLister interface {
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
}

func listKeys(ctx context.Context, c keyLister) ([]string, error) {
	var all []string
	for _, pattern := range []string{SwitchTable + "|*", PortTable + "|*", metaKey} {
		keys, err := c.Keys(ctx, pattern).Result()
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", pattern, err)
		}
		all = append(all, keys...)
	}
	return all, nil
}

func switchKey(name string) string {
	return fmt.Sprintf("%s|%s", SwitchTable, name)
}

func portKey(sw, port string) string {
	return fmt.Sprintf("%s|%s|%s", PortTable, sw, port)
}

func switchFields(sw *switches.Switch) map[string]string {
	return map[string]string{
		"hardware_id": strconv.FormatUint(sw.HardwareID, 10),
		"dpid":        sw.DPID(),
		"port_count":  strconv.Itoa(len(sw.Ports)),
	}
}

func portFields(index int, p switches.Port) map[string]string {
	f := map[string]string{
		"index":       strconv.Itoa(index),
		"oper_status": "down",
	}
	if p.Up {
		f["oper_status"] = "up"
	}
	if p.HasMAC {
		f["mac"] = p.MAC
	}
	if p.HasIP {
		f["ip"] = p.IP
	}
	return f
}

func decodeSwitch(name string, vals map[string]string) (*switches.Switch, error) {
	id, err := strconv.ParseUint(vals["hardware_id"], 10, 64)
	if err != nil {
		return nil, util.NewParseError("snapshot of "+name, fmt.Sprintf("bad hardware_id %q", vals["hardware_id"]))
	}
	return &switches.Switch{Name: name, HardwareID: id}, nil
}

// decodePort returns the stored listing position with the port. Entries
// missing an index sort last.
func decodePort(name string, vals map[string]string) (int, switches.Port) {
	idx, err := strconv.Atoi(vals["index"])
	if err != nil {
		idx = int(^uint(0) >> 1)
	}
	p := switches.Port{Name: name, Up: vals["oper_status"] == "up"}
	if mac, ok := vals["mac"]; ok {
		p.MAC, p.HasMAC = mac, true
	}
	if ip, ok := vals["ip"]; ok {
		p.IP, p.HasIP = ip, true
	}
	return idx, p
}

func decodeMeta(vals map[string]string) Meta {
	m := Meta{Lab: vals["lab"]}
	if t, err := time.Parse(time.RFC3339, vals["taken_at"]); err == nil {
		m.TakenAt = t
	}
	m.SwitchCount, _ = strconv.Atoi(vals["switch_count"])
	return m
}

func toArgs(fields map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
