// Package stage is the staged key/value channel used between the scan
// and build passes of a run. Each named port is a file of
// "key<TAB>JSON(value)" lines inside the run workspace.
package stage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Record is one staged line.
type Record struct {
	Key   string
	Value json.RawMessage
}

// Decode unmarshals the record value into v.
func (r Record) Decode(v any) error {
	return json.Unmarshal(r.Value, v)
}

type port struct {
	file *os.File
	w    *bufio.Writer
}

// Channel writes staged records into dir. It is not safe for
// concurrent use; a run owns its channel.
type Channel struct {
	dir   string
	ports map[string]*port
}

// NewChannel returns a channel writing into dir.
func NewChannel(dir string) *Channel {
	return &Channel{dir: dir, ports: make(map[string]*port)}
}

// Path returns the file backing a port.
func (c *Channel) Path(name string) string {
	return filepath.Join(c.dir, name)
}

// Emit appends key and the JSON encoding of value to the named port.
// The port file is truncated the first time this channel touches it.
func (c *Channel) Emit(key string, value any, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid port name %q", name)
	}
	if strings.ContainsAny(key, "\t\n") {
		return fmt.Errorf("staged key %q contains a separator", key)
	}

	p, ok := c.ports[name]
	if !ok {
		f, err := os.Create(c.Path(name))
		if err != nil {
			return fmt.Errorf("failed to open port %s: %w", name, err)
		}
		p = &port{file: f, w: bufio.NewWriter(f)}
		c.ports[name] = p
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %q: %w", key, err)
	}
	if _, err := fmt.Fprintf(p.w, "%s\t%s\n", key, data); err != nil {
		return fmt.Errorf("failed to write port %s: %w", name, err)
	}
	return nil
}

// Close flushes and closes every open port.
func (c *Channel) Close() error {
	var first error
	for name, p := range c.ports {
		if err := p.w.Flush(); err != nil && first == nil {
			first = fmt.Errorf("failed to flush port %s: %w", name, err)
		}
		if err := p.file.Close(); err != nil && first == nil {
			first = fmt.Errorf("failed to close port %s: %w", name, err)
		}
	}
	c.ports = make(map[string]*port)
	return first
}

// Consolidate closes the channel and returns the named port's records
// sorted by key. Records sharing a key keep their emission order.
func (c *Channel) Consolidate(name string) ([]Record, error) {
	if err := c.Close(); err != nil {
		return nil, err
	}
	records, err := ReadPort(c.Path(name))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	return records, nil
}

// ReadPort reads the records of a port file in file order. A missing
// file holds no records. Lines without a value are skipped.
func ReadPort(path string) ([]Record, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "\t")
		if !ok || value == "" {
			continue
		}
		if !json.Valid([]byte(value)) {
			return nil, fmt.Errorf("%s: malformed value for key %q", path, key)
		}
		records = append(records, Record{Key: key, Value: json.RawMessage(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}
