package tune

import (
	"sort"
	"sync"

	"github.com/knsamati/modeltune/pkg/errors"
)

// MetricRecord is one scored (fold, config, metric) cell of the sweep.
type MetricRecord struct {
	Fold      int     `json:"fold"`
	ConfigKey string  `json:"config"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
}

// RecordTable collects MetricRecords from concurrent sweep workers.
// Each (fold, config, metric) key is write-once; a second insert for the
// same key is a programming error and is rejected.
type RecordTable struct {
	mu      sync.Mutex
	records []MetricRecord
	seen    map[recordKey]bool
}

type recordKey struct {
	fold      int
	configKey string
	metric    string
}

// NewRecordTable creates an empty table.
func NewRecordTable() *RecordTable {
	return &RecordTable{seen: make(map[recordKey]bool)}
}

// Add inserts records atomically: either every record is inserted or,
// when any key is already present, none are. Sweep iterations use this so
// a cancelled or failed pair never leaves partial entries behind.
func (t *RecordTable) Add(records ...MetricRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, rec := range records {
		key := recordKey{fold: rec.Fold, configKey: rec.ConfigKey, metric: rec.Metric}
		if t.seen[key] {
			return errors.Newf("duplicate metric record for fold=%d config=%s metric=%s",
				rec.Fold, rec.ConfigKey, rec.Metric)
		}
	}
	for _, rec := range records {
		t.seen[recordKey{fold: rec.Fold, configKey: rec.ConfigKey, metric: rec.Metric}] = true
		t.records = append(t.records, rec)
	}
	return nil
}

// Len returns the number of records.
func (t *RecordTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Records returns a copy of all records in deterministic order: config
// key, then fold, then metric name.
func (t *RecordTable) Records() []MetricRecord {
	t.mu.Lock()
	out := make([]MetricRecord, len(t.records))
	copy(out, t.records)
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ConfigKey != out[j].ConfigKey {
			return out[i].ConfigKey < out[j].ConfigKey
		}
		if out[i].Fold != out[j].Fold {
			return out[i].Fold < out[j].Fold
		}
		return out[i].Metric < out[j].Metric
	})
	return out
}

// HasMetric reports whether any record carries the named metric.
func (t *RecordTable) HasMetric(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range t.records {
		if rec.Metric == name {
			return true
		}
	}
	return false
}

// ValuesByConfig returns each config's per-fold values for the named
// metric, keyed by config key, in fold order.
func (t *RecordTable) ValuesByConfig(metric string) map[string][]float64 {
	records := t.Records()
	out := make(map[string][]float64)
	for _, rec := range records {
		if rec.Metric != metric {
			continue
		}
		out[rec.ConfigKey] = append(out[rec.ConfigKey], rec.Value)
	}
	return out
}
