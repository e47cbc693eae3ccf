package kv

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/denismitr/paysheet/options"
	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

var ErrDatabaseAlreadyClosed = errors.New("database already closed")

const castPanic = "how could keys index item not be of type *entry"

type engine struct {
	dbFile       string
	cfg          *Config
	persistence  *persistence
	keys         *btree.BTree
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.RWMutex
	totalDeletes uint64
	closed       bool
}

func newEngine(dbFile string, cfg *Config) *engine {
	return &engine{
		dbFile: dbFile,
		cfg:    cfg,
		keys:   btree.New(byKeys),
		stopCh: make(chan struct{}),
	}
}

func (e *engine) init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dbFile == InMemory {
		return nil
	}

	p, err := newPersistence(e.dbFile, e.cfg.PersistenceStrategy, e.cfg.TruncateFileWhenOpen)
	if err != nil {
		return err
	}
	e.persistence = p

	if err := e.persistence.load(func(d deserializer) error {
		return d.deserialize(e)
	}); err != nil {
		_ = e.persistence.close()
		e.persistence = nil
		return err
	}

	if e.cfg.PersistenceStrategy == Async {
		e.wg.Add(1)
		go e.asyncFlush(e.cfg.AsyncPersistenceIntervals)
	}

	return nil
}

func (e *engine) asyncFlush(d time.Duration) {
	defer e.wg.Done()
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-t.C:
			// a failed background sync is retried on the next tick and on close
			_ = e.persistence.sync()
		}
	}
}

func (e *engine) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrDatabaseAlreadyClosed
	}

	close(e.stopCh)
	e.wg.Wait()

	defer func() {
		e.keys = nil
		e.persistence = nil
		e.closed = true
	}()

	if e.persistence == nil {
		return nil
	}

	if !e.cfg.DisableAutoVacuum {
		if err := e.runVacuumUnderLock(); err != nil {
			_ = e.persistence.close()
			return err
		}
	}

	return e.persistence.close()
}

// runVacuumUnderLock rewrites the log as a single set per live key.
func (e *engine) runVacuumUnderLock() error {
	buf := &bytes.Buffer{}

	e.keys.Ascend(nil, func(i interface{}) bool {
		mustEntry(i).serialize(buf)
		return true
	})

	if err := e.persistence.writeAndSwap(buf); err != nil {
		return err
	}

	e.totalDeletes = 0
	return nil
}

func (e *engine) get(key string) (*entry, bool) {
	found := e.keys.Get(&entry{Key: key})
	if found == nil {
		return nil, false
	}

	return mustEntry(found).clone(), true
}

func (e *engine) set(ent *entry) error {
	if e.persistence != nil {
		if err := e.persistence.save(ent); err != nil {
			return err
		}
	}

	e.putUnderLock(ent)
	return nil
}

func (e *engine) remove(key string) error {
	if e.keys.Get(&entry{Key: key}) == nil {
		return nil
	}

	if e.persistence != nil {
		if err := e.persistence.save(&deleteCmd{key: key}); err != nil {
			return err
		}
	}

	e.removeUnderLock(key)
	return nil
}

func (e *engine) putUnderLock(ent *entry) {
	e.keys.Set(ent)
}

func (e *engine) removeUnderLock(key string) {
	if e.keys.Delete(&entry{Key: key}) != nil {
		e.totalDeletes++
	}
}

func (e *engine) scan(opts *options.ScanOptions) []string {
	var result []string

	iter := func(i interface{}) bool {
		ent := mustEntry(i)
		if opts.Px != "" && !strings.HasPrefix(ent.Key, opts.Px) {
			return false
		}

		result = append(result, ent.Key)
		return opts.Limit <= 0 || len(result) < opts.Limit
	}

	if opts.O == options.Descend {
		if opts.Px == "" {
			e.keys.Descend(nil, iter)
			return result
		}

		// collect the whole prefix range, then walk it backwards
		var all []string
		e.keys.Ascend(&entry{Key: opts.Px}, func(i interface{}) bool {
			ent := mustEntry(i)
			if !strings.HasPrefix(ent.Key, opts.Px) {
				return false
			}
			all = append(all, ent.Key)
			return true
		})

		for i := len(all) - 1; i >= 0; i-- {
			result = append(result, all[i])
			if opts.Limit > 0 && len(result) >= opts.Limit {
				break
			}
		}

		return result
	}

	var pivot interface{}
	if opts.Px != "" {
		pivot = &entry{Key: opts.Px}
	}

	e.keys.Ascend(pivot, iter)
	return result
}

func (e *engine) count() int {
	return e.keys.Len()
}

func mustEntry(i interface{}) *entry {
	ent, ok := i.(*entry)
	if !ok {
		panic(castPanic)
	}

	return ent
}
