package kv

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

var ErrDbFileWriteFailed = errors.New("database write failed")
var ErrSourceFileReadFailed = errors.New("source file read failed")
var ErrCommandInvalid = errors.New("command invalid")
var ErrStorageFailed = errors.New("storage error")
var ErrCorruptLog = errors.New("database log is corrupt")

type persistence struct {
	mu       sync.Mutex
	strategy PersistenceStrategy
	f        *os.File
	flushes  int
	cursor   int
}

func newPersistence(
	filepath string,
	strategy PersistenceStrategy,
	truncateFileOnOpen bool,
) (*persistence, error) {
	flags := os.O_CREATE | os.O_RDWR
	if truncateFileOnOpen {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(filepath, flags, 0666)
	if err != nil {
		return nil, errors.Wrapf(ErrStorageFailed, "could not open %s: %v", filepath, err)
	}

	return &persistence{f: f, strategy: strategy}, nil
}

func (p *persistence) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	syncErr := p.f.Sync()
	if err := p.f.Close(); err != nil {
		return errors.Wrapf(err, "could not close file %s", p.f.Name())
	}

	if syncErr != nil {
		return errors.Wrapf(syncErr, "could not sync file %s before close", p.f.Name())
	}

	return nil
}

// load replays the command log. A torn trailing command, left behind by a
// crash in the middle of a write, is truncated away.
func (p *persistence) load(cb func(d deserializer) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(ErrStorageFailed, "could not rewind %s: %v", p.f.Name(), err)
	}

	prs := &parser{}
	n, err := prs.parse(bufio.NewReader(p.f), cb)
	if err != nil {
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			return err
		}

		if tErr := p.f.Truncate(int64(n)); tErr != nil {
			return errors.Wrapf(tErr, "could not truncate torn tail of %s", p.f.Name())
		}
	}

	pos, err := p.f.Seek(int64(n), io.SeekStart)
	if err != nil {
		return errors.Wrapf(ErrStorageFailed, "could not move the cursor: %s", err.Error())
	}

	p.cursor = int(pos)

	return nil
}

func (p *persistence) save(commands ...serializer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := &bytes.Buffer{}
	for _, cmd := range commands {
		cmd.serialize(buf)
	}

	return p.writeUnderLock(buf)
}

func (p *persistence) writeUnderLock(buf *bytes.Buffer) error {
	n, err := p.f.Write(buf.Bytes())
	if err != nil {
		if n > 0 {
			// partial write occurred, must rollback the file
			if tErr := p.f.Truncate(int64(p.cursor)); tErr != nil {
				return errors.Wrapf(tErr, "could not truncate file %s", p.f.Name())
			}

			if _, sErr := p.f.Seek(int64(p.cursor), io.SeekStart); sErr != nil {
				return errors.Wrapf(ErrStorageFailed, "could not seek file %s to %d: %v", p.f.Name(), p.cursor, sErr)
			}
		}

		return errors.Wrap(ErrDbFileWriteFailed, err.Error())
	}

	if p.strategy == Sync {
		if err := p.f.Sync(); err != nil {
			return errors.Wrap(ErrDbFileWriteFailed, err.Error())
		}
	}

	p.flushes++
	p.cursor += n
	return nil
}

func (p *persistence) sync() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.f.Sync(); err != nil {
		return errors.Wrapf(err, "cannot sync file %s", p.f.Name())
	}
	return nil
}

// writeAndSwap replaces the log with buf through a temp file and a rename.
func (p *persistence) writeAndSwap(buf *bytes.Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tmpFName := p.f.Name() + ".tmp"
	tmpF, err := os.Create(tmpFName)
	if err != nil {
		return errors.Wrapf(err, "could not create %s file for vacuum", tmpFName)
	}

	defer func() {
		_ = tmpF.Close()
		_ = os.RemoveAll(tmpFName)
	}()

	n, err := tmpF.Write(buf.Bytes())
	if err != nil {
		return errors.Wrapf(err, "vacuum could not write into %s file", tmpFName)
	}

	if err := tmpF.Sync(); err != nil {
		return errors.Wrapf(err, "vacuum could not sync %s file", tmpFName)
	}

	oldName := p.f.Name()
	if err := p.f.Close(); err != nil {
		return errors.Wrapf(err, "vacuum could not close %s file to swap it", oldName)
	}

	if rnErr := os.Rename(tmpFName, oldName); rnErr != nil {
		resultErr := errors.Wrapf(rnErr, "vacuum could not swap %s file for %s", oldName, tmpFName)
		p.f, err = os.OpenFile(oldName, os.O_CREATE|os.O_RDWR, 0666)
		if err != nil {
			return errors.Wrapf(resultErr, "and could not reopen old file: %s", err.Error())
		}

		if _, err := p.f.Seek(int64(p.cursor), io.SeekStart); err != nil {
			return errors.Wrapf(resultErr, "and could not restore the cursor: %s", err.Error())
		}
		return resultErr
	}

	p.f, err = os.OpenFile(oldName, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return errors.Wrapf(err, "could not reopen swapped file: %s", oldName)
	}

	pos, err := p.f.Seek(int64(n), io.SeekStart)
	if err != nil {
		return errors.Wrapf(ErrStorageFailed, "could not move the cursor in file %s: %s", oldName, err.Error())
	}

	p.cursor = int(pos)

	return nil
}
