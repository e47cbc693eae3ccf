package kv

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

type commandCode int8

const (
	invalidCode commandCode = iota
	setCode
	delCode
)

type parser struct {
	totalSize      int
	currentCmdSize int
	totalCommands  int
	currentLine    int
}

// parse replays every command found in r. It returns the number of bytes that
// made up complete commands, so a torn tail can be cut off by the caller.
func (p *parser) parse(r *bufio.Reader, cb func(d deserializer) error) (int, error) {
	for {
		p.currentCmdSize = 0

		if _, err := r.Peek(1); err != nil {
			if err == io.EOF {
				return p.totalSize, nil
			}

			return p.totalSize, errors.Wrap(ErrSourceFileReadFailed, err.Error())
		}

		segments, err := p.resolveRespArray(r)
		if err != nil {
			return p.totalSize, err
		}

		cmdCode, err := p.resolveRespCommandCode(r)
		if err != nil {
			return p.totalSize, err
		}

		switch cmdCode {
		case setCode:
			if err := p.parseSetCommand(r, segments, cb); err != nil {
				return p.totalSize, err
			}
		case delCode:
			if err := p.parseDelCommand(r, segments, cb); err != nil {
				return p.totalSize, err
			}
		}

		p.totalCommands++
		p.totalSize += p.currentCmdSize
	}
}

// parseSetCommand - parses `set` command: key, value and value checksum
func (p *parser) parseSetCommand(r *bufio.Reader, segments int, cb func(d deserializer) error) error {
	if segments != 4 {
		return errors.Wrapf(ErrCommandInvalid, "line #%d - set expects 4 segments, got %d", p.currentLine, segments)
	}

	key, err := p.resolveRespBlob(r)
	if err != nil {
		return err
	}

	value, err := p.resolveRespBlob(r)
	if err != nil {
		return err
	}

	sum, err := p.resolveRespSimpleString(r)
	if err != nil {
		return err
	}

	ent := newEntry(string(key), value)
	if ent.checksum() != string(sum) {
		return errors.Wrapf(
			ErrCorruptLog,
			"line #%d - checksum mismatch for key %s",
			p.currentLine, ent.Key,
		)
	}

	return cb(ent)
}

// parseDelCommand - parses delete entry command
func (p *parser) parseDelCommand(r *bufio.Reader, segments int, cb func(d deserializer) error) error {
	if segments != 2 {
		return errors.Wrapf(ErrCommandInvalid, "line #%d - del expects 2 segments, got %d", p.currentLine, segments)
	}

	key, err := p.resolveRespBlob(r)
	if err != nil {
		return err
	}

	return cb(&deleteCmd{key: string(key)})
}

func (p *parser) readLine(r *bufio.Reader) ([]byte, error) {
	p.currentLine++
	line, err := r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, errors.Wrap(ErrSourceFileReadFailed, err.Error())
	}

	p.currentCmdSize += len(line)

	if len(line) < 3 || line[len(line)-2] != '\r' {
		return nil, errors.Wrapf(ErrCommandInvalid, "line #%d - %q is not terminated properly", p.currentLine, line)
	}

	return line[:len(line)-2], nil
}

func (p *parser) resolveRespArray(r *bufio.Reader) (int, error) {
	line, err := p.readLine(r)
	if err != nil {
		return 0, err
	}

	if line[0] != '*' {
		return 0, errors.Wrapf(
			ErrCommandInvalid,
			"line #%d - %s should actually start with *",
			p.currentLine, string(line))
	}

	n, err := strconv.Atoi(string(line[1:]))
	if err != nil {
		return 0, errors.Wrapf(ErrCommandInvalid, "could not parse command size at line #%d %v", p.currentLine, err)
	}

	return n, nil
}

func (p *parser) resolveRespCommandCode(r *bufio.Reader) (commandCode, error) {
	cmd, err := p.resolveRespSimpleString(r)
	if err != nil {
		return invalidCode, err
	}

	switch {
	case bytes.Equal(cmd, []byte(setCommand)):
		return setCode, nil
	case bytes.Equal(cmd, []byte(delCommand)):
		return delCode, nil
	}

	return invalidCode, errors.Wrapf(ErrCommandInvalid, "at line #%d command [%s] is unknown", p.currentLine, string(cmd))
}

func (p *parser) resolveRespSimpleString(r *bufio.Reader) ([]byte, error) {
	line, err := p.readLine(r)
	if err != nil {
		return nil, err
	}

	if line[0] != '+' {
		return nil, errors.Wrapf(ErrCommandInvalid, "at line #%d, simple string should start with + symbol", p.currentLine)
	}

	return line[1:], nil
}

// resolveRespBlob - resolves a length prefixed blob
func (p *parser) resolveRespBlob(r *bufio.Reader) ([]byte, error) {
	line, err := p.readLine(r)
	if err != nil {
		return nil, err
	}

	if line[0] != '$' {
		return nil, errors.Wrapf(ErrCommandInvalid, "line #%d - %s is invalid", p.currentLine, string(line))
	}

	blobLen, err := strconv.Atoi(string(line[1:]))
	if err != nil || blobLen < 0 {
		return nil, errors.Wrapf(ErrCommandInvalid, "line #%d - invalid blob length %s", p.currentLine, string(line[1:]))
	}

	blob := make([]byte, blobLen+2)
	n, err := io.ReadFull(r, blob)
	p.currentCmdSize += n
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, errors.Wrap(ErrSourceFileReadFailed, err.Error())
	}

	p.currentLine++
	if blob[blobLen] != '\r' || blob[blobLen+1] != '\n' {
		return nil, errors.Wrapf(ErrCommandInvalid, "line #%d - blob is not terminated properly", p.currentLine)
	}

	return blob[:blobLen], nil
}
