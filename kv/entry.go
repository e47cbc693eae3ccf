package kv

import (
	"bytes"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/jinzhu/copier"
)

type entry struct {
	Key   string
	Value []byte
}

func newEntry(key string, value []byte) *entry {
	return &entry{Key: key, Value: value}
}

// clone copies the value bytes too, so the index never shares memory with callers.
func (ent *entry) clone() *entry {
	var cpEnt entry
	if err := copier.CopyWithOption(&cpEnt, ent, copier.Option{DeepCopy: true}); err != nil {
		panic("could not copy entry " + err.Error())
	}

	return &cpEnt
}

func (ent *entry) checksum() string {
	return checksum(ent.Value)
}

func (ent *entry) serialize(buf *bytes.Buffer) int {
	n := writeRespArray(4, buf)
	n += writeRespSimpleString([]byte(setCommand), buf)
	n += writeRespBlob([]byte(ent.Key), buf)
	n += writeRespBlob(ent.Value, buf)
	n += writeRespSimpleString([]byte(ent.checksum()), buf)
	return n
}

func (ent *entry) deserialize(e *engine) error {
	e.putUnderLock(ent)
	return nil
}

type deleteCmd struct {
	key string
}

func (cmd *deleteCmd) serialize(buf *bytes.Buffer) int {
	n := writeRespArray(2, buf)
	n += writeRespSimpleString([]byte(delCommand), buf)
	n += writeRespBlob([]byte(cmd.key), buf)
	return n
}

func (cmd *deleteCmd) deserialize(e *engine) error {
	e.removeUnderLock(cmd.key)
	return nil
}

func byKeys(a, b interface{}) bool {
	return a.(*entry).Key < b.(*entry).Key
}

func checksum(v []byte) string {
	return strconv.FormatUint(xxhash.Sum64(v), 16)
}
