package kv

import (
	"bytes"
	"strconv"
)

const (
	setCommand = "set"
	delCommand = "del"
)

type serializer interface {
	serialize(buf *bytes.Buffer) int
}

type deserializer interface {
	deserialize(e *engine) error
}

func writeRespArray(segments int, buf *bytes.Buffer) int {
	buf.WriteByte('*')
	s := strconv.FormatInt(int64(segments), 10)
	buf.WriteString(s)
	buf.WriteString("\r\n")

	return 3 + len(s)
}

func writeRespSimpleString(b []byte, buf *bytes.Buffer) int {
	buf.WriteByte('+')
	buf.Write(b)
	buf.WriteString("\r\n")
	return 3 + len(b)
}

func writeRespBlob(blob []byte, buf *bytes.Buffer) int {
	buf.WriteByte('$')
	l := strconv.FormatInt(int64(len(blob)), 10)
	buf.WriteString(l)
	buf.WriteString("\r\n")
	buf.Write(blob)
	buf.WriteString("\r\n")

	return 1 + len(l) + 2 + len(blob) + 2
}
