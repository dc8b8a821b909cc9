package logger

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonConsoleWriter rewrites each event so a key added twice by nested loggers
// (op, opID) appears once, with its last value, at the position where it was
// first added. The message is always the last field.
type jsonConsoleWriter struct {
	out io.Writer
}

func (c *jsonConsoleWriter) Write(p []byte) (int, error) {
	var keys []string
	values := make(map[string][]byte)

	iter := json.BorrowIterator(p)
	defer json.ReturnIterator(iter)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = it.SkipAndReturnBytes()
		return true
	})
	if iter.Error != nil && iter.Error != io.EOF {
		return 0, fmt.Errorf("cannot decode event: %s", iter.Error)
	}

	stream := json.BorrowStream(c.out)
	defer json.ReturnStream(stream)
	stream.WriteObjectStart()
	written := 0
	writeField := func(key string) {
		if written > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(key)
		_, _ = stream.Write(values[key])
		written++
	}
	for _, key := range keys {
		if key != zerolog.MessageFieldName {
			writeField(key)
		}
	}
	if _, ok := values[zerolog.MessageFieldName]; ok {
		writeField(zerolog.MessageFieldName)
	}
	stream.WriteObjectEnd()
	stream.WriteRaw("\n")
	if err := stream.Flush(); err != nil {
		return 0, err
	}
	return len(p), nil
}
