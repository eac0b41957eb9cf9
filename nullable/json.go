package nullable

import (
	"bytes"
	"encoding/json"
)

var null = []byte("null")

func marshal(valid bool, v any) ([]byte, error) {
	if !valid {
		return null, nil
	}
	return json.Marshal(v)
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), null)
}
